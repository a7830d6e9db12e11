package main

import (
	"context"
	"errors"
	"net/http"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
	orderapp "github.com/dwikikusuma/storefront-cart/internal/order/app"
)

var errBadRequest = errors.New("bad request")

// httpStatusFromErr maps service errors to an HTTP status, a stable error
// code and a client-safe message.
func httpStatusFromErr(err error) (int, string, string) {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, orderapp.ErrInvalidInput),
		errors.Is(err, checkoutapp.ErrInvalidCustomer):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()

	case errors.Is(err, catalogapp.ErrNotFound),
		errors.Is(err, orderapp.ErrNotFound),
		errors.Is(err, cartapp.ErrProductNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()

	case errors.Is(err, checkoutapp.ErrEmptyCart),
		errors.Is(err, checkoutapp.ErrMixedCurrency):
		return http.StatusConflict, "FAILED_PRECONDITION", err.Error()

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "service unavailable"

	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}
