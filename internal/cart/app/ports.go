package app

import (
	"context"
	"errors"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Persister is the durability side of the store. Save must not block
// and must not fail the caller; Load returns nil for "start empty".
type Persister interface {
	Save(state domain.CartState)
	Load(ctx context.Context) *domain.CartState
	ClearReminderSent()
}

// Observer is invoked after every mutation with the resulting state.
type Observer interface {
	Observe(state domain.CartState)
}

type Money struct {
	Currency string
	Amount   int64
}

type Product struct {
	ID        string
	Name      string
	UnitPrice Money
}

type ProductResolver interface {
	Resolve(ctx context.Context, productID string) (Product, error)
}
