package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	checkoutdomain "github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	reminderdomain "github.com/dwikikusuma/storefront-cart/internal/reminder/domain"
	"github.com/dwikikusuma/storefront-cart/internal/storefront"
)

type handler struct {
	app *storefront.App
	log *slog.Logger
}

func newRouter(app *storefront.App, log *slog.Logger) http.Handler {
	h := &handler{app: app, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/lines", h.addLine)
		r.Put("/lines/{productID}", h.setQuantity)
		r.Delete("/lines/{productID}", h.removeLine)
		r.Get("/quote", h.quote)
	})
	r.Post("/checkout", h.checkout)

	r.Post("/reminder/click", h.reminderClick)
	r.Get("/reminder/route", h.reminderRoute)

	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)

	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		h.log.LogAttrs(r.Context(), level, "http request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type lineDTO struct {
	Key       string `json:"key"`
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

type totalsDTO struct {
	Currency string   `json:"currency"`
	Amount   int64    `json:"amount"`
	Missing  []string `json:"missing,omitempty"`
}

type cartDTO struct {
	Lines         []lineDTO  `json:"lines"`
	LineCount     int        `json:"lineCount"`
	UnitCount     int        `json:"unitCount"`
	LastMutatedAt *time.Time `json:"lastMutatedAt"`
	ReminderSent  bool       `json:"reminderSent"`
	Totals        totalsDTO  `json:"totals"`
}

func (h *handler) writeCart(w http.ResponseWriter, r *http.Request, state cartdomain.CartState) {
	totals, err := cartapp.ComputeTotals(r.Context(), state, h.app.Resolver, h.log)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	out := cartDTO{
		Lines:         make([]lineDTO, 0, len(state.Lines)),
		LineCount:     state.LineCount(),
		UnitCount:     state.UnitCount(),
		LastMutatedAt: state.LastMutatedAt,
		ReminderSent:  state.ReminderSent,
		Totals:        totalsDTO{Currency: totals.Currency, Amount: totals.Amount},
	}
	for _, ln := range state.Lines {
		out.Lines = append(out.Lines, lineDTO{
			Key:       string(ln.Key),
			ProductID: ln.ProductID,
			Size:      ln.Variant.Size,
			Color:     ln.Variant.Color,
			Quantity:  ln.Quantity,
		})
	}
	for _, k := range totals.Missing {
		out.Totals.Missing = append(out.Totals.Missing, string(k))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.app.Cart.Snapshot())
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.app.Cart.Clear())
}

type addLineRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  *int   `json:"quantity"`
}

func (h *handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	delta := 1
	if req.Quantity != nil {
		delta = *req.Quantity
	}
	if delta < 1 {
		h.writeErr(w, fmt.Errorf("%w: quantity must be at least 1", errBadRequest))
		return
	}

	product, err := h.app.Catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if !product.Offers(req.Size, req.Color) {
		h.writeErr(w, fmt.Errorf("%w: %s does not come in that size or color", errBadRequest, product.Handle))
		return
	}

	state := h.app.Cart.AddLine(product.ID, cartdomain.Variant{Size: req.Size, Color: req.Color}, delta)
	h.writeCart(w, r, state)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	key, err := lineKey(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeCart(w, r, h.app.Cart.SetQuantity(key, req.Quantity))
}

func (h *handler) removeLine(w http.ResponseWriter, r *http.Request) {
	key, err := lineKey(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeCart(w, r, h.app.Cart.RemoveLine(key))
}

// lineKey identifies a line by product and the size/color query params.
func lineKey(r *http.Request) (cartdomain.Key, error) {
	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	if productID == "" {
		return "", fmt.Errorf("%w: missing product id", errBadRequest)
	}
	q := r.URL.Query()
	return cartdomain.NewKey(productID, cartdomain.Variant{Size: q.Get("size"), Color: q.Get("color")}), nil
}

func (h *handler) quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.app.Checkout.Quote(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type checkoutRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Notes          string `json:"notes"`
	DeliveryMethod string `json:"deliveryMethod"`
	Address        string `json:"address"`
}

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, err)
		return
	}

	receipt, err := h.app.Checkout.Complete(r.Context(), checkoutdomain.Customer{
		Name:           req.Name,
		Phone:          req.Phone,
		Notes:          req.Notes,
		DeliveryMethod: checkoutdomain.DeliveryMethod(req.DeliveryMethod),
		Address:        req.Address,
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"orderId":     receipt.OrderID,
		"total":       receipt.Quote.Total,
		"message":     receipt.Message,
		"whatsappUrl": receipt.URL,
	})
}

func (h *handler) reminderClick(w http.ResponseWriter, r *http.Request) {
	var payload reminderdomain.RoutePayload
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &payload); err != nil {
			h.writeErr(w, err)
			return
		}
	}
	h.app.Reminder.HandleClick(payload)
	w.WriteHeader(http.StatusAccepted)
}

// reminderRoute hands out the pending navigation request, if any.
func (h *handler) reminderRoute(w http.ResponseWriter, r *http.Request) {
	select {
	case sig := <-h.app.Reminder.Signals():
		writeJSON(w, http.StatusOK, map[string]string{"type": sig.Type, "target": sig.Target})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type productDTO struct {
	ID          string   `json:"id"`
	Handle      string   `json:"handle"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Currency    string   `json:"currency"`
	Price       int64    `json:"price"`
	Sizes       []string `json:"sizes,omitempty"`
	Colors      []string `json:"colors,omitempty"`
}

func toProductDTO(p catalogdomain.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Handle:      p.Handle,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Currency:    p.Price.Currency,
		Price:       p.Price.Amount,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
	}
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		products []catalogdomain.Product
		next     string
		err      error
	)
	if _, searching := q["q"]; searching {
		products, err = h.app.Catalog.Search(r.Context(), q.Get("q"))
	} else {
		limit, _ := strconv.Atoi(q.Get("limit"))
		products, next, err = h.app.Catalog.ListProducts(r.Context(), "", limit, q.Get("cursor"))
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out, "nextCursor": next})
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Catalog.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

func (h *handler) writeErr(w http.ResponseWriter, err error) {
	status, code, msg := httpStatusFromErr(err)
	if status >= 500 {
		h.log.Error("request failed", slog.Any("err", err))
	}
	writeJSON(w, status, map[string]string{"code": code, "message": msg})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
