package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	"golang.org/x/sync/errgroup"
)

type CartReader interface {
	GetCart(ctx context.Context) ([]CartItem, error)
}

type CartItem struct {
	ProductID string
	Size      string
	Color     string
	Quantity  int64
}

// CartCompleter takes ordered items out of the cart and, once it is empty,
// retires its pending reminder.
type CartCompleter interface {
	CompleteCheckout(ordered []CartItem)
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID       string
	Name     string
	Currency string
	Amount   int64
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, c domain.Customer, q domain.Quote) (string, error)
}

type Options struct {
	MaxConcurrent int
	ShopName      string
	// WhatsAppNumber is the shop's number in international format without "+".
	WhatsAppNumber string
	Logger         *slog.Logger
}

type Service struct {
	Cart      CartReader
	Catalog   CatalogReader
	Orders    OrderPlacer
	Completer CartCompleter

	maxConcurrent int
	shop          string
	waNumber      string
	log           *slog.Logger
}

func NewService(cart CartReader, catalog CatalogReader, orders OrderPlacer, completer CartCompleter, opts Options) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.ShopName == "" {
		opts.ShopName = "Kue Tampah"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		Orders:        orders,
		Completer:     completer,
		maxConcurrent: opts.MaxConcurrent,
		shop:          opts.ShopName,
		waNumber:      opts.WhatsAppNumber,
		log:           opts.Logger,
	}
}

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCustomer = errors.New("invalid customer")
	ErrMixedCurrency   = errors.New("cart mixes currencies")
)

func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	q, _, err := s.quote(ctx)
	return q, err
}

// quote also returns the cart items it priced.
func (s *Service) quote(ctx context.Context) (domain.Quote, []CartItem, error) {
	items, err := s.Cart.GetCart(ctx)
	if err != nil {
		return domain.Quote{}, nil, err
	}

	if len(items) == 0 {
		return domain.Quote{}, nil, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			product, err := s.Catalog.GetProduct(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			lineTotal := product.Amount * it.Quantity
			lines[idx] = domain.QuoteLine{
				ProductID: product.ID,
				Name:      product.Name,
				Size:      it.Size,
				Color:     it.Color,
				Quantity:  it.Quantity,
				UnitPrice: domain.Money{
					Currency: product.Currency,
					Amount:   product.Amount,
				},
				LineTotal: domain.Money{
					Currency: product.Currency,
					Amount:   lineTotal,
				},
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, nil, err
	}

	var totalAmount int64
	for _, line := range lines {
		if line.LineTotal.Currency != lines[0].LineTotal.Currency {
			return domain.Quote{}, nil, fmt.Errorf("%w: %s and %s", ErrMixedCurrency, lines[0].LineTotal.Currency, line.LineTotal.Currency)
		}
		totalAmount += line.LineTotal.Amount
	}

	quote := domain.Quote{
		Lines: lines,
		Total: domain.Money{
			Currency: lines[0].LineTotal.Currency,
			Amount:   totalAmount,
		},
	}

	return quote, items, nil
}

// Complete prices the cart, records the order, and takes the ordered items
// out of the cart. Items added while the order was being placed stay in the
// cart. The returned receipt carries the WhatsApp order text for the shop.
func (s *Service) Complete(ctx context.Context, c domain.Customer) (domain.Receipt, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" || c.Phone == "" {
		return domain.Receipt{}, fmt.Errorf("%w: name and phone are required", ErrInvalidCustomer)
	}
	if c.DeliveryMethod == "" {
		c.DeliveryMethod = domain.DeliveryPickup
	}

	quote, items, err := s.quote(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}

	orderID, err := s.Orders.PlaceOrder(ctx, c, quote)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("place order: %w", err)
	}

	msg := domain.EscapeMessage(domain.OrderMessage(s.shop, c, quote))
	s.Completer.CompleteCheckout(items)

	s.log.InfoContext(ctx, "checkout completed",
		slog.String("order_id", orderID),
		slog.Int("lines", len(quote.Lines)),
		slog.Int64("total", quote.Total.Amount),
	)

	return domain.Receipt{
		OrderID: orderID,
		Quote:   quote,
		Message: msg,
		URL:     domain.WhatsAppURL(s.waNumber, msg),
	}, nil
}
