package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
)

type fakeCart struct {
	items     []CartItem
	completed int
	ordered   []CartItem
}

func (c *fakeCart) GetCart(context.Context) ([]CartItem, error) { return c.items, nil }

func (c *fakeCart) CompleteCheckout(ordered []CartItem) {
	c.completed++
	c.ordered = ordered
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]Product
	calls    int
}

func (c *fakeCatalog) GetProduct(_ context.Context, id string) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	p, ok := c.products[id]
	if !ok {
		return Product{}, errors.New("not found")
	}
	return p, nil
}

type fakeOrders struct {
	got domain.Quote
	err error
}

func (o *fakeOrders) PlaceOrder(_ context.Context, _ domain.Customer, q domain.Quote) (string, error) {
	o.got = q
	if o.err != nil {
		return "", o.err
	}
	return "order-1", nil
}

func catalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]Product{
		"klepon":    {ID: "klepon", Name: "Klepon Gula Aren", Currency: "IDR", Amount: 28000},
		"snack-box": {ID: "snack-box", Name: "Snack Box Korporat", Currency: "IDR", Amount: 35000},
		"tee":       {ID: "tee", Name: "Tee", Currency: "USD", Amount: 20},
	}}
}

func TestQuote(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		svc := NewService(&fakeCart{}, catalog(), &fakeOrders{}, &fakeCart{}, Options{})
		if _, err := svc.Quote(context.Background()); !errors.Is(err, ErrEmptyCart) {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("sums lines in cart order", func(t *testing.T) {
		cart := &fakeCart{items: []CartItem{
			{ProductID: "klepon", Quantity: 3},
			{ProductID: "snack-box", Quantity: 10},
		}}
		svc := NewService(cart, catalog(), &fakeOrders{}, cart, Options{MaxConcurrent: 1})

		q, err := svc.Quote(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Lines[0].ProductID != "klepon" || q.Lines[1].LineTotal.Amount != 350000 {
			t.Fatalf("unexpected lines %+v", q.Lines)
		}
		if q.Total != (domain.Money{Currency: "IDR", Amount: 434000}) {
			t.Fatalf("unexpected total %+v", q.Total)
		}
	})

	t.Run("unknown product fails", func(t *testing.T) {
		cart := &fakeCart{items: []CartItem{{ProductID: "brownies", Quantity: 1}}}
		svc := NewService(cart, catalog(), &fakeOrders{}, cart, Options{})
		if _, err := svc.Quote(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("mixed currency fails", func(t *testing.T) {
		cart := &fakeCart{items: []CartItem{{ProductID: "klepon", Quantity: 1}, {ProductID: "tee", Quantity: 1}}}
		svc := NewService(cart, catalog(), &fakeOrders{}, cart, Options{})
		if _, err := svc.Quote(context.Background()); !errors.Is(err, ErrMixedCurrency) {
			t.Fatalf("expected ErrMixedCurrency, got %v", err)
		}
	})
}

func TestComplete(t *testing.T) {
	newCart := func() *fakeCart {
		return &fakeCart{items: []CartItem{{ProductID: "klepon", Quantity: 2}}}
	}

	t.Run("places order and clears cart", func(t *testing.T) {
		cart := newCart()
		orders := &fakeOrders{}
		svc := NewService(cart, catalog(), orders, cart, Options{WhatsAppNumber: "6281234"})

		r, err := svc.Complete(context.Background(), customer(" Sari ", "0812"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.OrderID != "order-1" || cart.completed != 1 {
			t.Fatalf("order %q, completed %d", r.OrderID, cart.completed)
		}
		if len(cart.ordered) != 1 || cart.ordered[0] != cart.items[0] {
			t.Fatalf("settled %+v, want the priced items", cart.ordered)
		}
		if orders.got.Total.Amount != 56000 {
			t.Fatalf("order total %d", orders.got.Total.Amount)
		}
		if !strings.HasPrefix(r.URL, "https://wa.me/6281234?text=") || !strings.Contains(r.Message, "Nama%3A%20Sari%0A") {
			t.Fatalf("unexpected message %q", r.URL)
		}
	})

	t.Run("missing phone", func(t *testing.T) {
		cart := newCart()
		svc := NewService(cart, catalog(), &fakeOrders{}, cart, Options{})
		if _, err := svc.Complete(context.Background(), customer("Sari", " ")); !errors.Is(err, ErrInvalidCustomer) {
			t.Fatalf("expected ErrInvalidCustomer, got %v", err)
		}
		if cart.completed != 0 {
			t.Fatal("cart must be kept")
		}
	})

	t.Run("order failure keeps the cart", func(t *testing.T) {
		cart := newCart()
		svc := NewService(cart, catalog(), &fakeOrders{err: errors.New("db down")}, cart, Options{})
		if _, err := svc.Complete(context.Background(), customer("Sari", "0812")); err == nil {
			t.Fatal("expected error")
		}
		if cart.completed != 0 {
			t.Fatal("cart must be kept")
		}
	})
}

func customer(name, phone string) domain.Customer {
	return domain.Customer{Name: name, Phone: phone}
}
