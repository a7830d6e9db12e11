package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	"github.com/google/uuid"
)

// ProductRepo keeps products in insertion order.
type ProductRepo struct {
	mu       sync.RWMutex
	products []domain.Product
	now      func() time.Time
}

func NewProductRepo(seed ...domain.Product) *ProductRepo {
	r := &ProductRepo{now: time.Now}
	for _, p := range seed {
		r.products = append(r.products, clone(p))
	}
	return r
}

func (r *ProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(p.Handle) >= 0 {
		return domain.Product{}, app.ErrInvalidInput
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.products = append(r.products, clone(p))
	return clone(p), nil
}

func (r *ProductRepo) Get(_ context.Context, idOrHandle string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexLocked(idOrHandle); i >= 0 {
		return clone(r.products[i]), nil
	}
	return domain.Product{}, app.ErrNotFound
}

func (r *ProductRepo) List(_ context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if cursor != "" {
		i := slices.IndexFunc(r.products, func(p domain.Product) bool { return p.ID == cursor })
		if i < 0 {
			return nil, "", app.ErrInvalidInput
		}
		start = i + 1
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Product, 0, limit)
	for _, p := range r.products[start:] {
		if len(out) == limit {
			break
		}
		if q != "" && !matches(p, q) {
			continue
		}
		out = append(out, clone(p))
	}

	var next string
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (r *ProductRepo) HandleExists(_ context.Context, handle string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.ContainsFunc(r.products, func(p domain.Product) bool { return p.Handle == handle }), nil
}

func (r *ProductRepo) indexLocked(idOrHandle string) int {
	if idOrHandle == "" {
		return -1
	}
	return slices.IndexFunc(r.products, func(p domain.Product) bool {
		return p.ID == idOrHandle || p.Handle == idOrHandle
	})
}

func matches(p domain.Product, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Category), lowerQuery)
}

func clone(p domain.Product) domain.Product {
	p.Sizes = slices.Clone(p.Sizes)
	p.Colors = slices.Clone(p.Colors)
	return p
}
