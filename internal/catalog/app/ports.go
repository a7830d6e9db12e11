package app

import (
	"context"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	// Get looks a product up by ID or handle.
	Get(ctx context.Context, idOrHandle string) (domain.Product, error)
	// List filters by a case-insensitive substring of name or category.
	List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
}
