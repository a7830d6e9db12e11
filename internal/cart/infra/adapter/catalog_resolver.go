package adapter

import (
	"context"
	"errors"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront-cart/internal/catalog/app"
)

type CatalogResolver struct {
	svc *catalogapp.Service
}

func NewCatalogResolver(svc *catalogapp.Service) *CatalogResolver {
	return &CatalogResolver{svc: svc}
}

func (r *CatalogResolver) Resolve(ctx context.Context, productID string) (cartapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) {
		return cartapp.Product{}, cartapp.ErrProductNotFound
	}
	if err != nil {
		return cartapp.Product{}, err
	}

	return cartapp.Product{
		ID:   p.ID,
		Name: p.Name,
		UnitPrice: cartapp.Money{
			Currency: p.Price.Currency,
			Amount:   p.Price.Amount,
		},
	}, nil
}
