package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
)

// ResolverPriceReader prices checkout lines through the same resolver the
// cart totals use, so a quote and the cart badge agree on prices and on
// which products are gone.
type ResolverPriceReader struct {
	resolver cartapp.ProductResolver
}

func NewResolverPriceReader(resolver cartapp.ProductResolver) *ResolverPriceReader {
	return &ResolverPriceReader{resolver: resolver}
}

func (r *ResolverPriceReader) GetProduct(ctx context.Context, productID string) (checkoutapp.Product, error) {
	p, err := r.resolver.Resolve(ctx, productID)
	if err != nil {
		return checkoutapp.Product{}, err
	}

	return checkoutapp.Product{
		ID:       p.ID,
		Name:     p.Name,
		Currency: p.UnitPrice.Currency,
		Amount:   p.UnitPrice.Amount,
	}, nil
}
