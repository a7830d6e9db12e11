package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
)

type CartStoreReader struct {
	store *cartapp.Store
}

func NewCartStoreReader(store *cartapp.Store) *CartStoreReader {
	return &CartStoreReader{store: store}
}

func (r *CartStoreReader) GetCart(ctx context.Context) ([]checkoutapp.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cart := r.store.Snapshot()

	items := make([]checkoutapp.CartItem, 0, len(cart.Lines))
	for _, it := range cart.Lines {
		items = append(items, checkoutapp.CartItem{
			ProductID: it.ProductID,
			Size:      it.Variant.Size,
			Color:     it.Variant.Color,
			Quantity:  int64(it.Quantity),
		})
	}
	return items, nil
}

func (r *CartStoreReader) CompleteCheckout(ordered []checkoutapp.CartItem) {
	lines := make([]cartdomain.CartLine, 0, len(ordered))
	for _, it := range ordered {
		v := cartdomain.Variant{Size: it.Size, Color: it.Color}
		lines = append(lines, cartdomain.CartLine{
			Key:       cartdomain.NewKey(it.ProductID, v),
			ProductID: it.ProductID,
			Variant:   v,
			Quantity:  int(it.Quantity),
		})
	}
	r.store.SettleOrdered(lines)
}
