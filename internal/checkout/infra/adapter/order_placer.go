package adapter

import (
	"context"

	checkoutdomain "github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/storefront-cart/internal/order/app"
	orderdomain "github.com/dwikikusuma/storefront-cart/internal/order/domain"
)

type OrderServicePlacer struct {
	svc *orderapp.Service
}

func NewOrderServicePlacer(svc *orderapp.Service) *OrderServicePlacer {
	return &OrderServicePlacer{svc: svc}
}

func (p *OrderServicePlacer) PlaceOrder(ctx context.Context, c checkoutdomain.Customer, q checkoutdomain.Quote) (string, error) {
	items := make([]orderdomain.OrderItemRequest, 0, len(q.Lines))
	for _, ln := range q.Lines {
		items = append(items, orderdomain.OrderItemRequest{
			ProductID:  ln.ProductID,
			Name:       ln.Name,
			Size:       ln.Size,
			Color:      ln.Color,
			UnitAmount: ln.UnitPrice.Amount,
			Quantity:   int32(ln.Quantity),
		})
	}

	resp, err := p.svc.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		CustomerName:   c.Name,
		CustomerPhone:  c.Phone,
		DeliveryMethod: orderdomain.DeliveryMethod(c.DeliveryMethod),
		Address:        c.Address,
		Notes:          c.Notes,
		Currency:       q.Total.Currency,
		Items:          items,
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}
