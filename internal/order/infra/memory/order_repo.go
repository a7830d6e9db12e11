package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/order/app"
	"github.com/dwikikusuma/storefront-cart/internal/order/domain"
	"github.com/google/uuid"
)

type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: make(map[string]domain.Order)}
}

func (r *OrderRepo) CreateOrderTx(_ context.Context, order domain.Order) (domain.Order, error) {
	for i, item := range order.OrderItems {
		if item.LineTotalAmount != item.UnitAmount*int64(item.Quantity) {
			return domain.Order{}, fmt.Errorf("item %d: line total mismatch", i)
		}
	}

	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.CreatedAt, order.UpdatedAt = now, now
	order.OrderItems = slices.Clone(order.OrderItems)
	for i := range order.OrderItems {
		order.OrderItems[i].ID = uuid.NewString()
		order.OrderItems[i].OrderID = order.ID
	}

	r.mu.Lock()
	r.orders[order.ID] = order
	r.mu.Unlock()
	return order, nil
}

func (r *OrderRepo) GetOrder(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, app.ErrNotFound
	}
	o.OrderItems = slices.Clone(o.OrderItems)
	return o, nil
}
