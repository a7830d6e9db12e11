package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront-cart/internal/order/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("order not found")
)

type Service struct {
	repo OrderRepo
}

const (
	OrderStatusPending = "PENDING"
)

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderResponse, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return domain.OrderResponse{}, fmt.Errorf("%w: customer name and phone are required", ErrInvalidInput)
	}
	switch req.DeliveryMethod {
	case domain.DeliveryPickup, domain.DeliveryCourier:
	default:
		return domain.OrderResponse{}, fmt.Errorf("%w: unknown delivery method %q", ErrInvalidInput, req.DeliveryMethod)
	}
	if len(req.Items) == 0 {
		return domain.OrderResponse{}, fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	if req.ShippingAmount < 0 {
		return domain.OrderResponse{}, fmt.Errorf("%w: shipping amount cannot be negative, got %d", ErrInvalidInput, req.ShippingAmount)
	}

	orderItem := make([]domain.OrderItem, 0, len(req.Items))
	var subTotalAmount int64 = 0

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.UnitAmount < 0 {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: unit amount cannot be negative, got %d", ErrInvalidInput, i, item.UnitAmount)
		}

		orderItem = append(orderItem, domain.OrderItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Size:            item.Size,
			Color:           item.Color,
			UnitAmount:      item.UnitAmount,
			Quantity:        item.Quantity,
			LineTotalAmount: item.UnitAmount * int64(item.Quantity),
		})

		subTotalAmount += item.UnitAmount * int64(item.Quantity)
	}

	order := domain.Order{
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		DeliveryMethod: req.DeliveryMethod,
		Address:        strings.TrimSpace(req.Address),
		Notes:          strings.TrimSpace(req.Notes),
		Status:         OrderStatusPending,
		Currency:       req.Currency,
		ShippingAmount: req.ShippingAmount,
		SubTotalAmount: subTotalAmount,
		TotalAmount:    subTotalAmount + req.ShippingAmount,
		OrderItems:     orderItem,
	}

	createdOrder, err := s.repo.CreateOrderTx(ctx, order)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	return domain.OrderResponse{
		ID:          createdOrder.ID,
		Status:      createdOrder.Status,
		TotalAmount: createdOrder.TotalAmount,
		CreatedAt:   createdOrder.CreatedAt,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrInvalidInput
	}
	return s.repo.GetOrder(ctx, id)
}
