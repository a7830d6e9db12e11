package domain

import "time"

type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryCourier DeliveryMethod = "delivery"
)

type Order struct {
	ID             string
	CustomerName   string
	CustomerPhone  string
	DeliveryMethod DeliveryMethod
	Address        string
	Notes          string
	Status         string
	Currency       string
	SubTotalAmount int64
	ShippingAmount int64
	TotalAmount    int64
	OrderItems     []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	Name            string
	Size            string
	Color           string
	UnitAmount      int64
	Quantity        int32
	LineTotalAmount int64
}

type CreateOrderRequest struct {
	CustomerName   string
	CustomerPhone  string
	DeliveryMethod DeliveryMethod
	Address        string
	Notes          string
	Currency       string
	ShippingAmount int64
	Items          []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID  string
	Name       string
	Size       string
	Color      string
	UnitAmount int64
	Quantity   int32
}

type OrderResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}
