package domain

type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type QuoteLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int64  `json:"quantity"`
	UnitPrice Money  `json:"unitPrice"`
	LineTotal Money  `json:"lineTotal"`
}

type Quote struct {
	Lines []QuoteLine `json:"lines"`
	Total Money       `json:"total"`
}

type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryCourier DeliveryMethod = "delivery"
)

type Customer struct {
	Name           string
	Phone          string
	Notes          string
	DeliveryMethod DeliveryMethod
	Address        string
}

// Receipt is what a completed checkout hands back to the shopper.
type Receipt struct {
	OrderID string
	Quote   Quote
	// Message is the URL-escaped order text for a WhatsApp deep link.
	Message string
	URL     string
}
