package domain

import "time"

const DefaultIdleWindow = 15 * time.Minute

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type Delivery string

const (
	Delivered Delivery = "delivered"
	Refused   Delivery = "refused"
)

type Phase string

const (
	PhaseIdle  Phase = "idle"
	PhaseArmed Phase = "armed"
)

// RoutePayload travels with a notification and comes back on click.
type RoutePayload struct {
	URL string `json:"url"`
}

type Notification struct {
	Title   string       `json:"title"`
	Body    string       `json:"body"`
	Tag     string       `json:"tag"`
	Payload RoutePayload `json:"data"`
}

const (
	CartPath            = "/cart"
	SignalReminderClick = "CART_REMINDER_CLICKED"
)

// RouteSignal asks the surrounding application to navigate.
type RouteSignal struct {
	Type   string
	Target string
}

// CartReminder is the stock copy used by the Tampah storefront.
func CartReminder(tag string) Notification {
	return Notification{
		Title:   "Pesanan Kue Tampah masih menunggu 🍰",
		Body:    "Lanjutkan checkout sekarang sebelum slot pengiriman penuh. Ketuk untuk kembali ke keranjang.",
		Tag:     tag,
		Payload: RoutePayload{URL: CartPath},
	}
}
