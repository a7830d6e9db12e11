package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/reminder/domain"
)

// Notifier is the platform notification capability.
type Notifier interface {
	RequestPermission(ctx context.Context) (domain.Permission, error)
	Show(ctx context.Context, n domain.Notification) (domain.Delivery, error)
}

// CartMarker records a delivered reminder on the cart, provided the cart
// has not changed since the window the reminder was armed for.
type CartMarker interface {
	MarkReminderSentFor(lastMutatedAt time.Time) bool
}

// FlagStore persists the "reminder sent" fact on its own.
type FlagStore interface {
	SaveReminderSent(lastMutatedAt time.Time)
}
