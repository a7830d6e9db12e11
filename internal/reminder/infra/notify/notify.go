package notify

import (
	"context"
	"log/slog"

	"github.com/dwikikusuma/storefront-cart/internal/reminder/domain"
)

// Unsupported is used where no notification channel exists.
type Unsupported struct{}

func (Unsupported) RequestPermission(context.Context) (domain.Permission, error) {
	return domain.PermissionDenied, nil
}

func (Unsupported) Show(context.Context, domain.Notification) (domain.Delivery, error) {
	return domain.Refused, nil
}

// Log delivers reminders to the structured log.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	if log == nil {
		log = slog.Default()
	}
	return &Log{log: log}
}

func (l *Log) RequestPermission(context.Context) (domain.Permission, error) {
	return domain.PermissionGranted, nil
}

func (l *Log) Show(ctx context.Context, n domain.Notification) (domain.Delivery, error) {
	l.log.InfoContext(ctx, "cart reminder",
		slog.String("title", n.Title),
		slog.String("body", n.Body),
		slog.String("tag", n.Tag),
		slog.String("url", n.Payload.URL),
	)
	return domain.Delivered, nil
}
