package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/storefront-cart/internal/reminder/domain"
	"github.com/redis/go-redis/v9"
)

// Redis hands reminders to a background delivery agent over pub/sub.
// Reminders are published on <prefix>:reminders; the agent reports clicks
// on <prefix>:reminder-clicks with the notification's route payload.
type Redis struct {
	client *redis.Client
	show   string
	clicks string
	log    *slog.Logger
}

func NewRedis(client *redis.Client, prefix string, log *slog.Logger) *Redis {
	if log == nil {
		log = slog.Default()
	}
	return &Redis{
		client: client,
		show:   prefix + ":reminders",
		clicks: prefix + ":reminder-clicks",
		log:    log,
	}
}

// RequestPermission is granted while the broker is reachable.
func (r *Redis) RequestPermission(ctx context.Context) (domain.Permission, error) {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return domain.PermissionDenied, nil
	}
	return domain.PermissionGranted, nil
}

// Show publishes n. It is refused when no agent is subscribed.
func (r *Redis) Show(ctx context.Context, n domain.Notification) (domain.Delivery, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return domain.Refused, fmt.Errorf("encode notification: %w", err)
	}
	receivers, err := r.client.Publish(ctx, r.show, body).Result()
	if err != nil {
		return domain.Refused, fmt.Errorf("publish reminder: %w", err)
	}
	if receivers == 0 {
		return domain.Refused, nil
	}
	return domain.Delivered, nil
}

// Click reports a notification click the way a delivery agent would.
func (r *Redis) Click(ctx context.Context, payload domain.RoutePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.clicks, body).Err()
}

// Listen calls onClick for every click until ctx is done.
func (r *Redis) Listen(ctx context.Context, onClick func(domain.RoutePayload)) error {
	sub := r.client.Subscribe(ctx, r.clicks)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.clicks, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var payload domain.RoutePayload
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				r.log.Warn("bad reminder click payload", slog.Any("err", err))
				continue
			}
			onClick(payload)
		}
	}
}
