package storage

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront-cart/pkg/sqlite"
)

const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Backend    string
	SQLitePath string
	RedisURL   string
	RedisTTL   time.Duration
	KeyPrefix  string
}

// KV is the key/value contract every backend here satisfies.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the configured backend. A backend that cannot be reached
// degrades to Noop: the cart keeps working, only durability is lost.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (KV, io.Closer) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nopCloser{}

	case BackendSQLite:
		db, err := sqlite.Open(sqlite.Config{Path: cfg.SQLitePath})
		if err != nil {
			log.Warn("sqlite storage unavailable, cart will not persist", slog.Any("err", err))
			return Noop{}, nopCloser{}
		}
		s, err := NewSQLite(ctx, db)
		if err != nil {
			db.Close()
			log.Warn("sqlite storage init failed, cart will not persist", slog.Any("err", err))
			return Noop{}, nopCloser{}
		}
		return s, db

	case BackendRedis:
		client, err := Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis storage misconfigured, cart will not persist", slog.Any("err", err))
			return Noop{}, nopCloser{}
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			log.Warn("redis storage unreachable, cart will not persist", slog.Any("err", err))
			return Noop{}, nopCloser{}
		}
		return NewRedis(client, cfg.KeyPrefix, cfg.RedisTTL), client

	case BackendNone, "":
		return Noop{}, nopCloser{}

	default:
		log.Warn("unknown storage backend, cart will not persist", slog.String("backend", cfg.Backend))
		return Noop{}, nopCloser{}
	}
}
