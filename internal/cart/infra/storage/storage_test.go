package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dwikikusuma/storefront-cart/pkg/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2"))
	got, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", got)

	require.NoError(t, kv.Remove(ctx, "k"))
	_, ok, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Remove(ctx, "never-set"))
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestNoopNeverFinds(t *testing.T) {
	ctx := context.Background()
	var kv Noop
	require.NoError(t, kv.Set(ctx, "k", "v"))
	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite(t *testing.T) {
	db, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "cart.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	kv, err := NewSQLite(context.Background(), db)
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestSQLiteSharedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	open := func() *SQLite {
		db, err := sqlite.Open(sqlite.Config{Path: path})
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		kv, err := NewSQLite(ctx, db)
		require.NoError(t, err)
		return kv
	}

	a, b := open(), open()
	require.NoError(t, a.Set(ctx, "cart", "from-a"))
	require.NoError(t, b.Set(ctx, "cart", "from-b"))

	got, ok, err := a.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-b", got, "last write wins")
}

func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	exerciseKV(t, NewRedis(client, "storefront-test:", 0))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("none", func(t *testing.T) {
		kv, closer := Open(ctx, Config{Backend: BackendNone}, log)
		defer closer.Close()
		assert.IsType(t, Noop{}, kv)
	})

	t.Run("memory", func(t *testing.T) {
		kv, closer := Open(ctx, Config{Backend: BackendMemory}, log)
		defer closer.Close()
		assert.IsType(t, &Memory{}, kv)
	})

	t.Run("sqlite", func(t *testing.T) {
		kv, closer := Open(ctx, Config{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")}, log)
		defer closer.Close()
		assert.IsType(t, &SQLite{}, kv)
	})

	t.Run("unreachable redis degrades to noop", func(t *testing.T) {
		kv, closer := Open(ctx, Config{Backend: BackendRedis, RedisURL: "127.0.0.1:1"}, log)
		defer closer.Close()
		assert.IsType(t, Noop{}, kv)
	})

	t.Run("unknown backend degrades to noop", func(t *testing.T) {
		kv, closer := Open(ctx, Config{Backend: "floppy"}, log)
		defer closer.Close()
		assert.IsType(t, Noop{}, kv)
	})
}
