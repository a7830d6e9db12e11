package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dwikikusuma/storefront-cart/pkg/clock"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type session struct {
	cfg   config.Config
	clock *clock.Fake
}

func newSession(t *testing.T) *session {
	cfg := config.Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "storefront.db")
	cfg.Notifier = "none"
	cfg.Shop.WhatsAppNumber = "6281234567890"
	return &session{cfg: cfg, clock: clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))}
}

// run executes one CLI invocation against a fresh storefront, the way a new
// process would.
func (s *session) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(cli{
		loadConfig: func() (config.Config, error) { return s.cfg, nil },
		clock:      s.clock,
		stdout:     &out,
		stderr:     &errOut,
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCartCommands(t *testing.T) {
	s := newSession(t)

	out, err := s.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")

	out, err = s.run(t, "cart", "add", "klepon", "--qty", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "klepon")
	assert.Contains(t, out, "1 lines, 3 items, total Rp 84.000")

	t.Run("state survives between invocations", func(t *testing.T) {
		out, err := s.run(t, "cart", "add", "snack-box", "--qty", "10")
		require.NoError(t, err)
		assert.Contains(t, out, "2 lines, 13 items, total Rp 434.000")
	})

	t.Run("set replaces the quantity", func(t *testing.T) {
		out, err := s.run(t, "cart", "set", "klepon", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "2 lines, 11 items, total Rp 378.000")
	})

	t.Run("set to zero removes", func(t *testing.T) {
		out, err := s.run(t, "cart", "set", "klepon", "0")
		require.NoError(t, err)
		assert.Contains(t, out, "1 lines, 10 items")
		assert.NotContains(t, out, "klepon")
	})

	t.Run("remove", func(t *testing.T) {
		out, err := s.run(t, "cart", "remove", "snack-box")
		require.NoError(t, err)
		assert.Contains(t, out, "cart is empty")
	})

	t.Run("clear", func(t *testing.T) {
		_, err := s.run(t, "cart", "add", "klepon")
		require.NoError(t, err)
		out, err := s.run(t, "cart", "clear")
		require.NoError(t, err)
		assert.Contains(t, out, "cart is empty")

		out, err = s.run(t, "cart", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "cart is empty")
	})
}

func TestCartCommandsReject(t *testing.T) {
	s := newSession(t)

	cases := []struct {
		name string
		args []string
	}{
		{"unknown product", []string{"cart", "add", "brownies"}},
		{"zero quantity", []string{"cart", "add", "klepon", "--qty", "0"}},
		{"variant not offered", []string{"cart", "add", "klepon", "--size", "XL"}},
		{"missing argument", []string{"cart", "add"}},
		{"bad quantity", []string{"cart", "set", "klepon", "lots"}},
		{"blank product on remove", []string{"cart", "remove", " "}},
		{"blank product on set", []string{"cart", "set", "", "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.run(t, tc.args...)
			require.Error(t, err)
		})
	}

	out, err := s.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")
}

func TestProductsCommand(t *testing.T) {
	s := newSession(t)

	out, err := s.run(t, "products")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7)
	assert.Contains(t, out, "Tampah Premium Nusantara")
	assert.Contains(t, out, "Rp 450.000")

	out, err = s.run(t, "products", "jajan")
	require.NoError(t, err)
	assert.Contains(t, out, "Jajan Pasar Komplit")
	assert.NotContains(t, out, "Klepon")
}

func TestCheckoutCommand(t *testing.T) {
	s := newSession(t)

	_, err := s.run(t, "checkout", "--name", "Sari", "--phone", "08123")
	require.Error(t, err, "empty cart")

	_, err = s.run(t, "cart", "add", "tampah-premium")
	require.NoError(t, err)

	_, err = s.run(t, "checkout", "--phone", "08123")
	require.Error(t, err, "name is required")

	out, err := s.run(t, "checkout", "--name", "Sari", "--phone", "08123")
	require.NoError(t, err)
	assert.Contains(t, out, "placed, total Rp 450.000")
	assert.Contains(t, out, "https://wa.me/6281234567890?text=")

	out, err = s.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")
}
