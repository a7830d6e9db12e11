package storefront

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	checkoutdomain "github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	reminderdomain "github.com/dwikikusuma/storefront-cart/internal/reminder/domain"
	"github.com/dwikikusuma/storefront-cart/pkg/clock"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, backend string) config.Config {
	cfg := config.Default()
	cfg.Storage.Backend = backend
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "storefront.db")
	cfg.Notifier = "log"
	return cfg
}

func open(t *testing.T, cfg config.Config, clk clock.Clock) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, Options{Clock: clk, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	return a
}

func closeApp(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
}

func TestReminderFiresThroughTheWiredApp(t *testing.T) {
	clk := clock.NewFake(t0)
	a := open(t, testConfig(t, "memory"), clk)
	defer closeApp(t, a)

	a.Start(context.Background())
	a.Cart.AddLine("klepon", cartdomain.Variant{}, 2)

	clk.Advance(15 * time.Minute)
	assert.True(t, a.Cart.Snapshot().ReminderSent)
	assert.Equal(t, reminderdomain.PhaseIdle, a.Reminder.Phase())
}

func TestCartSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	clk := clock.NewFake(t0)

	first := open(t, cfg, clk)
	first.Start(context.Background())
	first.Cart.AddLine("tumpeng-mini", cartdomain.Variant{}, 2)
	first.Cart.AddLine("klepon", cartdomain.Variant{}, 120)
	closeApp(t, first)

	clk.Set(t0.Add(5 * time.Minute))
	second := open(t, cfg, clk)
	defer closeApp(t, second)

	state := second.Start(context.Background())
	require.Equal(t, 2, state.LineCount())
	assert.Equal(t, 101, state.UnitCount())
	assert.True(t, t0.Equal(*state.LastMutatedAt))

	deadline, armed := second.Reminder.Deadline()
	require.True(t, armed)
	assert.Equal(t, t0.Add(15*time.Minute), deadline)

	totals, err := second.Cart.Totals(context.Background(), second.Resolver)
	require.NoError(t, err)
	assert.Equal(t, int64(2*55000+99*28000), totals.Amount)
	assert.Empty(t, totals.Missing)
}

func TestReminderSentSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	clk := clock.NewFake(t0)

	first := open(t, cfg, clk)
	first.Start(context.Background())
	first.Cart.AddLine("klepon", cartdomain.Variant{}, 1)
	clk.Advance(15 * time.Minute)
	require.True(t, first.Cart.Snapshot().ReminderSent)
	closeApp(t, first)

	clk.Advance(time.Hour)
	second := open(t, cfg, clk)
	defer closeApp(t, second)

	state := second.Start(context.Background())
	assert.True(t, state.ReminderSent)
	assert.Equal(t, reminderdomain.PhaseIdle, second.Reminder.Phase())
}

func TestCheckoutThroughTheWiredApp(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	cfg.Shop.WhatsAppNumber = "6281200000000"
	clk := clock.NewFake(t0)

	a := open(t, cfg, clk)
	defer closeApp(t, a)
	a.Start(context.Background())

	a.Cart.AddLine("snack-box", cartdomain.Variant{}, 20)
	receipt, err := a.Checkout.Complete(context.Background(), checkoutdomain.Customer{Name: "Rina", Phone: "0813"})
	require.NoError(t, err)
	assert.Contains(t, receipt.URL, "https://wa.me/6281200000000?text=")
	assert.True(t, a.Cart.Snapshot().IsEmpty())
	assert.Equal(t, reminderdomain.PhaseIdle, a.Reminder.Phase())

	order, err := a.Orders.GetOrder(context.Background(), receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(700000), order.TotalAmount)
}

func TestNoStorageStillWorks(t *testing.T) {
	a := open(t, testConfig(t, "none"), clock.NewFake(t0))
	defer closeApp(t, a)

	state := a.Start(context.Background())
	assert.True(t, state.IsEmpty())

	a.Cart.AddLine("klepon", cartdomain.Variant{}, 1)
	assert.Equal(t, 1, a.Cart.Snapshot().UnitCount())

	products, err := a.Catalog.Search(context.Background(), "tampah")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestUnknownNotifier(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Notifier = "pigeon"
	_, err := New(context.Background(), cfg, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	assert.Error(t, err)
}
