// Package storefront assembles the cart, reminder, catalog, order and
// checkout contexts from configuration.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	cartadapter "github.com/dwikikusuma/storefront-cart/internal/cart/infra/adapter"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/storage"

	catalogapp "github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	catalogmemory "github.com/dwikikusuma/storefront-cart/internal/catalog/infra/memory"
	catalogsqlite "github.com/dwikikusuma/storefront-cart/internal/catalog/infra/sqlite"

	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/storefront-cart/internal/checkout/infra/adapter"

	orderapp "github.com/dwikikusuma/storefront-cart/internal/order/app"
	ordermemory "github.com/dwikikusuma/storefront-cart/internal/order/infra/memory"
	ordersqlite "github.com/dwikikusuma/storefront-cart/internal/order/infra/sqlite"

	reminderapp "github.com/dwikikusuma/storefront-cart/internal/reminder/app"
	reminderdomain "github.com/dwikikusuma/storefront-cart/internal/reminder/domain"
	"github.com/dwikikusuma/storefront-cart/internal/reminder/infra/notify"

	"github.com/dwikikusuma/storefront-cart/pkg/clock"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/dwikikusuma/storefront-cart/pkg/sqlite"
)

type Options struct {
	Clock  clock.Clock
	Logger *slog.Logger
}

// App is one customer's storefront session: a cart with its reminder,
// and the catalog and checkout around it.
type App struct {
	Cart        *cartapp.Store
	Persistence *cartadapter.Persistence
	Reminder    *reminderapp.Scheduler
	Resolver    *cartadapter.CatalogResolver
	Catalog     *catalogapp.Service
	Orders      *orderapp.Service
	Checkout    *checkoutapp.Service

	log      *slog.Logger
	listener clickListener
	closers  []io.Closer
	stop     context.CancelFunc
	wg       sync.WaitGroup
}

type clickListener interface {
	Listen(ctx context.Context, onClick func(reminderdomain.RoutePayload)) error
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	log := opts.Logger
	a := &App{log: log}

	notifier, err := a.notifier(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	limits := cartdomain.Limits{MaxQuantity: cfg.Cart.MaxQuantity}

	kv, kvCloser := storage.Open(ctx, storage.Config{
		Backend:    cfg.Storage.Backend,
		SQLitePath: cfg.Storage.SQLitePath,
		RedisURL:   cfg.Storage.RedisURL,
		RedisTTL:   cfg.Storage.RedisTTL,
		KeyPrefix:  "storefront:",
	}, log)
	a.closers = append(a.closers, kvCloser)

	a.Persistence = cartadapter.NewPersistence(kv, cartadapter.PersistenceOptions{
		Namespace: cfg.Cart.Namespace,
		Limits:    limits,
		Logger:    log,
	})
	a.Cart = cartapp.NewStore(a.Persistence, cartapp.Options{
		Limits: limits,
		Clock:  opts.Clock,
		Logger: log,
	})

	a.Reminder = reminderapp.NewScheduler(a.Cart, a.Persistence, notifier, reminderapp.Options{
		IdleWindow:   cfg.Cart.IdleWindow,
		Notification: reminderdomain.CartReminder(cfg.Cart.Namespace + "-cart"),
		Clock:        opts.Clock,
		Logger:       log,
	})
	a.Cart.AddObserver(a.Reminder)

	productRepo, orderRepo := a.repos(ctx, cfg, log)

	a.Catalog = catalogapp.NewService(productRepo)
	a.Resolver = cartadapter.NewCatalogResolver(a.Catalog)
	a.Orders = orderapp.NewService(orderRepo)

	cartReader := checkoutadapter.NewCartStoreReader(a.Cart)
	a.Checkout = checkoutapp.NewService(
		cartReader,
		checkoutadapter.NewResolverPriceReader(a.Resolver),
		checkoutadapter.NewOrderServicePlacer(a.Orders),
		cartReader,
		checkoutapp.Options{
			ShopName:       cfg.Shop.Name,
			WhatsAppNumber: cfg.Shop.WhatsAppNumber,
			Logger:         log,
		},
	)

	return a, nil
}

// Start rehydrates the cart and evaluates the reminder for it. When the
// notifier reports clicks, they are routed until ctx is done.
func (a *App) Start(ctx context.Context) cartdomain.CartState {
	state, restored := a.Cart.Restore(ctx)
	a.log.Info("cart ready",
		slog.Bool("restored", restored),
		slog.Int("lines", state.LineCount()),
		slog.Int("units", state.UnitCount()),
	)
	a.Reminder.Start(ctx, state)

	if a.listener != nil {
		listenCtx, stop := context.WithCancel(ctx)
		a.stop = stop
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.listener.Listen(listenCtx, a.Reminder.HandleClick); err != nil {
				a.log.Warn("reminder click listener stopped", slog.Any("err", err))
			}
		}()
	}
	return state
}

// Close stops the reminder, flushes the cart and releases storage.
func (a *App) Close(ctx context.Context) error {
	a.Reminder.Stop()
	if a.stop != nil {
		a.stop()
	}
	a.wg.Wait()
	err := a.Persistence.Close(ctx)
	return errors.Join(err, a.closeAll())
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) notifier(ctx context.Context, cfg config.Config, log *slog.Logger) (reminderapp.Notifier, error) {
	switch cfg.Notifier {
	case "none":
		return notify.Unsupported{}, nil
	case "log", "":
		return notify.NewLog(log), nil
	case "redis":
		client, err := storage.Connect(ctx, cfg.Storage.RedisURL)
		if err != nil {
			log.Warn("redis notifier misconfigured, reminders disabled", slog.Any("err", err))
			return notify.Unsupported{}, nil
		}
		a.closers = append(a.closers, client)
		n := notify.NewRedis(client, cfg.Cart.Namespace, log)
		a.listener = n
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

// repos keeps products and orders next to the cart when it lives in
// SQLite, and in memory otherwise.
func (a *App) repos(ctx context.Context, cfg config.Config, log *slog.Logger) (catalogapp.ProductRepo, orderapp.OrderRepo) {
	memoryRepos := func() (catalogapp.ProductRepo, orderapp.OrderRepo) {
		return catalogmemory.NewProductRepo(catalogmemory.Tampah()...), ordermemory.NewOrderRepo()
	}
	if cfg.Storage.Backend != storage.BackendSQLite {
		return memoryRepos()
	}

	db, err := sqlite.Open(sqlite.Config{Path: cfg.Storage.SQLitePath})
	if err != nil {
		log.Warn("catalog db unavailable, using in-memory catalog", slog.Any("err", err))
		return memoryRepos()
	}

	products, err := catalogsqlite.NewProductRepo(ctx, db)
	if err == nil {
		err = products.Seed(ctx, catalogmemory.Tampah()...)
	}
	var orders *ordersqlite.OrderRepo
	if err == nil {
		orders, err = ordersqlite.NewOrderRepo(ctx, db)
	}
	if err != nil {
		db.Close()
		log.Warn("catalog db init failed, using in-memory catalog", slog.Any("err", err))
		return memoryRepos()
	}

	a.closers = append(a.closers, db)
	return products, orders
}
