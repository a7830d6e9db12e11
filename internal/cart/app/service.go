package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/pkg/clock"
)

type Options struct {
	Limits domain.Limits
	Clock  clock.Clock
	Logger *slog.Logger
}

// Store is the single source of truth for what the customer intends to buy.
//
// dispatch serializes whole mutations, persistence hand-off included, so
// observers see states in the order they were produced. Observers must not
// mutate the store from inside Observe.
type Store struct {
	dispatch  sync.Mutex
	mu        sync.Mutex
	state     domain.CartState
	persist   Persister
	observers []Observer

	limits domain.Limits
	clock  clock.Clock
	log    *slog.Logger
}

func NewStore(persist Persister, opts Options) *Store {
	if persist == nil {
		persist = nopPersister{}
	}
	if opts.Limits.MaxQuantity <= 0 {
		opts.Limits = domain.DefaultLimits()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		persist: persist,
		limits:  opts.Limits,
		clock:   opts.Clock,
		log:     opts.Logger,
	}
}

// AddObserver registers o to be invoked after every mutation.
// Observers run in registration order, outside the store lock.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Restore replaces the in-memory state with the persisted one, if any.
// It reports whether anything was rehydrated. Observers are not invoked;
// the reminder scheduler is started explicitly with the returned state.
func (s *Store) Restore(ctx context.Context) (domain.CartState, bool) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	loaded := s.persist.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if loaded == nil {
		s.state = domain.CartState{}
		return s.state.Clone(), false
	}
	s.state = loaded.Clone()
	s.log.Debug("cart restored", slog.Int("lines", s.state.LineCount()))
	return s.state.Clone(), true
}

func (s *Store) Snapshot() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Limits() domain.Limits {
	return s.limits
}

func (s *Store) AddLine(productID string, v domain.Variant, delta int) domain.CartState {
	return s.mutate(func(st *domain.CartState) {
		st.AddLine(productID, v, delta, s.clock.Now(), s.limits)
	})
}

func (s *Store) RemoveLine(key domain.Key) domain.CartState {
	return s.mutate(func(st *domain.CartState) {
		st.RemoveLine(key, s.clock.Now())
	})
}

func (s *Store) SetQuantity(key domain.Key, quantity int) domain.CartState {
	return s.mutate(func(st *domain.CartState) {
		st.SetQuantity(key, quantity, s.clock.Now(), s.limits)
	})
}

func (s *Store) Clear() domain.CartState {
	return s.mutate(func(st *domain.CartState) {
		st.Clear()
	})
}

// MarkReminderSent records that the abandonment reminder was delivered.
func (s *Store) MarkReminderSent() {
	s.mutate(func(st *domain.CartState) {
		st.MarkReminderSent()
	})
}

// MarkReminderSentFor marks the reminder as sent only if the cart has not
// changed since lastMutatedAt. It reports whether the flag was set.
func (s *Store) MarkReminderSentFor(lastMutatedAt time.Time) bool {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	st := &s.state
	if st.IsEmpty() || st.LastMutatedAt == nil || !st.LastMutatedAt.Equal(lastMutatedAt) {
		s.mu.Unlock()
		return false
	}
	st.MarkReminderSent()
	snap, observers := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap, observers)
	return true
}

// CompleteCheckout empties the cart after an order was submitted and
// drops the separately stored reminder flag.
func (s *Store) CompleteCheckout() {
	s.Clear()
	s.persist.ClearReminderSent()
}

// SettleOrdered takes the ordered quantities out of the cart. Anything
// added after the order was priced stays; when nothing is left it behaves
// like CompleteCheckout.
func (s *Store) SettleOrdered(ordered []domain.CartLine) domain.CartState {
	snap := s.mutate(func(st *domain.CartState) {
		now := s.clock.Now()
		for _, o := range ordered {
			ln, ok := st.Line(o.Key)
			if !ok {
				continue
			}
			st.SetQuantity(o.Key, ln.Quantity-o.Quantity, now, s.limits)
		}
	})
	if snap.IsEmpty() {
		s.persist.ClearReminderSent()
	}
	return snap
}

func (s *Store) mutate(fn func(st *domain.CartState)) domain.CartState {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	fn(&s.state)
	snap, observers := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap, observers)
	return snap
}

func (s *Store) snapshotLocked() (domain.CartState, []Observer) {
	return s.state.Clone(), append([]Observer(nil), s.observers...)
}

func (s *Store) publish(snap domain.CartState, observers []Observer) {
	s.persist.Save(snap)
	for _, o := range observers {
		o.Observe(snap.Clone())
	}
}

type nopPersister struct{}

func (nopPersister) Save(domain.CartState)                {}
func (nopPersister) Load(context.Context) *domain.CartState { return nil }
func (nopPersister) ClearReminderSent()                     {}
