package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/reminder/domain"
	"github.com/dwikikusuma/storefront-cart/pkg/clock"
)

const defaultNotifyTimeout = 10 * time.Second

type Options struct {
	IdleWindow    time.Duration
	Notification  domain.Notification
	NotifyTimeout time.Duration
	Clock         clock.Clock
	Logger        *slog.Logger
}

// Scheduler fires at most one abandonment reminder per idle window.
//
// It owns a single timer. Every re-evaluation cancels the previous timer
// and bumps gen before arming a new one; a callback whose gen is stale
// returns without doing anything, so a cancelled timer never notifies.
type Scheduler struct {
	cart     CartMarker
	flags    FlagStore
	notifier Notifier

	window  time.Duration
	message domain.Notification
	timeout time.Duration
	clock   clock.Clock
	log     *slog.Logger

	mu       sync.Mutex
	timer    clock.Timer
	gen      uint64
	phase    domain.Phase
	deadline time.Time

	signals chan domain.RouteSignal
}

func NewScheduler(cart CartMarker, flags FlagStore, notifier Notifier, opts Options) *Scheduler {
	if opts.IdleWindow <= 0 {
		opts.IdleWindow = domain.DefaultIdleWindow
	}
	if opts.Notification.Title == "" {
		opts.Notification = domain.CartReminder("storefront-cart")
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Scheduler{
		cart:     cart,
		flags:    flags,
		notifier: notifier,
		window:   opts.IdleWindow,
		message:  opts.Notification,
		timeout:  opts.NotifyTimeout,
		clock:    opts.Clock,
		log:      opts.Logger.With(slog.String("component", "cart-reminder")),
		phase:    domain.PhaseIdle,
		signals:  make(chan domain.RouteSignal, 1),
	}
}

// Start evaluates a freshly rehydrated cart. Permission is asked for up
// front so the prompt does not appear at reminder time.
func (s *Scheduler) Start(ctx context.Context, state cartdomain.CartState) {
	if s.eligible(state) {
		if perm, err := s.notifier.RequestPermission(ctx); err != nil {
			s.log.Debug("notification permission request failed", slog.Any("err", err))
		} else {
			s.log.Debug("notification permission", slog.String("permission", string(perm)))
		}
	}
	s.Observe(state)
}

// Observe re-evaluates the timer after a cart mutation.
func (s *Scheduler) Observe(state cartdomain.CartState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	if !s.eligible(state) {
		return
	}

	armedFor := *state.LastMutatedAt
	delay := s.window - s.clock.Now().Sub(armedFor)
	if delay < 0 {
		delay = 0
	}

	gen := s.gen
	s.phase = domain.PhaseArmed
	s.deadline = armedFor.Add(s.window)
	s.timer = s.clock.AfterFunc(delay, func() { s.fire(gen, armedFor) })

	s.log.Debug("reminder armed", slog.Duration("delay", delay), slog.Time("deadline", s.deadline))
}

// Stop cancels any pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Deadline reports when the armed reminder is due.
func (s *Scheduler) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, s.phase == domain.PhaseArmed
}

// Signals carries navigation requests produced by reminder clicks.
func (s *Scheduler) Signals() <-chan domain.RouteSignal {
	return s.signals
}

// HandleClick is called when a delivered reminder is interacted with.
// The signal is dropped if nobody has drained the previous one.
func (s *Scheduler) HandleClick(payload domain.RoutePayload) {
	target := payload.URL
	if target == "" {
		target = domain.CartPath
	}
	sig := domain.RouteSignal{Type: domain.SignalReminderClick, Target: target}
	select {
	case s.signals <- sig:
	default:
		s.log.Debug("route signal dropped", slog.String("target", target))
	}
}

func (s *Scheduler) eligible(state cartdomain.CartState) bool {
	return !state.IsEmpty() && !state.ReminderSent && state.LastMutatedAt != nil
}

func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.phase = domain.PhaseIdle
	s.deadline = time.Time{}
}

func (s *Scheduler) fire(gen uint64, armedFor time.Time) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.phase = domain.PhaseIdle
	s.deadline = time.Time{}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	perm, err := s.notifier.RequestPermission(ctx)
	if err != nil || perm != domain.PermissionGranted {
		s.log.Debug("reminder skipped, notifications not permitted",
			slog.String("permission", string(perm)), slog.Any("err", err))
		return
	}

	res, err := s.notifier.Show(ctx, s.message)
	if err != nil || res != domain.Delivered {
		s.log.Debug("reminder not delivered", slog.String("result", string(res)), slog.Any("err", err))
		return
	}

	if !s.cart.MarkReminderSentFor(armedFor) {
		s.log.Debug("cart changed while the reminder was showing")
		return
	}
	s.flags.SaveReminderSent(armedFor)
	s.log.Info("abandoned cart reminder delivered", slog.Time("last_mutated_at", armedFor))
}
