package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

const (
	payloadVersion      = 1
	defaultWriteTimeout = 5 * time.Second
)

// Storage is a device-scoped key/value store. Implementations live in
// internal/cart/infra/storage.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type PersistenceOptions struct {
	Namespace    string
	Limits       domain.Limits
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// Persistence serializes the cart to Storage. Saves are handed to a single
// background writer that only ever writes the latest snapshot.
type Persistence struct {
	storage Storage
	key     string
	flagKey string
	limits  domain.Limits
	timeout time.Duration
	log     *slog.Logger

	mu      sync.Mutex
	pending *domain.CartState
	closed  bool

	kick  chan struct{}
	flush chan chan struct{}
	quit  chan struct{}
	done  chan struct{}
}

func NewPersistence(storage Storage, opts PersistenceOptions) *Persistence {
	if opts.Namespace == "" {
		opts.Namespace = "storefront"
	}
	if opts.Limits.MaxQuantity <= 0 {
		opts.Limits = domain.DefaultLimits()
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	p := &Persistence{
		storage: storage,
		key:     opts.Namespace + ":cart",
		flagKey: opts.Namespace + ":cart-reminder-sent",
		limits:  opts.Limits,
		timeout: opts.WriteTimeout,
		log:     opts.Logger.With(slog.String("component", "cart-persistence")),
		kick:    make(chan struct{}, 1),
		flush:   make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Persistence) Key() string { return p.key }

// Save queues state for writing and returns immediately.
func (p *Persistence) Save(state domain.CartState) {
	snap := state.Clone()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.log.Debug("save after close dropped")
		return
	}
	p.pending = &snap
	p.mu.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Flush blocks until every Save issued before the call has been written.
func (p *Persistence) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case p.flush <- ack:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending snapshot and stops the writer.
func (p *Persistence) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.quit)
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persistence) run() {
	defer close(p.done)
	for {
		select {
		case <-p.kick:
			p.writePending()
		case ack := <-p.flush:
			p.writePending()
			close(ack)
		case <-p.quit:
			p.writePending()
			return
		}
	}
}

func (p *Persistence) writePending() {
	p.mu.Lock()
	snap := p.pending
	p.pending = nil
	p.mu.Unlock()
	if snap == nil {
		return
	}

	raw, err := encodeState(*snap)
	if err != nil {
		p.log.Warn("cart encode failed", slog.Any("err", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.storage.Set(ctx, p.key, string(raw)); err != nil {
		p.log.Warn("cart save failed", slog.String("key", p.key), slog.Any("err", err))
	}
}

// Load returns nil when nothing usable is stored.
func (p *Persistence) Load(ctx context.Context) *domain.CartState {
	raw, ok, err := p.storage.Get(ctx, p.key)
	if err != nil {
		p.log.Warn("cart load failed", slog.String("key", p.key), slog.Any("err", err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	state, err := decodeState([]byte(raw), p.limits)
	if err != nil {
		p.log.Warn("stored cart discarded", slog.String("key", p.key), slog.Any("err", err))
		return nil
	}

	if !state.IsEmpty() && !state.ReminderSent && p.reminderSentFor(ctx, *state.LastMutatedAt) {
		state.ReminderSent = true
	}
	return &state
}

// SaveReminderSent records that the reminder for the idle window ending
// at lastMutatedAt was delivered. It is written directly, outside the
// background writer, so it survives a failed cart write.
func (p *Persistence) SaveReminderSent(lastMutatedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.storage.Set(ctx, p.flagKey, lastMutatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		p.log.Warn("reminder flag save failed", slog.Any("err", err))
	}
}

func (p *Persistence) ClearReminderSent() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.storage.Remove(ctx, p.flagKey); err != nil {
		p.log.Warn("reminder flag clear failed", slog.Any("err", err))
	}
}

// reminderSentFor reports whether the stored flag belongs to the idle
// window ending at lastMutatedAt. A flag from an older window never matches.
func (p *Persistence) reminderSentFor(ctx context.Context, lastMutatedAt time.Time) bool {
	raw, ok, err := p.storage.Get(ctx, p.flagKey)
	if err != nil {
		p.log.Warn("reminder flag load failed", slog.Any("err", err))
		return false
	}
	if !ok {
		return false
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return false
	}
	return at.Equal(lastMutatedAt)
}

type storedLine struct {
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

type storedCart struct {
	Version       int          `json:"version"`
	Lines         []storedLine `json:"lines"`
	LastMutatedAt *time.Time   `json:"lastMutatedAt"`
	ReminderSent  bool         `json:"reminderSent"`
}

var errUnsupportedVersion = errors.New("unsupported cart payload version")

func encodeState(s domain.CartState) ([]byte, error) {
	out := storedCart{
		Version:       payloadVersion,
		Lines:         make([]storedLine, 0, len(s.Lines)),
		LastMutatedAt: s.LastMutatedAt,
		ReminderSent:  s.ReminderSent,
	}
	for _, ln := range s.Lines {
		out.Lines = append(out.Lines, storedLine{
			ProductID: ln.ProductID,
			Size:      ln.Variant.Size,
			Color:     ln.Variant.Color,
			Quantity:  ln.Quantity,
		})
	}
	return json.Marshal(out)
}

func decodeState(raw []byte, lim domain.Limits) (state domain.CartState, err error) {
	var in storedCart
	if err := json.Unmarshal(raw, &in); err != nil {
		return domain.CartState{}, err
	}
	if in.Version != payloadVersion {
		return domain.CartState{}, errUnsupportedVersion
	}

	// NewKey panics on an empty product id; Validate reports it instead.
	defer func() {
		if r := recover(); r != nil {
			state, err = domain.CartState{}, domain.ErrInvalidState
		}
	}()

	for _, ln := range in.Lines {
		v := domain.Variant{Size: ln.Size, Color: ln.Color}
		state.Lines = append(state.Lines, domain.CartLine{
			Key:       domain.NewKey(ln.ProductID, v),
			ProductID: ln.ProductID,
			Variant:   v,
			Quantity:  ln.Quantity,
		})
	}
	state.LastMutatedAt = in.LastMutatedAt
	state.ReminderSent = in.ReminderSent

	if err := state.Validate(lim); err != nil {
		return domain.CartState{}, err
	}
	return state, nil
}
