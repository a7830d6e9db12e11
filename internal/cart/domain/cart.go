package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultMaxQuantity caps a line when Limits leaves it unset.
const DefaultMaxQuantity = 99

// ErrInvalidState rejects a rehydrated cart that breaks the invariants.
var ErrInvalidState = errors.New("invalid cart state")

// Variant tags a line with optional size/color discriminators.
type Variant struct {
	Size  string
	Color string
}

// IsZero reports whether v carries no size or color.
func (v Variant) IsZero() bool {
	return v.Size == "" && v.Color == ""
}

// Key is the identity of a line: product plus variant tags.
type Key string

// NewKey derives the line key. productID must not be blank; callers taking
// user input check that first.
func NewKey(productID string, v Variant) Key {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		panic("cart: empty product id")
	}

	var b strings.Builder
	b.WriteString(productID)
	if s := strings.TrimSpace(v.Size); s != "" {
		b.WriteString("|size=")
		b.WriteString(s)
	}
	if c := strings.TrimSpace(v.Color); c != "" {
		b.WriteString("|color=")
		b.WriteString(c)
	}
	return Key(b.String())
}

// CartLine is one product variant and its quantity.
type CartLine struct {
	Key       Key
	ProductID string
	Variant   Variant
	Quantity  int
}

// Limits bounds line quantities.
type Limits struct {
	MaxQuantity int
}

func DefaultLimits() Limits {
	return Limits{MaxQuantity: DefaultMaxQuantity}
}

// Clamp pins q to [1, MaxQuantity].
func (l Limits) Clamp(q int) int {
	max := l.MaxQuantity
	if max <= 0 {
		max = DefaultMaxQuantity
	}
	if q < 1 {
		return 1
	}
	if q > max {
		return max
	}
	return q
}

// CartState is the whole client-held cart. Lines keep insertion order.
type CartState struct {
	Lines         []CartLine
	LastMutatedAt *time.Time
	ReminderSent  bool
}

func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s CartState) indexOf(key Key) int {
	for i := range s.Lines {
		if s.Lines[i].Key == key {
			return i
		}
	}
	return -1
}

func (s CartState) Line(key Key) (CartLine, bool) {
	if i := s.indexOf(key); i >= 0 {
		return s.Lines[i], true
	}
	return CartLine{}, false
}

func (s *CartState) AddLine(productID string, v Variant, delta int, now time.Time, lim Limits) {
	key := NewKey(productID, v)
	if i := s.indexOf(key); i >= 0 {
		s.Lines[i].Quantity = lim.Clamp(s.Lines[i].Quantity + delta)
	} else {
		s.Lines = append(s.Lines, CartLine{
			Key:       key,
			ProductID: strings.TrimSpace(productID),
			Variant:   Variant{Size: strings.TrimSpace(v.Size), Color: strings.TrimSpace(v.Color)},
			Quantity:  lim.Clamp(delta),
		})
	}
	s.touch(now)
}

func (s *CartState) RemoveLine(key Key, now time.Time) {
	if i := s.indexOf(key); i >= 0 {
		s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
	}
	s.touch(now)
}

func (s *CartState) SetQuantity(key Key, q int, now time.Time, lim Limits) {
	if q <= 0 {
		s.RemoveLine(key, now)
		return
	}
	if i := s.indexOf(key); i >= 0 {
		s.Lines[i].Quantity = lim.Clamp(q)
	}
	s.touch(now)
}

func (s *CartState) Clear() {
	s.Lines = nil
	s.LastMutatedAt = nil
	s.ReminderSent = false
}

// MarkReminderSent is ignored on an empty cart.
func (s *CartState) MarkReminderSent() {
	if s.IsEmpty() {
		return
	}
	s.ReminderSent = true
}

// touch applies the shared bookkeeping; an empty cart drops its timestamp.
func (s *CartState) touch(now time.Time) {
	s.ReminderSent = false
	if s.IsEmpty() {
		s.Lines = nil
		s.LastMutatedAt = nil
		return
	}
	t := now
	s.LastMutatedAt = &t
}

func (s CartState) LineCount() int {
	return len(s.Lines)
}

func (s CartState) UnitCount() int {
	n := 0
	for _, ln := range s.Lines {
		n += ln.Quantity
	}
	return n
}

func (s CartState) Clone() CartState {
	out := CartState{ReminderSent: s.ReminderSent}
	if len(s.Lines) > 0 {
		out.Lines = make([]CartLine, len(s.Lines))
		copy(out.Lines, s.Lines)
	}
	if s.LastMutatedAt != nil {
		t := *s.LastMutatedAt
		out.LastMutatedAt = &t
	}
	return out
}

// Validate checks a rehydrated state against the cart invariants.
func (s CartState) Validate(lim Limits) error {
	seen := make(map[Key]struct{}, len(s.Lines))
	for i, ln := range s.Lines {
		if strings.TrimSpace(ln.ProductID) == "" {
			return fmt.Errorf("%w: line %d has no product id", ErrInvalidState, i)
		}
		if ln.Key != NewKey(ln.ProductID, ln.Variant) {
			return fmt.Errorf("%w: line %d key mismatch", ErrInvalidState, i)
		}
		if _, dup := seen[ln.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidState, ln.Key)
		}
		seen[ln.Key] = struct{}{}
		if ln.Quantity != lim.Clamp(ln.Quantity) {
			return fmt.Errorf("%w: line %d quantity %d out of range", ErrInvalidState, i, ln.Quantity)
		}
	}
	if s.IsEmpty() && (s.LastMutatedAt != nil || s.ReminderSent) {
		return fmt.Errorf("%w: empty cart carries mutation bookkeeping", ErrInvalidState)
	}
	if !s.IsEmpty() && s.LastMutatedAt == nil {
		return fmt.Errorf("%w: non-empty cart without timestamp", ErrInvalidState)
	}
	return nil
}
