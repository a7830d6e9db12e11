package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewKey(t *testing.T) {
	t.Run("plain product", func(t *testing.T) {
		assert.Equal(t, Key("klepon"), NewKey("klepon", Variant{}))
	})

	t.Run("variant tags qualify the key", func(t *testing.T) {
		m := NewKey("tee", Variant{Size: "M"})
		l := NewKey("tee", Variant{Size: "L"})
		assert.NotEqual(t, m, l)
		assert.Equal(t, Key("tee|size=M|color=black"), NewKey("tee", Variant{Size: "M", Color: "black"}))
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		assert.Equal(t, NewKey("tee", Variant{Size: "M"}), NewKey(" tee ", Variant{Size: " M"}))
	})

	t.Run("empty product id panics", func(t *testing.T) {
		assert.Panics(t, func() { NewKey("  ", Variant{}) })
	})
}

func TestAddLineMergesByKey(t *testing.T) {
	lim := DefaultLimits()

	for _, n := range []int{1, 2, 50, 99, 100, 150} {
		var s CartState
		for i := 0; i < n; i++ {
			s.AddLine("A", Variant{}, 1, t0, lim)
		}
		require.Len(t, s.Lines, 1, "n=%d", n)
		want := n
		if want > 99 {
			want = 99
		}
		assert.Equal(t, want, s.Lines[0].Quantity, "n=%d", n)
	}
}

func TestAddLineClampsDelta(t *testing.T) {
	lim := DefaultLimits()

	t.Run("non-positive delta inserts one", func(t *testing.T) {
		var s CartState
		s.AddLine("A", Variant{}, -5, t0, lim)
		require.Len(t, s.Lines, 1)
		assert.Equal(t, 1, s.Lines[0].Quantity)
	})

	t.Run("negative delta on existing line floors at one", func(t *testing.T) {
		var s CartState
		s.AddLine("A", Variant{}, 3, t0, lim)
		s.AddLine("A", Variant{}, -10, t0, lim)
		assert.Equal(t, 1, s.Lines[0].Quantity)
	})

	t.Run("custom max", func(t *testing.T) {
		var s CartState
		s.AddLine("A", Variant{}, 40, t0, Limits{MaxQuantity: 10})
		assert.Equal(t, 10, s.Lines[0].Quantity)
	})
}

func TestSetQuantity(t *testing.T) {
	lim := DefaultLimits()
	key := NewKey("A", Variant{})

	t.Run("above max stores max", func(t *testing.T) {
		for _, q := range []int{100, 1000, 1 << 30} {
			var s CartState
			s.AddLine("A", Variant{}, 1, t0, lim)
			s.SetQuantity(key, q, t0, lim)
			assert.Equal(t, 99, s.Lines[0].Quantity)
		}
	})

	t.Run("zero or below removes", func(t *testing.T) {
		for _, q := range []int{0, -1, -99} {
			var s CartState
			s.AddLine("A", Variant{}, 1, t0, lim)
			s.SetQuantity(key, q, t0.Add(time.Minute), lim)
			assert.True(t, s.IsEmpty())
			assert.Nil(t, s.LastMutatedAt)
		}
	})

	t.Run("replaces quantity and bumps timestamp", func(t *testing.T) {
		var s CartState
		s.AddLine("A", Variant{}, 1, t0, lim)
		s.MarkReminderSent()
		later := t0.Add(5 * time.Minute)
		s.SetQuantity(key, 7, later, lim)
		assert.Equal(t, 7, s.Lines[0].Quantity)
		assert.Equal(t, later, *s.LastMutatedAt)
		assert.False(t, s.ReminderSent)
	})
}

func TestRemoveLastLineResetsBookkeeping(t *testing.T) {
	lim := DefaultLimits()
	var s CartState
	s.AddLine("A", Variant{}, 2, t0, lim)
	s.MarkReminderSent()
	require.True(t, s.ReminderSent)

	s.RemoveLine(NewKey("A", Variant{}), t0.Add(time.Minute))

	assert.True(t, s.IsEmpty())
	assert.False(t, s.ReminderSent)
	assert.Nil(t, s.LastMutatedAt)
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	lim := DefaultLimits()
	var s CartState
	s.AddLine("A", Variant{}, 2, t0, lim)
	s.RemoveLine(NewKey("missing", Variant{}), t0)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 2, s.Lines[0].Quantity)
}

func TestMarkReminderSentOnEmptyCartIsIgnored(t *testing.T) {
	var s CartState
	s.MarkReminderSent()
	assert.False(t, s.ReminderSent)
}

func TestScenarioVariantsAndRemoval(t *testing.T) {
	lim := DefaultLimits()
	var s CartState

	s.AddLine("A", Variant{}, 1, t0, lim)
	s.AddLine("A", Variant{}, 2, t0, lim)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 3, s.Lines[0].Quantity)
	assert.Equal(t, 3, s.UnitCount())

	s.RemoveLine(NewKey("A", Variant{}), t0)
	assert.True(t, s.IsEmpty())
	assert.False(t, s.ReminderSent)

	s.AddLine("B", Variant{Size: "M"}, 1, t0, lim)
	s.AddLine("B", Variant{Size: "L"}, 1, t0, lim)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, "B", s.Lines[0].ProductID)
	assert.Equal(t, "B", s.Lines[1].ProductID)
	assert.Equal(t, 2, s.LineCount())
}

func TestClone(t *testing.T) {
	lim := DefaultLimits()
	var s CartState
	s.AddLine("A", Variant{}, 1, t0, lim)

	c := s.Clone()
	c.Lines[0].Quantity = 50
	*c.LastMutatedAt = t0.Add(time.Hour)

	assert.Equal(t, 1, s.Lines[0].Quantity)
	assert.Equal(t, t0, *s.LastMutatedAt)
}

func TestViewsOnReturnedState(t *testing.T) {
	lim := DefaultLimits()
	build := func() CartState {
		var s CartState
		s.AddLine("A", Variant{}, 2, t0, lim)
		s.AddLine("B", Variant{Size: "M"}, 3, t0, lim)
		return s
	}

	assert.False(t, build().IsEmpty())
	assert.Equal(t, 2, build().LineCount())
	assert.Equal(t, 5, build().UnitCount())
	ln, ok := build().Line(NewKey("B", Variant{Size: "M"}))
	require.True(t, ok)
	assert.Equal(t, 3, ln.Quantity)
	assert.NoError(t, build().Validate(lim))
	assert.True(t, CartState{}.IsEmpty())
}

func TestValidate(t *testing.T) {
	lim := DefaultLimits()
	ts := t0

	t.Run("valid", func(t *testing.T) {
		var s CartState
		s.AddLine("A", Variant{Color: "red"}, 4, t0, lim)
		assert.NoError(t, s.Validate(lim))
	})

	t.Run("duplicate keys", func(t *testing.T) {
		s := CartState{LastMutatedAt: &ts, Lines: []CartLine{
			{Key: "A", ProductID: "A", Quantity: 1},
			{Key: "A", ProductID: "A", Quantity: 2},
		}}
		assert.ErrorIs(t, s.Validate(lim), ErrInvalidState)
	})

	t.Run("quantity out of range", func(t *testing.T) {
		s := CartState{LastMutatedAt: &ts, Lines: []CartLine{{Key: "A", ProductID: "A", Quantity: 0}}}
		assert.ErrorIs(t, s.Validate(lim), ErrInvalidState)
	})

	t.Run("empty cart with reminder flag", func(t *testing.T) {
		s := CartState{ReminderSent: true}
		assert.ErrorIs(t, s.Validate(lim), ErrInvalidState)
	})

	t.Run("non-empty cart without timestamp", func(t *testing.T) {
		s := CartState{Lines: []CartLine{{Key: "A", ProductID: "A", Quantity: 1}}}
		assert.ErrorIs(t, s.Validate(lim), ErrInvalidState)
	})
}
