package clock

import (
	"sort"
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
)

// Fake is a manually advanced Clock over bclock.Mock. The mock decides
// which timers are due; their callbacks run synchronously inside Advance
// and Set, in deadline order, with the clock at the moment they came due.
type Fake struct {
	mock *bclock.Mock

	mu     sync.Mutex
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	f   *Fake
	t   *bclock.Timer
	at  time.Time
	seq int
	fn  func()
}

func NewFake(now time.Time) *Fake {
	m := bclock.NewMock()
	m.Set(now)
	return &Fake{mock: m}
}

func (c *Fake) Now() time.Time {
	return c.mock.Now()
}

func (c *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{f: c, at: c.mock.Now().Add(d), seq: c.seq, fn: fn}
	t.t = c.mock.Timer(d)
	c.timers = append(c.timers, t)
	return t
}

// Pending reports how many timers are still waiting to fire.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Fake) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// Set moves the clock to now, running every callback due on the way.
func (c *Fake) Set(now time.Time) {
	for {
		t := c.nextDue(now)
		if t == nil {
			break
		}
		at := t.at
		if cur := c.mock.Now(); at.Before(cur) {
			at = cur
		}
		c.mock.Set(at)
		<-t.t.C
		t.fn()
	}
	c.mock.Set(now)
}

func (c *Fake) nextDue(target time.Time) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.Slice(c.timers, func(i, j int) bool {
		if c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].at.Before(c.timers[j].at)
	})
	if len(c.timers) == 0 || c.timers[0].at.After(target) {
		return nil
	}
	t := c.timers[0]
	c.timers = c.timers[1:]
	return t
}

func (t *fakeTimer) Stop() bool {
	c := t.f
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.timers {
		if x == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			t.t.Stop()
			return true
		}
	}
	return false
}
