package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"
)

// Clock is the time source for anything that schedules work.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

var wall = bclock.New()

type Real struct{}

func (Real) Now() time.Time { return wall.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return wall.AfterFunc(d, f)
}
