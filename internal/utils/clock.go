package utils

import (
	"time"

	"toolshed-backend/internal/domain"
)

// Clock supplies the current time so date-dependent rules can be tested with a
// fixed "now".
type Clock interface {
	Now() time.Time
	Today() domain.Date
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a Clock reading the wall clock. Today is evaluated in
// loc, which defaults to UTC.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }

func (c systemClock) Today() domain.Date { return domain.DateOf(c.Now()) }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func NewFixedClock(today domain.Date) *FixedClock {
	return &FixedClock{At: today.Time().Add(12 * time.Hour)}
}

func (c *FixedClock) Now() time.Time { return c.At }

func (c *FixedClock) Today() domain.Date { return domain.DateOf(c.At) }
