// Package clock abstracts the source of "now" so every date-relative
// computation (overdue windows, activity recency, review scheduling) is
// deterministic under test.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall-clock implementation.
func System() Clock { return systemClock{} }

// Fixed is a Clock pinned to a settable instant.
type Fixed struct {
	t time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t} }

func (f *Fixed) Now() time.Time { return f.t }

// Advance moves the fixed instant forward by d.
func (f *Fixed) Advance(d time.Duration) { f.t = f.t.Add(d) }

// Set pins the fixed instant to t.
func (f *Fixed) Set(t time.Time) { f.t = t }
