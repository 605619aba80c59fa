// Package clock abstracts time for deterministic tests. Best-time
// tie-breaks depend on submission timestamps, so services never call
// time.Now directly.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// Real is a Clock backed by the system clock
type Real struct{}

// New creates a system-clock Clock
func New() *Real {
	return &Real{}
}

func (*Real) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock that returns a controllable time, for tests
type Fixed struct {
	Time time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Time
}

// Advance moves the fixed clock forward
func (f *Fixed) Advance(d time.Duration) {
	f.Time = f.Time.Add(d)
}
