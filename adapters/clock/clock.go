// Package clock provides Clock implementations.
package clock

import (
	"sync"
	"time"
)

// Real reads the system clock. When Location is set, times are returned in
// that location so that calendar arithmetic happens in the billing timezone.
type Real struct {
	Location *time.Location
}

// Now returns the current time.
func (r Real) Now() time.Time {
	now := time.Now()
	if r.Location != nil {
		return now.In(r.Location)
	}
	return now
}

// Fake is a settable clock for tests and billing previews.
type Fake struct {
	mu      sync.RWMutex
	current time.Time
}

// NewFake creates a fake clock set to t.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// NewFakeDate creates a fake clock at midnight UTC of the given date.
func NewFakeDate(year int, month time.Month, day int) *Fake {
	return NewFake(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = t
}

// Advance moves the clock by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// AdvanceDays moves the clock by whole calendar days, keeping the wall-clock
// time across DST changes.
func (f *Fake) AdvanceDays(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.AddDate(0, 0, n)
}
