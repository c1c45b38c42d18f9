package clock_test

import (
	"testing"
	"time"

	"github.com/artpar/homekeep/adapters/clock"
	"github.com/artpar/homekeep/ports"
)

var (
	_ ports.Clock = clock.Real{}
	_ ports.Clock = (*clock.Fake)(nil)
)

func TestReal_Now(t *testing.T) {
	c := clock.Real{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", got, before, after)
	}
}

func TestReal_Now_Location(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	c := clock.Real{Location: loc}

	if got := c.Now().Location(); got != loc {
		t.Errorf("Location() = %v, want %v", got, loc)
	}
}

func TestFake_NewFakeDate(t *testing.T) {
	c := clock.NewFakeDate(2025, time.March, 5)

	want := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}

func TestFake_Set(t *testing.T) {
	c := clock.NewFakeDate(2025, time.January, 1)

	next := time.Date(2025, 12, 25, 10, 30, 0, 0, time.UTC)
	c.Set(next)

	if got := c.Now(); !got.Equal(next) {
		t.Errorf("Now() = %v, want %v", got, next)
	}
}

func TestFake_Advance(t *testing.T) {
	initial := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := clock.NewFake(initial)

	c.Advance(time.Hour)
	c.Advance(-30 * time.Minute)

	want := initial.Add(30 * time.Minute)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}

func TestFake_AdvanceDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		days  int
		want  time.Time
	}{
		{"within month", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 7, time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)},
		{"across february", time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), 7, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"leap year", time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC), 7, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := clock.NewFake(tt.start)
			c.AdvanceDays(tt.days)
			if got := c.Now(); !got.Equal(tt.want) {
				t.Errorf("Now() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFake_ConcurrentAccess(t *testing.T) {
	c := clock.NewFakeDate(2025, time.January, 1)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_ = c.Now()
				c.AdvanceDays(1)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1000)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}
