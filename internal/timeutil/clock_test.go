package timeutil

import (
	"testing"
	"time"
)

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	before := time.Now()
	now := c.Now()
	if now.Before(before) {
		t.Errorf("RealClock.Now() = %v is before %v", now, before)
	}
	if d := c.Since(before); d < 0 {
		t.Errorf("RealClock.Since() = %v, want >= 0", d)
	}
}

func TestMockClock_SetAndAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	if got := c.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}
	if got := c.Now(); !got.Equal(start) {
		t.Errorf("Now() without step moved to %v", got)
	}

	c.Advance(90 * time.Second)
	if got := c.Since(start); got != 90*time.Second {
		t.Errorf("Since() = %v, want 90s", got)
	}

	later := start.Add(time.Hour)
	c.Set(later)
	if got := c.Now(); !got.Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", got, later)
	}
}

func TestSteppingClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSteppingClock(start, 10*time.Millisecond)

	t0 := c.Now()
	t1 := c.Now()
	if d := t1.Sub(t0); d != 10*time.Millisecond {
		t.Errorf("step between Now calls = %v, want 10ms", d)
	}
	if d := c.Since(t0); d != 20*time.Millisecond {
		t.Errorf("Since(first) = %v, want 20ms", d)
	}
	if d := c.Since(t0); d != 20*time.Millisecond {
		t.Errorf("Since must not step, got %v", d)
	}
}
