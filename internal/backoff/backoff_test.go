package backoff

import (
	"testing"
	"time"
)

func TestExponential_NextDelay(t *testing.T) {
	s := &Exponential{
		Base:        1000 * time.Millisecond,
		Factor:      1.5,
		Max:         10000 * time.Millisecond,
		MaxAttempts: 5,
	}

	if got := s.NextDelay(0); got != 1000*time.Millisecond {
		t.Errorf("NextDelay(0) = %v, want 1s", got)
	}
	if got := s.NextDelay(1); got != 1500*time.Millisecond {
		t.Errorf("NextDelay(1) = %v, want 1.5s", got)
	}
	if got := s.NextDelay(10); got != 10000*time.Millisecond {
		t.Errorf("NextDelay(10) = %v, want 10s (capped)", got)
	}
}

func TestExponential_NextDelay_NonDecreasing(t *testing.T) {
	s := NewExponential()

	prev := time.Duration(0)
	for attempt := 0; attempt < 50; attempt++ {
		d := s.NextDelay(attempt)
		if d < prev {
			t.Fatalf("NextDelay(%d) = %v, less than previous %v", attempt, d, prev)
		}
		if d > s.Max {
			t.Fatalf("NextDelay(%d) = %v, exceeds cap %v", attempt, d, s.Max)
		}
		prev = d
	}
}

func TestExponential_ShouldStop(t *testing.T) {
	s := &Exponential{Base: time.Second, Factor: 2, Max: time.Minute, MaxAttempts: 3}

	for attempt := 0; attempt < 3; attempt++ {
		if s.ShouldStop(attempt) {
			t.Errorf("ShouldStop(%d) = true, want false", attempt)
		}
	}
	for attempt := 3; attempt < 6; attempt++ {
		if !s.ShouldStop(attempt) {
			t.Errorf("ShouldStop(%d) = false, want true", attempt)
		}
	}
}

func TestLinear_NextDelay(t *testing.T) {
	s := &Linear{
		Base:        time.Second,
		Increment:   2 * time.Second,
		Max:         8 * time.Second,
		MaxAttempts: 5,
	}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 3 * time.Second},
		{2, 5 * time.Second},
		{3, 7 * time.Second},
		{4, 8 * time.Second}, // capped
		{100, 8 * time.Second},
	}

	for _, tc := range cases {
		if got := s.NextDelay(tc.attempt); got != tc.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestLinear_ShouldStop(t *testing.T) {
	s := NewLinear()

	if s.ShouldStop(s.MaxAttempts - 1) {
		t.Error("ShouldStop one below ceiling = true, want false")
	}
	if !s.ShouldStop(s.MaxAttempts) {
		t.Error("ShouldStop at ceiling = false, want true")
	}
}

func TestStrategies_Swappable(t *testing.T) {
	// Both implementations must satisfy the interface so the manager can
	// hold either without knowing the concrete type.
	for _, s := range []Strategy{NewExponential(), NewLinear()} {
		s.Reset()
		if d := s.NextDelay(0); d <= 0 {
			t.Errorf("%T.NextDelay(0) = %v, want > 0", s, d)
		}
	}
}
