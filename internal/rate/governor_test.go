package rate

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 30, 0, 0, time.UTC)
}

func TestDelayFor_Bands(t *testing.T) {
	t.Parallel()

	g := NewGovernor(DefaultDelays)

	cases := []struct {
		hour int
		want time.Duration
	}{
		{19, 5 * time.Second}, // peak
		{18, 5 * time.Second},
		{20, 5 * time.Second},
		{2, 1 * time.Second}, // night
		{21, 1 * time.Second},
		{23, 1 * time.Second},
		{0, 1 * time.Second},
		{8, 1 * time.Second},
		{11, 2 * time.Second}, // normal
		{9, 2 * time.Second},
		{17, 2 * time.Second},
	}
	for _, tc := range cases {
		if got := g.DelayFor(at(tc.hour)); got != tc.want {
			t.Fatalf("DelayFor(hour=%d) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestNewGovernor_ZeroFieldsUseDefaults(t *testing.T) {
	t.Parallel()

	g := NewGovernor(Delays{Peak: 100 * time.Millisecond})

	if got := g.DelayFor(at(19)); got != 100*time.Millisecond {
		t.Fatalf("expected override peak delay, got %v", got)
	}
	if got := g.DelayFor(at(2)); got != DefaultDelays.Night {
		t.Fatalf("expected default night delay, got %v", got)
	}
	if got := g.DelayFor(at(11)); got != DefaultDelays.Normal {
		t.Fatalf("expected default normal delay, got %v", got)
	}
}
