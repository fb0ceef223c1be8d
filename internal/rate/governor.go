// Package rate spaces consecutive sends. The delivery channel is
// rate-limit sensitive, so the pause between messages follows the local
// time of day: short at night, longer during evening peak hours.
package rate

import "time"

// Delays holds the per-band pacing values. Zero fields fall back to the
// defaults when passed to NewGovernor.
type Delays struct {
	Night  time.Duration // 21:00-09:00
	Normal time.Duration // 09:00-18:00
	Peak   time.Duration // 18:00-21:00
}

// DefaultDelays matches the production pacing.
var DefaultDelays = Delays{
	Night:  1 * time.Second,
	Normal: 2 * time.Second,
	Peak:   5 * time.Second,
}

// Governor computes inter-send delays. It carries no mutable state and is
// safe for concurrent use.
type Governor struct {
	delays Delays
}

func NewGovernor(d Delays) *Governor {
	if d.Night <= 0 {
		d.Night = DefaultDelays.Night
	}
	if d.Normal <= 0 {
		d.Normal = DefaultDelays.Normal
	}
	if d.Peak <= 0 {
		d.Peak = DefaultDelays.Peak
	}
	return &Governor{delays: d}
}

// DelayFor returns the pacing delay for the wall-clock hour of now.
func (g *Governor) DelayFor(now time.Time) time.Duration {
	hour := now.Hour()
	switch {
	case hour >= 18 && hour < 21:
		return g.delays.Peak
	case hour >= 21 || hour < 9:
		return g.delays.Night
	default:
		return g.delays.Normal
	}
}
