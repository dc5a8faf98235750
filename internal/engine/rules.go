package engine

import "time"

// Rules holds the game parameters the engine enforces. Values mirror the
// scoreboard defaults: 10-minute periods, 4 regulation periods, team fouls
// saturate at 5, seven timeouts per side.
type Rules struct {
	PeriodSeconds     int
	RegulationPeriods int
	MaxFouls          int
	TimeoutAllotment  int
	// TickInterval is the countdown resolution. One second in production;
	// tests shrink it to keep clock scenarios fast.
	TickInterval time.Duration
}

// DefaultRules returns the standard scoreboard configuration.
func DefaultRules() Rules {
	return Rules{
		PeriodSeconds:     600,
		RegulationPeriods: 4,
		MaxFouls:          5,
		TimeoutAllotment:  7,
		TickInterval:      time.Second,
	}
}

// withDefaults fills zero fields so a partially populated config behaves.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.PeriodSeconds <= 0 {
		r.PeriodSeconds = d.PeriodSeconds
	}
	if r.RegulationPeriods <= 0 {
		r.RegulationPeriods = d.RegulationPeriods
	}
	if r.MaxFouls <= 0 {
		r.MaxFouls = d.MaxFouls
	}
	if r.TimeoutAllotment <= 0 {
		r.TimeoutAllotment = d.TimeoutAllotment
	}
	if r.TickInterval <= 0 {
		r.TickInterval = d.TickInterval
	}
	return r
}
