package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// countdown is one ticking clock. done asks the goroutine to exit; stopped is
// closed by the goroutine on the way out so stoppers can await termination.
type countdown struct {
	done    chan struct{}
	stopped chan struct{}
}

// StartClock begins the cooperative one-second countdown for the match. At
// most one countdown runs per match: starting while one is already running is
// a no-op, not an error, so a double-tapped start button can never produce a
// double-decrementing clock.
func (s *Session) StartClock(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Status != model.StatusInProgress {
		return fmt.Errorf("%w: match status %q", ErrMatchNotActive, s.match.Status)
	}
	if s.clk != nil {
		return nil
	}
	if s.match.TimeRemaining <= 0 {
		return nil
	}
	c := &countdown{done: make(chan struct{}), stopped: make(chan struct{})}
	s.clk = c
	go s.runClock(c)
	return nil
}

// PauseClock stops the active countdown, waits for it to terminate, and
// publishes a snapshot tagged "paused". Pausing with no clock running still
// publishes; pause is the operator's save point.
func (s *Session) PauseClock(ctx context.Context) (model.Snapshot, error) {
	s.halt()

	s.mu.Lock()
	snap := s.snapshotLocked("paused")
	s.mu.Unlock()

	s.publish(ctx, snap)
	return snap, nil
}

// ResetClock stops the countdown and restores a full period clock. Nothing is
// persisted; an explicit save or the next pause carries the reset.
func (s *Session) ResetClock(_ context.Context) (model.Snapshot, error) {
	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.match.TimeRemaining = s.rules.PeriodSeconds
	return s.snapshotLocked(""), nil
}

// stopClockLocked detaches and signals the active countdown, if any.
// Once s.clk is nil a late tick sees the mismatch and exits without touching
// state, so the stop is effective immediately even before the goroutine is
// reaped. Caller must hold s.mu and await c.stopped after unlocking.
func (s *Session) stopClockLocked() *countdown {
	c := s.clk
	if c == nil {
		return nil
	}
	s.clk = nil
	close(c.done)
	return c
}

func (s *Session) runClock(c *countdown) {
	defer close(c.stopped)
	t := time.NewTicker(s.rules.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			if s.tick(c) {
				return
			}
		}
	}
}

// tick decrements the clock by one second and reports whether the countdown
// should retire. At zero the clock stops itself and regulation periods
// advance automatically; past regulation the clock stays at zero and waits
// for an explicit advance or finish — ending a match is always a deliberate
// operator action, never a timer side effect.
func (s *Session) tick(c *countdown) (stop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clk != c || s.match.Status != model.StatusInProgress {
		return true
	}
	if s.match.TimeRemaining > 0 {
		s.match.TimeRemaining--
	}
	if s.match.TimeRemaining > 0 {
		return false
	}
	s.clk = nil
	if s.match.Period < s.rules.RegulationPeriods {
		s.match.Period++
		s.match.TimeRemaining = s.rules.PeriodSeconds
		s.log.Info().Int("period", s.match.Period).Msg("period expired, advancing")
	} else {
		s.log.Info().Int("period", s.match.Period).Msg("period expired, awaiting operator")
	}
	return true
}
