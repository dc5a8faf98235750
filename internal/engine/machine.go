package engine

import (
	"context"
	"fmt"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// Start moves the match from scheduled to in progress, setting period 1 and a
// full period clock. The transition is published so the scoreboard survives a
// restart.
func (s *Session) Start(ctx context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	if s.match.Status != model.StatusScheduled {
		st := s.match.Status
		s.mu.Unlock()
		return model.Snapshot{}, fmt.Errorf("%w: cannot start match in status %q", ErrInvalidTransition, st)
	}
	s.match.Status = model.StatusInProgress
	s.match.Period = 1
	s.match.TimeRemaining = s.rules.PeriodSeconds
	snap := s.snapshotLocked("")
	s.mu.Unlock()

	s.log.Info().Msg("match started")
	s.publish(ctx, snap)
	return snap, nil
}

// Finish moves the match to its final status. Finishing an already finished
// match is a successful no-op; the status guard lives here, server side, so a
// duplicate call can never double-finalize.
func (s *Session) Finish(ctx context.Context) (model.Snapshot, error) {
	s.halt()

	s.mu.Lock()
	switch s.match.Status {
	case model.StatusFinished:
		snap := s.snapshotLocked("final")
		s.mu.Unlock()
		return snap, nil
	case model.StatusInProgress:
	default:
		st := s.match.Status
		s.mu.Unlock()
		return model.Snapshot{}, fmt.Errorf("%w: cannot finish match in status %q", ErrInvalidTransition, st)
	}
	s.match.Status = model.StatusFinished
	s.match.TimeRemaining = 0
	snap := s.snapshotLocked("final")
	s.mu.Unlock()

	s.log.Info().Int("home", snap.HomeScore).Int("away", snap.AwayScore).Msg("match finished")
	s.publish(ctx, snap)
	return snap, nil
}

// Cancel aborts a scheduled or in-progress match.
func (s *Session) Cancel(ctx context.Context) (model.Snapshot, error) {
	s.halt()

	s.mu.Lock()
	switch s.match.Status {
	case model.StatusScheduled, model.StatusInProgress:
	default:
		st := s.match.Status
		s.mu.Unlock()
		return model.Snapshot{}, fmt.Errorf("%w: cannot cancel match in status %q", ErrInvalidTransition, st)
	}
	s.match.Status = model.StatusCancelled
	snap := s.snapshotLocked("cancelled")
	s.mu.Unlock()

	s.log.Info().Msg("match cancelled")
	s.publish(ctx, snap)
	return snap, nil
}

// AdvancePeriod stops any running clock, increments the period and resets the
// clock to a full period. Periods are uncapped so overtime is just the next
// period. Not persisted on its own; the next pause or save carries it.
func (s *Session) AdvancePeriod(_ context.Context) (model.Snapshot, error) {
	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Status != model.StatusInProgress {
		return model.Snapshot{}, fmt.Errorf("%w: cannot advance period in status %q", ErrInvalidTransition, s.match.Status)
	}
	s.match.Period++
	s.match.TimeRemaining = s.rules.PeriodSeconds
	return s.snapshotLocked(""), nil
}

// RecordScore adds points to one side. Points must be 1, 2 or 3. Score
// changes are always published; the score is the one live field downstream
// readers cannot tolerate losing.
func (s *Session) RecordScore(ctx context.Context, side model.TeamSide, points int) (model.Snapshot, error) {
	if !side.Valid() {
		return model.Snapshot{}, fmt.Errorf("%w: unknown side %q", ErrInvalidArgument, side)
	}
	if points < 1 || points > 3 {
		return model.Snapshot{}, fmt.Errorf("%w: points must be 1..3, got %d", ErrInvalidArgument, points)
	}

	s.mu.Lock()
	if s.match.Status != model.StatusInProgress {
		st := s.match.Status
		s.mu.Unlock()
		return model.Snapshot{}, fmt.Errorf("%w: match status %q", ErrMatchNotActive, st)
	}
	s.addScoreLocked(side, points)
	snap := s.snapshotLocked("")
	s.mu.Unlock()

	s.publish(ctx, snap)
	return snap, nil
}

// addScoreLocked applies a score increment. Caller must hold s.mu.
func (s *Session) addScoreLocked(side model.TeamSide, points int) {
	if side == model.SideHome {
		s.match.HomeScore += points
	} else {
		s.match.AwayScore += points
	}
}

// AdjustFoul moves a team foul counter by ±1, saturating at [0, MaxFouls].
// Overflow clamps rather than errors: the scoreboard treats fouls as a
// saturating counter and callers rely on that. Legal in any non-terminal status.
func (s *Session) AdjustFoul(_ context.Context, side model.TeamSide, delta int) (model.Snapshot, error) {
	if !side.Valid() {
		return model.Snapshot{}, fmt.Errorf("%w: unknown side %q", ErrInvalidArgument, side)
	}
	if delta != 1 && delta != -1 {
		return model.Snapshot{}, fmt.Errorf("%w: foul delta must be +1 or -1, got %d", ErrInvalidArgument, delta)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Status.Terminal() {
		return model.Snapshot{}, fmt.Errorf("%w: match status %q", ErrInvalidTransition, s.match.Status)
	}
	if side == model.SideHome {
		s.match.HomeFouls = clamp(s.match.HomeFouls+delta, 0, s.rules.MaxFouls)
	} else {
		s.match.AwayFouls = clamp(s.match.AwayFouls+delta, 0, s.rules.MaxFouls)
	}
	return s.snapshotLocked(""), nil
}

// AdjustTimeout moves a team's remaining timeouts by ±1 within
// [0, TimeoutAllotment], saturating like fouls.
func (s *Session) AdjustTimeout(_ context.Context, side model.TeamSide, delta int) (model.Snapshot, error) {
	if !side.Valid() {
		return model.Snapshot{}, fmt.Errorf("%w: unknown side %q", ErrInvalidArgument, side)
	}
	if delta != 1 && delta != -1 {
		return model.Snapshot{}, fmt.Errorf("%w: timeout delta must be +1 or -1, got %d", ErrInvalidArgument, delta)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Status.Terminal() {
		return model.Snapshot{}, fmt.Errorf("%w: match status %q", ErrInvalidTransition, s.match.Status)
	}
	if side == model.SideHome {
		s.match.HomeTimeouts = clamp(s.match.HomeTimeouts+delta, 0, s.rules.TimeoutAllotment)
	} else {
		s.match.AwayTimeouts = clamp(s.match.AwayTimeouts+delta, 0, s.rules.TimeoutAllotment)
	}
	return s.snapshotLocked(""), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
