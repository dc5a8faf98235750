// Package engine implements the match lifecycle and live statistics core:
// the state machine that owns a match's live fields, the append-only event
// ledger, the stat aggregator, the period clock and the snapshot publisher.
//
// One Session is the single authoritative writer for one match. Every
// operation that touches the same match serializes on the session mutex, so
// clock ticks and user actions on a match are strictly ordered while distinct
// matches proceed fully in parallel.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// Session holds the live state of one match. It is created by the Manager
// from the persisted match record and stays authoritative until the match
// reaches a terminal status.
type Session struct {
	mu    sync.Mutex
	rules Rules
	match model.Match
	clk   *countdown

	store Store
	tx    TxRunner
	pub   *Publisher
	log   zerolog.Logger
	now   func() time.Time
}

func newSession(m model.Match, store Store, tx TxRunner, pub *Publisher, rules Rules, logger zerolog.Logger) *Session {
	return &Session{
		rules: rules.withDefaults(),
		match: m,
		store: store,
		tx:    tx,
		pub:   pub,
		log:   logger.With().Str("module", "engine").Int64("match_id", m.ID).Logger(),
		now:   time.Now,
	}
}

// Match returns a copy of the live match state.
func (s *Session) Match() model.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

// Snapshot returns the current live snapshot without persisting it.
func (s *Session) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked("")
}

// ClockRunning reports whether a countdown is currently active.
func (s *Session) ClockRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clk != nil
}

// Save persists the current snapshot explicitly. Unlike the side-effect
// publishes, a failure here is surfaced so the operator can retry.
func (s *Session) Save(ctx context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	snap := s.snapshotLocked("")
	s.mu.Unlock()
	if err := s.pub.Publish(ctx, snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// snapshotLocked builds the immutable view of the live aggregate.
// Caller must hold s.mu.
func (s *Session) snapshotLocked(tag string) model.Snapshot {
	return model.Snapshot{
		MatchID:       s.match.ID,
		HomeScore:     s.match.HomeScore,
		AwayScore:     s.match.AwayScore,
		Period:        s.match.Period,
		TimeRemaining: s.match.TimeRemaining,
		HomeFouls:     s.match.HomeFouls,
		AwayFouls:     s.match.AwayFouls,
		HomeTimeouts:  s.match.HomeTimeouts,
		AwayTimeouts:  s.match.AwayTimeouts,
		Status:        s.match.Status,
		Tag:           tag,
		CapturedAt:    s.now(),
	}
}

// publish pushes a snapshot without holding the session mutex. Failures are
// logged, not propagated: the session remains the source of truth and the
// next successful publish catches the store up.
func (s *Session) publish(ctx context.Context, snap model.Snapshot) {
	if err := s.pub.Publish(ctx, snap); err != nil {
		s.log.Warn().Err(err).Str("tag", snap.Tag).Msg("reconciliation publish failed, live state remains authoritative")
	}
}

// halt stops any active countdown and waits for its goroutine to exit, so a
// subsequent mutation can never race a late tick.
func (s *Session) halt() {
	s.mu.Lock()
	c := s.stopClockLocked()
	s.mu.Unlock()
	if c != nil {
		<-c.stopped
	}
}
