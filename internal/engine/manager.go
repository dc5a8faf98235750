package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Manager owns the live sessions, one per match id. It is the entry point the
// service layer goes through: all lifecycle, scoring and clock operations
// address a session obtained here. Sessions for different matches are fully
// independent.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	store Store
	tx    TxRunner
	pub   *Publisher
	rules Rules
	log   zerolog.Logger
}

// NewManager wires the engine over its collaborators.
func NewManager(store Store, tx TxRunner, pub *Publisher, rules Rules, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		store:    store,
		tx:       tx,
		pub:      pub,
		rules:    rules.withDefaults(),
		log:      logger.With().Str("module", "engine").Str("component", "manager").Logger(),
	}
}

// Session returns the live session for the match, loading the persisted
// record on first touch. A resumed match picks up exactly where its last
// snapshot left it — score, period, clock, fouls, timeouts.
func (m *Manager) Session(ctx context.Context, matchID int64) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[matchID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Load outside the registry lock; sessions for other matches keep moving.
	match, err := m.store.LoadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[matchID]; ok {
		return s, nil
	}
	s := newSession(match, m.store, m.tx, m.pub, m.rules, m.log)
	m.sessions[matchID] = s
	m.log.Debug().Int64("match_id", matchID).Str("status", string(match.Status)).Msg("session loaded")
	return s, nil
}

// Peek returns the session only if it is already resident; it never loads.
// Readers use it so a live lookup does not resurrect archived matches.
func (m *Manager) Peek(matchID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[matchID]
	return s, ok
}

// Evict drops a session from the registry, stopping its clock first. Called
// once a match reaches a terminal status; the persisted record is the archive.
func (m *Manager) Evict(matchID int64) {
	m.mu.Lock()
	s, ok := m.sessions[matchID]
	if ok {
		delete(m.sessions, matchID)
	}
	m.mu.Unlock()
	if ok {
		s.halt()
	}
}

// Shutdown stops every clock and publishes a final autosave snapshot for each
// live session, so an orderly restart loses nothing.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[int64]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.halt()
		if _, err := s.Save(ctx); err != nil {
			s.log.Warn().Err(err).Msg("autosave on shutdown failed")
		}
	}
	m.log.Info().Int("sessions", len(sessions)).Msg("engine shut down")
}
