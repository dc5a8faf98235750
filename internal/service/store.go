package service

import (
	"context"

	"github.com/maxviazov/basketball-live-service/internal/engine"
	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
)

// engineStore composes the repositories into the engine's persistence
// collaborator. The engine stays ignorant of the repository layout; this is
// the only place the two meet.
type engineStore struct {
	matches repository.MatchRepository
	events  repository.EventRepository
	box     repository.BoxScoreRepository
}

// NewEngineStore adapts the repositories to engine.Store.
func NewEngineStore(matches repository.MatchRepository, events repository.EventRepository, box repository.BoxScoreRepository) engine.Store {
	return &engineStore{matches: matches, events: events, box: box}
}

func (s *engineStore) LoadMatch(ctx context.Context, id int64) (model.Match, error) {
	return s.matches.GetByID(ctx, id)
}

func (s *engineStore) SaveSnapshot(ctx context.Context, id int64, snap model.Snapshot) error {
	return s.matches.SaveSnapshot(ctx, id, snap)
}

func (s *engineStore) AppendEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	return s.events.Append(ctx, ev)
}

func (s *engineStore) UpsertBoxScore(ctx context.Context, matchID, playerID int64, delta model.StatDelta) (model.BoxScore, error) {
	return s.box.Upsert(ctx, matchID, playerID, delta)
}

var _ engine.Store = (*engineStore)(nil)
