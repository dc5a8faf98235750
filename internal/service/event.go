package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/maxviazov/basketball-live-service/internal/engine"
	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
)

type eventService struct {
	events repository.EventRepository
	box    repository.BoxScoreRepository
	eng    *engine.Manager
	log    zerolog.Logger
}

// NewEventService wires the ledger and box-score use cases.
func NewEventService(events repository.EventRepository, box repository.BoxScoreRepository, eng *engine.Manager, logger zerolog.Logger) EventService {
	l := logger.With().Str("module", "service").Str("component", "event").Logger()
	return &eventService{events: events, box: box, eng: eng, log: l}
}

func (s *eventService) RecordEvent(ctx context.Context, matchID int64, in RecordEventInput) (model.Event, error) {
	var ferrs []FieldError
	if matchID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "match_id", Message: "must be > 0"})
	}
	if in.PlayerID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "player_id", Message: "must be > 0"})
	}
	if in.TeamID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "team_id", Message: "must be > 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("event validation failed")
		return model.Event{}, err
	}

	sess, err := s.eng.Session(ctx, matchID)
	if err != nil {
		return model.Event{}, err
	}
	ev, err := sess.ApplyEvent(ctx, engine.EventInput{
		PlayerID:       in.PlayerID,
		TeamID:         in.TeamID,
		Kind:           in.Kind,
		Description:    in.Description,
		PointsOverride: in.PointsOverride,
	})
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

func (s *eventService) ListEvents(ctx context.Context, matchID int64) ([]model.Event, error) {
	if matchID <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "match_id", Message: "must be > 0"}})
	}
	return s.events.ListByMatch(ctx, matchID)
}

func (s *eventService) ListBoxScores(ctx context.Context, matchID int64) ([]model.BoxScore, error) {
	if matchID <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "match_id", Message: "must be > 0"}})
	}
	return s.box.ListByMatch(ctx, matchID)
}

func (s *eventService) GetBoxScore(ctx context.Context, matchID, playerID int64) (model.BoxScore, error) {
	var ferrs []FieldError
	if matchID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "match_id", Message: "must be > 0"})
	}
	if playerID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "player_id", Message: "must be > 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.BoxScore{}, err
	}
	return s.box.Get(ctx, matchID, playerID)
}
