package engine

import (
	"context"
	"fmt"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// EventInput describes one event to record against the session's match.
// Points is normally derived from the kind; PointsOverride supplies an
// explicit value instead when set.
type EventInput struct {
	PlayerID       int64
	TeamID         int64
	Kind           model.EventKind
	Description    string
	PointsOverride *int
}

// ApplyEvent appends the event to the ledger and folds it into the aggregate:
// the acting player's box score always, the team score when the event carries
// points. Ledger append and box-score upsert land in one transaction; if
// either fails nothing is retained, the in-memory score is untouched and the
// caller may re-submit the identical event.
//
// The ledger is append-only. A mis-credited event is corrected by recording
// the proper event for the right player, never by editing history, so
// replaying the ledger always reproduces the current score and box scores.
func (s *Session) ApplyEvent(ctx context.Context, in EventInput) (model.Event, error) {
	stored, snap, scored, err := s.applyEventLocked(ctx, in)
	if err != nil {
		return model.Event{}, err
	}
	if scored {
		s.publish(ctx, snap)
	}
	return stored, nil
}

func (s *Session) applyEventLocked(ctx context.Context, in EventInput) (model.Event, model.Snapshot, bool, error) {
	if !in.Kind.Known() {
		return model.Event{}, model.Snapshot{}, false, fmt.Errorf("%w: %q", ErrUnknownEventKind, in.Kind)
	}
	points := in.Kind.Points()
	if in.PointsOverride != nil {
		points = *in.PointsOverride
	}
	if points < 0 || points > 3 {
		return model.Event{}, model.Snapshot{}, false, fmt.Errorf("%w: event points must be 0..3, got %d", ErrInvalidArgument, points)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.match.Status != model.StatusInProgress {
		return model.Event{}, model.Snapshot{}, false, fmt.Errorf("%w: match status %q", ErrMatchNotActive, s.match.Status)
	}
	side, ok := s.match.Side(in.TeamID)
	if !ok {
		return model.Event{}, model.Snapshot{}, false, fmt.Errorf("%w: team %d is not part of match %d", ErrInvalidArgument, in.TeamID, s.match.ID)
	}
	if len(s.match.HomeRoster)+len(s.match.AwayRoster) > 0 && !s.match.OnRoster(in.PlayerID) {
		return model.Event{}, model.Snapshot{}, false, fmt.Errorf("%w: player %d is not on the match roster", ErrInvalidArgument, in.PlayerID)
	}

	ev := model.Event{
		MatchID:      s.match.ID,
		PlayerID:     in.PlayerID,
		TeamID:       in.TeamID,
		Kind:         in.Kind,
		Points:       points,
		Period:       s.match.Period,
		ClockSeconds: s.match.TimeRemaining,
		Description:  in.Description,
	}
	delta := model.DeltaFor(in.Kind, in.TeamID)
	delta.Points = points

	var stored model.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		appended, err := s.store.AppendEvent(ctx, ev)
		if err != nil {
			return err
		}
		if _, err := s.store.UpsertBoxScore(ctx, ev.MatchID, ev.PlayerID, delta); err != nil {
			return err
		}
		stored = appended
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("kind", string(in.Kind)).
			Int64("player_id", in.PlayerID).
			Msg("event aggregation failed, nothing retained")
		return model.Event{}, model.Snapshot{}, false, fmt.Errorf("%w: %v", ErrAggregationFailed, err)
	}

	s.log.Debug().
		Str("kind", string(in.Kind)).
		Int64("seq", stored.Seq).
		Int("points", points).
		Msg("event applied")

	// Only now, with both writes committed, fold the points into the running
	// score so a failed aggregation can never desync score and ledger.
	if points == 0 {
		return stored, model.Snapshot{}, false, nil
	}
	s.addScoreLocked(side, points)
	return stored, s.snapshotLocked(""), true, nil
}
