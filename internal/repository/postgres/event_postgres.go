package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
)

type eventRepository struct{ pool *pgxpool.Pool }

func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, match_id, seq, player_id, team_id, kind, points, period, clock_seconds, description, created_at`

// Append inserts the event with the next per-match sequence number. The
// subselect is safe because a match has a single authoritative writer; there
// is no concurrent appender to race the MAX.
func (r *eventRepository) Append(ctx context.Context, e model.Event) (model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Event{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO match_events (match_id, seq, player_id, team_id, kind, points, period, clock_seconds, description)
		 VALUES (
			$1,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM match_events WHERE match_id = $1),
			$2, $3, $4, $5, $6, $7, $8
		 )
		 RETURNING `+eventColumns,
		e.MatchID, e.PlayerID, e.TeamID, e.Kind, e.Points, e.Period, e.ClockSeconds, e.Description,
	)
	var out model.Event
	if err := row.Scan(&out.ID, &out.MatchID, &out.Seq, &out.PlayerID, &out.TeamID, &out.Kind,
		&out.Points, &out.Period, &out.ClockSeconds, &out.Description, &out.CreatedAt); err != nil {
		return model.Event{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *eventRepository) ListByMatch(ctx context.Context, matchID int64) ([]model.Event, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+eventColumns+` FROM match_events WHERE match_id = $1 ORDER BY seq`, matchID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.Event, 0, 32)
	for rows.Next() {
		var it model.Event
		if err := rows.Scan(&it.ID, &it.MatchID, &it.Seq, &it.PlayerID, &it.TeamID, &it.Kind,
			&it.Points, &it.Period, &it.ClockSeconds, &it.Description, &it.CreatedAt); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, repository.MapPgError(rows.Err())
}

var _ repository.EventRepository = (*eventRepository)(nil)
