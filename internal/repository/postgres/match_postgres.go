package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
)

type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

const matchColumns = `id, home_team_id, away_team_id, home_team_name, away_team_name, venue, date, status,
	home_score, away_score, period, time_remaining, home_fouls, away_fouls, home_timeouts, away_timeouts,
	description, created_at, updated_at`

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO matches (
			home_team_id, away_team_id, home_team_name, away_team_name, venue, date, status,
			home_score, away_score, period, time_remaining, home_fouls, away_fouls,
			home_timeouts, away_timeouts, description
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING `+matchColumns,
		m.HomeTeamID, m.AwayTeamID, m.HomeTeamName, m.AwayTeamName, m.Venue, m.Date, m.Status,
		m.HomeScore, m.AwayScore, m.Period, m.TimeRemaining, m.HomeFouls, m.AwayFouls,
		m.HomeTimeouts, m.AwayTimeouts, m.Description,
	)
	out, err := scanMatch(row)
	if err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	if err := r.replaceRoster(ctx, out.ID, m.HomeTeamID, m.HomeRoster); err != nil {
		return model.Match{}, err
	}
	if err := r.replaceRoster(ctx, out.ID, m.AwayTeamID, m.AwayRoster); err != nil {
		return model.Match{}, err
	}
	out.HomeRoster, out.AwayRoster = m.HomeRoster, m.AwayRoster
	return out, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	if err := r.loadRosters(ctx, &m); err != nil {
		return model.Match{}, err
	}
	return m, nil
}

func (r *matchRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Match], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Match]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)

	var total int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&total); err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}

	rows, err := exec.Query(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return repository.PageResult[model.Match]{}, repository.MapPgError(err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Match]{}, repository.MapPgError(err)
	}
	return repository.PageResult[model.Match]{Items: items, Total: total}, nil
}

// SaveSnapshot overwrites the whole live aggregate of the match row.
// Last write wins on purpose; the engine is the single writer per match and
// partial-field updates would only invite drift.
func (r *matchRepository) SaveSnapshot(ctx context.Context, id int64, snap model.Snapshot) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE matches SET
			home_score = $2, away_score = $3, period = $4, time_remaining = $5,
			home_fouls = $6, away_fouls = $7, home_timeouts = $8, away_timeouts = $9,
			status = $10, updated_at = NOW()
		WHERE id = $1`,
		id, snap.HomeScore, snap.AwayScore, snap.Period, snap.TimeRemaining,
		snap.HomeFouls, snap.AwayFouls, snap.HomeTimeouts, snap.AwayTimeouts, snap.Status,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *matchRepository) replaceRoster(ctx context.Context, matchID, teamID int64, playerIDs []int64) error {
	exec := getQ(ctx, r.pool)
	for _, playerID := range playerIDs {
		if _, err := exec.Exec(ctx,
			`INSERT INTO match_rosters (match_id, team_id, player_id) VALUES ($1,$2,$3)
			 ON CONFLICT (match_id, player_id) DO NOTHING`,
			matchID, teamID, playerID,
		); err != nil {
			return repository.MapPgError(err)
		}
	}
	return nil
}

func (r *matchRepository) loadRosters(ctx context.Context, m *model.Match) error {
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT team_id, player_id FROM match_rosters WHERE match_id = $1 ORDER BY player_id`,
		m.ID,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var teamID, playerID int64
		if err := rows.Scan(&teamID, &playerID); err != nil {
			return repository.MapPgError(err)
		}
		if teamID == m.HomeTeamID {
			m.HomeRoster = append(m.HomeRoster, playerID)
		} else {
			m.AwayRoster = append(m.AwayRoster, playerID)
		}
	}
	return repository.MapPgError(rows.Err())
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var m model.Match
	err := row.Scan(
		&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.HomeTeamName, &m.AwayTeamName, &m.Venue, &m.Date, &m.Status,
		&m.HomeScore, &m.AwayScore, &m.Period, &m.TimeRemaining, &m.HomeFouls, &m.AwayFouls,
		&m.HomeTimeouts, &m.AwayTimeouts, &m.Description, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

var _ repository.MatchRepository = (*matchRepository)(nil)
