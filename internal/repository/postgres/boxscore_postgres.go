package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
)

type boxScoreRepository struct{ pool *pgxpool.Pool }

func NewBoxScoreRepository(pool *pgxpool.Pool) repository.BoxScoreRepository {
	return &boxScoreRepository{pool: pool}
}

const boxScoreColumns = `id, match_id, player_id, team_id, minutes, points, rebounds, assists, steals, blocks, fouls,
	field_goals_made, field_goals_attempted, three_pointers_made, three_pointers_attempted,
	free_throws_made, free_throws_attempted, created_at, updated_at`

// Upsert folds the delta into the player's row, creating it lazily on first
// touch. Additive by design: the row is only ever the sum of applied events.
func (r *boxScoreRepository) Upsert(ctx context.Context, matchID, playerID int64, d model.StatDelta) (model.BoxScore, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.BoxScore{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO match_box_scores (
			match_id, player_id, team_id, points, rebounds, assists, steals, blocks, fouls,
			field_goals_made, field_goals_attempted, three_pointers_made, three_pointers_attempted,
			free_throws_made, free_throws_attempted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (match_id, player_id)
		DO UPDATE SET
			points = match_box_scores.points + EXCLUDED.points,
			rebounds = match_box_scores.rebounds + EXCLUDED.rebounds,
			assists = match_box_scores.assists + EXCLUDED.assists,
			steals = match_box_scores.steals + EXCLUDED.steals,
			blocks = match_box_scores.blocks + EXCLUDED.blocks,
			fouls = match_box_scores.fouls + EXCLUDED.fouls,
			field_goals_made = match_box_scores.field_goals_made + EXCLUDED.field_goals_made,
			field_goals_attempted = match_box_scores.field_goals_attempted + EXCLUDED.field_goals_attempted,
			three_pointers_made = match_box_scores.three_pointers_made + EXCLUDED.three_pointers_made,
			three_pointers_attempted = match_box_scores.three_pointers_attempted + EXCLUDED.three_pointers_attempted,
			free_throws_made = match_box_scores.free_throws_made + EXCLUDED.free_throws_made,
			free_throws_attempted = match_box_scores.free_throws_attempted + EXCLUDED.free_throws_attempted,
			updated_at = NOW()
		RETURNING `+boxScoreColumns,
		matchID, playerID, d.TeamID, d.Points, d.Rebounds, d.Assists, d.Steals, d.Blocks, d.Fouls,
		d.FieldGoalsMade, d.FieldGoalsAttempted, d.ThreePointersMade, d.ThreePointersAttempted,
		d.FreeThrowsMade, d.FreeThrowsAttempted,
	)
	out, err := scanBoxScore(row)
	if err != nil {
		return model.BoxScore{}, repository.MapPgError(err)
	}
	return out, nil
}

// Seed pre-creates zeroed rows for a roster so the box-score listing shows
// every registered player from the opening tip.
func (r *boxScoreRepository) Seed(ctx context.Context, matchID, teamID int64, playerIDs []int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	for _, playerID := range playerIDs {
		if _, err := exec.Exec(ctx,
			`INSERT INTO match_box_scores (match_id, player_id, team_id)
			 VALUES ($1,$2,$3)
			 ON CONFLICT (match_id, player_id) DO NOTHING`,
			matchID, playerID, teamID,
		); err != nil {
			return repository.MapPgError(err)
		}
	}
	return nil
}

func (r *boxScoreRepository) ListByMatch(ctx context.Context, matchID int64) ([]model.BoxScore, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+boxScoreColumns+` FROM match_box_scores WHERE match_id = $1 ORDER BY team_id, player_id`,
		matchID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.BoxScore, 0, 16)
	for rows.Next() {
		it, err := scanBoxScore(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, repository.MapPgError(rows.Err())
}

func (r *boxScoreRepository) Get(ctx context.Context, matchID, playerID int64) (model.BoxScore, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.BoxScore{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT `+boxScoreColumns+` FROM match_box_scores WHERE match_id = $1 AND player_id = $2`,
		matchID, playerID,
	)
	out, err := scanBoxScore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BoxScore{}, repository.ErrNotFound
		}
		return model.BoxScore{}, repository.MapPgError(err)
	}
	return out, nil
}

func scanBoxScore(row pgx.Row) (model.BoxScore, error) {
	var b model.BoxScore
	err := row.Scan(
		&b.ID, &b.MatchID, &b.PlayerID, &b.TeamID, &b.Minutes, &b.Points, &b.Rebounds, &b.Assists,
		&b.Steals, &b.Blocks, &b.Fouls, &b.FieldGoalsMade, &b.FieldGoalsAttempted,
		&b.ThreePointersMade, &b.ThreePointersAttempted, &b.FreeThrowsMade, &b.FreeThrowsAttempted,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

var _ repository.BoxScoreRepository = (*boxScoreRepository)(nil)
