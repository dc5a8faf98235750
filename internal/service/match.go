package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/maxviazov/basketball-live-service/internal/engine"
	"github.com/maxviazov/basketball-live-service/internal/livecache"
	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
)

type matchService struct {
	matches repository.MatchRepository
	box     repository.BoxScoreRepository
	tx      repository.TxManager
	eng     *engine.Manager
	rules   engine.Rules
	live    *livecache.Cache // optional, may be nil
	log     zerolog.Logger
}

// NewMatchService wires the match use cases over repositories and the live engine.
func NewMatchService(matches repository.MatchRepository, box repository.BoxScoreRepository, tx repository.TxManager, eng *engine.Manager, rules engine.Rules, live *livecache.Cache, logger zerolog.Logger) MatchService {
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	return &matchService{matches: matches, box: box, tx: tx, eng: eng, rules: rules, live: live, log: l}
}

func (s *matchService) CreateMatch(ctx context.Context, in CreateMatchInput) (model.Match, error) {
	var ferrs []FieldError
	if in.HomeTeamID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "home_team_id", Message: "must be > 0"})
	}
	if in.AwayTeamID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "away_team_id", Message: "must be > 0"})
	}
	if in.HomeTeamID > 0 && in.AwayTeamID > 0 && in.HomeTeamID == in.AwayTeamID {
		ferrs = append(ferrs, FieldError{Field: "teams", Message: "home and away must differ"})
	}
	if in.HomeTeamName == "" {
		ferrs = append(ferrs, FieldError{Field: "home_team_name", Message: "must be set"})
	}
	if in.AwayTeamName == "" {
		ferrs = append(ferrs, FieldError{Field: "away_team_name", Message: "must be set"})
	}
	if in.Date.IsZero() {
		ferrs = append(ferrs, FieldError{Field: "date", Message: "must be set"})
	}
	for _, id := range in.HomeRoster {
		if id <= 0 {
			ferrs = append(ferrs, FieldError{Field: "home_roster", Message: "player ids must be > 0"})
			break
		}
	}
	for _, id := range in.AwayRoster {
		if id <= 0 {
			ferrs = append(ferrs, FieldError{Field: "away_roster", Message: "player ids must be > 0"})
			break
		}
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("match validation failed")
		return model.Match{}, err
	}

	m := model.Match{
		HomeTeamID:    in.HomeTeamID,
		AwayTeamID:    in.AwayTeamID,
		HomeTeamName:  in.HomeTeamName,
		AwayTeamName:  in.AwayTeamName,
		Venue:         in.Venue,
		Date:          in.Date,
		Status:        model.StatusScheduled,
		Period:        1,
		TimeRemaining: s.rules.PeriodSeconds,
		HomeTimeouts:  s.rules.TimeoutAllotment,
		AwayTimeouts:  s.rules.TimeoutAllotment,
		Description:   in.Description,
		HomeRoster:    in.HomeRoster,
		AwayRoster:    in.AwayRoster,
	}

	// Match row, roster rows and zeroed box scores land together.
	var out model.Match
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.matches.Create(ctx, m)
		if err != nil {
			return err
		}
		if err := s.box.Seed(ctx, created.ID, created.HomeTeamID, in.HomeRoster); err != nil {
			return err
		}
		if err := s.box.Seed(ctx, created.ID, created.AwayTeamID, in.AwayRoster); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int64("home_id", in.HomeTeamID).Int64("away_id", in.AwayTeamID).Msg("create match failed")
		return model.Match{}, err
	}
	s.log.Info().Int64("match_id", out.ID).Str("home", out.HomeTeamName).Str("away", out.AwayTeamName).Msg("match scheduled")
	return out, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int64) (model.Match, error) {
	if id <= 0 {
		return model.Match{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	// A resident session is fresher than the persisted row between publishes.
	if sess, ok := s.eng.Peek(id); ok {
		return sess.Match(), nil
	}
	return s.matches.GetByID(ctx, id)
}

func (s *matchService) ListMatches(ctx context.Context, page repository.Page) (repository.PageResult[model.Match], error) {
	res, err := s.matches.List(ctx, page)
	if err != nil {
		s.log.Error().Err(err).Int("limit", page.Limit).Int("offset", page.Offset).Msg("list matches failed")
		return repository.PageResult[model.Match]{}, err
	}
	return res, nil
}

func (s *matchService) Start(ctx context.Context, id int64) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.Start(ctx)
}

func (s *matchService) Finish(ctx context.Context, id int64) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap, err := sess.Finish(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	s.eng.Evict(id)
	return snap, nil
}

func (s *matchService) Cancel(ctx context.Context, id int64) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap, err := sess.Cancel(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	s.eng.Evict(id)
	return snap, nil
}

func (s *matchService) AdvancePeriod(ctx context.Context, id int64) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.AdvancePeriod(ctx)
}

func (s *matchService) RecordScore(ctx context.Context, id int64, side model.TeamSide, points int) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.RecordScore(ctx, side, points)
}

func (s *matchService) AdjustFoul(ctx context.Context, id int64, side model.TeamSide, delta int) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.AdjustFoul(ctx, side, delta)
}

func (s *matchService) AdjustTimeout(ctx context.Context, id int64, side model.TeamSide, delta int) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.AdjustTimeout(ctx, side, delta)
}

func (s *matchService) StartClock(ctx context.Context, id int64) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	return sess.StartClock(ctx)
}

func (s *matchService) PauseClock(ctx context.Context, id int64) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.PauseClock(ctx)
}

func (s *matchService) ResetClock(ctx context.Context, id int64) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.ResetClock(ctx)
}

func (s *matchService) Save(ctx context.Context, id int64) (model.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return sess.Save(ctx)
}

// LiveSnapshot prefers the resident session (authoritative), then the Redis
// cache, then the persisted row.
func (s *matchService) LiveSnapshot(ctx context.Context, id int64) (model.Snapshot, error) {
	if id <= 0 {
		return model.Snapshot{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	if sess, ok := s.eng.Peek(id); ok {
		return sess.Snapshot(), nil
	}
	if s.live != nil {
		if snap, ok, err := s.live.GetLive(ctx, id); err == nil && ok {
			return snap, nil
		}
	}
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		MatchID:       m.ID,
		HomeScore:     m.HomeScore,
		AwayScore:     m.AwayScore,
		Period:        m.Period,
		TimeRemaining: m.TimeRemaining,
		HomeFouls:     m.HomeFouls,
		AwayFouls:     m.AwayFouls,
		HomeTimeouts:  m.HomeTimeouts,
		AwayTimeouts:  m.AwayTimeouts,
		Status:        m.Status,
		CapturedAt:    m.UpdatedAt,
	}, nil
}

func (s *matchService) session(ctx context.Context, id int64) (*engine.Session, error) {
	if id <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.eng.Session(ctx, id)
}
