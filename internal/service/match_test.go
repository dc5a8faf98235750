package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/basketball-live-service/internal/engine"
	"github.com/maxviazov/basketball-live-service/internal/model"
	"github.com/maxviazov/basketball-live-service/internal/repository"
	"github.com/maxviazov/basketball-live-service/internal/service"
)

type fakeMatchRepo struct {
	nextID  int64
	matches map[int64]model.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: map[int64]model.Match{}}
}

func (f *fakeMatchRepo) Create(_ context.Context, m model.Match) (model.Match, error) {
	m.ID = f.nextID
	f.nextID++
	m.CreatedAt, m.UpdatedAt = time.Now(), time.Now()
	f.matches[m.ID] = m
	return m, nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int64) (model.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) List(_ context.Context, _ repository.Page) (repository.PageResult[model.Match], error) {
	var res repository.PageResult[model.Match]
	for _, m := range f.matches {
		res.Items = append(res.Items, m)
	}
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakeMatchRepo) SaveSnapshot(_ context.Context, id int64, snap model.Snapshot) error {
	m, ok := f.matches[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.HomeScore, m.AwayScore = snap.HomeScore, snap.AwayScore
	m.Period, m.TimeRemaining = snap.Period, snap.TimeRemaining
	m.HomeFouls, m.AwayFouls = snap.HomeFouls, snap.AwayFouls
	m.HomeTimeouts, m.AwayTimeouts = snap.HomeTimeouts, snap.AwayTimeouts
	m.Status = snap.Status
	m.UpdatedAt = time.Now()
	f.matches[id] = m
	return nil
}

var _ repository.MatchRepository = (*fakeMatchRepo)(nil)

type fakeEventRepo struct {
	nextID int64
	events map[int64][]model.Event
}

func newFakeEventRepo() *fakeEventRepo { return &fakeEventRepo{nextID: 1, events: map[int64][]model.Event{}} }

func (f *fakeEventRepo) Append(_ context.Context, e model.Event) (model.Event, error) {
	e.ID = f.nextID
	f.nextID++
	e.Seq = int64(len(f.events[e.MatchID])) + 1
	e.CreatedAt = time.Now()
	f.events[e.MatchID] = append(f.events[e.MatchID], e)
	return e, nil
}

func (f *fakeEventRepo) ListByMatch(_ context.Context, matchID int64) ([]model.Event, error) {
	return append([]model.Event(nil), f.events[matchID]...), nil
}

var _ repository.EventRepository = (*fakeEventRepo)(nil)

type fakeBoxRepo struct {
	rows map[string]model.BoxScore
}

func newFakeBoxRepo() *fakeBoxRepo { return &fakeBoxRepo{rows: map[string]model.BoxScore{}} }

func bkey(matchID, playerID int64) string { return fmt.Sprintf("%d/%d", matchID, playerID) }

func (f *fakeBoxRepo) Upsert(_ context.Context, matchID, playerID int64, d model.StatDelta) (model.BoxScore, error) {
	b := f.rows[bkey(matchID, playerID)]
	b.MatchID, b.PlayerID, b.TeamID = matchID, playerID, d.TeamID
	b.Points += d.Points
	b.Rebounds += d.Rebounds
	b.Assists += d.Assists
	b.Fouls += d.Fouls
	f.rows[bkey(matchID, playerID)] = b
	return b, nil
}

func (f *fakeBoxRepo) Seed(_ context.Context, matchID, teamID int64, playerIDs []int64) error {
	for _, pid := range playerIDs {
		if _, ok := f.rows[bkey(matchID, pid)]; !ok {
			f.rows[bkey(matchID, pid)] = model.BoxScore{MatchID: matchID, PlayerID: pid, TeamID: teamID}
		}
	}
	return nil
}

func (f *fakeBoxRepo) ListByMatch(_ context.Context, matchID int64) ([]model.BoxScore, error) {
	var res []model.BoxScore
	for _, b := range f.rows {
		if b.MatchID == matchID {
			res = append(res, b)
		}
	}
	return res, nil
}

func (f *fakeBoxRepo) Get(_ context.Context, matchID, playerID int64) (model.BoxScore, error) {
	b, ok := f.rows[bkey(matchID, playerID)]
	if !ok {
		return model.BoxScore{}, repository.ErrNotFound
	}
	return b, nil
}

var _ repository.BoxScoreRepository = (*fakeBoxRepo)(nil)

type fakeTx struct{}

func (f *fakeTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

var _ repository.TxManager = (*fakeTx)(nil)

type testEnv struct {
	matches *fakeMatchRepo
	events  *fakeEventRepo
	box     *fakeBoxRepo
	mgr     *engine.Manager
	matchsv service.MatchService
	eventsv service.EventService
}

func newTestEnv() *testEnv {
	log := zerolog.New(io.Discard)
	matches := newFakeMatchRepo()
	events := newFakeEventRepo()
	box := newFakeBoxRepo()
	tx := &fakeTx{}
	store := service.NewEngineStore(matches, events, box)
	pub := engine.NewPublisher(store, log, engine.WithRetry(1, time.Millisecond))
	rules := engine.DefaultRules()
	mgr := engine.NewManager(store, tx, pub, rules, log)
	return &testEnv{
		matches: matches,
		events:  events,
		box:     box,
		mgr:     mgr,
		matchsv: service.NewMatchService(matches, box, tx, mgr, rules, nil, log),
		eventsv: service.NewEventService(events, box, mgr, log),
	}
}

func validCreateInput() service.CreateMatchInput {
	return service.CreateMatchInput{
		HomeTeamID:   10,
		AwayTeamID:   20,
		HomeTeamName: "Lakers",
		AwayTeamName: "Celtics",
		Venue:        "Crypto.com Arena",
		Date:         time.Now().Add(time.Hour),
		HomeRoster:   []int64{101, 102},
		AwayRoster:   []int64{201, 202},
	}
}

func TestMatchService_CreateMatch_Validation(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		name   string
		mutate func(*service.CreateMatchInput)
		field  string
	}{
		{"missing home id", func(in *service.CreateMatchInput) { in.HomeTeamID = 0 }, "home_team_id"},
		{"missing away id", func(in *service.CreateMatchInput) { in.AwayTeamID = -1 }, "away_team_id"},
		{"same teams", func(in *service.CreateMatchInput) { in.AwayTeamID = in.HomeTeamID }, "teams"},
		{"missing home name", func(in *service.CreateMatchInput) { in.HomeTeamName = "" }, "home_team_name"},
		{"missing away name", func(in *service.CreateMatchInput) { in.AwayTeamName = "" }, "away_team_name"},
		{"missing date", func(in *service.CreateMatchInput) { in.Date = time.Time{} }, "date"},
		{"bad roster id", func(in *service.CreateMatchInput) { in.HomeRoster = []int64{0} }, "home_roster"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateInput()
			tc.mutate(&in)
			_, err := env.matchsv.CreateMatch(context.Background(), in)
			if !errors.Is(err, service.ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
			found := false
			for _, fe := range service.FieldErrors(err) {
				if fe.Field == tc.field {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected field %s in %v", tc.field, service.FieldErrors(err))
			}
		})
	}
}

func TestMatchService_CreateMatch_SeedsRosters(t *testing.T) {
	env := newTestEnv()

	m, err := env.matchsv.CreateMatch(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if m.Status != model.StatusScheduled || m.Period != 1 || m.TimeRemaining != 600 {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if m.HomeTimeouts != 7 || m.AwayTimeouts != 7 {
		t.Fatalf("timeouts %d/%d, want 7/7", m.HomeTimeouts, m.AwayTimeouts)
	}

	rows, err := env.eventsv.ListBoxScores(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("list box scores: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("seeded %d box rows, want 4", len(rows))
	}
	for _, b := range rows {
		if b.Points != 0 {
			t.Fatalf("seeded row must be zeroed: %+v", b)
		}
	}
}

func TestMatchService_GetMatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.matchsv.GetMatch(ctx, 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing match: got %v", err)
	}
	if _, err := env.matchsv.GetMatch(ctx, 0); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("bad id: got %v", err)
	}

	m, err := env.matchsv.CreateMatch(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := env.matchsv.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.HomeTeamName != "Lakers" {
		t.Fatalf("got %+v", got)
	}
}

func TestMatchService_LifecycleRoundTrip(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	m, err := env.matchsv.CreateMatch(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	snap, err := env.matchsv.Start(ctx, m.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Status != model.StatusInProgress {
		t.Fatalf("status = %s", snap.Status)
	}

	if _, err := env.matchsv.RecordScore(ctx, m.ID, model.SideHome, 2); err != nil {
		t.Fatalf("score: %v", err)
	}

	// The resident session is fresher than the row between publishes.
	got, err := env.matchsv.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.HomeScore != 2 {
		t.Fatalf("home score = %d, want 2", got.HomeScore)
	}

	final, err := env.matchsv.Finish(ctx, m.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if final.Status != model.StatusFinished {
		t.Fatalf("final status = %s", final.Status)
	}

	// Finish retires the session; subsequent reads hit the archive.
	if _, ok := env.mgr.Peek(m.ID); ok {
		t.Fatal("session must be evicted after finish")
	}
	row, err := env.matches.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.Status != model.StatusFinished || row.HomeScore != 2 {
		t.Fatalf("persisted row stale: %+v", row)
	}
}

func TestMatchService_ClockControls(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	m, err := env.matchsv.CreateMatch(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.matchsv.StartClock(ctx, m.ID); !errors.Is(err, engine.ErrMatchNotActive) {
		t.Fatalf("clock before start: got %v", err)
	}

	if _, err := env.matchsv.Start(ctx, m.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := env.matchsv.StartClock(ctx, m.ID); err != nil {
		t.Fatalf("start clock: %v", err)
	}
	snap, err := env.matchsv.PauseClock(ctx, m.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if snap.Tag != "paused" {
		t.Fatalf("tag = %q", snap.Tag)
	}
	snap, err = env.matchsv.ResetClock(ctx, m.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if snap.TimeRemaining != 600 {
		t.Fatalf("remaining = %d", snap.TimeRemaining)
	}
	if _, err := env.matchsv.Save(ctx, m.ID); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestMatchService_LiveSnapshotFallsBackToRow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	m, err := env.matchsv.CreateMatch(ctx, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.matchsv.Start(ctx, m.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := env.matchsv.RecordScore(ctx, m.ID, model.SideAway, 3); err != nil {
		t.Fatalf("score: %v", err)
	}
	if _, err := env.matchsv.Finish(ctx, m.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// No resident session, no cache: the persisted row serves the read.
	snap, err := env.matchsv.LiveSnapshot(ctx, m.ID)
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if snap.AwayScore != 3 || snap.Status != model.StatusFinished {
		t.Fatalf("snapshot %+v", snap)
	}
}
