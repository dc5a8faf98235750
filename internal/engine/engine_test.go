package engine_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/basketball-live-service/internal/engine"
	"github.com/maxviazov/basketball-live-service/internal/model"
)

// fakeStore is an in-memory engine.Store. Seq assignment mirrors the real
// repository: next per-match sequence on append, additive box-score upserts.
type fakeStore struct {
	mu      sync.Mutex
	matches map[int64]model.Match
	saved   []model.Snapshot
	events  map[int64][]model.Event
	box     map[string]model.BoxScore
	nextID  int64

	loadErr   error
	saveErr   error
	appendErr error
	upsertErr error
}

func newFakeStore(matches ...model.Match) *fakeStore {
	st := &fakeStore{
		matches: map[int64]model.Match{},
		events:  map[int64][]model.Event{},
		box:     map[string]model.BoxScore{},
	}
	for _, m := range matches {
		st.matches[m.ID] = m
	}
	return st
}

func boxKey(matchID, playerID int64) string { return fmt.Sprintf("%d/%d", matchID, playerID) }

func (f *fakeStore) LoadMatch(_ context.Context, id int64) (model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return model.Match{}, f.loadErr
	}
	m, ok := f.matches[id]
	if !ok {
		return model.Match{}, fmt.Errorf("match %d not found", id)
	}
	return m, nil
}

func (f *fakeStore) SaveSnapshot(_ context.Context, id int64, snap model.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, snap)
	m := f.matches[id]
	m.HomeScore, m.AwayScore = snap.HomeScore, snap.AwayScore
	m.Period, m.TimeRemaining = snap.Period, snap.TimeRemaining
	m.HomeFouls, m.AwayFouls = snap.HomeFouls, snap.AwayFouls
	m.HomeTimeouts, m.AwayTimeouts = snap.HomeTimeouts, snap.AwayTimeouts
	m.Status = snap.Status
	f.matches[id] = m
	return nil
}

func (f *fakeStore) AppendEvent(_ context.Context, ev model.Event) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return model.Event{}, f.appendErr
	}
	f.nextID++
	ev.ID = f.nextID
	ev.Seq = int64(len(f.events[ev.MatchID])) + 1
	ev.CreatedAt = time.Now()
	f.events[ev.MatchID] = append(f.events[ev.MatchID], ev)
	return ev, nil
}

func (f *fakeStore) UpsertBoxScore(_ context.Context, matchID, playerID int64, d model.StatDelta) (model.BoxScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return model.BoxScore{}, f.upsertErr
	}
	b := f.box[boxKey(matchID, playerID)]
	b.MatchID, b.PlayerID, b.TeamID = matchID, playerID, d.TeamID
	b.Points += d.Points
	b.Rebounds += d.Rebounds
	b.Assists += d.Assists
	b.Steals += d.Steals
	b.Blocks += d.Blocks
	b.Fouls += d.Fouls
	b.FieldGoalsMade += d.FieldGoalsMade
	b.FieldGoalsAttempted += d.FieldGoalsAttempted
	b.ThreePointersMade += d.ThreePointersMade
	b.ThreePointersAttempted += d.ThreePointersAttempted
	b.FreeThrowsMade += d.FreeThrowsMade
	b.FreeThrowsAttempted += d.FreeThrowsAttempted
	f.box[boxKey(matchID, playerID)] = b
	return b, nil
}

func (f *fakeStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeStore) lastSaved() (model.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return model.Snapshot{}, false
	}
	return f.saved[len(f.saved)-1], true
}

func (f *fakeStore) eventCount(matchID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events[matchID])
}

func (f *fakeStore) boxScore(matchID, playerID int64) model.BoxScore {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.box[boxKey(matchID, playerID)]
}

var _ engine.Store = (*fakeStore)(nil)

// fakeTx runs the unit of work directly and restores the store's event and
// box-score state when it fails, mimicking a rollback.
type fakeTx struct{ st *fakeStore }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.st.mu.Lock()
	events := make(map[int64][]model.Event, len(f.st.events))
	for k, v := range f.st.events {
		events[k] = append([]model.Event(nil), v...)
	}
	box := make(map[string]model.BoxScore, len(f.st.box))
	for k, v := range f.st.box {
		box[k] = v
	}
	f.st.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.st.mu.Lock()
		f.st.events, f.st.box = events, box
		f.st.mu.Unlock()
		return err
	}
	return nil
}

var _ engine.TxRunner = (*fakeTx)(nil)

func newTestManager(st *fakeStore, rules engine.Rules) *engine.Manager {
	log := zerolog.New(io.Discard)
	pub := engine.NewPublisher(st, log, engine.WithRetry(1, time.Millisecond))
	return engine.NewManager(st, &fakeTx{st: st}, pub, rules, log)
}

func scheduledMatch(id int64) model.Match {
	return model.Match{
		ID:            id,
		HomeTeamID:    10,
		AwayTeamID:    20,
		HomeTeamName:  "Lakers",
		AwayTeamName:  "Celtics",
		Date:          time.Now(),
		Status:        model.StatusScheduled,
		Period:        1,
		TimeRemaining: 600,
		HomeTimeouts:  7,
		AwayTimeouts:  7,
	}
}

func mustSession(t *testing.T, mgr *engine.Manager, id int64) *engine.Session {
	t.Helper()
	sess, err := mgr.Session(context.Background(), id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return sess
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
