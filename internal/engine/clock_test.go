package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/basketball-live-service/internal/engine"
	"github.com/maxviazov/basketball-live-service/internal/model"
)

// fastRules shrinks the tick so clock scenarios complete in milliseconds.
func fastRules(periodSeconds, regulationPeriods int) engine.Rules {
	return engine.Rules{
		PeriodSeconds:     periodSeconds,
		RegulationPeriods: regulationPeriods,
		TickInterval:      2 * time.Millisecond,
	}
}

func TestStartClock_RequiresActiveMatch(t *testing.T) {
	mgr := newTestManager(newFakeStore(scheduledMatch(1)), fastRules(3, 2))
	sess := mustSession(t, mgr, 1)

	if err := sess.StartClock(context.Background()); !errors.Is(err, engine.ErrMatchNotActive) {
		t.Fatalf("got %v, want ErrMatchNotActive", err)
	}
	if sess.ClockRunning() {
		t.Fatal("no countdown should be running")
	}
}

func TestClock_ExpiryAdvancesRegulationPeriod(t *testing.T) {
	st := newFakeStore(scheduledMatch(1))
	mgr := newTestManager(st, fastRules(3, 2))
	sess := mustSession(t, mgr, 1)
	ctx := context.Background()

	if _, err := sess.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.StartClock(ctx); err != nil {
		t.Fatalf("start clock: %v", err)
	}

	// Period 1 runs out; the clock advances to period 2 and retires itself.
	waitFor(t, func() bool { return sess.Match().Period == 2 })

	m := sess.Match()
	if m.TimeRemaining != 3 {
		t.Fatalf("remaining = %d, want full period after advance", m.TimeRemaining)
	}
	if m.Status != model.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", m.Status)
	}
	if sess.ClockRunning() {
		t.Fatal("countdown must retire after advancing the period")
	}
}

func TestClock_PastRegulationStaysAtZero(t *testing.T) {
	m := scheduledMatch(1)
	m.Status = model.StatusInProgress
	m.Period = 2
	m.TimeRemaining = 2
	st := newFakeStore(m)
	mgr := newTestManager(st, fastRules(3, 2))
	sess := mustSession(t, mgr, 1)

	if err := sess.StartClock(context.Background()); err != nil {
		t.Fatalf("start clock: %v", err)
	}
	waitFor(t, func() bool { return sess.Match().TimeRemaining == 0 })

	got := sess.Match()
	if got.Period != 2 {
		t.Fatalf("period = %d, must not advance past regulation", got.Period)
	}
	if got.Status != model.StatusInProgress {
		t.Fatalf("status = %s, expiry must never finish a match", got.Status)
	}
	if sess.ClockRunning() {
		t.Fatal("countdown must retire at zero")
	}

	// Starting again with nothing on the clock is a quiet no-op.
	if err := sess.StartClock(context.Background()); err != nil {
		t.Fatalf("restart at zero: %v", err)
	}
	if sess.ClockRunning() {
		t.Fatal("no countdown should start with zero remaining")
	}
}

func TestStartClock_DoubleStartIsNoOp(t *testing.T) {
	m := scheduledMatch(1)
	m.Status = model.StatusInProgress
	mgr := newTestManager(newFakeStore(m), fastRules(600, 4))
	sess := mustSession(t, mgr, 1)
	ctx := context.Background()

	if err := sess.StartClock(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := sess.StartClock(ctx); err != nil {
		t.Fatalf("second start must be a no-op, got %v", err)
	}
	if !sess.ClockRunning() {
		t.Fatal("countdown should be running")
	}
	if _, err := sess.PauseClock(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}
}

func TestPauseClock_StopsCountdownAndPublishes(t *testing.T) {
	m := scheduledMatch(1)
	m.Status = model.StatusInProgress
	st := newFakeStore(m)
	mgr := newTestManager(st, fastRules(600, 4))
	sess := mustSession(t, mgr, 1)
	ctx := context.Background()

	if err := sess.StartClock(ctx); err != nil {
		t.Fatalf("start clock: %v", err)
	}
	waitFor(t, func() bool { return sess.Match().TimeRemaining < 600 })

	snap, err := sess.PauseClock(ctx)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if snap.Tag != "paused" {
		t.Fatalf("tag = %q, want paused", snap.Tag)
	}
	if sess.ClockRunning() {
		t.Fatal("countdown must be stopped after pause")
	}
	if last, ok := st.lastSaved(); !ok || last.Tag != "paused" {
		t.Fatalf("pause must publish the paused snapshot, got %+v ok=%v", last, ok)
	}

	// Pause waits for the countdown goroutine, so the clock is frozen for good.
	frozen := sess.Match().TimeRemaining
	time.Sleep(10 * time.Millisecond)
	if got := sess.Match().TimeRemaining; got != frozen {
		t.Fatalf("clock moved after pause: %d -> %d", frozen, got)
	}
}

func TestPauseClock_WithoutCountdownStillPublishes(t *testing.T) {
	m := scheduledMatch(1)
	m.Status = model.StatusInProgress
	st := newFakeStore(m)
	mgr := newTestManager(st, fastRules(600, 4))
	sess := mustSession(t, mgr, 1)

	if _, err := sess.PauseClock(context.Background()); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if st.savedCount() != 1 {
		t.Fatalf("pause is the operator's save point, got %d publishes", st.savedCount())
	}
}

func TestResetClock_RestoresFullPeriod(t *testing.T) {
	m := scheduledMatch(1)
	m.Status = model.StatusInProgress
	m.TimeRemaining = 42
	st := newFakeStore(m)
	mgr := newTestManager(st, fastRules(600, 4))
	sess := mustSession(t, mgr, 1)

	snap, err := sess.ResetClock(context.Background())
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if snap.TimeRemaining != 600 {
		t.Fatalf("remaining = %d, want 600", snap.TimeRemaining)
	}
	if st.savedCount() != 0 {
		t.Fatal("reset alone must not publish")
	}
}

func TestFinish_StopsRunningCountdown(t *testing.T) {
	m := scheduledMatch(1)
	m.Status = model.StatusInProgress
	st := newFakeStore(m)
	mgr := newTestManager(st, fastRules(600, 4))
	sess := mustSession(t, mgr, 1)
	ctx := context.Background()

	if err := sess.StartClock(ctx); err != nil {
		t.Fatalf("start clock: %v", err)
	}
	snap, err := sess.Finish(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if snap.TimeRemaining != 0 || snap.Status != model.StatusFinished {
		t.Fatalf("unexpected final snapshot: %+v", snap)
	}
	if sess.ClockRunning() {
		t.Fatal("finish must stop the countdown")
	}
}
