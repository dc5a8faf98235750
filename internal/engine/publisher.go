package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// SnapshotSink receives the persisted copy of a live snapshot.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, id int64, snap model.Snapshot) error
}

// LiveSink receives a best-effort copy of the snapshot for read traffic
// (scoreboard viewers). Failures here never affect the publish outcome.
type LiveSink interface {
	SetLive(ctx context.Context, snap model.Snapshot) error
}

const (
	defaultPublishTimeout  = 10 * time.Second
	defaultPublishAttempts = 3
	defaultPublishBackoff  = 250 * time.Millisecond
)

// Publisher serializes the current aggregate to the persistence collaborator.
// Publishing is selective by design: score changes, pause, finish, cancel and
// explicit saves — not every clock tick or counter adjustment. The in-memory
// session stays authoritative between publishes, so a failed publish is
// recoverable and retried with backoff rather than treated as fatal.
type Publisher struct {
	store    SnapshotSink
	live     LiveSink // optional
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	log      zerolog.Logger
}

// PublisherOption tweaks publisher behavior.
type PublisherOption func(*Publisher)

// WithLiveSink attaches an optional live-read cache.
func WithLiveSink(sink LiveSink) PublisherOption {
	return func(p *Publisher) { p.live = sink }
}

// WithPublishTimeout bounds each store call.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRetry sets the attempt count and base backoff between attempts.
// The backoff scales linearly with the attempt number.
func WithRetry(attempts int, backoff time.Duration) PublisherOption {
	return func(p *Publisher) {
		if attempts > 0 {
			p.attempts = attempts
		}
		if backoff > 0 {
			p.backoff = backoff
		}
	}
}

// NewPublisher builds a publisher over the given snapshot store.
func NewPublisher(store SnapshotSink, logger zerolog.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:    store,
		timeout:  defaultPublishTimeout,
		attempts: defaultPublishAttempts,
		backoff:  defaultPublishBackoff,
		log:      logger.With().Str("module", "engine").Str("component", "publisher").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes the snapshot to the store, retrying with backoff. When every
// attempt fails the error unwraps to ErrPersistenceUnavailable; the caller's
// in-memory state is untouched and a later save can catch the store up.
func (p *Publisher) Publish(ctx context.Context, snap model.Snapshot) error {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		saveCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.store.SaveSnapshot(saveCtx, snap.MatchID, snap)
		cancel()
		if err == nil {
			p.pushLive(ctx, snap)
			return nil
		}
		lastErr = err
		p.log.Warn().Err(err).
			Int64("match_id", snap.MatchID).
			Int("attempt", attempt).
			Str("tag", snap.Tag).
			Msg("snapshot publish failed")
		if attempt == p.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, ctx.Err())
		case <-time.After(time.Duration(attempt) * p.backoff):
		}
	}
	return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, lastErr)
}

// pushLive mirrors the snapshot into the live-read cache, best effort.
func (p *Publisher) pushLive(ctx context.Context, snap model.Snapshot) {
	if p.live == nil {
		return
	}
	if err := p.live.SetLive(ctx, snap); err != nil {
		p.log.Debug().Err(err).Int64("match_id", snap.MatchID).Msg("live cache update failed")
	}
}
