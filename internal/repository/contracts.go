package repository

import (
	"context"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// It is an alias so the engine's transactional contract and this one stay
// interchangeable without adapter glue.
type TxFunc = func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// MatchRepository declares persistence operations for matches and their live
// snapshots. Snapshot saves overwrite the whole live aggregate — last write
// wins, never partial-field updates.
type MatchRepository interface {
	Create(ctx context.Context, m model.Match) (model.Match, error)
	GetByID(ctx context.Context, id int64) (model.Match, error)
	List(ctx context.Context, p Page) (PageResult[model.Match], error)
	SaveSnapshot(ctx context.Context, id int64, snap model.Snapshot) error
}

// EventRepository declares the append-only event ledger. Events are never
// updated or deleted; the sequence number is assigned per match on append.
type EventRepository interface {
	Append(ctx context.Context, e model.Event) (model.Event, error)
	ListByMatch(ctx context.Context, matchID int64) ([]model.Event, error)
}

// BoxScoreRepository declares per-player per-match stat accumulation.
// Upsert is additive: the delta is folded into the existing row, creating a
// zeroed row lazily on first touch.
type BoxScoreRepository interface {
	Upsert(ctx context.Context, matchID, playerID int64, d model.StatDelta) (model.BoxScore, error)
	Seed(ctx context.Context, matchID, teamID int64, playerIDs []int64) error
	ListByMatch(ctx context.Context, matchID int64) ([]model.BoxScore, error)
	Get(ctx context.Context, matchID, playerID int64) (model.BoxScore, error)
}
