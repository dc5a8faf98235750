package engine

import (
	"context"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// Store is the persistence collaborator the engine writes through. The engine
// owns live state in memory and treats the store as a sink: snapshots are
// overwritten whole, events appended, box scores upserted. Implementations
// live in the repository layer.
type Store interface {
	LoadMatch(ctx context.Context, id int64) (model.Match, error)
	SaveSnapshot(ctx context.Context, id int64, snap model.Snapshot) error
	AppendEvent(ctx context.Context, ev model.Event) (model.Event, error)
	UpsertBoxScore(ctx context.Context, matchID, playerID int64, delta model.StatDelta) (model.BoxScore, error)
}

// TxRunner executes a unit of work atomically. The aggregator relies on it so
// an event append and its box-score update land together or not at all.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
