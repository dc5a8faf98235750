// Package livecache mirrors live match snapshots into Redis so scoreboard
// read traffic is served without touching Postgres. The cache is a best-effort
// convenience: the engine session is authoritative and a cold or absent cache
// only means readers fall back to the database.
package livecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/basketball-live-service/internal/model"
)

// Cache wraps a Redis client with snapshot marshalling.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// New connects to Redis and verifies the connection with a short ping.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration, logger zerolog.Logger) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Cache{
		rdb: rdb,
		ttl: ttl,
		log: logger.With().Str("module", "livecache").Logger(),
	}, nil
}

func key(matchID int64) string { return fmt.Sprintf("live:match:%d", matchID) }

// SetLive stores the snapshot under live:match:<id> with the configured TTL.
func (c *Cache) SetLive(ctx context.Context, snap model.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.rdb.Set(ctx, key(snap.MatchID), payload, c.ttl).Err()
}

// GetLive fetches a cached snapshot. The second return is false on a miss.
func (c *Cache) GetLive(ctx context.Context, matchID int64) (model.Snapshot, bool, error) {
	payload, err := c.rdb.Get(ctx, key(matchID)).Bytes()
	if err == redis.Nil {
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, true, nil
}

// Close releases the underlying client.
func (c *Cache) Close() error { return c.rdb.Close() }
