package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"roombook/internal/model"
)

const roomCatalogKey = "roombook:rooms"

// RoomCache keeps the room catalog in Redis so recommendation reads do not
// hit the database on every request. A nil client or zero TTL disables it;
// every method degrades to a miss or a no-op.
type RoomCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewRoomCache creates a catalog cache. rdb may be nil.
func NewRoomCache(rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RoomCache {
	return &RoomCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *RoomCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Get returns the cached catalog and whether it was present.
func (c *RoomCache) Get(ctx context.Context) ([]model.Room, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, roomCatalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("room cache read failed")
		}
		return nil, false
	}
	var rooms []model.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		c.logger.Warn().Err(err).Msg("room cache payload corrupt, dropping")
		c.Invalidate(ctx)
		return nil, false
	}
	return rooms, true
}

// Set stores the catalog with the configured TTL. Failures are logged, never
// surfaced; the cache is an optimization.
func (c *RoomCache) Set(ctx context.Context, rooms []model.Room) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(rooms)
	if err != nil {
		c.logger.Warn().Err(err).Msg("room cache marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, roomCatalogKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("room cache write failed")
	}
}

// Invalidate drops the cached catalog. Called after any room mutation.
func (c *RoomCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, roomCatalogKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("room cache invalidation failed")
	}
}
