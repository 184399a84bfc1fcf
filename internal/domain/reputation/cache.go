package reputation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statsCacheKey = "chesswatch:stats:global"

// StatsCache is a Redis cache-aside layer for global statistics, the only
// full-scan read. All operations are no-ops when Redis is not configured.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache creates the cache; client may be nil
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: client, ttl: ttl}
}

// Get returns cached statistics, or false on a miss
func (c *StatsCache) Get(ctx context.Context) (*GlobalStats, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Stats cache read failed")
		}
		return nil, false
	}

	var stats GlobalStats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.Warn().Err(err).Msg("Stats cache entry corrupt, ignoring")
		return nil, false
	}
	return &stats, true
}

// Set stores statistics with the configured TTL
func (c *StatsCache) Set(ctx context.Context, stats *GlobalStats) {
	if c == nil || c.rdb == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statsCacheKey, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Stats cache write failed")
	}
}

// Invalidate drops the cached statistics after a mutation
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, statsCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("Stats cache invalidation failed")
	}
}
