package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/edulink/internal/config"
	"github.com/stemsi/edulink/internal/model"
)

// StatisticsCache keeps computed cross-school statistics in Redis.
type StatisticsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatisticsCache creates a new StatisticsCache.
func NewStatisticsCache(rdb *redis.Client, ttl time.Duration) *StatisticsCache {
	return &StatisticsCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached statistics, or nil on a miss.
func (c *StatisticsCache) Get(ctx context.Context, personID string) (*model.Statistics, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.PersonStatisticsKey(personID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats model.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// versionTTL bounds how long an idle person's version counter is kept.
const versionTTL = 24 * time.Hour

// setIfVersion stores the statistics only while the version counter still holds the
// version the caller read before computing them. A missing counter is version 0.
var setIfVersion = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current ~= tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Version returns the person's invalidation counter.
func (c *StatisticsCache) Version(ctx context.Context, personID string) (int64, error) {
	v, err := c.rdb.Get(ctx, config.CacheKey.PersonStatisticsVersionKey(personID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores statistics with the configured TTL unless the person was invalidated
// after version was read.
func (c *StatisticsCache) Set(ctx context.Context, personID string, version int64, stats model.Statistics) error {
	if c.ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	keys := []string{
		config.CacheKey.PersonStatisticsVersionKey(personID),
		config.CacheKey.PersonStatisticsKey(personID),
	}
	return setIfVersion.Run(ctx, c.rdb, keys, version, raw, c.ttl.Milliseconds()).Err()
}

// Invalidate drops the cached statistics of a person, bumps the version so in-flight
// computations are not cached, and queues the person for a background refresh.
func (c *StatisticsCache) Invalidate(ctx context.Context, personID string) error {
	versionKey := config.CacheKey.PersonStatisticsVersionKey(personID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, versionTTL)
		pipe.Del(ctx, config.CacheKey.PersonStatisticsKey(personID))
		pipe.RPush(ctx, config.WorkerKey.StatisticsRefreshQueue, personID)
		return nil
	})
	return err
}
