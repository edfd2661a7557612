package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ukydev/trip-ledger/internal/ledger"
)

const summaryPrefix = "cache:summary:"

// DefaultSummaryTTL applies when no TTL is configured.
const DefaultSummaryTTL = 5 * time.Minute

// SummaryStore caches computed year summaries.
type SummaryStore interface {
	Get(ctx context.Context, vehicleID string, year int) (*ledger.YearSummary, error)
	Set(ctx context.Context, summary *ledger.YearSummary) error
	InvalidateVehicle(ctx context.Context, vehicleID string) error
}

// SummaryCache stores year summaries in Redis. A cache with a nil client
// is disabled: every lookup misses and writes are dropped.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a SummaryCache.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func summaryKey(vehicleID string, year int) string {
	return fmt.Sprintf("%s%s:%d", summaryPrefix, vehicleID, year)
}

// Get returns the cached summary, or nil on a miss.
func (c *SummaryCache) Get(ctx context.Context, vehicleID string, year int) (*ledger.YearSummary, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, summaryKey(vehicleID, year)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var summary ledger.YearSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Set stores a summary under its vehicle and year.
func (c *SummaryCache) Set(ctx context.Context, summary *ledger.YearSummary) error {
	if c.client == nil || summary == nil {
		return nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey(summary.VehicleID, summary.Year), data, c.ttl).Err()
}

// InvalidateVehicle drops every cached year of a vehicle. A trip edit can
// shift the carry-over of all later years, so single-year invalidation is
// not enough.
func (c *SummaryCache) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	if c.client == nil {
		return nil
	}
	pattern := summaryPrefix + vehicleID + ":*"
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
