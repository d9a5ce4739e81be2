package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appresale "github.com/diecast/backoffice/internal/application/presale"
	"github.com/redis/go-redis/v9"
)

const defaultSummaryKey = "presale:active_summary"

// RedisSummaryCache caches the active pre-sale summary in Redis. This is
// suitable for distributed deployments where multiple instances need to
// share the read-side cache.
type RedisSummaryCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSummaryCache creates a new Redis-backed summary cache
func NewRedisSummaryCache(cfg RedisConfig, ttl time.Duration) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSummaryCache{
		client: client,
		key:    defaultSummaryKey,
		ttl:    ttl,
	}, nil
}

// NewRedisSummaryCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisSummaryCacheWithClient(client *redis.Client, key string, ttl time.Duration) *RedisSummaryCache {
	if key == "" {
		key = defaultSummaryKey
	}
	return &RedisSummaryCache{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Get returns the cached summary, or nil when no fresh entry exists
func (c *RedisSummaryCache) Get(ctx context.Context) (*appresale.ActiveSummaryResponse, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var summary appresale.ActiveSummaryResponse
	if err := json.Unmarshal(payload, &summary); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it
		return nil, nil
	}
	return &summary, nil
}

// Set stores the summary with the configured TTL
func (c *RedisSummaryCache) Set(ctx context.Context, summary *appresale.ActiveSummaryResponse) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary
func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

// Ensure RedisSummaryCache implements SummaryCache
var _ appresale.SummaryCache = (*RedisSummaryCache)(nil)
