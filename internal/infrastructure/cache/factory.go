package cache

import (
	"time"

	appresale "github.com/diecast/backoffice/internal/application/presale"
	"go.uber.org/zap"
)

// SummaryCacheFactory creates summary caches with graceful degradation:
// when Redis is unreachable it can fall back to an in-memory cache so the
// summary endpoint keeps working.
type SummaryCacheFactory struct {
	redisConfig      RedisConfig
	ttl              time.Duration
	logger           *zap.Logger
	inMemoryFallback bool
}

// FactoryOption configures the factory
type FactoryOption func(*SummaryCacheFactory)

// WithLogger sets the logger used to report fallback decisions
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *SummaryCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback enables falling back to an in-memory cache when the
// Redis connection fails
func WithInMemoryFallback() FactoryOption {
	return func(f *SummaryCacheFactory) {
		f.inMemoryFallback = true
	}
}

// NewSummaryCacheFactory creates a new factory
func NewSummaryCacheFactory(redisConfig RedisConfig, ttl time.Duration, opts ...FactoryOption) *SummaryCacheFactory {
	f := &SummaryCacheFactory{
		redisConfig: redisConfig,
		ttl:         ttl,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the summary cache, preferring Redis
func (f *SummaryCacheFactory) Create() (appresale.SummaryCache, error) {
	redisCache, err := NewRedisSummaryCache(f.redisConfig, f.ttl)
	if err == nil {
		f.logger.Info("using Redis summary cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port),
			zap.Duration("ttl", f.ttl))
		return redisCache, nil
	}

	if !f.inMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory summary cache",
		zap.String("host", f.redisConfig.Host),
		zap.Int("port", f.redisConfig.Port),
		zap.Error(err))
	return NewInMemorySummaryCache(f.ttl), nil
}
