package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func unreachableRedisConfig() RedisConfig {
	// Reserved TEST-NET address, connection attempts fail fast
	return RedisConfig{
		Host: "192.0.2.1",
		Port: 6379,
	}
}

func TestSummaryCacheFactory_FallsBackToInMemory(t *testing.T) {
	factory := NewSummaryCacheFactory(unreachableRedisConfig(), time.Minute,
		WithLogger(zap.NewNop()),
		WithInMemoryFallback())

	summaryCache, err := factory.Create()
	require.NoError(t, err)

	_, ok := summaryCache.(*InMemorySummaryCache)
	assert.True(t, ok, "expected in-memory fallback when Redis is unreachable")
}

func TestSummaryCacheFactory_ErrorsWithoutFallback(t *testing.T) {
	factory := NewSummaryCacheFactory(unreachableRedisConfig(), time.Minute)

	summaryCache, err := factory.Create()
	assert.Error(t, err)
	assert.Nil(t, summaryCache)
}
