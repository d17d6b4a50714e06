package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/yatube/pkg/config"
)

func TestClearPageCacheRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("yatube:cache:index:/", "page"))
	require.NoError(t, mr.Set("yatube:cache:index:/?page=2", "page"))
	require.NoError(t, mr.Set("other:key", "kept"))
	mr.SetTTL("yatube:cache:index:/", 20*time.Second)

	err := clearPageCache(context.Background(), &config.Config{CacheBackend: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)

	assert.False(t, mr.Exists("yatube:cache:index:/"))
	assert.False(t, mr.Exists("yatube:cache:index:/?page=2"))
	assert.True(t, mr.Exists("other:key"))
}

func TestClearPageCacheMemoryBackend(t *testing.T) {
	err := clearPageCache(context.Background(), &config.Config{CacheBackend: "memory"})
	assert.ErrorIs(t, err, errInProcessCache)
	assert.ErrorContains(t, err, "CACHE_BACKEND=redis")

	assert.Contains(t, cacheClearCmd.Long, "CACHE_BACKEND=redis")
}
