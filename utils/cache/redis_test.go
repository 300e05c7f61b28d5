package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable(t *testing.T, prefix string) *RedisCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewWithClient(client, prefix)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewWithClientPrefixesKeys(t *testing.T) {
	c := unreachable(t, "test:")
	assert.Equal(t, "test:catalog:universities", c.Key("catalog:universities"))
}

func TestUnreachableServerIsNotAMiss(t *testing.T) {
	c := unreachable(t, "test:")
	ctx := context.Background()

	_, err := c.Get(ctx, "stats")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, c.Ping(ctx))
}
