package assistantsapi_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/effective-security/keybroker/pkg/assistantsapi"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func testCache(t *testing.T, cache assistantsapi.AffinityCache) {
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "asst_1")
	require.NoError(t, err)
	assert.False(t, ok)

	placeholder := &assistantsapi.VectorStore{}
	got, err := cache.PutIfAbsent(ctx, "asst_1", placeholder)
	require.NoError(t, err)
	assert.True(t, got.IsPlaceholder())

	// first writer wins
	got, err = cache.PutIfAbsent(ctx, "asst_1", &assistantsapi.VectorStore{ID: "vs_1", Name: "asst_1_vector_store"})
	require.NoError(t, err)
	assert.True(t, got.IsPlaceholder())

	vs := &assistantsapi.VectorStore{ID: "vs_1", Name: "asst_1_vector_store", Status: "completed"}
	require.NoError(t, cache.Put(ctx, "asst_1", vs))
	got, ok, err = cache.Get(ctx, "asst_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *vs, *got)

	// IDs with path segments are distinct entries
	for _, other := range []string{"x/../asst_1", "asst_1/.", "./asst_1"} {
		_, ok, err = cache.Get(ctx, other)
		require.NoError(t, err, other)
		assert.False(t, ok, other)
	}

	require.NoError(t, cache.Delete(ctx, "asst_1"))
	_, ok, err = cache.Get(ctx, "asst_1")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, cache.Delete(ctx, "asst_1"))
}

func Test_MemoryCache(t *testing.T) {
	t.Parallel()
	cache := assistantsapi.NewMemoryCache()
	assert.Equal(t, "memory", cache.Name())
	testCache(t, cache)
}

func Test_RedisCache(t *testing.T) {
	t.Parallel()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7",
		testcontainers.WithConfigModifier(func(config *container.Config) {
			config.Env = []string{
				"ALLOW_EMPTY_PASSWORD=yes",
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)
	options, err := redis.ParseURL(host)
	require.NoError(t, err)
	client := redis.NewClient(options)
	require.NoError(t, client.Ping(ctx).Err(), "failed to connect to Redis")

	root := fmt.Sprintf("test-%d", time.Now().Unix())
	cache := assistantsapi.NewRedisCache(client, root)
	assert.Equal(t, "redis", cache.Name())
	testCache(t, cache)

	// shared by clients of two processes
	up, srv := newUpstream(t, 100)
	c1 := up.client(assistantsapi.NewRedisCache(client, root), srv)
	c2 := up.client(assistantsapi.NewRedisCache(client, root), srv)

	vs1, err := c1.VectorStores.Create(ctx, "asst_R")
	require.NoError(t, err)
	vs2, err := c2.VectorStores.Create(ctx, "asst_R")
	require.NoError(t, err)
	assert.Equal(t, vs1.ID, vs2.ID)
	_, create := up.calls()
	assert.Equal(t, 1, create)

	require.NoError(t, client.Set(ctx, "/"+root+"/vectorstores/asst_bad", "not-json", 0).Err())
	_, _, err = cache.Get(ctx, "asst_bad")
	assert.Error(t, err)
}
