package assistantsapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache returns AffinityCache shared by processes,
// entries are stored under `/<prefix>/vectorstores/<assistantID>`
// with the assistant ID path escaped
func NewRedisCache(client redis.UniversalClient, prefix string) AffinityCache {
	return &redisCache{
		client: client,
		prefix: prefix,
	}
}

func (m *redisCache) Name() string {
	return "redis"
}

func (m *redisCache) key(assistantID string) string {
	return strings.Join([]string{"", m.prefix, "vectorstores", url.PathEscape(assistantID)}, "/")
}

func (m *redisCache) Get(ctx context.Context, assistantID string) (*VectorStore, bool, error) {
	data, err := m.client.Get(ctx, m.key(assistantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to get vector store from Redis")
	}

	vs := new(VectorStore)
	if err = json.Unmarshal(data, vs); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode vector store")
	}
	return vs, true, nil
}

func (m *redisCache) PutIfAbsent(ctx context.Context, assistantID string, vs *VectorStore) (*VectorStore, error) {
	data, err := json.Marshal(vs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode vector store")
	}
	ok, err := m.client.SetNX(ctx, m.key(assistantID), data, 0).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to store vector store in Redis")
	}
	if ok {
		cp := *vs
		return &cp, nil
	}

	cur, found, err := m.Get(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	if !found {
		// deleted concurrently
		cp := *vs
		return &cp, nil
	}
	return cur, nil
}

func (m *redisCache) Put(ctx context.Context, assistantID string, vs *VectorStore) error {
	data, err := json.Marshal(vs)
	if err != nil {
		return errors.Wrap(err, "failed to encode vector store")
	}
	err = m.client.Set(ctx, m.key(assistantID), data, 0).Err()
	if err != nil {
		return errors.Wrap(err, "failed to store vector store in Redis")
	}
	return nil
}

func (m *redisCache) Delete(ctx context.Context, assistantID string) error {
	err := m.client.Del(ctx, m.key(assistantID)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to delete vector store from Redis")
	}
	return nil
}
