package credentials

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/errtypes"
	"github.com/redis/go-redis/v9"
)

// The redis store keeps sealed user keys under
// `/<prefix>/userkeys/<userID>/<endpoint>`, with user ID and endpoint path escaped.
// Keys are stored without TTL, so that an expired key is reported as expired
// rather than missing.

type redisStore struct {
	client redis.UniversalClient
	prefix string
	sealer Sealer
}

// NewRedisStore returns Store backed by Redis
func NewRedisStore(client redis.UniversalClient, prefix string, sealer Sealer) Store {
	return &redisStore{
		client: client,
		prefix: prefix,
		sealer: sealer,
	}
}

func (m *redisStore) key(userID, endpoint string) string {
	return strings.Join([]string{"", m.prefix, "userkeys", url.PathEscape(userID), url.PathEscape(endpoint)}, "/")
}

func (m *redisStore) get(ctx context.Context, userID, endpoint string) (*sealedKey, error) {
	data, err := m.client.Get(ctx, m.key(userID, endpoint)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user key from Redis")
	}

	sk := new(sealedKey)
	if err = json.Unmarshal([]byte(data), sk); err != nil {
		return nil, errtypes.InvalidUserKey(endpoint)
	}
	return sk, nil
}

func (m *redisStore) GetUserKeyExpiry(ctx context.Context, userID, endpoint string) (*KeyExpiry, error) {
	sk, err := m.get(ctx, userID, endpoint)
	if err != nil || sk == nil {
		return nil, err
	}
	return &KeyExpiry{ExpiresAt: sk.ExpiresAt}, nil
}

func (m *redisStore) GetUserKeyValues(ctx context.Context, userID, endpoint string) (*UserKeyValues, error) {
	sk, err := m.get(ctx, userID, endpoint)
	if err != nil {
		return nil, err
	}
	if sk == nil {
		return nil, errtypes.NoUserKey(endpoint)
	}
	return open(m.sealer, userID, endpoint, sk)
}

func (m *redisStore) UpdateUserKey(ctx context.Context, rec *UserKeyRecord) error {
	sk, err := seal(m.sealer, rec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(sk)
	if err != nil {
		return errors.Wrap(err, "failed to marshal user key")
	}
	err = m.client.Set(ctx, m.key(rec.UserID, rec.Endpoint), data, 0).Err()
	if err != nil {
		return errors.Wrap(err, "failed to store user key in Redis")
	}
	return nil
}

func (m *redisStore) DeleteUserKey(ctx context.Context, userID, endpoint string) error {
	err := m.client.Del(ctx, m.key(userID, endpoint)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to delete user key from Redis")
	}
	return nil
}
