package initializer

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/assistantsapi"
	"github.com/effective-security/keybroker/pkg/azureconfig"
	"github.com/effective-security/keybroker/pkg/config"
	"github.com/effective-security/keybroker/pkg/credentials"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is the key prefix used when Redis prefix is not configured
const DefaultRedisPrefix = "keybroker"

// Bootstrap returns Initializer and the user key store built from the configuration.
// Stores are kept in Redis if configured, otherwise in memory.
// The caller must call Initializer.Close to release the Redis connection.
// The Azure configuration is watched until ctx is done, if configured.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Initializer, credentials.Store, error) {
	holder := azureconfig.NewHolder(nil)
	if cfg.AzureConfig != "" {
		if err := holder.Reload(cfg.AzureConfig); err != nil {
			return nil, nil, errors.WithMessagef(err, "failed to load Azure configuration")
		}
		if cfg.WatchAzureConfig {
			if err := holder.Watch(ctx, cfg.AzureConfig); err != nil {
				return nil, nil, err
			}
		}
	}

	var sealer credentials.Sealer
	if cfg.CredsKey != "" {
		var err error
		sealer, err = credentials.NewSealer(cfg.CredsKey)
		if err != nil {
			return nil, nil, err
		}
	} else {
		for name, ep := range cfg.Endpoints {
			if ep != nil && (ep.UserProvidesKey() || ep.UserProvidesURL()) {
				return nil, nil, errors.Errorf("creds_key is required for user provided credentials of %q", name)
			}
		}
	}

	var (
		store   credentials.Store
		cache   assistantsapi.AffinityCache
		closers []io.Closer
	)
	if cfg.Redis != nil {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid Redis URL")
		}
		client := redis.NewClient(opts)
		if err = client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrap(err, "failed to connect to Redis")
		}

		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		if sealer != nil {
			store = credentials.NewRedisStore(client, prefix, sealer)
		}
		cache = assistantsapi.NewRedisCache(client, prefix)
		closers = append(closers, client)
	} else {
		if sealer != nil {
			store = credentials.NewMemoryStore(sealer)
		}
		cache = assistantsapi.NewMemoryCache()
	}

	logger.KV(xlog.INFO,
		"status", "bootstrap",
		"cache", cache.Name(),
		"user_keys", store != nil,
		"azure_groups", holder.Snapshot() != nil)

	var keys credentials.KeyStore
	if store != nil {
		keys = store
	}
	ini := New(cfg, holder, keys, cache)
	ini.closers = closers
	return ini, store, nil
}
