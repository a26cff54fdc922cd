package credentials

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/errtypes"
	"github.com/effective-security/keybroker/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// EndpointCredentials are the operator configured credentials of an endpoint.
// Either value may be set to UserProvided.
type EndpointCredentials struct {
	// Name of the endpoint, used as the user key namespace
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// UserProvidesKey returns true if the API key is supplied by the user
func (c *EndpointCredentials) UserProvidesKey() bool {
	return IsUserProvided(c.APIKey)
}

// UserProvidesURL returns true if the base URL is supplied by the user
func (c *EndpointCredentials) UserProvidesURL() bool {
	return IsUserProvided(c.BaseURL)
}

// Resolved are the credentials to use for a request.
type Resolved struct {
	APIKey    string
	BaseURL   string
	KeySource CredentialSource
	URLSource CredentialSource
}

// Resolver resolves endpoint credentials for a user.
type Resolver struct {
	store KeyStore
	now   func() time.Time
}

// NewResolver returns Resolver backed by the user key store.
func NewResolver(store KeyStore) *Resolver {
	return &Resolver{
		store: store,
		now:   time.Now,
	}
}

// WithClock sets the time source used for expiry checks.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns API key and base URL for the endpoint.
// User supplied values are fetched only after the expiry check succeeded.
func (r *Resolver) Resolve(ctx context.Context, userID string, ep EndpointCredentials) (*Resolved, error) {
	res := &Resolved{
		APIKey:  ep.APIKey,
		BaseURL: ep.BaseURL,
	}

	userKey := ep.UserProvidesKey()
	userURL := ep.UserProvidesURL()
	if userKey || userURL {
		values, err := r.userValues(ctx, userID, ep.Name)
		if err != nil {
			r.failed(ctx, ep.Name, err)
			return nil, err
		}
		if userKey {
			res.APIKey = values.APIKey
			res.KeySource = UserSupplied
		}
		if userURL {
			res.BaseURL = values.BaseURL
			res.URLSource = UserSupplied
		}
		if userKey && res.APIKey == "" {
			err = errtypes.NoUserKey(ep.Name)
			r.failed(ctx, ep.Name, err)
			return nil, err
		}
	}

	metricskey.StatsCredentialsResolved.IncrCounter(1, ep.Name, res.KeySource.String())
	return res, nil
}

func (r *Resolver) userValues(ctx context.Context, userID, endpoint string) (*UserKeyValues, error) {
	if userID == "" {
		return nil, errtypes.NoUserKey(endpoint)
	}
	if r.store == nil {
		return nil, errors.Errorf("user key store is not configured for endpoint %q", endpoint)
	}

	expiry, err := r.store.GetUserKeyExpiry(ctx, userID, endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user key expiry")
	}
	if err = CheckKeyExpiry(expiry, endpoint, r.now()); err != nil {
		return nil, err
	}

	values, err := r.store.GetUserKeyValues(ctx, userID, endpoint)
	if err != nil {
		if _, ok := errtypes.KindOf(err); ok {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to get user key values")
	}
	if values == nil {
		return nil, errtypes.NoUserKey(endpoint)
	}
	return values, nil
}

func (r *Resolver) failed(ctx context.Context, endpoint string, err error) {
	kind, ok := errtypes.KindOf(err)
	if !ok {
		kind = "error"
	}
	metricskey.StatsCredentialsFailed.IncrCounter(1, endpoint, string(kind))
	logger.ContextKV(ctx, xlog.DEBUG,
		"reason", "resolve_credentials",
		"endpoint", endpoint,
		"kind", kind)
}
