// Package credentials resolves the API key and base URL of an endpoint,
// either from operator configuration or from keys stored by the user.
package credentials

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/keybroker/pkg/errtypes"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/keybroker", "credentials")

// UserProvided is the configuration marker for values supplied by the user.
const UserProvided = "user_provided"

// CredentialSource specifies where a credential value originates.
type CredentialSource int

const (
	// OperatorSupplied values come from process configuration.
	OperatorSupplied CredentialSource = iota
	// UserSupplied values come from the user key store.
	UserSupplied
)

func (s CredentialSource) String() string {
	if s == UserSupplied {
		return "user"
	}
	return "operator"
}

// IsUserProvided returns true if the configured value is the user provided marker.
func IsUserProvided(value string) bool {
	return value == UserProvided
}

// CheckKeyExpiry returns ExpiredUserKey error if the key is past its expiry at now.
func CheckKeyExpiry(expiry *KeyExpiry, endpoint string, now time.Time) error {
	if expiry == nil {
		return errtypes.NoUserKey(endpoint)
	}
	if !expiry.ExpiresAt.IsZero() && expiry.ExpiresAt.Before(now) {
		return errtypes.ExpiredUserKey(endpoint, expiry.ExpiresAt)
	}
	return nil
}

// sealedKey is the persisted form of a user key
type sealedKey struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

func seal(sealer Sealer, rec *UserKeyRecord) (*sealedKey, error) {
	if rec == nil || rec.UserID == "" || rec.Endpoint == "" {
		return nil, errors.New("user ID and endpoint are required")
	}
	js, err := json.Marshal(UserKeyValues{APIKey: rec.APIKey, BaseURL: rec.BaseURL})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal user key")
	}
	value, err := sealer.Seal(rec.UserID, js)
	if err != nil {
		return nil, err
	}
	return &sealedKey{Value: value, ExpiresAt: rec.ExpiresAt}, nil
}

func open(sealer Sealer, userID, endpoint string, sk *sealedKey) (*UserKeyValues, error) {
	js, err := sealer.Open(userID, sk.Value)
	if err != nil {
		logger.KV(xlog.ERROR,
			"reason", "open_user_key",
			"endpoint", endpoint,
			"err", err.Error())
		return nil, errtypes.InvalidUserKey(endpoint)
	}
	var values UserKeyValues
	if err = json.Unmarshal(js, &values); err != nil {
		return nil, errtypes.InvalidUserKey(endpoint)
	}
	return &values, nil
}
