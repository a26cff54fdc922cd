package credentials

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=../../mocks/mockcredentials/store_mock.gen.go -package mockcredentials

// KeyExpiry describes the expiry of a stored user key.
// Zero ExpiresAt means the key never expires.
type KeyExpiry struct {
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// UserKeyValues are the values a user stored for an endpoint.
type UserKeyValues struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseURL,omitempty"`
}

// UserKeyRecord is a user supplied credential for an endpoint.
type UserKeyRecord struct {
	UserID    string
	Endpoint  string
	APIKey    string
	BaseURL   string
	ExpiresAt time.Time
}

// KeyStore provides read access to user supplied credentials.
type KeyStore interface {
	// GetUserKeyExpiry returns the expiry of the key stored by the user for the endpoint,
	// or nil if the user never stored one.
	GetUserKeyExpiry(ctx context.Context, userID, endpoint string) (*KeyExpiry, error)
	// GetUserKeyValues returns the values stored by the user for the endpoint.
	GetUserKeyValues(ctx context.Context, userID, endpoint string) (*UserKeyValues, error)
}

// Writer provides write access to user supplied credentials.
type Writer interface {
	// UpdateUserKey creates or replaces the key stored by the user for the endpoint.
	UpdateUserKey(ctx context.Context, rec *UserKeyRecord) error
	// DeleteUserKey removes the key stored by the user for the endpoint.
	DeleteUserKey(ctx context.Context, userID, endpoint string) error
}

// Store is a KeyStore with write access.
type Store interface {
	KeyStore
	Writer
}
