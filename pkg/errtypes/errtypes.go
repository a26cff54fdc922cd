// Package errtypes defines the tagged errors returned while resolving endpoint
// credentials and provider configuration. Every failure carries a Kind so that
// callers never need to inspect message text.
package errtypes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// Kind identifies the class of a resolution failure.
type Kind string

const (
	// KindNoUserKey is returned when the endpoint expects a user supplied key,
	// but the user never stored one.
	KindNoUserKey Kind = "no_user_key"
	// KindExpiredUserKey is returned when the stored user key is past its expiry.
	KindExpiredUserKey Kind = "expired_user_key"
	// KindInvalidUserKey is returned when the stored user key can not be decoded.
	KindInvalidUserKey Kind = "invalid_user_key"
	// KindMissingAPIKey is returned when no source yields an API key.
	KindMissingAPIKey Kind = "missing_api_key"
	// KindInvalidConfig is returned when provider configuration can not be mapped.
	KindInvalidConfig Kind = "invalid_config"
)

// Error is a resolution failure.
type Error struct {
	Kind     Kind
	Endpoint string
	// ExpiredAt is set for KindExpiredUserKey
	ExpiredAt time.Time
	Message   string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindNoUserKey:
		return fmt.Sprintf("no API key stored for endpoint %q, please provide it", e.Endpoint)
	case KindExpiredUserKey:
		return fmt.Sprintf("API key for endpoint %q expired at %s, please provide it again",
			e.Endpoint, e.ExpiredAt.UTC().Format(time.RFC3339))
	case KindInvalidUserKey:
		return fmt.Sprintf("stored API key for endpoint %q is invalid, please provide it again", e.Endpoint)
	case KindMissingAPIKey:
		return fmt.Sprintf("API key for endpoint %q not provided, please provide it again", e.Endpoint)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Endpoint)
}

type payload struct {
	Type      Kind       `json:"type"`
	Endpoint  string     `json:"endpoint,omitempty"`
	ExpiredAt *time.Time `json:"expiredAt,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// MarshalJSON returns the machine readable payload rendered by the frontend.
func (e *Error) MarshalJSON() ([]byte, error) {
	p := payload{
		Type:     e.Kind,
		Endpoint: e.Endpoint,
		Message:  e.Error(),
	}
	if !e.ExpiredAt.IsZero() {
		t := e.ExpiredAt.UTC()
		p.ExpiredAt = &t
	}
	return json.Marshal(p)
}

// NoUserKey returns KindNoUserKey error
func NoUserKey(endpoint string) error {
	return errors.WithStack(&Error{Kind: KindNoUserKey, Endpoint: endpoint})
}

// ExpiredUserKey returns KindExpiredUserKey error
func ExpiredUserKey(endpoint string, expiredAt time.Time) error {
	return errors.WithStack(&Error{Kind: KindExpiredUserKey, Endpoint: endpoint, ExpiredAt: expiredAt})
}

// InvalidUserKey returns KindInvalidUserKey error
func InvalidUserKey(endpoint string) error {
	return errors.WithStack(&Error{Kind: KindInvalidUserKey, Endpoint: endpoint})
}

// MissingAPIKey returns KindMissingAPIKey error
func MissingAPIKey(endpoint string) error {
	return errors.WithStack(&Error{Kind: KindMissingAPIKey, Endpoint: endpoint})
}

// InvalidConfig returns KindInvalidConfig error with formatted message
func InvalidConfig(endpoint string, format string, args ...any) error {
	return errors.WithStack(&Error{
		Kind:     KindInvalidConfig,
		Endpoint: endpoint,
		Message:  fmt.Sprintf(format, args...),
	})
}

// As returns the resolution error from the chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of the resolution error in the chain.
func KindOf(err error) (Kind, bool) {
	if e, ok := As(err); ok {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
