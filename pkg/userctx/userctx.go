// Package userctx carries the authenticated user of a request in context.Context.
package userctx

import (
	"context"
)

// User is the identity of the authenticated caller.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

type contextKey int

const (
	keyUser contextKey = iota
)

// WithUser returns a new context with User value
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, keyUser, user)
}

// GetUser retrieves the User from the context
func GetUser(ctx context.Context) *User {
	if v, ok := ctx.Value(keyUser).(*User); ok {
		return v
	}
	return nil
}

// UserID retrieves the user ID from the provided context.
// If the context does not contain a User, it returns an empty string.
func UserID(ctx context.Context) string {
	if v := GetUser(ctx); v != nil {
		return v.ID
	}
	return ""
}
