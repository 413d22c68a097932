// Package metadata persists small client-side key/value settings, notably
// the refresh token that lets a session survive restarts.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"
	// KeyVisited is "true" once the onboarding page has been left.
	KeyVisited      = "visited"
)

// Repository is a string key/value store. Get returns ("", nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
