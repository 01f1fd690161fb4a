package session

import (
	"context"
	"time"
)

// StateStore keeps short-lived authentication state: OAuth state nonces
// issued before the redirect, consumed exactly once on callback.
type StateStore interface {
	SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeOAuthState deletes the state and reports whether it existed.
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}
