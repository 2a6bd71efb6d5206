package session

import (
	"context"
	"time"
)

// Session represents an authenticated account session.
// It intentionally stores only identity pointers, not auth state.
type Session struct {
	ID        string    // unique session identifier
	AccountID string    // references accounts.id
	CreatedAt time.Time
	ExpiresAt time.Time // absolute expiry, no sliding window
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) for unknown or expired sessions.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
