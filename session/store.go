package session

import (
	"context"
	"time"

	"github.com/sessionworks/go-session-server/token"
)

// RefreshToken is the server-side record of an issued refresh token. The
// client only ever holds the Token value; the store is the sole authority
// for revocation state.
type RefreshToken struct {
	Token     string
	UserID    string
	Type      token.Type
	ExpiresAt time.Time
}

// TokenStore persists refresh tokens. Access tokens are never stored.
//
// DeleteIfPresent must be a single atomic conditional operation (a
// conditional delete reporting whether a row was removed), never a
// read-then-delete: rotation relies on it to guarantee that of two
// concurrent consumers of the same token value at most one succeeds.
type TokenStore interface {
	Insert(ctx context.Context, rec *RefreshToken) error
	// Find returns internal/errors.ErrNotFound when no record matches.
	Find(ctx context.Context, value string) (*RefreshToken, error)
	DeleteIfPresent(ctx context.Context, value string) (bool, error)
}
