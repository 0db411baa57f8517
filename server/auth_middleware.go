package server

import (
	"context"
	"net/http"
	"strings"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
)

// RequireAuth validates a Bearer access token and attaches the resolved user
// identity to the request context for the duration of that request only.
//
// A missing credential is Unauthenticated; a present-but-invalid one is
// Unauthorized. Both answer 401, with distinct messages.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			writeError(w, err, "missing credentials")
			return
		}

		claims, err := s.sessions.Verify(r.Context(), raw, token.TypeAccess)
		if err != nil {
			if errs.Is(err, errs.ErrStoreUnavailable) {
				writeError(w, err, "authentication backend unavailable")
				return
			}
			writeError(w, err, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errs.Wrapf(errs.ErrUnauthenticated, "no authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errs.Wrapf(errs.ErrUnauthenticated, "malformed authorization header")
	}
	return parts[1], nil
}

// UserIDFromContext returns the identity attached by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok
}
