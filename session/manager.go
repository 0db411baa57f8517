// Package session orchestrates issuance, verification, rotation, and
// revocation of access/refresh token pairs. It is the only component
// allowed to mint or kill sessions.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/internal/metrics"
	"github.com/sessionworks/go-session-server/token"
	"github.com/sessionworks/go-session-server/users"
)

// TokenInfo is the caller-visible half of an issued token.
type TokenInfo struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// TokenPair is the result of login, register, and refresh operations.
type TokenPair struct {
	Access  TokenInfo `json:"access"`
	Refresh TokenInfo `json:"refresh"`
}

type Manager struct {
	codec         *token.Codec
	tokens        TokenStore
	userRepo      users.Repo
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	storeTimeout  time.Duration
	nowFunc       func() time.Time
	log           zerolog.Logger
}

type ManagerOption func(*Manager)

// WithTokenExpiry overrides the access and refresh token lifetimes
func WithTokenExpiry(accessExpiry, refreshExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessExpiry = accessExpiry
		m.refreshExpiry = refreshExpiry
	}
}

// WithNowFunc sets the clock (primarily for testing)
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithStoreTimeout bounds every store call made by the manager. A timeout
// surfaces as ErrStoreUnavailable, never as a silent retry.
func WithStoreTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.storeTimeout = timeout
	}
}

// WithLogger sets the logger used for internal verification outcomes
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

func New(codec *token.Codec, tokens TokenStore, userRepo users.Repo, options ...ManagerOption) (*Manager, error) {
	if codec == nil {
		return nil, fmt.Errorf("[session.New] codec is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("[session.New] token store is required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("[session.New] user repo is required")
	}

	m := &Manager{
		codec:         codec,
		tokens:        tokens,
		userRepo:      userRepo,
		accessExpiry:  60 * time.Minute,
		refreshExpiry: 48 * time.Hour,
		nowFunc:       time.Now,
		log:           zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// IssuePair mints an access/refresh pair for the given user and persists the
// refresh token. The operation is all-or-nothing: a refresh token value is
// never handed back unless it is durably recorded, so a pair that fails
// persistence fails entirely with ErrStoreUnavailable.
func (m *Manager) IssuePair(ctx context.Context, userID string) (*TokenPair, error) {
	now := m.nowFunc()
	accessExpires := now.Add(m.accessExpiry)
	refreshExpires := now.Add(m.refreshExpiry)

	access, err := m.codec.Issue(userID, token.TypeAccess, accessExpires)
	if err != nil {
		return nil, errs.Wrapf(err, "Manager.IssuePair access")
	}

	refresh, err := m.codec.Issue(userID, token.TypeRefresh, refreshExpires)
	if err != nil {
		return nil, errs.Wrapf(err, "Manager.IssuePair refresh")
	}

	storeCtx, cancel := m.boundCtx(ctx)
	defer cancel()
	err = m.tokens.Insert(storeCtx, &RefreshToken{
		Token:     refresh,
		UserID:    userID,
		Type:      token.TypeRefresh,
		ExpiresAt: refreshExpires,
	})
	if err != nil {
		return nil, errs.Wrapf(errs.ErrStoreUnavailable, "Manager.IssuePair insert: %v", err)
	}

	metrics.PairsIssued.Inc()
	return &TokenPair{
		Access:  TokenInfo{Token: access, Expires: accessExpires},
		Refresh: TokenInfo{Token: refresh, Expires: refreshExpires},
	}, nil
}

// Verify checks a presented token value against the codec and, for refresh
// tokens, against the store. Codec failures are collapsed to ErrUnauthorized;
// the internal kind stays in the error chain for logging only and handlers
// must not branch on it.
func (m *Manager) Verify(ctx context.Context, value string, expectedType token.Type) (*token.Claims, error) {
	claims, err := m.codec.Parse(value)
	if err != nil {
		m.log.Debug().Err(err).Msg("token rejected by codec")
		metrics.Verifications.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return nil, fmt.Errorf("%w: %w", errs.ErrUnauthorized, err)
	}

	if claims.Type != expectedType {
		m.log.Debug().
			Str("presented", string(claims.Type)).
			Str("expected", string(expectedType)).
			Msg("token type mismatch")
		metrics.Verifications.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return nil, errs.Wrapf(errs.ErrUnauthorized, "Manager.Verify type")
	}

	// Access tokens are self-verifying; revoking a refresh token does not
	// invalidate access tokens already derived from the same session.
	if expectedType == token.TypeRefresh {
		storeCtx, cancel := m.boundCtx(ctx)
		defer cancel()
		rec, err := m.tokens.Find(storeCtx, value)
		if errs.Is(err, errs.ErrNotFound) {
			// Never issued, pruned, or already consumed: one outcome.
			metrics.Verifications.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
			return nil, errs.Wrapf(errs.ErrUnauthorized, "Manager.Verify refresh lookup")
		}
		if err != nil {
			metrics.Verifications.WithLabelValues(metrics.OutcomeStoreError).Inc()
			return nil, errs.Wrapf(errs.ErrStoreUnavailable, "Manager.Verify refresh lookup: %v", err)
		}
		if !rec.ExpiresAt.After(m.nowFunc()) {
			metrics.Verifications.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
			return nil, errs.Wrapf(errs.ErrUnauthorized, "Manager.Verify refresh expired")
		}
	}

	metrics.Verifications.WithLabelValues(metrics.OutcomeOK).Inc()
	return claims, nil
}

// Rotate consumes a refresh token and issues a fresh pair. Deletion of the
// old record happens before re-issuance, so two concurrent rotations of the
// same value cannot both succeed: the loser observes the record as already
// gone and fails ErrNotFound.
func (m *Manager) Rotate(ctx context.Context, refreshValue string) (*TokenPair, error) {
	claims, err := m.codec.Parse(refreshValue)
	if err != nil {
		m.log.Debug().Err(err).Msg("refresh token rejected by codec")
		metrics.Rotations.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return nil, fmt.Errorf("%w: %w", errs.ErrUnauthorized, err)
	}
	if claims.Type != token.TypeRefresh {
		metrics.Rotations.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
		return nil, errs.Wrapf(errs.ErrUnauthorized, "Manager.Rotate type")
	}

	userCtx, cancel := m.boundCtx(ctx)
	defer cancel()
	user, err := m.userRepo.GetByID(userCtx, claims.Subject)
	if errs.Is(err, errs.ErrNotFound) {
		metrics.Rotations.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return nil, errs.Wrapf(errs.ErrNotFound, "Manager.Rotate user %s", claims.Subject)
	}
	if err != nil {
		metrics.Rotations.WithLabelValues(metrics.OutcomeStoreError).Inc()
		return nil, errs.Wrapf(errs.ErrStoreUnavailable, "Manager.Rotate user lookup: %v", err)
	}

	deleteCtx, cancelDelete := m.boundCtx(ctx)
	defer cancelDelete()
	removed, err := m.tokens.DeleteIfPresent(deleteCtx, refreshValue)
	if err != nil {
		metrics.Rotations.WithLabelValues(metrics.OutcomeStoreError).Inc()
		return nil, errs.Wrapf(errs.ErrStoreUnavailable, "Manager.Rotate delete: %v", err)
	}
	if !removed {
		// Lost the race to a concurrent rotation or revocation.
		metrics.Rotations.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return nil, errs.Wrapf(errs.ErrNotFound, "Manager.Rotate consumed")
	}

	pair, err := m.IssuePair(ctx, user.ID)
	if err != nil {
		metrics.Rotations.WithLabelValues(metrics.OutcomeStoreError).Inc()
		return nil, err
	}

	metrics.Rotations.WithLabelValues(metrics.OutcomeOK).Inc()
	return pair, nil
}

// Revoke deletes the stored refresh record. Idempotent in effect but not in
// reporting: a second call on the same value fails ErrNotFound.
func (m *Manager) Revoke(ctx context.Context, refreshValue string) error {
	storeCtx, cancel := m.boundCtx(ctx)
	defer cancel()

	removed, err := m.tokens.DeleteIfPresent(storeCtx, refreshValue)
	if err != nil {
		return errs.Wrapf(errs.ErrStoreUnavailable, "Manager.Revoke delete: %v", err)
	}
	if !removed {
		return errs.Wrapf(errs.ErrNotFound, "Manager.Revoke")
	}

	metrics.Revocations.Inc()
	return nil
}

func (m *Manager) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.storeTimeout)
}
