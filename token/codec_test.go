package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/token"
)

const (
	testSecret  = "test-secret-1234"
	otherSecret = "another-secret-5678"
	testUserID  = "user-1"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestRoundTrip(t *testing.T) {
	now := fixedNow()
	codec := token.NewCodec(testSecret, token.WithNowFunc(func() time.Time { return now }))

	ttl := 60 * time.Minute
	raw, err := codec.Issue(testUserID, token.TypeAccess, now.Add(ttl))
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := codec.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, testUserID, claims.Subject)
	require.Equal(t, token.TypeAccess, claims.Type)
	require.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	require.Equal(t, now.Add(ttl).Unix(), claims.ExpiresAt.Unix())
	require.NotEmpty(t, claims.ID)
}

func TestRoundTripRefreshType(t *testing.T) {
	now := fixedNow()
	codec := token.NewCodec(testSecret, token.WithNowFunc(func() time.Time { return now }))

	raw, err := codec.Issue(testUserID, token.TypeRefresh, now.Add(48*time.Hour))
	require.NoError(t, err)

	claims, err := codec.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, token.TypeRefresh, claims.Type)
}

func TestParseWrongSecretFailsSignature(t *testing.T) {
	now := fixedNow()
	issuer := token.NewCodec(testSecret, token.WithNowFunc(func() time.Time { return now }))
	verifier := token.NewCodec(otherSecret, token.WithNowFunc(func() time.Time { return now }))

	raw, err := issuer.Issue(testUserID, token.TypeAccess, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = verifier.Parse(raw)
	require.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestParseWrongSecretExpiredStillFailsSignature(t *testing.T) {
	// Signature is checked before expiry: a forged token that is also past
	// its expiry must fail on the signature, never on expiry.
	now := fixedNow()
	issuer := token.NewCodec(testSecret, token.WithNowFunc(func() time.Time { return now }))

	raw, err := issuer.Issue(testUserID, token.TypeAccess, now.Add(time.Minute))
	require.NoError(t, err)

	later := now.Add(2 * time.Hour)
	verifier := token.NewCodec(otherSecret, token.WithNowFunc(func() time.Time { return later }))

	_, err = verifier.Parse(raw)
	require.ErrorIs(t, err, errs.ErrInvalidSignature)
	require.NotErrorIs(t, err, errs.ErrExpired)
}

func TestParseExpired(t *testing.T) {
	now := fixedNow()
	issuer := token.NewCodec(testSecret, token.WithNowFunc(func() time.Time { return now }))

	raw, err := issuer.Issue(testUserID, token.TypeAccess, now.Add(time.Minute))
	require.NoError(t, err)

	later := now.Add(2 * time.Minute)
	verifier := token.NewCodec(testSecret, token.WithNowFunc(func() time.Time { return later }))

	_, err = verifier.Parse(raw)
	require.ErrorIs(t, err, errs.ErrExpired)
}

func TestParseGarbage(t *testing.T) {
	codec := token.NewCodec(testSecret)

	for _, raw := range []string{"", "garbage-string", "a.b", "a.b.c.d"} {
		_, err := codec.Parse(raw)
		require.ErrorIs(t, err, errs.ErrMalformed, "input %q", raw)
	}
}

func TestIssuedTokensAreUnique(t *testing.T) {
	now := fixedNow()
	codec := token.NewCodec(testSecret, token.WithNowFunc(func() time.Time { return now }))

	first, err := codec.Issue(testUserID, token.TypeAccess, now.Add(time.Hour))
	require.NoError(t, err)
	second, err := codec.Issue(testUserID, token.TypeAccess, now.Add(time.Hour))
	require.NoError(t, err)

	// Same subject, type, and expiry still produce distinct values via jti.
	require.NotEqual(t, first, second)
}
