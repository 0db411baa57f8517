// Package token implements the signed-token codec used for access and
// refresh credentials. It is pure: no I/O, no persistence, safe for
// concurrent use.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	errs "github.com/sessionworks/go-session-server/internal/errors"
)

// Type discriminates access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	Subject   string
	Type      Type
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// signedClaims is the wire shape of the payload. The signature covers all of it.
type signedClaims struct {
	jwtlib.RegisteredClaims
	Type string `json:"type"`
}

// Codec signs and verifies tokens with a shared HMAC-SHA256 secret.
type Codec struct {
	secret  []byte
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc sets the clock used for issuance and expiry checks (for testing)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// NewCodec creates a codec bound to the given signing secret
func NewCodec(secret string, options ...CodecOption) *Codec {
	c := &Codec{
		secret:  []byte(secret),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Issue encodes and signs a token for the given subject. The result is an
// opaque string safe for transport in an HTTP header.
func (c *Codec) Issue(subject string, typ Type, expiresAt time.Time) (string, error) {
	claims := signedClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwtlib.NewNumericDate(c.nowFunc()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
		Type: string(typ),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errs.Wrapf(err, "token.Codec.Issue sign")
	}
	return signed, nil
}

// Parse verifies the signature first, then the expiry, and only then returns
// the decoded payload. A forged-but-unexpired token fails ErrInvalidSignature;
// an authentically signed but expired one fails ErrExpired.
func (c *Codec) Parse(raw string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(raw, &signedClaims{}, c.verificationKey,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return c.nowFunc() }),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithIssuedAt(),
	)
	if err != nil {
		return nil, decodeError(err)
	}

	claims, ok := parsed.Claims.(*signedClaims)
	if !ok || !parsed.Valid {
		return nil, errs.ErrMalformed
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil || claims.Subject == "" {
		return nil, errs.ErrMalformed
	}

	return &Claims{
		Subject:   claims.Subject,
		Type:      Type(claims.Type),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}

func (c *Codec) verificationKey(t *jwtlib.Token) (any, error) {
	if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, errs.ErrInvalidSignature
	}
	return c.secret, nil
}

// decodeError collapses the jwt library's error surface onto the codec's
// taxonomy. Signature failures take precedence over claim validation because
// the library never validates claims of a token it could not verify.
func decodeError(err error) error {
	switch {
	case errs.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return errs.Wrapf(errs.ErrInvalidSignature, "token.Codec.Parse")
	case errs.Is(err, jwtlib.ErrTokenExpired):
		return errs.Wrapf(errs.ErrExpired, "token.Codec.Parse")
	default:
		return errs.Wrapf(errs.ErrMalformed, "token.Codec.Parse")
	}
}
