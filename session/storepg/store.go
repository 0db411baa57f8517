// Package storepg provides a PostgreSQL-backed refresh token store.
package storepg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/session"
)

var _ session.TokenStore = (*PostgresTokenStore)(nil)

type PostgresTokenStore struct {
	pool *pgxpool.Pool
}

func NewPostgresTokenStore(pool *pgxpool.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

func (s *PostgresTokenStore) Insert(ctx context.Context, rec *session.RefreshToken) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, token_type, expires_at)
		VALUES ($1, $2, $3, $4)
	`, rec.Token, rec.UserID, string(rec.Type), rec.ExpiresAt)
	if err != nil {
		return errs.Wrapf(err, "PostgresTokenStore.Insert")
	}
	return nil
}

func (s *PostgresTokenStore) Find(ctx context.Context, value string) (*session.RefreshToken, error) {
	rec := &session.RefreshToken{Token: value}
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, token_type, expires_at
		FROM refresh_tokens
		WHERE token = $1
	`, value).Scan(&rec.UserID, &rec.Type, &rec.ExpiresAt)
	if errs.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrapf(err, "PostgresTokenStore.Find")
	}
	return rec, nil
}

// DeleteIfPresent removes the record in a single conditional delete. The
// affected-row count decides the winner of concurrent rotations; there is
// deliberately no separate existence check.
func (s *PostgresTokenStore) DeleteIfPresent(ctx context.Context, value string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE token = $1
	`, value)
	if err != nil {
		return false, errs.Wrapf(err, "PostgresTokenStore.DeleteIfPresent")
	}
	return tag.RowsAffected() > 0, nil
}
