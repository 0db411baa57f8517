// Package userrepopg provides a PostgreSQL-backed repository for user records.
package userrepopg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/users"
)

var _ users.Repo = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Insert(ctx context.Context, user *users.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, username, password_hash, date_joined)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Email, user.Username, user.PasswordHash, user.DateJoined)
	if err != nil {
		var pgErr *pgconn.PgError
		if errs.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return errs.ErrUserExists
		}
		return errs.Wrapf(err, "PostgresUserRepo.Insert")
	}
	return nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PostgresUserRepo) getBy(ctx context.Context, column, value string) (*users.User, error) {
	user := &users.User{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, username, password_hash, date_joined
		FROM users
		WHERE `+column+` = $1
	`, value).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.DateJoined)
	if errs.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrapf(err, "PostgresUserRepo.getBy %s", column)
	}
	return user, nil
}

func (r *PostgresUserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errs.Wrapf(err, "PostgresUserRepo.Delete")
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
