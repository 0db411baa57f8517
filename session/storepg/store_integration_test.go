package storepg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/session"
	"github.com/sessionworks/go-session-server/token"
)

// Integration tests run only when TEST_DATABASE_URL points at a migrated
// Postgres instance.

func testStore(t *testing.T) (*PostgresTokenStore, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewPostgresTokenStore(pool), pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, username, password_hash)
		VALUES ($1, $2, $3, 'x')
	`, id, id+"@example.com", "u-"+id)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestPostgresTokenStoreRoundTrip(t *testing.T) {
	store, pool := testStore(t)
	userID := seedUser(t, pool)
	ctx := context.Background()

	rec := &session.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		Type:      token.TypeRefresh,
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, store.Insert(ctx, rec))

	found, err := store.Find(ctx, rec.Token)
	require.NoError(t, err)
	require.Equal(t, rec.UserID, found.UserID)
	require.Equal(t, rec.Type, found.Type)
	require.WithinDuration(t, rec.ExpiresAt, found.ExpiresAt, time.Second)

	removed, err := store.DeleteIfPresent(ctx, rec.Token)
	require.NoError(t, err)
	require.True(t, removed)

	_, err = store.Find(ctx, rec.Token)
	require.ErrorIs(t, err, errs.ErrNotFound)

	removed, err = store.DeleteIfPresent(ctx, rec.Token)
	require.NoError(t, err)
	require.False(t, removed)
}
