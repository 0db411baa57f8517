package storeredis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/session"
	"github.com/sessionworks/go-session-server/token"
)

// Integration tests run only when TEST_REDIS_ADDR points at a live Redis.

func testStore(t *testing.T) *RedisTokenStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set; skipping Redis integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTokenStore(client)
}

func TestRedisTokenStoreRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec := &session.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    "user-1",
		Type:      token.TypeRefresh,
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, store.Insert(ctx, rec))

	found, err := store.Find(ctx, rec.Token)
	require.NoError(t, err)
	require.Equal(t, rec.UserID, found.UserID)
	require.Equal(t, rec.Type, found.Type)

	removed, err := store.DeleteIfPresent(ctx, rec.Token)
	require.NoError(t, err)
	require.True(t, removed)

	_, err = store.Find(ctx, rec.Token)
	require.ErrorIs(t, err, errs.ErrNotFound)

	removed, err = store.DeleteIfPresent(ctx, rec.Token)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestRedisTokenStoreSkipsExpiredRecords(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec := &session.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    "user-1",
		Type:      token.TypeRefresh,
		ExpiresAt: time.Now().Add(-time.Minute).UTC(),
	}
	require.NoError(t, store.Insert(ctx, rec))

	_, err := store.Find(ctx, rec.Token)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
