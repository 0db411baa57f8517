// Package storeredis provides a Redis-backed refresh token store. Records
// carry their own TTL, so expired tokens vanish without a janitor process.
package storeredis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/session"
)

const refreshPrefix = "refresh:"

var _ session.TokenStore = (*RedisTokenStore)(nil)

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Insert(ctx context.Context, rec *session.RefreshToken) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return errs.Wrapf(err, "RedisTokenStore.Insert marshal")
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		// Already expired on arrival; storing it would be indistinguishable
		// from not storing it.
		return nil
	}

	if err := s.client.Set(ctx, refreshPrefix+rec.Token, b, ttl).Err(); err != nil {
		return errs.Wrapf(err, "RedisTokenStore.Insert set")
	}
	return nil
}

func (s *RedisTokenStore) Find(ctx context.Context, value string) (*session.RefreshToken, error) {
	raw, err := s.client.Get(ctx, refreshPrefix+value).Result()
	if err == redis.Nil {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrapf(err, "RedisTokenStore.Find get")
	}

	rec := &session.RefreshToken{}
	if err := json.Unmarshal([]byte(raw), rec); err != nil {
		return nil, errs.Wrapf(err, "RedisTokenStore.Find unmarshal")
	}
	return rec, nil
}

// DeleteIfPresent relies on DEL's removed-key count, which is atomic on the
// server side: two concurrent deletes of the same key see 1 and 0.
func (s *RedisTokenStore) DeleteIfPresent(ctx context.Context, value string) (bool, error) {
	removed, err := s.client.Del(ctx, refreshPrefix+value).Result()
	if err != nil {
		return false, errs.Wrapf(err, "RedisTokenStore.DeleteIfPresent del")
	}
	return removed > 0, nil
}
