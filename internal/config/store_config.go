package config

import "time"

// StoreBackend selects the refresh-token store implementation.
type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
)

type StoreConfig interface {
	GetStoreBackend() StoreBackend
	GetDatabaseURL() string
	GetRedisAddr() string
	GetStoreTimeout() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreBackend() StoreBackend {
	switch GetEnv("STORE_BACKEND", "memory") {
	case "postgres":
		return StorePostgres
	case "redis":
		return StoreRedis
	default:
		return StoreMemory
	}
}

func (Store) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

// GetStoreTimeout bounds every store call made on behalf of a request.
func (Store) GetStoreTimeout() time.Duration {
	return durationEnv("STORE_TIMEOUT", 3*time.Second)
}
