package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yatube/internal/middleware"

	"github.com/dgraph-io/ristretto"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// PageKeyPrefix namespaces rendered pages inside a shared Redis.
const PageKeyPrefix = "page:"

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// NewPageStorage returns the page storage for backend. A redis backend with a
// nil client falls back to memory.
func NewPageStorage(backend string, client *redis.Client) (fiber.Storage, error) {
	switch strings.ToLower(backend) {
	case BackendNone:
		return NoopStorage{}, nil
	case BackendRedis:
		if client != nil {
			return NewRedisStorage(client, PageKeyPrefix), nil
		}
		middleware.Logger.Warn("Redis unavailable, page cache falls back to memory")
		return NewMemoryStorage(64 << 20)
	case BackendMemory:
		return NewMemoryStorage(64 << 20)
	default:
		return nil, fmt.Errorf("unknown page cache backend %q", backend)
	}
}

// RedisStorage is a fiber.Storage over go-redis. Keys live under a prefix so
// Reset only drops pages.
type RedisStorage struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix, timeout: 2 * time.Second}
}

func (s *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset deletes every key under the prefix.
func (s *RedisStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*s.timeout)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 200).Result()
		if err != nil {
			return fmt.Errorf("scan page keys: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete page keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op; the client belongs to the caller.
func (s *RedisStorage) Close() error {
	return nil
}

// MemoryStorage is a process-local fiber.Storage backed by gocache over ristretto.
type MemoryStorage struct {
	cache  *gocache.Cache[[]byte]
	client *ristretto.Cache
}

// NewMemoryStorage builds a ristretto cache bounded by maxBytes.
func NewMemoryStorage(maxBytes int64) (*MemoryStorage, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &MemoryStorage{
		cache:  gocache.New[[]byte](ristretto_store.NewRistretto(client)),
		client: client,
	}, nil
}

func (s *MemoryStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.cache.Get(context.Background(), key)
	if err != nil {
		// ristretto only fails a Get on a miss
		return nil, nil
	}
	return val, nil
}

func (s *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	owned := append([]byte(nil), val...)
	err := s.cache.Set(context.Background(), key, owned,
		store.WithExpiration(exp),
		store.WithCost(int64(len(owned))),
	)
	if err != nil {
		return err
	}
	// ristretto applies writes asynchronously
	s.client.Wait()
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.cache.Delete(context.Background(), key)
}

func (s *MemoryStorage) Reset() error {
	return s.cache.Clear(context.Background())
}

func (s *MemoryStorage) Close() error {
	s.client.Close()
	return nil
}

// NoopStorage never keeps anything, so every lookup is a miss.
type NoopStorage struct{}

func (NoopStorage) Get(string) ([]byte, error)              { return nil, nil }
func (NoopStorage) Set(string, []byte, time.Duration) error { return nil }
func (NoopStorage) Delete(string) error                     { return nil }
func (NoopStorage) Reset() error                            { return nil }
func (NoopStorage) Close() error                            { return nil }

var (
	_ fiber.Storage = (*RedisStorage)(nil)
	_ fiber.Storage = (*MemoryStorage)(nil)
	_ fiber.Storage = NoopStorage{}
)

// ResetLogged resets s and logs the outcome.
func ResetLogged(ctx context.Context, s fiber.Storage) error {
	if err := s.Reset(); err != nil {
		middleware.Logger.ErrorContext(ctx, "page cache reset failed", slog.String("error", err.Error()))
		return err
	}
	middleware.Logger.InfoContext(ctx, "page cache cleared")
	return nil
}
