// Package cache holds the login session store and the live event broker,
// each with a Redis and an in-process implementation.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when no session is stored under a key.
var ErrNoSession = errors.New("no active session")

// SessionStore keeps the current token id per login.
type SessionStore interface {
	Put(ctx context.Context, key, jti string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// RedisSessions stores sessions as plain Redis keys with a TTL.
type RedisSessions struct {
	rdb *redis.Client
}

// NewRedisSessions creates a Redis-backed store.
func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func (s *RedisSessions) Put(ctx context.Context, key, jti string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, jti, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessions) Get(ctx context.Context, key string) (string, error) {
	jti, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("check session: %w", err)
	}
	return jti, nil
}

func (s *RedisSessions) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

type memoryEntry struct {
	jti       string
	expiresAt time.Time
}

// MemorySessions is an in-process SessionStore for single-node and test runs.
type MemorySessions struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessions creates an empty store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemorySessions) Put(_ context.Context, key, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{jti: jti, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessions) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", ErrNoSession
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", ErrNoSession
	}
	return e.jti, nil
}

func (s *MemorySessions) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
