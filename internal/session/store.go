// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/staranto/clubpulse/internal/cacheutil"
	"github.com/staranto/clubpulse/internal/config"
)

// ErrUnknownBackend is returned by NewStateStore for an unsupported backend
// name.
var ErrUnknownBackend = errors.New("unknown session backend")

// StateStore abstracts the small key/value state a session keeps between
// invocations. Get returns (nil, nil) for a missing or expired key.
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStateStore returns the store named by s.SessionBackend: "memory",
// "file" or "redis".
func NewStateStore(s config.Settings) (StateStore, error) {
	switch s.SessionBackend {
	case "memory":
		return NewMemoryStore(), nil
	case "", "file":
		return NewFileStore(cacheutil.Default()), nil
	case "redis":
		return NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.SessionBackend)
	}
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore keeps state for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), now: time.Now}
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, nil
	}
	return e.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	v, err := s.Get(ctx, key)
	return v != nil, err
}

// RedisStore shares state between machines through Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a store whose keys are prefixed with "clubpulse:".
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "clubpulse:"}
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	return n > 0, err
}

// fileRecord is what FileStore writes for each key.
type fileRecord struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// FileStore keeps state in files so it survives between invocations.
type FileStore struct {
	files *cacheutil.Store
	now   func() time.Time
}

func NewFileStore(files *cacheutil.Store) *FileStore {
	return &FileStore{files: files, now: time.Now}
}

var fileSubdirs = []string{"session"}

func (s *FileStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	rec := fileRecord{Value: value}
	if ttl > 0 {
		rec.ExpiresAt = s.now().Add(ttl)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return s.files.Write(fileSubdirs, key, b)
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.files.Read(fileSubdirs, key)
	if !ok {
		return nil, nil
	}
	var rec fileRecord
	if err := json.Unmarshal(e.Data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode state %s: %w", e.Path, err)
	}
	if !rec.ExpiresAt.IsZero() && s.now().After(rec.ExpiresAt) {
		return nil, s.files.Remove(fileSubdirs, key)
	}
	return rec.Value, nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	return s.files.Remove(fileSubdirs, key)
}

func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	v, err := s.Get(ctx, key)
	return v != nil, err
}
