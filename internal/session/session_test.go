// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/clubpulse/internal/cacheutil"
	"github.com/staranto/clubpulse/internal/config"
	"github.com/staranto/clubpulse/internal/model"
)

func stores(t *testing.T) map[string]StateStore {
	t.Helper()
	s := map[string]StateStore{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(&cacheutil.Store{Base: t.TempDir()}),
	}
	// Redis is only exercised when a server is available.
	if addr := os.Getenv("CLUBPULSE_TEST_REDIS"); addr != "" {
		s["redis"] = NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}))
	}
	return s
}

func TestStateStore(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			v, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, store.Set(ctx, "k", []byte("v1"), 0))
			v, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)

			ok, err := store.Exists(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, store.Set(ctx, "k", []byte("v2"), time.Hour))
			v, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), v)

			require.NoError(t, store.Delete(ctx, "k"))
			ok, err = store.Exists(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
			require.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

func TestStateStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	mem := NewMemoryStore()
	mem.now = func() time.Time { return now }
	file := NewFileStore(&cacheutil.Store{Base: t.TempDir()})
	file.now = func() time.Time { return now }

	for name, store := range map[string]StateStore{"memory": mem, "file": file} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "short", []byte("x"), time.Minute))
			now = now.Add(2 * time.Minute)

			v, err := store.Get(ctx, "short")
			require.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestNewStateStore(t *testing.T) {
	t.Setenv("CLUBPULSE_STATE_DIR", t.TempDir())

	tests := []struct {
		backend string
		want    any
		wantErr error
	}{
		{backend: "memory", want: &MemoryStore{}},
		{backend: "file", want: &FileStore{}},
		{backend: "", want: &FileStore{}},
		{backend: "redis", want: &RedisStore{}},
		{backend: "etcd", wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			got, err := NewStateStore(config.Settings{SessionBackend: tt.backend, RedisAddr: "localhost:0"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	creds, err := DemoCredentials()
	require.NoError(t, err)
	m := NewManager(NewMemoryStore(), creds)

	_, err = m.Current(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, m.Token(ctx))

	tests := []struct {
		name     string
		email    string
		password string
		wantRole model.Role
		wantErr  error
	}{
		{name: "admin", email: "admin@example.com", password: "admin123", wantRole: model.RoleAdmin},
		{name: "club", email: "club@example.com", password: "club123", wantRole: model.RoleClub},
		{name: "wrong password", email: "admin@example.com", password: "club123", wantErr: ErrInvalidCredentials},
		{name: "unknown user", email: "who@example.com", password: "admin123", wantErr: ErrInvalidCredentials},
		{name: "email case matters", email: "Admin@example.com", password: "admin123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := m.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Invalid email or password", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, u.Role)

			cur, err := m.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, u, cur)
			assert.NotEmpty(t, m.Token(ctx))
		})
	}
}

func TestManager_Require(t *testing.T) {
	ctx := context.Background()
	creds, err := DemoCredentials()
	require.NoError(t, err)
	m := NewManager(NewMemoryStore(), creds)

	_, err = m.Require(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = m.Login(ctx, "club@example.com", "club123")
	require.NoError(t, err)

	u, err := m.Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Club Manager", u.Name)

	_, err = m.Require(ctx, model.RoleAdmin, model.RoleClub)
	assert.NoError(t, err)

	_, err = m.Require(ctx, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, m.Logout(ctx))
	require.NoError(t, m.Logout(ctx))
	_, err = m.Require(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestManager_PersistsAcrossManagers(t *testing.T) {
	ctx := context.Background()
	creds, err := DemoCredentials()
	require.NoError(t, err)
	files := &cacheutil.Store{Base: t.TempDir()}

	_, err = NewManager(NewFileStore(files), creds).Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)

	u, err := NewManager(NewFileStore(files), creds).Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Admin User", u.Name)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestManager_Signup(t *testing.T) {
	m := NewManager(NewMemoryStore(), &StaticCredentials{})
	_, err := m.Signup(context.Background(), model.SignupCredentials{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrSignupUnsupported)
	assert.Equal(t, "Signup is not implemented in demo mode", err.Error())
}
