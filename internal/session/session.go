// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/clubpulse/internal/model"
)

// Keys the session keeps in its StateStore.
const (
	UserKey  = "user"
	TokenKey = "token"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrSignupUnsupported  = errors.New("Signup is not implemented in demo mode")
	ErrNotLoggedIn        = errors.New("not logged in, run 'clubpulse login'")
	ErrForbidden          = errors.New("not permitted for this role")
)

// Manager signs users in and out.
type Manager struct {
	store StateStore
	creds Credentials
}

// NewManager returns a Manager keeping state in store.
func NewManager(store StateStore, creds Credentials) *Manager {
	return &Manager{store: store, creds: creds}
}

// Login checks the credentials and stores the user and a fresh session
// token.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, ok := m.creds.Authenticate(email, password)
	if !ok {
		log.Debugf("login rejected for %s", email)
		return nil, ErrInvalidCredentials
	}

	b, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Set(ctx, UserKey, b, 0); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if err := m.store.Set(ctx, TokenKey, []byte(uuid.NewString()), 0); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &user, nil
}

// Signup is not available with the demo credentials.
func (m *Manager) Signup(context.Context, model.SignupCredentials) (*model.User, error) {
	return nil, ErrSignupUnsupported
}

// Logout forgets the session. Logging out twice is fine.
func (m *Manager) Logout(ctx context.Context) error {
	return errors.Join(
		m.store.Delete(ctx, UserKey),
		m.store.Delete(ctx, TokenKey),
	)
}

// Current returns the signed in user, or ErrNotLoggedIn.
func (m *Manager) Current(ctx context.Context) (*model.User, error) {
	b, err := m.store.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if b == nil {
		return nil, ErrNotLoggedIn
	}

	var user model.User
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &user, nil
}

// Token returns the session token, or "" when signed out.
func (m *Manager) Token(ctx context.Context) string {
	b, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		log.WithError(err).Warn("failed to read session token")
		return ""
	}
	return string(b)
}

// Require returns the signed in user when their role is one of roles. No
// roles means any signed in user.
func (m *Manager) Require(ctx context.Context, roles ...model.Role) (*model.User, error) {
	user, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !slices.Contains(roles, user.Role) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, user.Role)
	}
	return user, nil
}
