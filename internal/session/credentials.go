// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/staranto/clubpulse/internal/model"
)

// account is one entry of the static credential store.
type account struct {
	user model.User
	hash []byte
}

// Credentials checks an email and password pair.
type Credentials interface {
	Authenticate(email, password string) (model.User, bool)
}

// StaticCredentials is a fixed, in-process user list. Passwords are held
// only as bcrypt hashes.
type StaticCredentials struct {
	accounts map[string]account
}

// NewStaticCredentials hashes each password of users, keyed by email.
func NewStaticCredentials(users map[model.User]string) (*StaticCredentials, error) {
	c := &StaticCredentials{accounts: make(map[string]account, len(users))}
	for u, password := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		c.accounts[strings.ToLower(u.Email)] = account{user: u, hash: hash}
	}
	return c, nil
}

// Authenticate returns the user for email when password matches. The email
// must match exactly.
func (c *StaticCredentials) Authenticate(email, password string) (model.User, bool) {
	a, ok := c.accounts[strings.ToLower(email)]
	if !ok || a.user.Email != email {
		return model.User{}, false
	}
	if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		return model.User{}, false
	}
	return a.user, true
}

var demo = sync.OnceValues(func() (*StaticCredentials, error) {
	return NewStaticCredentials(map[model.User]string{
		{ID: "admin", Name: "Admin User", Email: "admin@example.com", Role: model.RoleAdmin}: "admin123",
		{ID: "club", Name: "Club Manager", Email: "club@example.com", Role: model.RoleClub}:  "club123",
	})
})

// DemoCredentials returns the two demo accounts, admin@example.com and
// club@example.com.
func DemoCredentials() (*StaticCredentials, error) {
	return demo()
}
