// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package model

// Role selects which commands a user may run.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleClub  Role = "club"
)

// User is the signed in identity.
type User struct {
	ID    string `jsonapi:"primary,users" json:"id"`
	Name  string `jsonapi:"attr,name" json:"name"`
	Email string `jsonapi:"attr,email" json:"email"`
	Role  Role   `jsonapi:"attr,role" json:"role"`
}

// LoginCredentials are what login accepts.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupCredentials are what signup accepts.
type SignupCredentials struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 Role   `json:"role"`
}
