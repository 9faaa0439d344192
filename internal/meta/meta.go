// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/clubpulse/internal/clubapi"
	"github.com/staranto/clubpulse/internal/config"
	"github.com/staranto/clubpulse/internal/query"
	"github.com/staranto/clubpulse/internal/session"
)

// Meta is the process-wide state every command needs. It is built once by
// command.InitApp and carried in the root command's Metadata.
type Meta struct {
	Args     []string
	Config   config.Type
	Context  context.Context
	Settings config.Settings

	// Cache is the single query/mutation cache of the process.
	Cache   *query.Client
	API     *clubapi.API
	Session *session.Manager
}
