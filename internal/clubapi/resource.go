// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clubapi

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/staranto/clubpulse/internal/transport"
)

// ErrMissingID is returned when an operation that addresses one record is
// given an empty id.
var ErrMissingID = errors.New("id is required")

// Resource is the CRUD surface of one collection endpoint.
type Resource[T any] struct {
	client *transport.Client
	path   string
}

// NewResource returns a Resource rooted at path, e.g. "/members".
func NewResource[T any](c *transport.Client, path string) Resource[T] {
	return Resource[T]{client: c, path: "/" + strings.Trim(path, "/")}
}

// Path returns the collection path joined with the escaped elements.
func (r Resource[T]) Path(elem ...string) string {
	p := r.path
	for _, e := range elem {
		p += "/" + url.PathEscape(e)
	}
	return p
}

// List returns the collection. Empty params are not sent.
func (r Resource[T]) List(ctx context.Context, params url.Values) ([]*T, error) {
	return transport.Get[[]*T](ctx, r.client, transport.WithQuery(r.path, params))
}

// Read returns one record.
func (r Resource[T]) Read(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return transport.Get[*T](ctx, r.client, r.Path(id))
}

// Create posts in and returns the stored record.
func (r Resource[T]) Create(ctx context.Context, in *T) (*T, error) {
	return transport.Post[*T](ctx, r.client, r.path, in)
}

// Update puts in over the record id and returns the stored record.
func (r Resource[T]) Update(ctx context.Context, id string, in *T) (*T, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return transport.Put[*T](ctx, r.client, r.Path(id), in)
}

// Delete removes the record id.
func (r Resource[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	_, err := transport.Delete[struct{}](ctx, r.client, r.Path(id))
	return err
}
