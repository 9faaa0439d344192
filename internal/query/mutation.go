// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/clubpulse/internal/notify"
)

// MutationStatus is the state of a write.
type MutationStatus int

const (
	MutationIdle MutationStatus = iota
	MutationPending
	MutationSuccess
	MutationError
)

func (s MutationStatus) String() string {
	switch s {
	case MutationIdle:
		return "idle"
	case MutationPending:
		return "pending"
	case MutationSuccess:
		return "success"
	case MutationError:
		return "error"
	default:
		return "unknown"
	}
}

// MutateFunc performs one write.
type MutateFunc[In, Out any] func(context.Context, In) (Out, error)

// MutationOptions tune a Mutation.
type MutationOptions[In, Out any] struct {
	// InvalidateQueries are invalidated after a successful write, after
	// OnSuccess has returned.
	InvalidateQueries []Key
	// SuccessMessage, when set, is sent to the sink as the last step of a
	// successful write.
	SuccessMessage string
	// OnSuccess runs first on success, before any invalidation.
	OnSuccess func(Out, In)
	// OnError runs after the error notification.
	OnError func(error, In)
}

// Invocation is the record of one Mutate call.
type Invocation[In, Out any] struct {
	ID        string
	Status    MutationStatus
	Variables In
	Data      Out
	Err       error
	StartedAt time.Time
}

// Mutation binds a write function to the cache. Mutate may be called
// concurrently; writes are never de-duplicated.
type Mutation[In, Out any] struct {
	client *Client
	fn     MutateFunc[In, Out]
	opts   MutationOptions[In, Out]

	mu   sync.Mutex
	last *Invocation[In, Out]
}

// NewMutation returns a Mutation for fn.
func NewMutation[In, Out any](c *Client, fn MutateFunc[In, Out], opts ...MutationOptions[In, Out]) *Mutation[In, Out] {
	m := &Mutation[In, Out]{client: c, fn: fn}
	if len(opts) > 0 {
		m.opts = opts[0]
	}
	return m
}

// Post, Put and Delete name the HTTP verb at call sites; they behave exactly
// like NewMutation.
func Post[In, Out any](c *Client, fn MutateFunc[In, Out], opts ...MutationOptions[In, Out]) *Mutation[In, Out] {
	return NewMutation(c, fn, opts...)
}

func Put[In, Out any](c *Client, fn MutateFunc[In, Out], opts ...MutationOptions[In, Out]) *Mutation[In, Out] {
	return NewMutation(c, fn, opts...)
}

func Delete[In, Out any](c *Client, fn MutateFunc[In, Out], opts ...MutationOptions[In, Out]) *Mutation[In, Out] {
	return NewMutation(c, fn, opts...)
}

// Mutate performs the write. On success it runs OnSuccess, invalidates
// InvalidateQueries and then reports SuccessMessage, in that order. On failure
// it reports the error, runs OnError and returns the original error.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	inv := &Invocation[In, Out]{
		ID:        uuid.NewString(),
		Status:    MutationPending,
		Variables: in,
		StartedAt: m.client.now(),
	}

	m.mu.Lock()
	m.last = inv
	m.mu.Unlock()

	log.Debugf("mutation %s pending", inv.ID)

	out, err := safeMutate(ctx, m.fn, in)

	m.mu.Lock()
	if err != nil {
		inv.Status = MutationError
		inv.Err = err
	} else {
		inv.Status = MutationSuccess
		inv.Data = out
	}
	m.mu.Unlock()

	if err != nil {
		log.WithError(err).Debugf("mutation %s failed", inv.ID)
		m.client.sink.Notify(notify.Error(ErrorMessage(err)))
		if m.opts.OnError != nil {
			m.opts.OnError(err, in)
		}
		return out, err
	}

	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(out, in)
	}
	if len(m.opts.InvalidateQueries) > 0 {
		m.client.Invalidate(m.opts.InvalidateQueries...)
	}
	if m.opts.SuccessMessage != "" {
		m.client.sink.Notify(notify.Success(m.opts.SuccessMessage))
	}

	return out, nil
}

// Status is the status of the most recent invocation.
func (m *Mutation[In, Out]) Status() MutationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return MutationIdle
	}
	return m.last.Status
}

// Last returns a copy of the most recent invocation.
func (m *Mutation[In, Out]) Last() (Invocation[In, Out], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return Invocation[In, Out]{}, false
	}
	return *m.last, true
}

// Reset forgets the most recent invocation.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = nil
}

func safeMutate[In, Out any](ctx context.Context, fn MutateFunc[In, Out], in In) (out Out, err error) {
	defer func() {
		if perr := recovered(recover()); perr != nil {
			var zero Out
			out, err = zero, perr
		}
	}()
	return fn(ctx, in)
}
