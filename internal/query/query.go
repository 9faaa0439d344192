// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"time"
)

// FetchFunc produces the data for one key.
type FetchFunc[T any] func(context.Context) (T, error)

// Options tune one reader.
type Options[T any] struct {
	// Enabled gates fetching. nil means enabled.
	Enabled *bool
	// StaleTime overrides the client's stale time for this reader when
	// non-nil.
	StaleTime *time.Duration
	// OnSuccess runs once per successful fetch of the key while mounted.
	OnSuccess func(T)
	// OnError runs once per failed fetch of the key while mounted.
	OnError func(error)
}

// Bool returns a pointer to v, for Options.Enabled.
func Bool(v bool) *bool { return &v }

// Duration returns a pointer to d, for Options.StaleTime.
func Duration(d time.Duration) *time.Duration { return &d }

// Snapshot is a point-in-time copy of an entry.
type Snapshot[T any] struct {
	Data          T
	Status        Status
	Err           error
	LastFetchedAt time.Time
	Stale         bool
}

// Query is a mounted reader of one key.
type Query[T any] struct {
	client *Client
	key    Key
	entry  *entry
	obs    *observer
	fetch  fetcher
	stale  time.Duration
}

// Get mounts a reader on key. When enabled and the cached entry is missing,
// failed, stale or older than the stale time, a fetch starts in the
// background; if one is already in flight for key, the reader attaches to it.
func Get[T any](c *Client, key Key, fetch FetchFunc[T], opts ...Options[T]) *Query[T] {
	var o Options[T]
	if len(opts) > 0 {
		o = opts[0]
	}

	erased := func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}

	obs := &observer{
		enabled: o.Enabled == nil || *o.Enabled,
		fetch:   erased,
		changes: make(chan struct{}, 1),
	}
	if o.OnSuccess != nil {
		obs.onSuccess = func(v any) {
			if t, ok := v.(T); ok {
				o.OnSuccess(t)
			}
		}
	}
	if o.OnError != nil {
		obs.onError = o.OnError
	}

	stale := c.staleTime
	if o.StaleTime != nil {
		stale = *o.StaleTime
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	c.nextID++
	obs.id = c.nextID
	e.observers[obs.id] = obs

	q := &Query[T]{client: c, key: e.key, entry: e, obs: obs, fetch: erased, stale: stale}

	if obs.enabled {
		e.fetch = erased
		if c.needsFetchLocked(e, stale) {
			c.startLocked(e, erased)
		}
	}

	return q
}

// Key returns the key the reader is mounted on.
func (q *Query[T]) Key() Key {
	return q.key
}

// Snapshot returns the current state of the entry.
func (q *Query[T]) Snapshot() Snapshot[T] {
	c := q.client
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot[T]{
		Status:        q.entry.status,
		Err:           q.entry.err,
		LastFetchedAt: q.entry.lastFetchedAt,
		Stale:         q.entry.stale,
	}
	if v, ok := q.entry.data.(T); ok {
		s.Data = v
	}
	return s
}

// Data is shorthand for Snapshot().Data.
func (q *Query[T]) Data() T {
	return q.Snapshot().Data
}

// Status is shorthand for Snapshot().Status.
func (q *Query[T]) Status() Status {
	return q.Snapshot().Status
}

// Wait blocks until the entry has no fetch in flight, then returns its data
// and error. If ctx ends first, Wait returns ctx.Err() and the fetch keeps
// running.
func (q *Query[T]) Wait(ctx context.Context) (T, error) {
	c := q.client
	for {
		c.mu.Lock()
		flight := q.entry.flight
		c.mu.Unlock()

		if flight == nil {
			break
		}

		select {
		case <-flight:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	s := q.Snapshot()
	if s.Status == StatusIdle {
		return s.Data, ErrIdle
	}
	return s.Data, s.Err
}

// Refetch forces a fetch regardless of freshness, collapsing into any fetch
// already in flight for the key, and waits for it.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	c := q.client
	c.mu.Lock()
	c.startLocked(q.entry, q.fetch)
	c.mu.Unlock()

	return q.Wait(ctx)
}

// Enable lifts the Enabled gate and fetches if the entry needs it.
func (q *Query[T]) Enable() {
	c := q.client
	c.mu.Lock()
	defer c.mu.Unlock()

	if q.obs.closed || q.obs.enabled {
		return
	}
	q.obs.enabled = true
	q.entry.fetch = q.fetch
	if c.needsFetchLocked(q.entry, q.stale) {
		c.startLocked(q.entry, q.fetch)
	}
}

// Changes signals after every status transition of the entry. Signals
// coalesce; read Snapshot for the state. The channel is closed by Close.
func (q *Query[T]) Changes() <-chan struct{} {
	return q.obs.changes
}

// Close unmounts the reader. In-flight fetches are not aborted; the reader
// just stops observing them.
func (q *Query[T]) Close() {
	c := q.client
	c.mu.Lock()
	defer c.mu.Unlock()

	if q.obs.closed {
		return
	}
	q.obs.closed = true
	delete(q.entry.observers, q.obs.id)
	close(q.obs.changes)
}

// Peek returns the cached state for key without mounting a reader. The bool
// is false when there is no entry.
func Peek[T any](c *Client, key Key) (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot[T]{}, false
	}
	s := Snapshot[T]{
		Status:        e.status,
		Err:           e.err,
		LastFetchedAt: e.lastFetchedAt,
		Stale:         e.stale,
	}
	if v, ok := e.data.(T); ok {
		s.Data = v
	}
	return s, true
}
