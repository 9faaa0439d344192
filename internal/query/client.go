// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/staranto/clubpulse/internal/notify"
)

// Status is the state of a cached read.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// fetcher is a type-erased fetch function.
type fetcher func(context.Context) (any, error)

// observer is one mounted reader of a key.
type observer struct {
	id        uint64
	enabled   bool
	closed    bool
	fetch     fetcher
	onSuccess func(any)
	onError   func(error)
	changes   chan struct{}
}

// signal wakes the observer without blocking. Callers hold Client.mu.
func (o *observer) signal() {
	if o.closed {
		return
	}
	select {
	case o.changes <- struct{}{}:
	default:
	}
}

// entry is the cache slot for one key.
type entry struct {
	key           Key
	data          any
	status        Status
	err           error
	lastFetchedAt time.Time
	stale         bool

	// fetch is the fetch function of the most recently enabled observer. It
	// is what background refetches use.
	fetch     fetcher
	observers map[uint64]*observer

	// flight is closed when the in-flight fetch settles; nil when idle.
	flight chan struct{}
	// invalidated is set when the key is invalidated while a fetch is in
	// flight, so the result of that fetch is already stale on arrival.
	invalidated bool
}

func (e *entry) mounted() bool {
	for _, o := range e.observers {
		if o.enabled && !o.closed {
			return true
		}
	}
	return false
}

// Client is the process-wide query cache. Create one per process (or per
// test) and pass it to every binding.
type Client struct {
	sink      notify.Sink
	staleTime time.Duration
	timeout   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	nextID  uint64
	wg      sync.WaitGroup
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithStaleTime sets how long a successful read stays fresh for newly mounted
// readers. 0 means every mount refetches.
func WithStaleTime(d time.Duration) ClientOption {
	return func(c *Client) { c.staleTime = d }
}

// WithTimeout bounds every fetch. 0 disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient returns an empty cache reporting to sink. A nil sink discards.
func NewClient(sink notify.Sink, opts ...ClientOption) *Client {
	if sink == nil {
		sink = notify.Discard
	}
	c := &Client{
		sink:    sink,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sink returns the notification sink the client reports to.
func (c *Client) Sink() notify.Sink {
	return c.sink
}

// entryLocked returns the entry for k, creating it. Callers hold c.mu.
func (c *Client) entryLocked(k Key) *entry {
	id := k.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{
			key:       append(Key(nil), k...),
			observers: make(map[uint64]*observer),
		}
		c.entries[id] = e
	}
	return e
}

// needsFetchLocked decides whether mounting a reader should fetch.
func (c *Client) needsFetchLocked(e *entry, staleTime time.Duration) bool {
	switch {
	case e.flight != nil:
		return false
	case e.status != StatusSuccess:
		return true
	case e.stale:
		return true
	default:
		return c.now().Sub(e.lastFetchedAt) >= staleTime
	}
}

// startLocked begins a fetch for e unless one is already in flight, and
// returns the channel that closes when the flight settles. Callers hold c.mu.
func (c *Client) startLocked(e *entry, fetch fetcher) chan struct{} {
	if e.flight != nil {
		return e.flight
	}

	done := make(chan struct{})
	e.flight = done
	e.invalidated = false
	e.status = StatusLoading
	for _, o := range e.observers {
		o.signal()
	}

	log.Debugf("fetch %s", e.key)

	c.wg.Add(1)
	go c.run(e, fetch, done)
	return done
}

// run executes one flight and settles the entry.
func (c *Client) run(e *entry, fetch fetcher, done chan struct{}) {
	defer c.wg.Done()

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data, err := safeFetch(ctx, fetch)

	c.mu.Lock()
	e.flight = nil
	if err != nil {
		e.status = StatusError
		e.err = err
	} else {
		e.data = data
		e.status = StatusSuccess
		e.err = nil
		e.lastFetchedAt = c.now()
		e.stale = false
	}

	var callbacks []*observer
	for _, o := range e.observers {
		if !o.closed {
			callbacks = append(callbacks, o)
		}
	}

	// An invalidation that raced this flight means the data may predate the
	// write, so go again for mounted readers.
	if e.invalidated {
		e.stale = true
		if e.mounted() && e.fetch != nil {
			c.startLocked(e, e.fetch)
		}
	}
	c.mu.Unlock()

	if err != nil {
		log.WithError(err).Debugf("fetch %s failed", e.key)
		c.sink.Notify(notify.Error(ErrorMessage(err)))
	}

	for _, o := range callbacks {
		if err != nil {
			if o.onError != nil {
				o.onError(err)
			}
		} else if o.onSuccess != nil {
			o.onSuccess(data)
		}
	}

	c.mu.Lock()
	for _, o := range callbacks {
		o.signal()
	}
	c.mu.Unlock()

	close(done)
}

// safeFetch runs fetch and turns a panic into an error so the entry always
// settles.
func safeFetch(ctx context.Context, fetch fetcher) (data any, err error) {
	defer func() {
		if perr := recovered(recover()); perr != nil {
			data, err = nil, perr
		}
	}()
	return fetch(ctx)
}

// Invalidate marks the entries for exactly these keys stale and schedules a
// background refetch for each one that has a mounted, enabled reader. Prefix
// keys are not affected.
func (c *Client) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		e, ok := c.entries[k.String()]
		if !ok {
			continue
		}
		e.stale = true

		if e.flight != nil {
			e.invalidated = true
			continue
		}
		if e.mounted() && e.fetch != nil {
			c.startLocked(e, e.fetch)
		}
	}
}

// IsStale reports whether the entry for k has been invalidated (or never
// fetched successfully) since its last successful fetch.
func (c *Client) IsStale(k Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k.String()]
	if !ok {
		return false
	}
	return e.stale
}

// Status returns the status of the entry for k; StatusIdle if none exists.
func (c *Client) Status(k Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[k.String()]; ok {
		return e.status
	}
	return StatusIdle
}

// Keys lists the keys that have an entry.
func (c *Client) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Drain waits for every fetch started so far, including background
// refetches, or for ctx to end.
func (c *Client) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
