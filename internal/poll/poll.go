// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package poll repeats a list fetch on a fixed interval and delivers the
// non-empty batches until it is unsubscribed.
package poll

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/apex/log"
)

// DefaultInterval is how often notifications are polled unless configured.
const DefaultInterval = 30 * time.Second

// buffer is how many undelivered batches a subscription holds before it
// starts dropping new ones.
const buffer = 16

// FetchFunc returns the current batch.
type FetchFunc[T any] func(context.Context) ([]T, error)

// Subscription is a running poll. The zero value is not usable; see
// Subscribe.
type Subscription[T any] struct {
	ch     chan []T
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Subscribe calls fetch every interval until ctx ends or Unsubscribe is
// called. Items for which keep returns false are dropped, and batches left
// empty are not delivered. A nil keep keeps everything. Fetch errors are
// logged and the poll carries on; there is no retry within a tick.
func Subscribe[T any](ctx context.Context, interval time.Duration, fetch FetchFunc[T], keep func(T) bool) *Subscription[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		ch:     make(chan []T, buffer),
		cancel: cancel,
	}

	s.wg.Add(1)
	go s.worker(ctx, interval, fetch, keep)

	return s
}

func (s *Subscription[T]) worker(ctx context.Context, interval time.Duration, fetch FetchFunc[T], keep func(T) bool) {
	defer s.wg.Done()
	defer close(s.ch)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		items, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("poll failed")
			continue
		}

		batch := items[:0:0]
		for _, item := range items {
			if keep == nil || keep(item) {
				batch = append(batch, item)
			}
		}
		if len(batch) == 0 {
			continue
		}

		select {
		case s.ch <- batch:
		case <-ctx.Done():
			return
		default:
			log.Warnf("poll: dropped batch of %d, reader is behind", len(batch))
		}
	}
}

// C delivers batches. It is closed once the subscription stops.
func (s *Subscription[T]) C() <-chan []T {
	return s.ch
}

// All yields the items of every batch in order until the subscription stops
// or the loop breaks.
func (s *Subscription[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for batch := range s.ch {
			for _, item := range batch {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// Unsubscribe stops the poll and waits for an in-progress fetch to return.
// It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()
	s.wg.Wait()
}
