// MD-Vision Pager
// Copyright (c) 2026 The MD-Vision Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of MD-Vision Pager.
//
// MD-Vision Pager is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// MD-Vision Pager is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with MD-Vision Pager.  If not, see <http://www.gnu.org/licenses/>.

// Package queue is the bounded FIFO that decouples the radio poller from the
// display controller.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
)

var (
	// ErrFull is returned by Enqueue under the DropNewest policy.
	ErrFull = errors.New("queue full")
	// ErrTimeout is returned when Dequeue waits longer than its timeout.
	ErrTimeout = errors.New("queue wait timed out")
)

// Policy decides what Enqueue does when every slot is taken.
type Policy int

const (
	// EvictOldest discards the oldest record to make room. Enqueue never blocks.
	EvictOldest Policy = iota
	// DropNewest rejects the incoming record with ErrFull.
	DropNewest
	// Block waits for the consumer to free a slot.
	Block
)

func (p Policy) String() string {
	switch p {
	case EvictOldest:
		return "evict_oldest"
	case DropNewest:
		return "drop_newest"
	case Block:
		return "block"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps the config names to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "evict_oldest":
		return EvictOldest, nil
	case "drop_newest":
		return DropNewest, nil
	case "block":
		return Block, nil
	default:
		return EvictOldest, fmt.Errorf("unknown queue policy: %s", name)
	}
}

// Stats are cumulative counters since the queue was created.
type Stats struct {
	Enqueued uint64
	Dequeued uint64
	Evicted  uint64
	Dropped  uint64
}

// EnqueueResult describes what happened to make room for a record.
type EnqueueResult struct {
	// Evicted holds the record pushed out under EvictOldest.
	Evicted *message.Record
}

// Queue is a fixed-capacity ring of message records, safe for one producer
// and one consumer (and tolerant of more). Records are copied in and out.
type Queue struct {
	clock  clockwork.Clock
	ready  chan struct{}
	space  chan struct{}
	buf    []message.Record
	stats  Stats
	head   int
	count  int
	size   atomic.Int32
	policy Policy
	mu     syncutil.Mutex
}

type Option func(*Queue)

func WithPolicy(p Policy) Option {
	return func(q *Queue) { q.policy = p }
}

func WithClock(c clockwork.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// New creates a queue holding at most capacity records.
func New(capacity int, opts ...Option) (*Queue, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("invalid queue capacity: %d", capacity)
	}
	q := &Queue{
		buf:   make([]message.Record, capacity),
		ready: make(chan struct{}, 1),
		space: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.clock == nil {
		q.clock = clockwork.NewRealClock()
	}
	return q, nil
}

// Enqueue appends rec according to the queue's policy. Only the Block policy
// ever waits, and it gives up when ctx ends.
func (q *Queue) Enqueue(ctx context.Context, rec message.Record) (EnqueueResult, error) {
	for {
		q.mu.Lock()
		if q.count < len(q.buf) {
			q.push(rec)
			q.mu.Unlock()
			return EnqueueResult{}, nil
		}

		switch q.policy {
		case EvictOldest:
			old := q.pop()
			q.stats.Evicted++
			q.push(rec)
			q.mu.Unlock()
			return EnqueueResult{Evicted: &old}, nil
		case DropNewest:
			q.stats.Dropped++
			q.mu.Unlock()
			return EnqueueResult{}, ErrFull
		case Block:
		}
		q.mu.Unlock()

		select {
		case <-q.space:
		case <-ctx.Done():
			return EnqueueResult{}, fmt.Errorf("enqueue: %w", ctx.Err())
		}
	}
}

// Dequeue removes and returns the oldest record, waiting up to timeout for one
// to arrive. A timeout <= 0 waits until ctx ends.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (message.Record, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := q.clock.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.Chan()
	}

	for {
		if rec, ok := q.TryDequeue(); ok {
			return rec, nil
		}

		select {
		case <-q.ready:
		case <-expired:
			// One last look: a record may have landed as the timer fired.
			if rec, ok := q.TryDequeue(); ok {
				return rec, nil
			}
			return message.Record{}, ErrTimeout
		case <-ctx.Done():
			return message.Record{}, fmt.Errorf("dequeue: %w", ctx.Err())
		}
	}
}

// TryDequeue removes the oldest record if there is one.
func (q *Queue) TryDequeue() (message.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return message.Record{}, false
	}
	rec := q.pop()
	q.stats.Dequeued++
	signal(q.space)
	return rec, true
}

// Len is a snapshot of the number of queued records. It never blocks.
func (q *Queue) Len() int {
	return int(q.size.Load())
}

func (q *Queue) Cap() int {
	return len(q.buf)
}

func (q *Queue) Policy() Policy {
	return q.policy
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// push and pop must be called with mu held.
func (q *Queue) push(rec message.Record) {
	tail := (q.head + q.count) % len(q.buf)
	q.buf[tail] = rec
	q.count++
	q.stats.Enqueued++
	q.size.Store(int32(q.count)) //nolint:gosec // capacity is small
	signal(q.ready)
}

func (q *Queue) pop() message.Record {
	rec := q.buf[q.head]
	q.buf[q.head] = message.Record{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.size.Store(int32(q.count)) //nolint:gosec // capacity is small
	return rec
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
