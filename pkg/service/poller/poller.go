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

// Package poller moves pages from the radio receiver into the message queue
// at a fixed cadence.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/lazeeeer/MD-Vision/pkg/pager/queue"
	"github.com/lazeeeer/MD-Vision/pkg/radio"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultInterval = 50 * time.Millisecond

	// Loss and read-error warnings are throttled to this rate; the counters
	// in Stats stay exact.
	warnEvery = 2 * time.Second
	warnBurst = 3
)

type Stats struct {
	Received   uint64
	ReadErrors uint64
	Truncated  uint64
	Evicted    uint64
	Dropped    uint64
}

// ReceiveFunc is called with every record that made it into the queue.
type ReceiveFunc func(rec message.Record)

// Poller owns the radio adapter's read side. Only one goroutine may call
// Step or Run.
type Poller struct {
	adapter   radio.Adapter
	queue     *queue.Queue
	clock     clockwork.Clock
	onReceive ReceiveFunc
	warn      *rate.Limiter
	interval  time.Duration
	received  atomic.Uint64
	readErrs  atomic.Uint64
	truncated atomic.Uint64
	evicted   atomic.Uint64
	dropped   atomic.Uint64
	buf       [message.MaxLen]byte
}

type Option func(*Poller)

func WithClock(c clockwork.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithOnReceive installs a hook run after each successful enqueue, on the
// poller goroutine.
func WithOnReceive(fn ReceiveFunc) Option {
	return func(p *Poller) { p.onReceive = fn }
}

func New(adapter radio.Adapter, q *queue.Queue, opts ...Option) (*Poller, error) {
	if adapter == nil {
		return nil, errors.New("nil radio adapter")
	}
	if q == nil {
		return nil, errors.New("nil message queue")
	}
	p := &Poller{
		adapter:  adapter,
		queue:    q,
		interval: DefaultInterval,
		warn:     rate.NewLimiter(rate.Every(warnEvery), warnBurst),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.interval <= 0 {
		return nil, fmt.Errorf("invalid poll interval: %v", p.interval)
	}
	return p, nil
}

// Run polls until ctx ends.
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", p.interval).Msg("radio poller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("radio poller stopped")
			return nil
		case <-ticker.Chan():
			if _, err := p.Step(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("radio poll cycle failed")
			}
		}
	}
}

// Step runs one poll cycle: it reads at most one page and enqueues it. It
// reports whether a record entered the queue. Adapter failures are logged
// and swallowed; only a cancelled enqueue returns an error.
func (p *Poller) Step(ctx context.Context) (bool, error) {
	if p.adapter.Available() <= 0 {
		return false, nil
	}
	defer clear(p.buf[:])

	res, err := p.adapter.Read(p.buf[:])
	if err != nil {
		if errors.Is(err, radio.ErrNoMessage) {
			return false, nil
		}
		p.readErrs.Add(1)
		if p.warn.Allow() {
			log.Warn().Err(err).Uint64("read_errors", p.readErrs.Load()).Msg("radio read failed")
		}
		return false, nil
	}

	n := min(max(res.N, 0), len(p.buf))
	payload := p.buf[:n]
	if res.Truncated {
		payload = message.TrimPartialRune(payload)
	}
	rec, cut := message.New(payload)
	rec.Address = res.Address
	rec.Received = p.clock.Now()
	if cut || res.Truncated {
		p.truncated.Add(1)
		log.Warn().
			Uint32("address", rec.Address).
			Int("kept", rec.Len()).
			Msg("page longer than message buffer, truncated")
	}
	if rec.IsEmpty() {
		log.Debug().Uint32("address", rec.Address).Msg("ignoring empty page")
		return false, nil
	}

	result, err := p.queue.Enqueue(ctx, rec)
	switch {
	case errors.Is(err, queue.ErrFull):
		p.dropped.Add(1)
		if p.warn.Allow() {
			log.Warn().Uint64("dropped", p.dropped.Load()).Msg("message queue full, page dropped")
		}
		return false, nil
	case err != nil:
		return false, fmt.Errorf("enqueue page: %w", err)
	}

	p.received.Add(1)
	if result.Evicted != nil {
		p.evicted.Add(1)
		if p.warn.Allow() {
			log.Warn().
				Uint64("evicted", p.evicted.Load()).
				Str("kind", result.Evicted.Kind.String()).
				Msg("message queue full, oldest page evicted")
		}
	}
	log.Info().
		Uint32("address", rec.Address).
		Str("kind", rec.Kind.String()).
		Int("len", rec.Len()).
		Int("queued", p.queue.Len()).
		Msg("page received")

	if p.onReceive != nil {
		p.onReceive(rec)
	}
	return true, nil
}

func (p *Poller) Stats() Stats {
	return Stats{
		Received:   p.received.Load(),
		ReadErrors: p.readErrs.Load(),
		Truncated:  p.truncated.Load(),
		Evicted:    p.evicted.Load(),
		Dropped:    p.dropped.Load(),
	}
}
