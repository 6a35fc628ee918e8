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

// Package controller runs the pager's display state machine: it shows one
// queued page per button press and clears it on the next press.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	"github.com/lazeeeer/MD-Vision/pkg/input"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/lazeeeer/MD-Vision/pkg/pager/queue"
	"github.com/rs/zerolog/log"
)

const (
	DefaultInterval    = 100 * time.Millisecond
	DefaultDebounce    = 200 * time.Millisecond
	DefaultDequeueWait = 10 * time.Millisecond
)

type State int32

const (
	Idle State = iota
	Showing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Showing:
		return "SHOWING"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Controller is driven by its own goroutine through Run or Step. State and
// Shown may be read from anywhere.
type Controller struct {
	queue       *queue.Queue
	screen      *display.Screen
	button      input.Button
	clock       clockwork.Clock
	debouncer   *input.Debouncer
	shown       *message.Record
	interval    time.Duration
	debounce    time.Duration
	dequeueWait time.Duration
	state       atomic.Int32
	mu          syncutil.Mutex
}

type Option func(*Controller)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithInterval sets the refresh period. The debounce threshold is derived
// from it.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithDebounce sets the software debounce delay. Zero trusts the line as
// filtered in hardware.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

func WithDequeueWait(d time.Duration) Option {
	return func(c *Controller) { c.dequeueWait = d }
}

func New(q *queue.Queue, screen *display.Screen, button input.Button, opts ...Option) (*Controller, error) {
	switch {
	case q == nil:
		return nil, errors.New("nil message queue")
	case screen == nil:
		return nil, errors.New("nil screen")
	case button == nil:
		return nil, errors.New("nil dismiss button")
	}
	c := &Controller{
		queue:       q,
		screen:      screen,
		button:      button,
		interval:    DefaultInterval,
		debounce:    DefaultDebounce,
		dequeueWait: DefaultDequeueWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.interval <= 0 {
		return nil, fmt.Errorf("invalid refresh interval: %v", c.interval)
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	c.debouncer = input.NewDebouncer(input.Threshold(c.debounce, c.interval))
	return c, nil
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

// Shown returns a copy of the page on screen.
func (c *Controller) Shown() (message.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shown == nil {
		return message.Record{}, false
	}
	return *c.shown, true
}

// Run steps the state machine every refresh period until ctx ends.
func (c *Controller) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", c.interval).
		Int("debounce_samples", c.debouncer.Threshold()).
		Msg("display controller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("display controller stopped")
			return nil
		case <-ticker.Chan():
			if err := c.Step(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("display cycle failed")
			}
		}
	}
}

// Step runs one cycle: refresh the indicator, sample the button, and act on
// a press. Render failures are logged; the returned error only reports a
// cancelled context.
func (c *Controller) Step(ctx context.Context) error {
	if err := c.screen.SetIndicator(c.queue.Len() > 0); err != nil {
		log.Warn().Err(err).Msg("failed to refresh indicator")
	}

	if !c.debouncer.Sample(c.button.ReadRaw()) {
		return nil
	}

	switch c.State() {
	case Idle:
		return c.showNext(ctx)
	case Showing:
		c.dismiss()
	}
	return nil
}

func (c *Controller) showNext(ctx context.Context) error {
	if c.queue.Len() == 0 {
		log.Debug().Msg("button pressed with nothing queued")
		return nil
	}

	rec, err := c.queue.Dequeue(ctx, c.dequeueWait)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("dequeue page: %w", err)
		}
		log.Warn().Err(err).Msg("queue reported pages but dequeue failed")
		return nil
	}

	if err := c.screen.ShowMessage(&rec); err != nil {
		log.Error().Err(err).Msg("failed to render page")
	}

	c.mu.Lock()
	c.shown = &rec
	c.mu.Unlock()
	c.state.Store(int32(Showing))

	log.Info().
		Str("kind", rec.Kind.String()).
		Int("remaining", c.queue.Len()).
		Msg("page shown")
	return nil
}

func (c *Controller) dismiss() {
	if err := c.screen.ClearMessage(); err != nil {
		log.Error().Err(err).Msg("failed to clear page")
	}

	c.mu.Lock()
	c.shown = nil
	c.mu.Unlock()
	c.state.Store(int32(Idle))

	log.Info().Int("remaining", c.queue.Len()).Msg("page dismissed")
}
