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

package display

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/rs/zerolog/log"
)

// HeadingText is drawn in the HUD when no device label is configured.
const HeadingText = "MD-Vision"

var ErrRenderPanic = errors.New("render panicked")

// Screen guards a Surface with a single mutex. Every drawing task, from the
// controller or the photo service, runs through Do so that a task's clear,
// draw and flush sequence is never interleaved with another's.
type Screen struct {
	surface Surface
	clock   clockwork.Clock
	layout  Layout
	mu      syncutil.Mutex
}

type ScreenOption func(*Screen)

// WithScreenClock sets the clock used to time transient holds.
func WithScreenClock(c clockwork.Clock) ScreenOption {
	return func(s *Screen) { s.clock = c }
}

func NewScreen(surface Surface, layout Layout, opts ...ScreenOption) (*Screen, error) {
	if surface == nil {
		return nil, errors.New("nil display surface")
	}
	if layout.LineChars < 1 {
		return nil, fmt.Errorf("invalid line budget: %d", layout.LineChars)
	}
	if layout.LineHeight < 1 {
		return nil, fmt.Errorf("invalid line height: %d", layout.LineHeight)
	}
	s := &Screen{
		surface: surface,
		layout:  layout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s, nil
}

func (s *Screen) Layout() Layout {
	return s.layout
}

// Do runs fn with exclusive access to the surface. The lock is released on
// every exit path and a panic inside fn is returned as an error.
func (s *Screen) Do(fn func(Surface) error) error {
	return syncutil.Do(&s.mu, func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
			}
		}()
		return fn(s.surface)
	})
}

// ShowHUD wipes the panel and draws the heading row.
func (s *Screen) ShowHUD(label string) error {
	if label == "" {
		label = HeadingText
	}
	return s.Do(func(surf Surface) error {
		if err := surf.ClearAll(); err != nil {
			return fmt.Errorf("clear panel: %w", err)
		}
		if err := surf.SetFont(FontHeading); err != nil {
			return fmt.Errorf("set heading font: %w", err)
		}
		if err := surf.DrawText(s.layout.HeadingX, s.layout.HeadingY, label); err != nil {
			return fmt.Errorf("draw heading: %w", err)
		}
		return surf.Flush()
	})
}

// SetIndicator draws or erases the pending-message marker.
func (s *Screen) SetIndicator(on bool) error {
	return s.Do(func(surf Surface) error {
		l := s.layout
		if err := surf.DrawMarker(l.MarkerX, l.MarkerY, l.MarkerR, on); err != nil {
			return fmt.Errorf("draw marker: %w", err)
		}
		return surf.Flush()
	})
}

// ShowMessage clears the message region and draws rec's text and kind.
func (s *Screen) ShowMessage(rec *message.Record) error {
	lines := s.layout.Lines(rec.Text())
	label := rec.Kind.Label()
	return s.Do(func(surf Surface) error {
		if err := s.clearMessage(surf); err != nil {
			return err
		}
		if label != "" {
			if err := surf.SetFont(FontHeading); err != nil {
				return fmt.Errorf("set heading font: %w", err)
			}
			kr := s.layout.KindRegion
			if err := surf.DrawText(kr.X, s.layout.HeadingY, label); err != nil {
				return fmt.Errorf("draw kind label: %w", err)
			}
		}
		if err := s.drawLines(surf, lines); err != nil {
			return err
		}
		return surf.Flush()
	})
}

// ClearMessage blanks the message region and kind label.
func (s *Screen) ClearMessage() error {
	return s.Do(func(surf Surface) error {
		if err := s.clearMessage(surf); err != nil {
			return err
		}
		return surf.Flush()
	})
}

// RenderTransientMessage shows text in the message region for hold, then
// clears it. The screen stays locked for the whole hold so nothing else can
// draw over it. A cancelled ctx cuts the hold short; the region is still
// cleared.
func (s *Screen) RenderTransientMessage(ctx context.Context, text string, hold time.Duration) error {
	return s.RenderTransientLines(ctx, s.layout.Lines(text), hold)
}

// RenderTransientLines is RenderTransientMessage for text that is already
// broken into lines.
func (s *Screen) RenderTransientLines(ctx context.Context, lines []string, hold time.Duration) error {
	return s.Do(func(surf Surface) error {
		if err := s.clearMessage(surf); err != nil {
			return err
		}
		if err := s.drawLines(surf, lines); err != nil {
			return err
		}
		if err := surf.Flush(); err != nil {
			return fmt.Errorf("flush transient: %w", err)
		}

		if hold > 0 {
			timer := s.clock.NewTimer(hold)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				timer.Stop()
				log.Debug().Msg("transient hold cut short")
			}
		}

		if err := s.clearMessage(surf); err != nil {
			return err
		}
		return surf.Flush()
	})
}

func (s *Screen) clearMessage(surf Surface) error {
	r := s.layout.Region
	if err := surf.ClearRegion(r.X, r.Y, r.W, r.H); err != nil {
		return fmt.Errorf("clear message region: %w", err)
	}
	kr := s.layout.KindRegion
	if kr.W > 0 && kr.H > 0 {
		if err := surf.ClearRegion(kr.X, kr.Y, kr.W, kr.H); err != nil {
			return fmt.Errorf("clear kind label: %w", err)
		}
	}
	return nil
}

// drawLines draws every line at its baseline. Lines below the panel edge are
// still issued; the driver clips them.
func (s *Screen) drawLines(surf Surface, lines []string) error {
	if err := surf.SetFont(FontBody); err != nil {
		return fmt.Errorf("set body font: %w", err)
	}
	for i, line := range lines {
		if err := surf.DrawText(s.layout.TextX, s.layout.LineY(i), line); err != nil {
			return fmt.Errorf("draw line %d: %w", i, err)
		}
	}
	return nil
}
