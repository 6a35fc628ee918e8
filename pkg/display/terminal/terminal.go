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

// Package terminal simulates the pager panel and its buttons in a terminal,
// for development machines without the hardware.
package terminal

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	"github.com/lazeeeer/MD-Vision/pkg/input"
	"github.com/rs/zerolog/log"
)

// Panel pixels map onto character cells of this size.
const (
	CellWidth  = 4
	CellHeight = 10
	Cols       = display.Width / CellWidth
	Rows       = (display.Height + CellHeight - 1) / CellHeight

	markerRune = '●'

	// DefaultPressHold is how long a key press holds a button down.
	DefaultPressHold = 400 * time.Millisecond
)

// Simulator is a display.Surface drawn inside a box on a tcell screen. The
// space bar presses the dismiss button, p presses the photo button and q,
// Esc or Ctrl-C ask the app to quit.
type Simulator struct {
	screen   tcell.Screen
	clock    clockwork.Clock
	dismiss  *KeyButton
	photo    *KeyButton
	quit     chan struct{}
	style    tcell.Style
	wg       sync.WaitGroup
	quitOnce sync.Once
	hold     time.Duration
	mu       syncutil.Mutex
}

type Option func(*Simulator)

func WithClock(c clockwork.Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithPressHold sets how long a key press reads as a held button. It needs
// to outlast the debounce delay.
func WithPressHold(d time.Duration) Option {
	return func(s *Simulator) { s.hold = d }
}

// New takes over screen, or the process terminal when screen is nil.
func New(screen tcell.Screen, opts ...Option) (*Simulator, error) {
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("create terminal screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal screen: %w", err)
	}

	s := &Simulator{
		screen: screen,
		quit:   make(chan struct{}),
		hold:   DefaultPressHold,
		style:  tcell.StyleDefault,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	s.dismiss = &KeyButton{clock: s.clock, hold: s.hold}
	s.photo = &KeyButton{clock: s.clock, hold: s.hold}

	s.drawFrame()
	screen.Show()

	s.wg.Add(1)
	go s.events()
	return s, nil
}

func (s *Simulator) DismissButton() *KeyButton {
	return s.dismiss
}

func (s *Simulator) PhotoButton() *KeyButton {
	return s.photo
}

// Quit is closed when the user asks to leave.
func (s *Simulator) Quit() <-chan struct{} {
	return s.quit
}

func (s *Simulator) events() {
	defer s.wg.Done()
	for {
		ev := s.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			s.handleKey(ev)
		}
	}
}

func (s *Simulator) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		s.requestQuit()
	case tcell.KeyEnter:
		s.dismiss.Press()
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			s.dismiss.Press()
		case 'p', 'P':
			s.photo.Press()
		case 'q', 'Q':
			s.requestQuit()
		}
	}
}

func (s *Simulator) requestQuit() {
	s.quitOnce.Do(func() {
		log.Info().Msg("quit requested from terminal")
		close(s.quit)
	})
}

// drawFrame draws the box around the panel area.
func (s *Simulator) drawFrame() {
	st := tcell.StyleDefault.Dim(true)
	s.screen.SetContent(0, 0, tcell.RuneULCorner, nil, st)
	s.screen.SetContent(Cols+1, 0, tcell.RuneURCorner, nil, st)
	s.screen.SetContent(0, Rows+1, tcell.RuneLLCorner, nil, st)
	s.screen.SetContent(Cols+1, Rows+1, tcell.RuneLRCorner, nil, st)
	for c := 1; c <= Cols; c++ {
		s.screen.SetContent(c, 0, tcell.RuneHLine, nil, st)
		s.screen.SetContent(c, Rows+1, tcell.RuneHLine, nil, st)
	}
	for r := 1; r <= Rows; r++ {
		s.screen.SetContent(0, r, tcell.RuneVLine, nil, st)
		s.screen.SetContent(Cols+1, r, tcell.RuneVLine, nil, st)
	}
	help := "space: dismiss  p: photo  q: quit"
	for i, ch := range help {
		s.screen.SetContent(i, Rows+2, ch, nil, st)
	}
}

// put writes one cell of the panel area, clipping outside it.
func (s *Simulator) put(col, row int, ch rune, st tcell.Style) {
	if col < 0 || col >= Cols || row < 0 || row >= Rows {
		return
	}
	s.screen.SetContent(col+1, row+1, ch, nil, st)
}

// Cell returns the rune shown at a panel cell.
func (s *Simulator) Cell(col, row int) rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, _, _, _ := s.screen.GetContent(col+1, row+1)
	return ch
}

// Row returns a whole panel row as text.
func (s *Simulator) Row(row int) string {
	out := make([]rune, Cols)
	for c := range Cols {
		out[c] = s.Cell(c, row)
	}
	return string(out)
}

func (s *Simulator) ClearAll() error {
	return s.ClearRegion(0, 0, display.Width, display.Height)
}

func (s *Simulator) ClearRegion(x, y, w, h int) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for row := y / CellHeight; row <= (y+h-1)/CellHeight; row++ {
		for col := x / CellWidth; col <= (x+w-1)/CellWidth; col++ {
			s.put(col, row, ' ', tcell.StyleDefault)
		}
	}
	return nil
}

func (s *Simulator) SetFont(f display.Font) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch f {
	case display.FontBody:
		s.style = tcell.StyleDefault
	case display.FontHeading:
		s.style = tcell.StyleDefault.Bold(true)
	default:
		return fmt.Errorf("unknown font: %d", f)
	}
	return nil
}

// DrawText places text on the cell row holding baseline y.
func (s *Simulator) DrawText(x, y int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := (y - 1) / CellHeight
	col := x / CellWidth
	for _, ch := range text {
		s.put(col, row, ch, s.style)
		col++
	}
	return nil
}

func (s *Simulator) DrawMarker(x, y, _ int, filled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := ' '
	if filled {
		ch = markerRune
	}
	s.put(x/CellWidth, y/CellHeight, ch, tcell.StyleDefault)
	return nil
}

func (s *Simulator) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Show()
	return nil
}

// Close restores the terminal.
func (s *Simulator) Close() error {
	s.screen.Fini()
	s.wg.Wait()
	return nil
}

// KeyButton is an input.Button that reads pressed for a while after each
// key press.
type KeyButton struct {
	clock   clockwork.Clock
	until   time.Time
	presses int
	hold    time.Duration
	mu      syncutil.Mutex
}

func (b *KeyButton) Press() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.until = b.clock.Now().Add(b.hold)
	b.presses++
}

func (b *KeyButton) Presses() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presses
}

func (b *KeyButton) ReadRaw() input.Level {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clock.Now().Before(b.until) {
		return input.Pressed
	}
	return input.Released
}
