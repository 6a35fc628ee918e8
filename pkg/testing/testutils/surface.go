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

package testutils

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lazeeeer/MD-Vision/pkg/display"
)

var ErrSurfaceFailure = errors.New("surface failure")

// TextOp is one DrawText call seen by a RecordingSurface.
type TextOp struct {
	Text string
	X    int
	Y    int
	Font display.Font
}

// RecordingSurface is an in-memory display.Surface that logs every call as a
// short op string ("clear_all", "text 14,20 hello", "flush", ...). FailOn and
// PanicOn make the named op misbehave.
type RecordingSurface struct {
	// OnOp, when set, is called after each op is recorded and before it
	// returns.
	OnOp    func(op string)
	FailOn  string
	PanicOn string
	ops     []string
	texts   []TextOp
	font    display.Font
	marker  bool
	closed  bool
	mu      sync.Mutex
}

func NewRecordingSurface() *RecordingSurface {
	return &RecordingSurface{}
}

func (s *RecordingSurface) record(op string) error {
	s.mu.Lock()
	s.ops = append(s.ops, op)
	hook := s.OnOp
	failOn, panicOn := s.FailOn, s.PanicOn
	s.mu.Unlock()

	if hook != nil {
		hook(op)
	}
	name, _, _ := strings.Cut(op, " ")
	if panicOn != "" && name == panicOn {
		panic("recording surface: " + op)
	}
	if failOn != "" && name == failOn {
		return fmt.Errorf("%w: %s", ErrSurfaceFailure, op)
	}
	return nil
}

func (s *RecordingSurface) ClearAll() error {
	s.mu.Lock()
	s.texts = nil
	s.marker = false
	s.mu.Unlock()
	return s.record("clear_all")
}

func (s *RecordingSurface) ClearRegion(x, y, w, h int) error {
	return s.record(fmt.Sprintf("clear_region %d,%d,%d,%d", x, y, w, h))
}

func (s *RecordingSurface) SetFont(f display.Font) error {
	s.mu.Lock()
	s.font = f
	s.mu.Unlock()
	return s.record(fmt.Sprintf("font %d", f))
}

func (s *RecordingSurface) DrawText(x, y int, text string) error {
	s.mu.Lock()
	s.texts = append(s.texts, TextOp{Text: text, X: x, Y: y, Font: s.font})
	s.mu.Unlock()
	return s.record(fmt.Sprintf("text %d,%d %s", x, y, text))
}

func (s *RecordingSurface) DrawMarker(x, y, r int, filled bool) error {
	s.mu.Lock()
	s.marker = filled
	s.mu.Unlock()
	state := "off"
	if filled {
		state = "on"
	}
	return s.record(fmt.Sprintf("marker %d,%d,%d %s", x, y, r, state))
}

func (s *RecordingSurface) Flush() error {
	return s.record("flush")
}

func (s *RecordingSurface) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.record("close")
}

// Ops returns a copy of every op recorded so far.
func (s *RecordingSurface) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

// Texts returns every DrawText call since the last ClearAll.
func (s *RecordingSurface) Texts() []TextOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TextOp(nil), s.texts...)
}

// MarkerOn reports the state of the last DrawMarker call.
func (s *RecordingSurface) MarkerOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker
}

func (s *RecordingSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Reset forgets recorded ops and texts.
func (s *RecordingSurface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
	s.texts = nil
}

// Count returns how many recorded ops start with name.
func (s *RecordingSurface) Count(name string) int {
	n := 0
	for _, op := range s.Ops() {
		if op == name || strings.HasPrefix(op, name+" ") {
			n++
		}
	}
	return n
}
