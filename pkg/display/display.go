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

// Package display owns the pager's 128x64 monochrome panel: the drawing
// surface drivers implement, the layout constants, and Screen, which
// serialises every drawing task through one lock.
package display

// Font selects one of the panel fonts. Drivers map these to whatever glyph
// set they carry.
type Font int

const (
	FontBody Font = iota
	FontHeading
)

// Surface is a monochrome drawing target. Coordinates are pixels with the
// origin at the top left; text y is the baseline. Nothing is visible until
// Flush.
type Surface interface {
	ClearAll() error
	ClearRegion(x, y, w, h int) error
	SetFont(f Font) error
	DrawText(x, y int, text string) error
	// DrawMarker draws a filled disc of radius r centred on (x, y), or
	// erases that area when filled is false.
	DrawMarker(x, y, r int, filled bool) error
	Flush() error
	Close() error
}

const (
	Width  = 128
	Height = 64
)

type Rect struct {
	X, Y, W, H int
}

// Layout positions every element on the panel.
type Layout struct {
	// Region is cleared before a message is drawn and when it is dismissed.
	Region Rect
	// KindRegion is the heading-row slot for the message kind label.
	KindRegion Rect
	TextX      int
	TopY       int
	LineHeight int
	// LineChars is the line budget in characters.
	LineChars int
	HeadingX  int
	HeadingY  int
	MarkerX   int
	MarkerY   int
	MarkerR   int
	WordWrap  bool
}

var DefaultLayout = Layout{
	Region:     Rect{X: 14, Y: 11, W: 100, H: 53},
	KindRegion: Rect{X: 96, Y: 0, W: 32, H: 11},
	TextX:      14,
	TopY:       20,
	LineHeight: 10,
	LineChars:  20,
	HeadingX:   0,
	HeadingY:   10,
	MarkerX:    124,
	MarkerY:    59,
	MarkerR:    2,
}

// Lines splits text for this layout.
func (l Layout) Lines(text string) []string {
	if l.WordWrap {
		return WrapWords(text, l.LineChars)
	}
	return SplitLines(text, l.LineChars)
}

// LineY is the baseline of line i.
func (l Layout) LineY(i int) int {
	return l.TopY + i*l.LineHeight
}
