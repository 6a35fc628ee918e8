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

package oled

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/lazeeeer/MD-Vision/pkg/display"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	bodyPoints    = 8
	headingPoints = 10
)

// Canvas is a 1-bit framebuffer that implements display.Surface. Flush hands
// the framebuffer to sink, which pushes it to the panel.
type Canvas struct {
	sink  func(image.Image) error
	fb    *image1bit.VerticalLSB
	faces map[display.Font]font.Face
	face  font.Face
}

// NewCanvas builds a panel-sized framebuffer with the Go Mono faces loaded.
func NewCanvas(sink func(image.Image) error) (*Canvas, error) {
	if sink == nil {
		return nil, errors.New("nil canvas sink")
	}
	body, err := loadFace(gomono.TTF, bodyPoints)
	if err != nil {
		return nil, fmt.Errorf("load body font: %w", err)
	}
	heading, err := loadFace(gomonobold.TTF, headingPoints)
	if err != nil {
		return nil, fmt.Errorf("load heading font: %w", err)
	}
	return &Canvas{
		sink: sink,
		fb:   image1bit.NewVerticalLSB(image.Rect(0, 0, display.Width, display.Height)),
		faces: map[display.Font]font.Face{
			display.FontBody:    body,
			display.FontHeading: heading,
		},
		face: body,
	}, nil
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// Image exposes the framebuffer for inspection.
func (c *Canvas) Image() *image1bit.VerticalLSB {
	return c.fb
}

func (c *Canvas) ClearAll() error {
	clear(c.fb.Pix)
	return nil
}

func (c *Canvas) ClearRegion(x, y, w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("invalid region %dx%d", w, h)
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(c.fb.Bounds())
	draw.Draw(c.fb, r, image.NewUniform(image1bit.Off), image.Point{}, draw.Src)
	return nil
}

func (c *Canvas) SetFont(f display.Font) error {
	face, ok := c.faces[f]
	if !ok {
		return fmt.Errorf("unknown font: %d", f)
	}
	c.face = face
	return nil
}

// DrawText draws text with its baseline at y. Glyphs outside the panel are
// clipped.
func (c *Canvas) DrawText(x, y int, text string) error {
	d := font.Drawer{
		Dst:  c.fb,
		Src:  image.NewUniform(image1bit.On),
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
	return nil
}

func (c *Canvas) DrawMarker(x, y, r int, filled bool) error {
	if r < 0 {
		return fmt.Errorf("invalid marker radius: %d", r)
	}
	bit := image1bit.Off
	if filled {
		bit = image1bit.On
	}
	bounds := c.fb.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			p := image.Pt(x+dx, y+dy)
			if p.In(bounds) {
				c.fb.SetBit(p.X, p.Y, bit)
			}
		}
	}
	return nil
}

func (c *Canvas) Flush() error {
	return c.sink(c.fb)
}

func (*Canvas) Close() error {
	return nil
}
