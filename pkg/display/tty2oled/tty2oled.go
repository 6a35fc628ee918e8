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

// Package tty2oled drives a USB serial OLED panel running the tty2oled
// firmware. Drawing operations become text commands; the firmware keeps its
// own framebuffer and shows it on CmdUpdate.
package tty2oled

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	"github.com/lazeeeer/MD-Vision/pkg/shared/serialport"
	"github.com/rs/zerolog/log"
)

var ErrDisconnected = errors.New("tty2oled panel disconnected")

// Panel is a display.Surface backed by a tty2oled device. A dropped link is
// reopened on the next drawing call.
type Panel struct {
	port      serialport.Port
	factory   serialport.Factory
	path      string
	baud      int
	font      int
	setupWait time.Duration
	drawGap   time.Duration
	state     stateManager
	mu        syncutil.Mutex
}

type Option func(*Panel)

func WithPortFactory(f serialport.Factory) Option {
	return func(p *Panel) { p.factory = f }
}

func WithBaudRate(baud int) Option {
	return func(p *Panel) { p.baud = baud }
}

// WithTiming overrides the pauses after setup and drawing commands.
func WithTiming(setup, draw time.Duration) Option {
	return func(p *Panel) {
		p.setupWait = setup
		p.drawGap = draw
	}
}

// Open connects to the panel at path and runs the firmware handshake.
func Open(path string, opts ...Option) (*Panel, error) {
	if path == "" {
		return nil, errors.New("tty2oled device path is empty")
	}
	p := &Panel{
		path:      path,
		baud:      DefaultBaudRate,
		factory:   serialport.DefaultFactory,
		font:      FontSlotBody,
		setupWait: WaitDuration,
		drawGap:   DrawGap,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Msg("tty2oled panel connected")
	return p, nil
}

// State reports the link state.
func (p *Panel) State() ConnectionState {
	return p.state.get()
}

func (p *Panel) connect() error {
	p.state.set(StateConnecting)
	port, err := p.factory(p.path, serialport.Mode8N1(p.baud))
	if err != nil {
		p.state.set(StateDisconnected)
		return fmt.Errorf("open tty2oled port: %w", err)
	}
	p.port = port

	p.state.set(StateHandshaking)
	if err := p.handshake(); err != nil {
		p.dropLink()
		return fmt.Errorf("tty2oled handshake: %w", err)
	}
	p.state.set(StateConnected)
	return nil
}

func (p *Panel) handshake() error {
	setup := []string{
		CmdHandshake,
		fmt.Sprintf("%s,%d", CmdContrast, ContrastDefault),
		fmt.Sprintf("%s,%d", CmdSetTime, time.Now().Unix()),
		CmdSaver + ",0,0,0",
	}
	for _, cmd := range setup {
		if err := p.send(cmd, p.setupWait); err != nil {
			return err
		}
	}
	return nil
}

func (p *Panel) dropLink() {
	if p.port != nil {
		_ = p.port.Close()
		p.port = nil
	}
	p.state.set(StateDisconnected)
}

func (p *Panel) send(command string, wait time.Duration) error {
	if p.port == nil {
		return ErrDisconnected
	}
	if _, err := p.port.Write([]byte(command + CommandTerminator)); err != nil {
		if serialport.IsDisconnect(err) {
			log.Info().Str("device", p.path).Err(err).Msg("tty2oled device disconnected - write error")
			p.dropLink()
		}
		return fmt.Errorf("failed to write to port: %w", err)
	}
	log.Trace().Str("command", command).Msg("tty2oled: sent command")
	if wait > 0 {
		time.Sleep(wait)
	}
	return nil
}

// draw sends a drawing command, reconnecting first if the link dropped.
func (p *Panel) draw(command string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.get() != StateConnected {
		if err := p.connect(); err != nil {
			return errors.Join(ErrDisconnected, err)
		}
		log.Info().Str("path", p.path).Msg("tty2oled panel reconnected")
	}
	return p.send(command, p.drawGap)
}

func (p *Panel) ClearAll() error {
	return p.draw(CmdClearNoUpd)
}

func (p *Panel) ClearRegion(x, y, w, h int) error {
	return p.draw(fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d,0",
		CmdGeometry, ShapeFilledBox, ColorOff, x, y, w, h))
}

func (p *Panel) SetFont(f display.Font) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch f {
	case display.FontBody:
		p.font = FontSlotBody
	case display.FontHeading:
		p.font = FontSlotHeading
	default:
		return fmt.Errorf("unknown font: %d", f)
	}
	return nil
}

func (p *Panel) DrawText(x, y int, text string) error {
	p.mu.Lock()
	slot := p.font
	p.mu.Unlock()
	return p.draw(fmt.Sprintf("%s,%d,%d,%d,%d,%d,%s",
		CmdText, slot, ColorOn, ColorOff, x, y, sanitize(text)))
}

func (p *Panel) DrawMarker(x, y, r int, filled bool) error {
	color := ColorOff
	if filled {
		color = ColorOn
	}
	return p.draw(fmt.Sprintf("%s,%d,%d,%d,%d,0,0,%d",
		CmdGeometry, ShapeFilledCircle, color, x, y, r))
}

func (p *Panel) Flush() error {
	return p.draw(CmdUpdate)
}

// Close blanks the panel and releases the port.
func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	if p.state.get() == StateConnected {
		if err := p.send(CmdClearShow, 0); err != nil {
			log.Debug().Err(err).Msg("failed to blank tty2oled panel")
		}
	}
	var err error
	if p.port != nil {
		err = p.port.Close()
		p.port = nil
	}
	p.state.set(StateDisconnected)
	if err != nil {
		return fmt.Errorf("close tty2oled port: %w", err)
	}
	return nil
}

// sanitize keeps text on one command line.
func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, text)
}
