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

// Package serialpager reads decoded POCSAG pages from a companion radio
// module over a UART. The module firmware prints one line per event:
//
//	PAGE\taddr=1234567\ttext=Room 12 assist
//	PAGE\tRoom 12 assist
//	ERR\tcrc
//
// Anything else is ignored.
package serialpager

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	"github.com/lazeeeer/MD-Vision/pkg/radio"
	"github.com/lazeeeer/MD-Vision/pkg/shared/serialport"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaudRate = 115200
	readTimeout     = 100 * time.Millisecond
	reconnectDelay  = 2 * time.Second
	maxLineLen      = 1024
)

type Receiver struct {
	port        serialport.Port
	portFactory serialport.Factory
	inbox       *radio.Inbox
	done        chan struct{}
	wg          sync.WaitGroup
	path        string
	baud        int
	lineErrors  atomic.Uint64
	closeOnce   sync.Once
	mu          syncutil.Mutex // protects port
}

type Option func(*Receiver)

// WithPortFactory replaces the serial port opener.
func WithPortFactory(f serialport.Factory) Option {
	return func(r *Receiver) { r.portFactory = f }
}

// WithInbox sets how many decoded pages are held before the oldest is dropped.
func WithInbox(size int) Option {
	return func(r *Receiver) { r.inbox = radio.NewInbox(size) }
}

func NewReceiver(opts ...Option) *Receiver {
	r := &Receiver{
		portFactory: serialport.DefaultFactory,
		inbox:       radio.NewInbox(radio.DefaultInboxSize),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open connects to the receiver and starts decoding lines in the background.
func (r *Receiver) Open(path string, baud int) error {
	if path == "" {
		return errors.New("serial pager: device path is empty")
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to stat device path %s: %w", path, err)
	}

	r.path = path
	r.baud = baud
	if err := r.connect(); err != nil {
		return err
	}

	r.wg.Add(1)
	go r.readLoop()

	log.Info().Str("device", path).Int("baud", baud).Msg("serial pager receiver opened")
	return nil
}

func (r *Receiver) connect() error {
	port, err := r.portFactory(r.path, serialport.Mode8N1(r.baud))
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", r.path, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("failed to set read timeout on serial port: %w", err)
	}
	r.mu.Lock()
	r.port = port
	r.mu.Unlock()
	return nil
}

func (r *Receiver) currentPort() serialport.Port {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.port
}

func (r *Receiver) readLoop() {
	defer r.wg.Done()

	var lineBuf []byte
	buf := make([]byte, 256)

	for {
		select {
		case <-r.done:
			return
		default:
		}

		port := r.currentPort()
		if port == nil {
			if !r.reconnect() {
				return
			}
			continue
		}

		n, err := port.Read(buf)
		if err != nil {
			select {
			case <-r.done:
				return
			default:
			}
			log.Error().Err(err).Str("device", r.path).Msg("failed to read from serial pager")
			r.mu.Lock()
			if r.port != nil {
				_ = r.port.Close()
				r.port = nil
			}
			r.mu.Unlock()
			lineBuf = lineBuf[:0]
			continue
		}

		for i := range n {
			if buf[i] != '\n' {
				if len(lineBuf) < maxLineLen {
					lineBuf = append(lineBuf, buf[i])
				}
				continue
			}
			r.handleLine(string(lineBuf))
			lineBuf = lineBuf[:0]
		}
	}
}

// reconnect waits and retries the port until it opens or Close is called.
func (r *Receiver) reconnect() bool {
	select {
	case <-r.done:
		return false
	case <-time.After(reconnectDelay):
	}
	if err := r.connect(); err != nil {
		log.Debug().Err(err).Msg("serial pager reconnect failed")
		return true
	}
	log.Info().Str("device", r.path).Msg("serial pager receiver reconnected")
	return true
}

func (r *Receiver) handleLine(line string) {
	page, err := ParseLine(line)
	if err != nil {
		r.lineErrors.Add(1)
		log.Warn().Err(err).Msg("serial pager reported an error")
		return
	}
	if page == nil {
		return
	}
	page.Received = time.Now()
	if r.inbox.Push(*page) {
		log.Warn().Msg("serial pager inbox full, dropped oldest page")
	}
}

// ParseLine decodes one line from the receiver. A nil page with a nil error
// means the line carries nothing to deliver.
func ParseLine(line string) (*radio.Page, error) {
	line = strings.TrimRight(strings.TrimSpace(line), "\r")
	if line == "" {
		return nil, nil //nolint:nilnil // empty line is not an error
	}

	switch {
	case strings.HasPrefix(line, "ERR\t"):
		return nil, fmt.Errorf("receiver error: %s", strings.TrimSpace(line[4:]))
	case !strings.HasPrefix(line, "PAGE\t"):
		return nil, nil //nolint:nilnil // status and debug lines are ignored
	}

	args := line[5:]
	if args == "" {
		return nil, nil //nolint:nilnil // page with no content
	}

	page := &radio.Page{}
	hasArg := false
	for _, part := range strings.Split(args, "\t") {
		switch {
		case strings.HasPrefix(part, "addr="):
			addr, err := strconv.ParseUint(strings.TrimSpace(part[5:]), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid page address %q: %w", part[5:], err)
			}
			page.Address = uint32(addr)
			hasArg = true
		case strings.HasPrefix(part, "text="):
			page.Payload = []byte(part[5:])
			hasArg = true
		}
	}

	// no named arguments means the whole remainder is the message
	if !hasArg {
		page.Payload = []byte(args)
	}
	if len(page.Payload) == 0 {
		return nil, nil //nolint:nilnil // address-only pages (tone pages) carry no text
	}

	return page, nil
}

func (r *Receiver) Available() int {
	return r.inbox.Len()
}

func (r *Receiver) Read(buf []byte) (radio.ReadResult, error) {
	return r.inbox.ReadInto(buf)
}

// LineErrors counts ERR lines reported by the module.
func (r *Receiver) LineErrors() uint64 {
	return r.lineErrors.Load()
}

func (r *Receiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		r.mu.Lock()
		if r.port != nil {
			err = r.port.Close()
			r.port = nil
		}
		r.mu.Unlock()
		r.wg.Wait()
	})
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}
