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

// Package radio defines the receiver side of the paging link. Drivers decode
// pages in the background and hold them until the poller asks for one.
package radio

import (
	"errors"
	"time"

	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
)

// ErrNoMessage is returned by Read when nothing is pending.
var ErrNoMessage = errors.New("no message pending")

// ReadResult describes one message copied out of the receiver.
type ReadResult struct {
	// Truncated is set when the payload was longer than the read buffer.
	Truncated bool
	N         int
	Address   uint32
}

// Adapter is a pager receiver. Available and Read are called from the poller
// goroutine only; Close may be called from anywhere.
type Adapter interface {
	// Available reports how many decoded messages are waiting.
	Available() int
	// Read copies the oldest waiting message into buf. Any error means no
	// message was delivered this cycle.
	Read(buf []byte) (ReadResult, error)
	Close() error
}

// Page is a decoded message held by a driver until it is read.
type Page struct {
	Received time.Time
	Payload  []byte
	Address  uint32
}

// DefaultInboxSize mirrors the receive FIFO on the companion radio module.
const DefaultInboxSize = 32

// Inbox is the bounded hand-off between a driver's receive goroutine and the
// poller. When it overflows the oldest page is dropped, as the radio module's
// own FIFO would.
type Inbox struct {
	pages   []Page
	limit   int
	dropped uint64
	mu      syncutil.Mutex
}

func NewInbox(limit int) *Inbox {
	if limit < 1 {
		limit = DefaultInboxSize
	}
	return &Inbox{limit: limit}
}

// Push stores a page and reports whether an older one was dropped to fit it.
func (b *Inbox) Push(p Page) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	dropped := false
	if len(b.pages) >= b.limit {
		b.pages = b.pages[1:]
		b.dropped++
		dropped = true
	}
	b.pages = append(b.pages, p)
	return dropped
}

func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pages)
}

func (b *Inbox) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// ReadInto pops the oldest page into buf.
func (b *Inbox) ReadInto(buf []byte) (ReadResult, error) {
	b.mu.Lock()
	if len(b.pages) == 0 {
		b.mu.Unlock()
		return ReadResult{}, ErrNoMessage
	}
	p := b.pages[0]
	b.pages[0] = Page{}
	b.pages = b.pages[1:]
	b.mu.Unlock()

	n := copy(buf, p.Payload)
	return ReadResult{
		N:         n,
		Address:   p.Address,
		Truncated: n < len(p.Payload),
	}, nil
}
