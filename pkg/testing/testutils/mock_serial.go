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

// Package testutils holds hand-written fakes for hardware seams.
package testutils

import (
	"errors"
	"time"

	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
)

// MockSerialPort is a serialport.Port backed by in-memory buffers.
type MockSerialPort struct {
	ReadError  error
	WriteError error
	CloseError error
	TimeoutErr error
	ReadFunc   func(p []byte) (n int, err error)
	readData   []byte
	written    []byte
	mu         syncutil.Mutex
	closed     bool
}

func NewMockSerialPort() *MockSerialPort {
	return &MockSerialPort{}
}

// Feed appends bytes that later Reads will return.
func (m *MockSerialPort) Feed(data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readData = append(m.readData, data...)
}

func (m *MockSerialPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, errors.New("port closed")
	}
	readFunc := m.ReadFunc
	readErr := m.ReadError
	m.mu.Unlock()

	if readFunc != nil {
		return readFunc(p)
	}
	if readErr != nil {
		return 0, readErr
	}

	m.mu.Lock()
	if len(m.readData) == 0 {
		m.mu.Unlock()
		// behave like a port with a short read timeout
		time.Sleep(5 * time.Millisecond)
		return 0, nil
	}
	n := copy(p, m.readData)
	m.readData = m.readData[n:]
	m.mu.Unlock()
	return n, nil
}

func (m *MockSerialPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("port closed")
	}
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.written = append(m.written, p...)
	return len(p), nil
}

func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseError
}

func (m *MockSerialPort) SetReadTimeout(_ time.Duration) error {
	return m.TimeoutErr
}

// Written returns everything written to the port so far.
func (m *MockSerialPort) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.written)
}

func (m *MockSerialPort) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
