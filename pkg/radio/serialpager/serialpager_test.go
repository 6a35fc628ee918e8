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

package serialpager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lazeeeer/MD-Vision/pkg/radio"
	"github.com/lazeeeer/MD-Vision/pkg/shared/serialport"
	"github.com/lazeeeer/MD-Vision/pkg/testing/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fakeDevice(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ttyPAGER0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func mockFactory(port *testutils.MockSerialPort, gotMode **serial.Mode) serialport.Factory {
	return func(_ string, mode *serial.Mode) (serialport.Port, error) {
		if gotMode != nil {
			*gotMode = mode
		}
		return port, nil
	}
}

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		wantText string
		wantAddr uint32
		wantPage bool
		wantErr  bool
	}{
		{name: "empty", line: ""},
		{name: "whitespace", line: "  \r"},
		{name: "status line", line: "STATUS\trssi=-71"},
		{name: "page with no args", line: "PAGE\t"},
		{name: "bare text", line: "PAGE\tRoom 12 assist", wantPage: true, wantText: "Room 12 assist"},
		{
			name:     "named args",
			line:     "PAGE\taddr=1234567\ttext=[CODE_BLUE] Room 4\r",
			wantPage: true,
			wantText: "[CODE_BLUE] Room 4",
			wantAddr: 1234567,
		},
		{name: "tone only page", line: "PAGE\taddr=42"},
		{name: "bad address", line: "PAGE\taddr=abc\ttext=x", wantErr: true},
		{name: "receiver error", line: "ERR\tcrc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := ParseLine(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if !tt.wantPage {
				assert.Nil(t, page)
				return
			}
			require.NotNil(t, page)
			assert.Equal(t, tt.wantText, string(page.Payload))
			assert.Equal(t, tt.wantAddr, page.Address)
		})
	}
}

func TestReceiver_DeliversPages(t *testing.T) {
	t.Parallel()

	port := testutils.NewMockSerialPort()
	var mode *serial.Mode
	r := NewReceiver(WithPortFactory(mockFactory(port, &mode)))

	require.NoError(t, r.Open(fakeDevice(t), 0))
	t.Cleanup(func() { _ = r.Close() })

	assert.Equal(t, DefaultBaudRate, mode.BaudRate)

	port.Feed("STATUS\tready\nPAGE\taddr=7\ttext=first\nPAGE\tsec")
	port.Feed("ond\nERR\tsync lost\n")

	require.Eventually(t, func() bool { return r.Available() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return r.LineErrors() == 1 }, 2*time.Second, 5*time.Millisecond)

	buf := make([]byte, 64)
	res, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "first", string(buf[:res.N]))
	assert.Equal(t, uint32(7), res.Address)

	res, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "second", string(buf[:res.N]))

	_, err = r.Read(buf)
	require.ErrorIs(t, err, radio.ErrNoMessage)
}

func TestReceiver_InboxDropsOldest(t *testing.T) {
	t.Parallel()

	port := testutils.NewMockSerialPort()
	r := NewReceiver(WithPortFactory(mockFactory(port, nil)), WithInbox(2))
	require.NoError(t, r.Open(fakeDevice(t), 9600))
	t.Cleanup(func() { _ = r.Close() })

	port.Feed("PAGE\ta\nPAGE\tb\nPAGE\tc\n")
	require.Eventually(t, func() bool {
		return r.inbox.Dropped() == 1
	}, 2*time.Second, 5*time.Millisecond)

	buf := make([]byte, 8)
	res, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "b", string(buf[:res.N]))
}

func TestReceiver_OpenErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		err := NewReceiver().Open("", 0)
		require.Error(t, err)
	})

	t.Run("missing device", func(t *testing.T) {
		t.Parallel()
		err := NewReceiver().Open(filepath.Join(t.TempDir(), "nope"), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat device path")
	})

	t.Run("factory failure", func(t *testing.T) {
		t.Parallel()
		r := NewReceiver(WithPortFactory(func(string, *serial.Mode) (serialport.Port, error) {
			return nil, errors.New("busy")
		}))
		err := r.Open(fakeDevice(t), 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "busy")
	})

	t.Run("timeout failure closes port", func(t *testing.T) {
		t.Parallel()
		port := testutils.NewMockSerialPort()
		port.TimeoutErr = errors.New("unsupported")
		err := NewReceiver(WithPortFactory(mockFactory(port, nil))).Open(fakeDevice(t), 0)
		require.Error(t, err)
		assert.True(t, port.IsClosed())
	})
}

func TestReceiver_ReadErrorDropsPort(t *testing.T) {
	t.Parallel()

	port := testutils.NewMockSerialPort()
	port.ReadError = errors.New("input/output error")
	r := NewReceiver(WithPortFactory(mockFactory(port, nil)))
	require.NoError(t, r.Open(fakeDevice(t), 0))

	require.Eventually(t, port.IsClosed, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, r.Available())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "close is idempotent")
}
