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

package tty2oled

import "sync/atomic"

// ConnectionState tracks the serial link to the panel.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateHandshaking
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateHandshaking:
		return "Handshaking"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// IsValidTransition reports whether the link may move from one state to
// another. Any state can fall back to disconnected.
func IsValidTransition(from, to ConnectionState) bool {
	if to == StateDisconnected {
		return from != StateDisconnected
	}
	switch from {
	case StateDisconnected:
		return to == StateConnecting
	case StateConnecting:
		return to == StateHandshaking
	case StateHandshaking:
		return to == StateConnected
	default:
		return false
	}
}

type stateManager struct {
	state atomic.Int32
}

func (sm *stateManager) get() ConnectionState {
	return ConnectionState(sm.state.Load())
}

// set moves to newState if the transition is valid.
func (sm *stateManager) set(newState ConnectionState) bool {
	for {
		current := sm.get()
		if !IsValidTransition(current, newState) {
			return false
		}
		if sm.state.CompareAndSwap(int32(current), int32(newState)) {
			return true
		}
	}
}
