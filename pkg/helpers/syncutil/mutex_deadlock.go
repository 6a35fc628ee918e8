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

//go:build deadlock

// Package syncutil wraps the mutex types used across the pager so that the
// display and queue locks can be swapped for deadlock-detecting versions
// with -tags=deadlock.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether this binary was built with the deadlock detector.
const DeadlockEnabled = true

// The longest legitimate hold is a transient photo response (a few seconds),
// so anything past this is reported.
func init() {
	deadlock.Opts.DeadlockTimeout = 15 * time.Second
}

// Mutex reports lock-order inversions and long holds.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex reports lock-order inversions and long holds.
type RWMutex struct {
	deadlock.RWMutex
}
