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

package config

import (
	"testing"
	"time"
)

// Accessors are read from every task goroutine while a settings reload may
// write, so they must never hold the lock across each other.
func TestAccessors_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cfg := &Instance{vals: BaseDefaults}

	done := make(chan struct{})
	for i := range 10 {
		go func() {
			for range 100 {
				_ = cfg.QueueCapacity()
				_ = cfg.PollInterval()
				_ = cfg.Display()
				_ = cfg.DebounceDelay()
				_, _ = cfg.AlertSoundPath("basic", "/data")
				if i%2 == 0 {
					cfg.SetDisplayDriver(DisplayDriverOLED)
				}
			}
			done <- struct{}{}
		}()
	}

	for range 10 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent config access deadlocked")
		}
	}
}
