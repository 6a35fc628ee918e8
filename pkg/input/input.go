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

// Package input samples the pager's push buttons. Buttons are wired with a
// pull-up, so a pressed button reads low.
package input

import "time"

type Level uint8

const (
	Pressed  Level = 0
	Released Level = 1
)

func (l Level) String() string {
	if l == Pressed {
		return "pressed"
	}
	return "released"
}

// Button is a raw, undebounced button line.
type Button interface {
	ReadRaw() Level
}

// ButtonFunc adapts a plain function to Button.
type ButtonFunc func() Level

func (f ButtonFunc) ReadRaw() Level {
	return f()
}

// Threshold converts a debounce delay into a sample count at the given
// sampling period. A zero delay means the line is filtered in hardware and
// every sample is trusted.
func Threshold(delay, period time.Duration) int {
	if delay <= 0 || period <= 0 {
		return 1
	}
	n := int((delay + period - 1) / period)
	return max(n, 1)
}

// Debouncer turns raw samples into press events. A new level is accepted
// only after threshold consecutive samples disagree with the stable level.
type Debouncer struct {
	threshold int
	count     int
	lastRaw   Level
	stable    Level
}

func NewDebouncer(threshold int) *Debouncer {
	return &Debouncer{
		threshold: max(threshold, 1),
		lastRaw:   Released,
		stable:    Released,
	}
}

// Sample feeds one raw reading and reports whether it completed a
// released-to-pressed transition.
func (d *Debouncer) Sample(raw Level) bool {
	if raw == d.stable {
		d.lastRaw = raw
		d.count = 0
		return false
	}
	if raw != d.lastRaw {
		d.lastRaw = raw
		d.count = 0
	}
	d.count++
	if d.count < d.threshold {
		return false
	}

	d.count = 0
	prev := d.stable
	d.stable = raw
	return prev == Released && raw == Pressed
}

// Stable is the last accepted level.
func (d *Debouncer) Stable() Level {
	return d.stable
}

func (d *Debouncer) Threshold() int {
	return d.threshold
}
