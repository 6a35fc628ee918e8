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

// Package gpio reads buttons wired to host GPIO lines through periph.
package gpio

import (
	"errors"
	"fmt"

	"github.com/lazeeeer/MD-Vision/pkg/input"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Button is an input.Button on a GPIO pin configured with the internal
// pull-up.
type Button struct {
	pin gpio.PinIn
}

// Lookup finds a pin by name ("GPIO17", "P1_11", ...). Tests register fake
// pins in gpioreg and pass them here.
type Lookup func(name string) gpio.PinIO

// Open initialises the host drivers and configures the named pin as an
// input.
func Open(name string) (*Button, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return OpenWith(gpioreg.ByName, name)
}

func OpenWith(lookup Lookup, name string) (*Button, error) {
	if name == "" {
		return nil, errors.New("button pin name is empty")
	}
	pin := lookup(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown gpio pin: %q", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s as input: %w", name, err)
	}
	log.Debug().Str("pin", pin.Name()).Msg("button configured")
	return &Button{pin: pin}, nil
}

// ReadRaw samples the line. Low is pressed.
func (b *Button) ReadRaw() input.Level {
	if b.pin.Read() == gpio.Low {
		return input.Pressed
	}
	return input.Released
}
