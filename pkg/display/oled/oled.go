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

// Package oled drives an SSD1306 128x64 panel over I2C or SPI using periph.
package oled

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

const (
	resetPulse = 10 * time.Millisecond
	spiSpeed   = 8 * physic.MegaHertz
)

// Surface is the Canvas bound to real hardware.
type Surface struct {
	*Canvas
	dev *ssd1306.Dev
	bus io.Closer
}

// Open initialises the host drivers and connects to the panel described by
// cfg. An empty path opens the first bus of the selected kind.
func Open(cfg config.Display) (*Surface, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	if cfg.ResetPin != "" {
		if err := pulseReset(cfg.ResetPin); err != nil {
			return nil, err
		}
	}

	opts := ssd1306.DefaultOpts
	s := &Surface{}

	switch cfg.Bus {
	case "spi":
		port, err := spireg.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open spi port %q: %w", cfg.Path, err)
		}
		if err := port.LimitSpeed(spiSpeed); err != nil {
			log.Warn().Err(err).Msg("failed to limit spi speed")
		}
		dc := gpioreg.ByName(cfg.DCPin)
		if dc == nil {
			_ = port.Close()
			return nil, fmt.Errorf("unknown dc pin: %q", cfg.DCPin)
		}
		dev, err := ssd1306.NewSPI(port, dc, &opts)
		if err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("ssd1306 over spi: %w", err)
		}
		s.dev, s.bus = dev, port
	case "", "i2c":
		bus, err := i2creg.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open i2c bus %q: %w", cfg.Path, err)
		}
		dev, err := ssd1306.NewI2C(bus, &opts)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("ssd1306 over i2c: %w", err)
		}
		s.dev, s.bus = dev, bus
	default:
		return nil, fmt.Errorf("unsupported display bus: %q", cfg.Bus)
	}

	canvas, err := NewCanvas(func(img image.Image) error {
		return s.dev.Draw(img.Bounds(), img, image.Point{})
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Canvas = canvas

	log.Info().Str("bus", cfg.Bus).Str("path", cfg.Path).Msg("oled panel connected")
	return s, nil
}

func pulseReset(name string) error {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return fmt.Errorf("unknown reset pin: %q", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("assert reset: %w", err)
	}
	time.Sleep(resetPulse)
	if err := pin.Out(gpio.High); err != nil {
		return fmt.Errorf("release reset: %w", err)
	}
	return nil
}

// Close blanks the panel and releases the bus.
func (s *Surface) Close() error {
	var errs []error
	if s.dev != nil {
		if err := s.dev.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt panel: %w", err))
		}
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	return errors.Join(errs...)
}
