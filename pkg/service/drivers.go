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

package service

import (
	"errors"
	"fmt"

	"github.com/lazeeeer/MD-Vision/pkg/audio"
	"github.com/lazeeeer/MD-Vision/pkg/camera"
	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/lazeeeer/MD-Vision/pkg/display/oled"
	"github.com/lazeeeer/MD-Vision/pkg/display/terminal"
	"github.com/lazeeeer/MD-Vision/pkg/display/tty2oled"
	"github.com/lazeeeer/MD-Vision/pkg/helpers"
	"github.com/lazeeeer/MD-Vision/pkg/input/gpio"
	"github.com/lazeeeer/MD-Vision/pkg/radio/mqttpager"
	"github.com/lazeeeer/MD-Vision/pkg/radio/serialpager"
	"github.com/lazeeeer/MD-Vision/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

// OpenDrivers opens the hardware named in the config. With the terminal
// display driver the simulator also supplies both buttons and is returned so
// the caller can watch for quit.
func OpenDrivers(cfg *config.Instance) (*Drivers, *terminal.Simulator, error) {
	drv := &Drivers{}
	fail := func(err error) (*Drivers, *terminal.Simulator, error) {
		if closeErr := drv.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to release drivers after open error")
		}
		return nil, nil, err
	}

	rc := cfg.Radio()
	var radioPath string
	switch rc.Driver {
	case config.RadioDriverSerial:
		path, err := helpers.ResolveSerialPath(rc.Path)
		if err != nil {
			return fail(fmt.Errorf("pager receiver path: %w", err))
		}
		radioPath = path
		r := serialpager.NewReceiver()
		if err := r.Open(path, rc.BaudRate); err != nil {
			return fail(fmt.Errorf("open pager receiver: %w", err))
		}
		drv.Radio = r
	case config.RadioDriverMQTT:
		r := mqttpager.NewReceiver()
		if err := r.Open(rc.Path); err != nil {
			return fail(fmt.Errorf("open pager bridge: %w", err))
		}
		drv.Radio = r
	default:
		return fail(fmt.Errorf("unknown radio driver: %q", rc.Driver))
	}

	var sim *terminal.Simulator
	dc := cfg.Display()
	switch dc.Driver {
	case config.DisplayDriverOLED:
		s, err := oled.Open(dc)
		if err != nil {
			return fail(fmt.Errorf("open oled: %w", err))
		}
		drv.Surface = s
	case config.DisplayDriverTTY2OLED:
		path, err := helpers.ResolveSerialPath(dc.Path, radioPath)
		if err != nil {
			return fail(fmt.Errorf("tty2oled path: %w", err))
		}
		p, err := tty2oled.Open(path)
		if err != nil {
			return fail(fmt.Errorf("open tty2oled: %w", err))
		}
		drv.Surface = p
	case config.DisplayDriverTerminal:
		s, err := terminal.New(nil)
		if err != nil {
			return fail(fmt.Errorf("open terminal simulator: %w", err))
		}
		sim = s
		drv.Surface = s
		drv.Dismiss = s.DismissButton()
		drv.Photo = s.PhotoButton()
	default:
		return fail(fmt.Errorf("unknown display driver: %q", dc.Driver))
	}

	if sim == nil {
		bc := cfg.Buttons()
		if bc.DismissPin == "" {
			return fail(errors.New("no dismiss button pin configured"))
		}
		b, err := gpio.Open(bc.DismissPin)
		if err != nil {
			return fail(fmt.Errorf("open dismiss button: %w", err))
		}
		drv.Dismiss = b
		if bc.PhotoPin != "" {
			pb, err := gpio.Open(bc.PhotoPin)
			if err != nil {
				return fail(fmt.Errorf("open photo button: %w", err))
			}
			drv.Photo = pb
		}
	}

	if pc := cfg.Photo(); pc.Enabled {
		cam, err := camera.NewCommand(pc.CaptureCommand)
		if err != nil {
			return fail(fmt.Errorf("camera: %w", err))
		}
		drv.Camera = cam
		if pc.UploadURL != "" {
			drv.Uploader = httpclient.NewClientFromConfig(cfg)
		}
	}

	if cfg.AlertsEnabled() {
		drv.Player = audio.NewMalgoPlayer()
	}

	return drv, sim, nil
}
