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

package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/lazeeeer/MD-Vision/pkg/helpers"
	"github.com/lazeeeer/MD-Vision/pkg/service"
	"github.com/rs/zerolog/log"
)

// RunApp opens the configured hardware, runs the pager and blocks until a
// signal arrives, the simulator is closed or a task fails.
func RunApp(cfg *config.Instance, simulate bool) (returnErr error) {
	if simulate {
		cfg.SetDisplayDriver(config.DisplayDriverTerminal)
	}

	drv, sim, err := service.OpenDrivers(cfg)
	if err != nil {
		return fmt.Errorf("opening drivers: %w", err)
	}

	core, err := service.Start(cfg, drv, service.WithDataDir(helpers.DataDir()))
	if err != nil {
		if closeErr := drv.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to release drivers")
		}
		return fmt.Errorf("starting pager: %w", err)
	}
	defer func() {
		if err := core.Stop(); err != nil {
			returnErr = errors.Join(returnErr, err)
		}
	}()

	var quit <-chan struct{}
	if sim != nil {
		quit = sim.Quit()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	reason := wait(sigs, quit, core.Done())
	log.Info().Str("reason", reason).Msg("shutting down")
	return nil
}

// wait blocks on the first of the stop sources and names it.
func wait(sigs <-chan os.Signal, quit, done <-chan struct{}) string {
	select {
	case sig := <-sigs:
		return "signal " + sig.String()
	case <-quit:
		return "simulator closed"
	case <-done:
		return "task exited"
	}
}
