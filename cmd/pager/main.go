/*
MD-Vision Pager
Copyright (c) 2026 The MD-Vision Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of MD-Vision Pager.

MD-Vision Pager is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

MD-Vision Pager is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with MD-Vision Pager.  If not, see <http://www.gnu.org/licenses/>.
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lazeeeer/MD-Vision/internal/telemetry"
	"github.com/lazeeeer/MD-Vision/pkg/cli"
	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		telemetry.Flush()
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	cfg := cli.Setup(config.BaseDefaults, flags.Writers())
	defer telemetry.Close()

	if os.Geteuid() == 0 && !*flags.Simulate {
		log.Warn().Msg("running as root, prefer a user in the gpio and dialout groups")
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	if err := cli.RunApp(cfg, *flags.Simulate); err != nil {
		log.Error().Err(err).Msg("pager exited with error")
		return errors.New("pager exited with error, see log for details")
	}
	return nil
}
