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
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lazeeeer/MD-Vision/internal/telemetry"
	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/lazeeeer/MD-Vision/pkg/helpers"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Version  *bool
	Config   *string
	Daemon   *bool
	Simulate *bool
}

// SetupFlags defines the pager's command line flags.
func SetupFlags() *Flags {
	return &Flags{
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Config: flag.String(
			"config",
			"",
			"path to config.toml (overrides "+config.CfgEnv+")",
		),
		Daemon: flag.Bool(
			"daemon",
			false,
			"run in the foreground and log to stderr",
		),
		Simulate: flag.Bool(
			"simulate",
			false,
			"draw the panel in the terminal and use keys for the buttons",
		),
	}
}

// Pre runs flag parsing and actions any immediate flags that don't require
// environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("MD-Vision Pager v%s\n", config.AppVersion)
		os.Exit(0)
	}

	if *f.Config != "" {
		if err := os.Setenv(config.CfgEnv, *f.Config); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}
}

// Writers returns the extra log sinks for the chosen mode. The simulator
// owns the terminal so it never gets stderr.
func (f *Flags) Writers() []io.Writer {
	if *f.Daemon && !*f.Simulate {
		return []io.Writer{os.Stderr}
	}
	return nil
}

// Setup initializes the directories, logging, config and error reporting.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	cfg, err := setup(helpers.ConfigDir(), helpers.DataDir(), helpers.LogDir(), defaultConfig, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

//nolint:gocritic // config struct copied for immutability
func setup(
	configDir, dataDir, logDir string,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	if _, ok := helpers.HasUserDir(); ok {
		log.Info().Msg("using 'user' directory for storage")
	}

	err := helpers.EnsureDirectories(configDir, dataDir, logDir)
	if err != nil {
		return nil, fmt.Errorf("creating directories: %w", err)
	}

	err = helpers.InitLogging(logDir, writers)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.SetDebugLogging(cfg.DebugLogging())

	if err := telemetry.Init(telemetry.Options{
		Enabled:  cfg.ErrorReporting(),
		DSN:      cfg.TelemetryDSN(),
		DeviceID: cfg.DeviceID(),
		Version:  config.AppVersion,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
