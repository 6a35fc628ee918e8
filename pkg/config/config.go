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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "MDVISION_CFG"
	AppEnv        = "MDVISION_APP"
)

type Values struct {
	Device       Device    `toml:"device"`
	Queue        Queue     `toml:"queue"`
	Radio        Radio     `toml:"radio"`
	Display      Display   `toml:"display"`
	Buttons      Buttons   `toml:"buttons"`
	Photo        Photo     `toml:"photo"`
	Alerts       Alerts    `toml:"alerts,omitempty"`
	Telemetry    Telemetry `toml:"telemetry"`
	ConfigSchema int       `toml:"config_schema"`
	DebugLogging bool      `toml:"debug_logging"`
}

type Device struct {
	ID    string `toml:"id"`
	Label string `toml:"label" validate:"max=21"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Device: Device{
		Label: "MD-Vision",
	},
	Queue: Queue{
		Capacity: DefaultQueueCapacity,
		Policy:   QueuePolicyEvictOldest,
	},
	Radio: Radio{
		Driver:         RadioDriverSerial,
		Path:           "/dev/ttyUSB0",
		BaudRate:       115200,
		PollIntervalMs: 50,
	},
	Display: Display{
		Driver:            DisplayDriverOLED,
		Bus:               "i2c",
		RefreshIntervalMs: 100,
		LineChars:         20,
	},
	Buttons: Buttons{
		DismissPin: "GPIO17",
		DebounceMs: 200,
	},
	Photo: Photo{
		CaptureCommand:   []string{"libcamera-still", "-n", "-t", "1", "-e", "jpg", "-o", "-"},
		ResponseHoldMs:   5000,
		UploadTimeoutSec: 30,
	},
}

type Instance struct {
	cfgPath  string
	authPath string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

var authCfg atomic.Value

// GetAuthCfg returns the credentials loaded from auth.toml, if any.
func GetAuthCfg() map[string]CredentialEntry {
	val := authCfg.Load()
	if val == nil {
		return nil
	}
	creds, ok := val.(map[string]CredentialEntry)
	if !ok {
		return nil
	}
	return creds
}

var validate = validator.New(validator.WithRequiredStructEnabled())

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		authPath: filepath.Join(filepath.Dir(cfgPath), AuthFile),
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their defaults.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := Validate(&newVals); err != nil {
		return err
	}

	c.vals = newVals

	if _, err := os.Stat(c.authPath); err == nil {
		authData, err := os.ReadFile(c.authPath)
		if err != nil {
			return fmt.Errorf("failed to read auth file: %w", err)
		}
		creds, err := LoadAuthFromData(authData)
		if err != nil {
			return fmt.Errorf("failed to unmarshal auth file: %w", err)
		}
		log.Info().Msgf("loaded %d auth entries", len(creds))
		authCfg.Store(creds)
	}

	return nil
}

// Validate checks field ranges and the cross-field rules that struct tags
// can't express.
func Validate(vals *Values) error {
	if err := validate.Struct(vals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if vals.Photo.Enabled && vals.Photo.UploadURL == "" {
		return errors.New("invalid config: photo.upload_url is required when photo.enabled is set")
	}
	if vals.Photo.Enabled && vals.Buttons.PhotoPin == "" && vals.Display.Driver != DisplayDriverTerminal {
		return errors.New("invalid config: buttons.photo_pin is required when photo.enabled is set")
	}
	if vals.Display.Driver == DisplayDriverTTY2OLED && vals.Display.Path == "" {
		return errors.New("invalid config: display.path is required for the tty2oled driver")
	}
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	if c.vals.Device.ID == "" {
		newID := uuid.New().String()
		c.vals.Device.ID = newID
		log.Info().Msgf("generated new device id: %s", newID)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Device.ID
}

func (c *Instance) DeviceLabel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Device.Label
}
