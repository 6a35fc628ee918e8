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
	"path/filepath"
	"strings"
	"time"
)

type Photo struct {
	UploadURL        string   `toml:"upload_url,omitempty" validate:"omitempty,url"`
	ArchiveDir       string   `toml:"archive_dir,omitempty"`
	CaptureCommand   []string `toml:"capture_command,omitempty"`
	ResponseHoldMs   int      `toml:"response_hold_ms" validate:"min=0,max=60000"`
	UploadTimeoutSec int      `toml:"upload_timeout_sec" validate:"min=1,max=300"`
	Enabled          bool     `toml:"enabled"`
}

// Alerts maps message kind names (e.g. "code_blue") to sound files played
// when a message of that kind arrives. "default" covers every other kind.
type Alerts struct {
	Sounds map[string]string `toml:"sounds,omitempty"`
	Chime  bool              `toml:"chime"`
}

type Telemetry struct {
	DSN            string `toml:"dsn,omitempty" validate:"omitempty,url"`
	ErrorReporting bool   `toml:"error_reporting"`
}

func (c *Instance) Photo() Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p := c.vals.Photo
	p.CaptureCommand = append([]string(nil), c.vals.Photo.CaptureCommand...)
	return p
}

// PhotoArchiveDir resolves the archive directory, defaulting to a photos
// folder inside dataDir.
func (c *Instance) PhotoArchiveDir(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dir := c.vals.Photo.ArchiveDir
	if dir == "" {
		return filepath.Join(dataDir, PhotosDir)
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(dataDir, dir)
}

func (c *Instance) ResponseHold() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Photo.ResponseHoldMs) * time.Millisecond
}

func (c *Instance) UploadTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Photo.UploadTimeoutSec) * time.Second
}

func (c *Instance) AlertChime() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Alerts.Chime
}

// AlertSoundPath returns the sound configured for a message kind and
// whether one exists. Relative paths resolve against dataDir/sounds.
func (c *Instance) AlertSoundPath(kind, dataDir string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path, ok := c.vals.Alerts.Sounds[strings.ToLower(kind)]
	if !ok {
		path, ok = c.vals.Alerts.Sounds["default"]
	}
	if !ok || path == "" {
		return "", false
	}
	if filepath.IsAbs(path) {
		return path, true
	}
	return filepath.Join(dataDir, SoundsDir, path), true
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.ErrorReporting
}

func (c *Instance) TelemetryDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Telemetry.DSN
}

// AlertsEnabled reports whether any sound should play on receive.
func (c *Instance) AlertsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Alerts.Chime || len(c.vals.Alerts.Sounds) > 0
}
