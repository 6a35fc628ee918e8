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

package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/lazeeeer/MD-Vision/pkg/config"
)

var (
	userDirOnce   sync.Once
	userDirCached string
	userDirExists bool
)

// HasUserDir reports whether a "user" directory sits next to the binary.
// A pager image that keeps its config on the SD card ships this way and
// everything is stored inside it instead of the XDG locations.
func HasUserDir() (string, bool) {
	userDirOnce.Do(func() {
		exe := os.Getenv(config.AppEnv)
		if exe == "" {
			var err error
			exe, err = os.Executable()
			if err != nil {
				return
			}
		}

		dir := filepath.Join(filepath.Dir(exe), config.UserDir)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return
		}
		userDirCached = dir
		userDirExists = true
	})
	return userDirCached, userDirExists
}

func ConfigDir() string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

func DataDir() string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return filepath.Join(xdg.DataHome, config.AppName)
}

func LogDir() string {
	if v, ok := HasUserDir(); ok {
		return filepath.Join(v, "logs")
	}
	return filepath.Join(xdg.StateHome, config.AppName)
}

// EnsureDirectories creates every directory the service writes to.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
