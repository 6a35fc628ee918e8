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
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// SerialAuto in place of a device path picks the first detected USB serial
// device.
const SerialAuto = "auto"

var ErrNoSerialDevice = errors.New("no usb serial device found")

var listPorts = serial.GetPortsList

func serialPrefixes(goos string) []string {
	switch goos {
	case "linux":
		return []string{"/dev/ttyUSB", "/dev/ttyACM"}
	case "darwin":
		return []string{"/dev/tty.usbserial", "/dev/tty.usbmodem"}
	case "windows":
		return []string{"COM"}
	default:
		return []string{"/dev/tty"}
	}
}

// GetSerialDeviceList returns the USB serial devices on this host, sorted.
func GetSerialDeviceList() ([]string, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	prefixes := serialPrefixes(runtime.GOOS)
	devices := make([]string, 0, len(ports))
	for _, p := range ports {
		if slices.ContainsFunc(prefixes, func(prefix string) bool {
			return strings.HasPrefix(p, prefix)
		}) {
			devices = append(devices, p)
		}
	}
	slices.Sort(devices)
	return devices, nil
}

// ResolveSerialPath returns path unchanged unless it is SerialAuto, in which
// case the first detected device not listed in exclude is used.
func ResolveSerialPath(path string, exclude ...string) (string, error) {
	if !strings.EqualFold(path, SerialAuto) {
		return path, nil
	}
	devices, err := GetSerialDeviceList()
	if err != nil {
		return "", err
	}
	for _, d := range devices {
		if slices.Contains(exclude, d) {
			continue
		}
		log.Info().Str("path", d).Msg("auto-detected serial device")
		return d, nil
	}
	return "", ErrNoSerialDevice
}
