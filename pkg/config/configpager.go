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

import "time"

const (
	DefaultQueueCapacity = 10

	QueuePolicyEvictOldest = "evict_oldest"
	QueuePolicyDropNewest  = "drop_newest"
	QueuePolicyBlock       = "block"

	RadioDriverSerial = "serial"
	RadioDriverMQTT   = "mqtt"

	DisplayDriverOLED     = "oled"
	DisplayDriverTTY2OLED = "tty2oled"
	DisplayDriverTerminal = "terminal"
)

type Queue struct {
	Policy   string `toml:"policy" validate:"oneof=evict_oldest drop_newest block"`
	Capacity int    `toml:"capacity" validate:"min=1,max=64"`
}

type Radio struct {
	Driver         string `toml:"driver" validate:"oneof=serial mqtt"`
	Path           string `toml:"path" validate:"required"`
	BaudRate       int    `toml:"baud_rate,omitempty" validate:"omitempty,min=1200,max=921600"`
	PollIntervalMs int    `toml:"poll_interval_ms" validate:"min=10,max=1000"`
}

type Display struct {
	Driver            string `toml:"driver" validate:"oneof=oled tty2oled terminal"`
	Bus               string `toml:"bus,omitempty" validate:"omitempty,oneof=i2c spi"`
	Path              string `toml:"path,omitempty"`
	DCPin             string `toml:"dc_pin,omitempty"`
	ResetPin          string `toml:"reset_pin,omitempty"`
	RefreshIntervalMs int    `toml:"refresh_interval_ms" validate:"min=20,max=1000"`
	LineChars         int    `toml:"line_chars" validate:"min=1,max=40"`
	WordWrap          bool   `toml:"word_wrap"`
}

type Buttons struct {
	DismissPin string `toml:"dismiss_pin"`
	PhotoPin   string `toml:"photo_pin,omitempty"`
	DebounceMs int    `toml:"debounce_ms" validate:"min=0,max=2000"`
}

func (c *Instance) QueueCapacity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Queue.Capacity
}

func (c *Instance) QueuePolicy() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Queue.Policy == "" {
		return QueuePolicyEvictOldest
	}
	return c.vals.Queue.Policy
}

func (c *Instance) Radio() Radio {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Radio
}

func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Radio.PollIntervalMs) * time.Millisecond
}

func (c *Instance) Display() Display {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display
}

func (c *Instance) SetDisplayDriver(driver string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Display.Driver = driver
}

func (c *Instance) RefreshInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Display.RefreshIntervalMs) * time.Millisecond
}

func (c *Instance) Buttons() Buttons {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Buttons
}

func (c *Instance) DebounceDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Buttons.DebounceMs) * time.Millisecond
}
