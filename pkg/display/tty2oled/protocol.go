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

package tty2oled

import "time"

// Serial commands understood by the tty2oled panel firmware. Every command is
// one line terminated by CommandTerminator.
const (
	// CmdHandshake clears the firmware's input buffer. No reply is sent.
	CmdHandshake = "QWERTZ"

	CmdText       = "CMDTXT"   // CMDTXT,<font>,<color>,<bgcolor>,<x>,<y>,<text>
	CmdClearShow  = "CMDCLS"   // clear and update
	CmdClearNoUpd = "CMDCLSWU" // clear the buffer only
	CmdContrast   = "CMDCON"   // CMDCON,<contrast>
	CmdSetTime    = "CMDSETTIME"
	CmdGeometry   = "CMDGEO" // CMDGEO,<shape>,<color>,<x>,<y>,<w>,<h>,<r>
	CmdUpdate     = "CMDDUPD"
	CmdSaver      = "CMDSAVER" // CMDSAVER,<mode>,<interval>,<start>
)

const (
	ShapeFilledBox    = 4
	ShapeFilledCircle = 6
)

// Panel colors are 4-bit grayscale.
const (
	ColorOff = 0
	ColorOn  = 15
)

// Firmware font slots.
const (
	FontSlotBody    = 1
	FontSlotHeading = 3
)

const (
	ContrastDefault   = 128
	CommandTerminator = "\n"
	DefaultBaudRate   = 115200

	// WaitDuration is the settle time after each setup command.
	WaitDuration = 200 * time.Millisecond
	// DrawGap is the pause after each drawing command so the firmware's
	// serial buffer doesn't overrun.
	DrawGap = 5 * time.Millisecond
)
