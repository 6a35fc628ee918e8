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
	"path/filepath"
	"testing"

	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestDirsUseAppName(t *testing.T) {
	t.Parallel()

	if _, ok := HasUserDir(); ok {
		t.Skip("user directory next to the test binary")
	}
	assert.Equal(t, config.AppName, filepath.Base(ConfigDir()))
	assert.Equal(t, config.AppName, filepath.Base(DataDir()))
	assert.Equal(t, config.AppName, filepath.Base(LogDir()))
}
