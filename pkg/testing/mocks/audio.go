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

package mocks

import (
	"github.com/lazeeeer/MD-Vision/pkg/audio"
	"github.com/stretchr/testify/mock"
)

// MockPlayer is a testify mock for audio.Player.
type MockPlayer struct {
	mock.Mock
}

func (m *MockPlayer) PlayFile(path string) error {
	args := m.Called(path)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockPlayer) PlayChime(c audio.Chime) error {
	args := m.Called(c)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

func (m *MockPlayer) ClearFileCache() {
	m.Called()
}

func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}
