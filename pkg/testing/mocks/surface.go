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
	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/stretchr/testify/mock"
)

// MockSurface is a testify mock for display.Surface.
type MockSurface struct {
	mock.Mock
}

// NewAcceptingSurface returns a MockSurface that accepts every call.
func NewAcceptingSurface() *MockSurface {
	m := &MockSurface{}
	m.On("ClearAll").Return(nil).Maybe()
	m.On("ClearRegion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SetFont", mock.Anything).Return(nil).Maybe()
	m.On("DrawText", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("DrawMarker", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Flush").Return(nil).Maybe()
	m.On("Close").Return(nil).Maybe()
	return m
}

func (m *MockSurface) ClearAll() error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called().Error(0)
}

func (m *MockSurface) ClearRegion(x, y, w, h int) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(x, y, w, h).Error(0)
}

func (m *MockSurface) SetFont(f display.Font) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(f).Error(0)
}

func (m *MockSurface) DrawText(x, y int, text string) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(x, y, text).Error(0)
}

func (m *MockSurface) DrawMarker(x, y, r int, filled bool) error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called(x, y, r, filled).Error(0)
}

func (m *MockSurface) Flush() error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called().Error(0)
}

func (m *MockSurface) Close() error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called().Error(0)
}
