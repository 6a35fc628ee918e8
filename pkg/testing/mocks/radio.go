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
	"github.com/lazeeeer/MD-Vision/pkg/radio"
	"github.com/stretchr/testify/mock"
)

// MockAdapter is a testify mock for radio.Adapter.
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Available() int {
	return m.Called().Int(0)
}

// Read copies the payload given as the second return value into buf before
// returning the result, so expectations look like
//
//	adapter.On("Read", mock.Anything).Return(radio.ReadResult{N: 5}, []byte("hello"), nil)
func (m *MockAdapter) Read(buf []byte) (radio.ReadResult, error) {
	args := m.Called(buf)
	if payload, ok := args.Get(1).([]byte); ok {
		copy(buf, payload)
	}
	res, _ := args.Get(0).(radio.ReadResult)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return res, args.Error(2)
}

func (m *MockAdapter) Close() error {
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return m.Called().Error(0)
}
