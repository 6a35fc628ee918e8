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
	"context"

	"github.com/lazeeeer/MD-Vision/pkg/shared/httpclient"
	"github.com/stretchr/testify/mock"
)

// MockCamera is a testify mock for camera.Camera.
type MockCamera struct {
	mock.Mock
}

func (m *MockCamera) Capture(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	img, _ := args.Get(0).([]byte)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return img, args.Error(1)
}

// MockUploader is a testify mock for the photo uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImage(ctx context.Context, url string, up httpclient.Upload) ([]byte, error) {
	args := m.Called(ctx, url, up)
	body, _ := args.Get(0).([]byte)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return body, args.Error(1)
}
