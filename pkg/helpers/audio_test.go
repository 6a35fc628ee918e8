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
	"testing"

	"github.com/lazeeeer/MD-Vision/pkg/audio"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/lazeeeer/MD-Vision/pkg/testing/mocks"
	"github.com/stretchr/testify/mock"
)

func TestPlayConfiguredSound_Disabled(t *testing.T) {
	t.Parallel()

	player := mocks.NewMockPlayer()

	PlayConfiguredSound(player, "/sounds/blue.wav", false, audio.ChimeFor(message.KindBasic), "test")

	player.AssertNotCalled(t, "PlayChime", mock.Anything)
	player.AssertNotCalled(t, "PlayFile", mock.Anything)
}

func TestPlayConfiguredSound_NilPlayer(t *testing.T) {
	t.Parallel()
	PlayConfiguredSound(nil, "", true, nil, "test")
}

func TestPlayConfiguredSound_Chime(t *testing.T) {
	t.Parallel()

	player := mocks.NewMockPlayer()
	chime := audio.ChimeFor(message.KindCodeBlue)
	player.On("PlayChime", chime).Return(nil).Once()

	PlayConfiguredSound(player, "", true, chime, "code_blue")

	player.AssertExpectations(t)
	player.AssertNotCalled(t, "PlayFile", mock.Anything)
}

func TestPlayConfiguredSound_CustomSound(t *testing.T) {
	t.Parallel()

	player := mocks.NewMockPlayer()
	player.On("PlayFile", "/sounds/blue.wav").Return(nil).Once()

	PlayConfiguredSound(player, "/sounds/blue.wav", true, audio.ChimeFor(message.KindCodeBlue), "code_blue")

	player.AssertExpectations(t)
	player.AssertNotCalled(t, "PlayChime", mock.Anything)
}

func TestPlayConfiguredSound_CustomSoundFailsFallsBackToChime(t *testing.T) {
	t.Parallel()

	player := mocks.NewMockPlayer()
	chime := audio.ChimeFor(message.KindAttendRoom)
	player.On("PlayFile", "/bad/path.wav").Return(errors.New("file not found")).Once()
	player.On("PlayChime", chime).Return(nil).Once()

	PlayConfiguredSound(player, "/bad/path.wav", true, chime, "attend_room")

	player.AssertExpectations(t)
}

func TestPlayConfiguredSound_BothFail(t *testing.T) {
	t.Parallel()

	player := mocks.NewMockPlayer()
	player.On("PlayFile", "/bad/path.wav").Return(errors.New("file not found")).Once()
	player.On("PlayChime", mock.Anything).Return(errors.New("no device")).Once()

	PlayConfiguredSound(player, "/bad/path.wav", true, audio.ChimeFor(message.KindBasic), "basic")

	player.AssertExpectations(t)
}
