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
	"github.com/lazeeeer/MD-Vision/pkg/audio"
	"github.com/rs/zerolog/log"
)

// PlayConfiguredSound plays the sound file at path, or the fallback chime
// when path is empty or the file can't be played. Nothing plays when enabled
// is false. Errors are logged but not returned.
func PlayConfiguredSound(player audio.Player, path string, enabled bool, fallback audio.Chime, soundName string) {
	if !enabled || player == nil {
		return
	}

	if path != "" {
		err := player.PlayFile(path)
		if err == nil {
			return
		}
		log.Warn().Str("path", path).Err(err).Msgf("error playing custom %s sound, using chime", soundName)
	}

	if err := player.PlayChime(fallback); err != nil {
		log.Warn().Err(err).Msgf("error playing %s chime", soundName)
	}
}
