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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // modifies the global logger
func TestInitLogging_WritesToFileAndExtraWriters(t *testing.T) {
	orig := log.Logger
	t.Cleanup(func() { log.Logger = orig })

	logDir := filepath.Join(t.TempDir(), "logs", "nested")
	var buf bytes.Buffer

	require.NoError(t, InitLogging(logDir, []io.Writer{&buf}))

	log.Info().Str("source", "radio").Msg("pager online")

	assert.Contains(t, buf.String(), "pager online")
	assert.Contains(t, buf.String(), `"source":"radio"`)

	data, err := os.ReadFile(filepath.Join(logDir, config.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "pager online")
}

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := []string{
		filepath.Join(root, "config"),
		filepath.Join(root, "data", "photos"),
	}

	require.NoError(t, EnsureDirectories(dirs...))
	require.NoError(t, EnsureDirectories(dirs...), "existing directories are fine")

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureDirectories_FailsUnderFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureDirectories(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}
