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

package command

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("executes_successful_command", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, executor.Run(context.Background(), "true"))
	})

	t.Run("returns_error_for_failed_command", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, executor.Run(context.Background(), "false"))
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()
		require.Error(t, executor.Run(context.Background(), "nonexistent_command_that_should_not_exist_12345"))
	})
}

func TestRealExecutor_Output(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("returns_stdout", func(t *testing.T) {
		t.Parallel()
		out, err := executor.Output(context.Background(), "echo", "frame")
		require.NoError(t, err)
		assert.Equal(t, "frame\n", string(out))
	})

	t.Run("exit_error_carries_status", func(t *testing.T) {
		t.Parallel()
		_, err := executor.Output(context.Background(), "false")
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.ExitCode())
	})

	t.Run("respects_context_deadline", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := executor.Output(ctx, "sleep", "5")
		require.Error(t, err)
	})
}
