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

// Package camera captures still images for the patient lookup.
package camera

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 10 * time.Second

var ErrNotJPEG = errors.New("capture did not produce a jpeg")

type Camera interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Command captures by running an external tool that writes a JPEG to
// stdout, such as libcamera-still.
type Command struct {
	exec    command.Executor
	argv    []string
	timeout time.Duration
}

type Option func(*Command)

func WithExecutor(e command.Executor) Option {
	return func(c *Command) { c.exec = e }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Command) { c.timeout = d }
}

func NewCommand(argv []string, opts ...Option) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("empty capture command")
	}
	c := &Command{
		exec:    &command.RealExecutor{},
		argv:    append([]string(nil), argv...),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Command) Capture(ctx context.Context) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.exec.Output(ctx, c.argv[0], c.argv[1:]...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("capture command failed: %w: %s",
				err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("capture command failed: %w", err)
	}

	if mt := mimetype.Detect(out); !mt.Is("image/jpeg") {
		return nil, fmt.Errorf("%w: got %s", ErrNotJPEG, mt.String())
	}

	log.Debug().
		Int("bytes", len(out)).
		Dur("took", time.Since(start)).
		Msg("image captured")
	return out, nil
}
