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

// Package telemetry provides opt-in error reporting via Sentry. Alert text
// and patient details are scrubbed before anything leaves the device.
package telemetry

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/lazeeeer/MD-Vision/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	flushTimeout = 2 * time.Second
	redacted     = "<redacted>"
)

var (
	enabled      bool
	sentryWriter *sentryzerolog.Writer
	closeOnce    sync.Once

	homePathRe  = regexp.MustCompile(`(?i)/home/[^/]+/`)
	usersPathRe = regexp.MustCompile(`(?i)/Users/[^/]+/`)

	// Log fields that may carry page text or lookup results.
	sensitiveKeys = map[string]struct{}{
		"text":              {},
		"payload":           {},
		"message_text":      {},
		"f_name":            {},
		"l_name":            {},
		"last_checkup_date": {},
		"last_checkup_time": {},
		"patient":           {},
	}
)

// Options configures Init. Reporting stays off unless Enabled is set and a
// DSN is configured.
type Options struct {
	DSN         string
	DeviceID    string
	Version     string
	Environment string
	Enabled     bool
}

// Init initializes Sentry error reporting with zerolog integration.
func Init(opts Options) error {
	if !opts.Enabled {
		log.Debug().Msg("error reporting disabled")
		return nil
	}
	if opts.DSN == "" {
		return errors.New("error reporting enabled without a dsn")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          "md-vision-pager@" + opts.Version,
		Environment:      opts.Environment,
		AttachStacktrace: true,
		SendDefaultPII:   false,
		ServerName:       "",
		MaxBreadcrumbs:   0,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return sanitizeEvent(event)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: opts.DeviceID})
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
	})

	sentryWriter, err = sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:          []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout:    flushTimeout,
		WithBreadcrumbs: false,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry zerolog writer: %w", err)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(
		helpers.LogWriter(),
		sentryWriter,
	)).With().Caller().Logger()

	enabled = true
	log.Info().Msg("error reporting enabled")
	return nil
}

// Close flushes pending events and shuts down Sentry. Safe to call multiple
// times.
func Close() {
	if !enabled {
		return
	}
	closeOnce.Do(func() {
		_ = sentryWriter.Close()
		sentry.Flush(flushTimeout)
	})
}

// Flush sends pending events. Call it before os.Exit.
func Flush() {
	if !enabled {
		return
	}
	sentry.Flush(flushTimeout)
}

func Enabled() bool {
	return enabled
}

func sanitizeEvent(event *sentry.Event) *sentry.Event {
	// the SDK may fill the hostname in even with ServerName unset
	event.ServerName = ""

	for i := range event.Exception {
		if event.Exception[i].Stacktrace == nil {
			continue
		}
		for j := range event.Exception[i].Stacktrace.Frames {
			frame := &event.Exception[i].Stacktrace.Frames[j]
			frame.AbsPath = sanitizePath(frame.AbsPath)
			frame.Filename = sanitizePath(frame.Filename)
			frame.Vars = nil
		}
	}

	event.Message = sanitizePath(event.Message)

	for k, v := range event.Extra {
		if isSensitive(k) {
			event.Extra[k] = redacted
			continue
		}
		if s, ok := v.(string); ok {
			event.Extra[k] = sanitizePath(s)
		}
	}
	for name, ctx := range event.Contexts {
		for k := range ctx {
			if isSensitive(k) {
				event.Contexts[name][k] = redacted
			}
		}
	}

	return event
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// sanitizePath removes usernames from file paths.
func sanitizePath(path string) string {
	if path == "" {
		return path
	}
	result := homePathRe.ReplaceAllString(path, "/home/<user>/")
	return usersPathRe.ReplaceAllString(result, "/Users/<user>/")
}
