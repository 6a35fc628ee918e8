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

// Package photo handles the camera button: capture a still, keep a copy on
// the SD card, upload it for a patient lookup and show the answer for a few
// seconds.
package photo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/camera"
	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/lazeeeer/MD-Vision/pkg/input"
	"github.com/lazeeeer/MD-Vision/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	DefaultHold     = 5 * time.Second
	DefaultInterval = 100 * time.Millisecond
	DefaultDebounce = 200 * time.Millisecond

	UploadField = "image"

	msgUploadFailed = "Upload failed"
	msgNoMatch      = "No patient match"
	msgSaved        = "Photo saved"
	msgNoCamera     = "Camera error"
)

// Uploader sends a captured image and returns the server's response body.
type Uploader interface {
	UploadImage(ctx context.Context, url string, up httpclient.Upload) ([]byte, error)
}

type Stats struct {
	Captures      uint64
	CaptureErrors uint64
	Archived      uint64
	ArchiveErrors uint64
	Uploads       uint64
	UploadErrors  uint64
	PatientsShown uint64
}

// Service owns the photo button. Only one capture runs at a time; presses
// during a capture are ignored.
type Service struct {
	camera     camera.Camera
	uploader   Uploader
	screen     *display.Screen
	button     input.Button
	fs         afero.Fs
	clock      clockwork.Clock
	debouncer  *input.Debouncer
	archiveDir string
	uploadURL  string
	deviceID   string
	hold       time.Duration
	interval   time.Duration
	debounce   time.Duration
	captures   atomic.Uint64
	captureErr atomic.Uint64
	archived   atomic.Uint64
	archiveErr atomic.Uint64
	uploads    atomic.Uint64
	uploadErr  atomic.Uint64
	shown      atomic.Uint64
}

type Option func(*Service)

// WithArchive keeps every capture under dir on fs.
func WithArchive(fs afero.Fs, dir string) Option {
	return func(s *Service) {
		s.fs = fs
		s.archiveDir = dir
	}
}

// WithUpload enables the patient lookup. Without it captures are only
// archived.
func WithUpload(up Uploader, url string) Option {
	return func(s *Service) {
		s.uploader = up
		s.uploadURL = url
	}
}

func WithDeviceID(id string) Option {
	return func(s *Service) { s.deviceID = id }
}

func WithHold(d time.Duration) Option {
	return func(s *Service) { s.hold = d }
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(s *Service) { s.interval = d }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

func New(cam camera.Camera, screen *display.Screen, button input.Button, opts ...Option) (*Service, error) {
	switch {
	case cam == nil:
		return nil, errors.New("nil camera")
	case screen == nil:
		return nil, errors.New("nil screen")
	case button == nil:
		return nil, errors.New("nil photo button")
	}
	s := &Service{
		camera:   cam,
		screen:   screen,
		button:   button,
		hold:     DefaultHold,
		interval: DefaultInterval,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		return nil, fmt.Errorf("invalid button interval: %v", s.interval)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.uploader != nil && s.uploadURL == "" {
		return nil, errors.New("upload enabled without a url")
	}
	s.debouncer = input.NewDebouncer(input.Threshold(s.debounce, s.interval))
	return s, nil
}

// Run watches the button until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Bool("upload", s.uploader != nil).Msg("photo button watcher started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if !s.debouncer.Sample(s.button.ReadRaw()) {
				continue
			}
			if err := s.TakeAndShow(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("photo lookup failed")
			}
		}
	}
}

// TakeAndShow runs one capture, archive, upload and display cycle. Each
// failure is also reported on the panel.
func (s *Service) TakeAndShow(ctx context.Context) error {
	img, err := s.camera.Capture(ctx)
	if err != nil {
		s.captureErr.Add(1)
		s.notify(ctx, msgNoCamera)
		return fmt.Errorf("capture: %w", err)
	}
	s.captures.Add(1)

	name := uuid.NewString() + ".jpg"
	s.archive(name, img)

	if s.uploader == nil {
		s.notify(ctx, msgSaved)
		return nil
	}

	fields := map[string]string{}
	if s.deviceID != "" {
		fields["device_id"] = s.deviceID
	}
	body, err := s.uploader.UploadImage(ctx, s.uploadURL, httpclient.Upload{
		Field:    UploadField,
		Filename: name,
		Data:     img,
		Fields:   fields,
	})
	if err != nil {
		s.uploadErr.Add(1)
		s.notify(ctx, msgUploadFailed)
		return fmt.Errorf("upload %s: %w", name, err)
	}
	s.uploads.Add(1)

	info, err := ParsePatientInfo(body)
	if err != nil {
		s.notify(ctx, msgNoMatch)
		return fmt.Errorf("lookup response for %s: %w", name, err)
	}

	log.Info().Str("photo", name).Msg("patient info received")
	if err := s.screen.RenderTransientLines(ctx, info.Lines(), s.hold); err != nil {
		return fmt.Errorf("render patient info: %w", err)
	}
	s.shown.Add(1)
	return nil
}

func (s *Service) archive(name string, img []byte) {
	if s.fs == nil || s.archiveDir == "" {
		return
	}
	if err := s.fs.MkdirAll(s.archiveDir, 0o750); err != nil {
		s.archiveErr.Add(1)
		log.Warn().Err(err).Str("dir", s.archiveDir).Msg("failed to create photo archive")
		return
	}
	path := filepath.Join(s.archiveDir, name)
	if err := afero.WriteFile(s.fs, path, img, 0o640); err != nil {
		s.archiveErr.Add(1)
		log.Warn().Err(err).Str("path", path).Msg("failed to archive photo")
		return
	}
	s.archived.Add(1)
	log.Debug().Str("path", path).Int("bytes", len(img)).Msg("photo archived")
}

func (s *Service) notify(ctx context.Context, text string) {
	if err := s.screen.RenderTransientMessage(ctx, text, s.hold); err != nil {
		log.Warn().Err(err).Msg("failed to show photo status")
	}
}

func (s *Service) Stats() Stats {
	return Stats{
		Captures:      s.captures.Load(),
		CaptureErrors: s.captureErr.Load(),
		Archived:      s.archived.Load(),
		ArchiveErrors: s.archiveErr.Load(),
		Uploads:       s.uploads.Load(),
		UploadErrors:  s.uploadErr.Load(),
		PatientsShown: s.shown.Load(),
	}
}
