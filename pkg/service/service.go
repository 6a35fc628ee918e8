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

// Package service wires the pager together: the radio poller, the display
// controller and the optional photo button all run against one queue and one
// screen.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/audio"
	"github.com/lazeeeer/MD-Vision/pkg/camera"
	"github.com/lazeeeer/MD-Vision/pkg/config"
	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/lazeeeer/MD-Vision/pkg/helpers"
	"github.com/lazeeeer/MD-Vision/pkg/input"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/lazeeeer/MD-Vision/pkg/pager/queue"
	"github.com/lazeeeer/MD-Vision/pkg/radio"
	"github.com/lazeeeer/MD-Vision/pkg/service/controller"
	"github.com/lazeeeer/MD-Vision/pkg/service/photo"
	"github.com/lazeeeer/MD-Vision/pkg/service/poller"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Drivers are the hardware endpoints the core runs against. Photo, Camera,
// Uploader and Player are optional.
type Drivers struct {
	Radio    radio.Adapter
	Surface  display.Surface
	Dismiss  input.Button
	Photo    input.Button
	Camera   camera.Camera
	Uploader photo.Uploader
	Player   audio.Player
}

// Close releases the radio and the panel.
func (d *Drivers) Close() error {
	var errs []error
	if d.Radio != nil {
		if err := d.Radio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close radio: %w", err))
		}
	}
	if d.Surface != nil {
		if err := d.Surface.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close display: %w", err))
		}
	}
	return errors.Join(errs...)
}

type options struct {
	clock   clockwork.Clock
	fs      afero.Fs
	dataDir string
}

type Option func(*options)

func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithFs sets the filesystem the photo archive is written to.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithDataDir is where photos and sounds live.
func WithDataDir(dir string) Option {
	return func(o *options) { o.dataDir = dir }
}

// Core is a running pager.
type Core struct {
	Queue      *queue.Queue
	Screen     *display.Screen
	Poller     *poller.Poller
	Controller *controller.Controller
	Photo      *photo.Service

	drivers *Drivers
	cancel  context.CancelFunc
	group   *errgroup.Group
	done    chan struct{}
	err     error
	stop    sync.Once
	stopErr error
}

// LayoutFromConfig applies the configured line budget and wrapping to the
// default panel layout.
func LayoutFromConfig(d config.Display) display.Layout {
	l := display.DefaultLayout
	if d.LineChars > 0 {
		l.LineChars = d.LineChars
	}
	l.WordWrap = d.WordWrap
	return l
}

// Start runs the power-on check and spawns the tasks. The drivers are owned
// by the core from here on and are closed by Stop.
func Start(cfg *config.Instance, drv *Drivers, opts ...Option) (*Core, error) {
	switch {
	case drv == nil:
		return nil, errors.New("nil drivers")
	case drv.Radio == nil:
		return nil, errors.New("no radio adapter")
	case drv.Surface == nil:
		return nil, errors.New("no display surface")
	case drv.Dismiss == nil:
		return nil, errors.New("no dismiss button")
	}

	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}

	log.Info().Msgf("version: %s", config.AppVersion)

	policy, err := queue.ParsePolicy(cfg.QueuePolicy())
	if err != nil {
		return nil, fmt.Errorf("queue policy: %w", err)
	}
	q, err := queue.New(cfg.QueueCapacity(), queue.WithPolicy(policy), queue.WithClock(o.clock))
	if err != nil {
		return nil, fmt.Errorf("create queue: %w", err)
	}

	screen, err := display.NewScreen(drv.Surface, LayoutFromConfig(cfg.Display()), display.WithScreenClock(o.clock))
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}

	// power-on check: the panel must accept a full redraw before anything
	// else touches it
	if err := screen.ShowHUD(cfg.DeviceLabel()); err != nil {
		return nil, fmt.Errorf("display self-check: %w", err)
	}
	if err := screen.SetIndicator(false); err != nil {
		return nil, fmt.Errorf("display self-check: %w", err)
	}
	log.Info().Int("pending", drv.Radio.Available()).Msg("radio self-check passed")

	pollOpts := []poller.Option{poller.WithClock(o.clock)}
	if d := cfg.PollInterval(); d > 0 {
		pollOpts = append(pollOpts, poller.WithInterval(d))
	}
	if drv.Player != nil {
		pollOpts = append(pollOpts, poller.WithOnReceive(alertHook(cfg, drv.Player, o.dataDir)))
	}
	p, err := poller.New(drv.Radio, q, pollOpts...)
	if err != nil {
		return nil, fmt.Errorf("create poller: %w", err)
	}

	ctrlOpts := []controller.Option{
		controller.WithClock(o.clock),
		controller.WithDebounce(cfg.DebounceDelay()),
	}
	if d := cfg.RefreshInterval(); d > 0 {
		ctrlOpts = append(ctrlOpts, controller.WithInterval(d))
	}
	ctrl, err := controller.New(q, screen, drv.Dismiss, ctrlOpts...)
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}

	ps, err := newPhotoService(cfg, drv, screen, &o)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	core := &Core{
		Queue:      q,
		Screen:     screen,
		Poller:     p,
		Controller: ctrl,
		Photo:      ps,
		drivers:    drv,
		cancel:     cancel,
		group:      g,
		done:       make(chan struct{}),
	}

	g.Go(func() error { return p.Run(gctx) })
	g.Go(func() error { return ctrl.Run(gctx) })
	if ps != nil {
		g.Go(func() error { return ps.Run(gctx) })
	}
	go func() {
		core.err = g.Wait()
		close(core.done)
	}()

	log.Info().Bool("photo", ps != nil).Msg("pager started")
	return core, nil
}

func newPhotoService(cfg *config.Instance, drv *Drivers, screen *display.Screen, o *options) (*photo.Service, error) {
	pc := cfg.Photo()
	if !pc.Enabled {
		return nil, nil //nolint:nilnil // photo support is optional
	}
	if drv.Camera == nil || drv.Photo == nil {
		log.Warn().Msg("photo enabled but no camera or photo button, disabling")
		return nil, nil //nolint:nilnil // photo support is optional
	}

	opts := []photo.Option{
		photo.WithClock(o.clock),
		photo.WithDeviceID(cfg.DeviceID()),
		photo.WithHold(cfg.ResponseHold()),
		photo.WithDebounce(cfg.DebounceDelay()),
	}
	if d := cfg.RefreshInterval(); d > 0 {
		opts = append(opts, photo.WithInterval(d))
	}
	if o.fs != nil {
		opts = append(opts, photo.WithArchive(o.fs, cfg.PhotoArchiveDir(o.dataDir)))
	}
	if drv.Uploader != nil && pc.UploadURL != "" {
		opts = append(opts, photo.WithUpload(drv.Uploader, pc.UploadURL))
	}
	ps, err := photo.New(drv.Camera, screen, drv.Photo, opts...)
	if err != nil {
		return nil, fmt.Errorf("create photo service: %w", err)
	}
	return ps, nil
}

// alertHook plays the configured sound for each page that reaches the
// queue, falling back to the built-in chime for its kind.
func alertHook(cfg *config.Instance, player audio.Player, dataDir string) poller.ReceiveFunc {
	return func(rec message.Record) {
		name := strings.ToLower(rec.Kind.String())
		path, custom := cfg.AlertSoundPath(name, dataDir)
		helpers.PlayConfiguredSound(player, path, custom || cfg.AlertChime(), audio.ChimeFor(rec.Kind), name)
	}
}

// Done is closed once every task has returned.
func (c *Core) Done() <-chan struct{} {
	return c.done
}

// Stop cancels the tasks, waits for them and closes the drivers. Later calls
// return the first result.
func (c *Core) Stop() error {
	c.stop.Do(func() {
		c.cancel()
		<-c.done
		closeErr := c.drivers.Close()
		log.Info().Msg("pager stopped")
		if c.err != nil {
			c.stopErr = fmt.Errorf("pager task failed: %w", c.err)
			return
		}
		c.stopErr = closeErr
	})
	return c.stopErr
}
