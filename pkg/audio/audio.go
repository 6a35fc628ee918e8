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

// Package audio plays alert chimes through malgo.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/lazeeeer/MD-Vision/pkg/helpers/syncutil"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/rs/zerolog/log"
)

// SampleRate is what every sound is resampled to before it reaches the
// device.
const SampleRate = beep.SampleRate(48000)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Player is the interface for alert playback, allowing tests to mock sound
// output.
type Player interface {
	PlayFile(path string) error
	PlayChime(c Chime) error
	ClearFileCache()
}

// Tone is one beep of a chime followed by a pause.
type Tone struct {
	Freq float64
	Dur  time.Duration
	Gap  time.Duration
}

type Chime []Tone

// ChimeFor returns the built-in chime for a message kind. Codes get three
// high beeps, room and care requests two, everything else one.
func ChimeFor(kind message.Kind) Chime {
	switch kind {
	case message.KindCodeBlack, message.KindCodeBlue, message.KindCodeRed:
		t := Tone{Freq: 1760, Dur: 150 * time.Millisecond, Gap: 80 * time.Millisecond}
		return Chime{t, t, t}
	case message.KindAttendRoom, message.KindPatientCare:
		return Chime{
			{Freq: 880, Dur: 120 * time.Millisecond, Gap: 60 * time.Millisecond},
			{Freq: 1320, Dur: 180 * time.Millisecond},
		}
	default:
		return Chime{{Freq: 880, Dur: 200 * time.Millisecond}}
	}
}

// Duration is the total play time including gaps.
func (c Chime) Duration() time.Duration {
	var d time.Duration
	for _, t := range c {
		d += t.Dur + t.Gap
	}
	return d
}

// Streamer renders the chime at SampleRate.
func (c Chime) Streamer() (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(c)*2)
	for i, t := range c {
		tone, err := generators.SineTone(SampleRate, t.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %d: %w", i, err)
		}
		parts = append(parts, beep.Take(SampleRate.N(t.Dur), tone))
		if t.Gap > 0 {
			parts = append(parts, beep.Silence(SampleRate.N(t.Gap)))
		}
	}
	return beep.Seq(parts...), nil
}

// MalgoPlayer implements Player using malgo for real audio hardware output.
// A new sound cancels the one currently playing.
type MalgoPlayer struct {
	currentCancel context.CancelFunc
	fileCache     map[string][]byte
	playbackGen   uint64
	fileCacheMu   syncutil.RWMutex
	playbackMu    syncutil.Mutex
}

func NewMalgoPlayer() *MalgoPlayer {
	return &MalgoPlayer{
		fileCache: make(map[string][]byte),
	}
}

// PlayFile plays a WAV, MP3, OGG or FLAC file asynchronously. File bytes are
// cached until ClearFileCache.
func (p *MalgoPlayer) PlayFile(path string) error {
	data, err := p.readFileWithCache(path)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	streamer, format, err := decode(path, data)
	if err != nil {
		return err
	}

	p.start(beep.Resample(4, format.SampleRate, SampleRate, streamer), func() {
		if err := streamer.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close audio streamer")
		}
	}, path)
	return nil
}

// PlayChime plays a generated chime asynchronously.
func (p *MalgoPlayer) PlayChime(c Chime) error {
	if len(c) == 0 {
		return nil
	}
	streamer, err := c.Streamer()
	if err != nil {
		return fmt.Errorf("failed to build chime: %w", err)
	}
	p.start(streamer, func() {}, "chime")
	return nil
}

func (p *MalgoPlayer) start(streamer beep.Streamer, cleanup func(), name string) {
	p.playbackMu.Lock()
	if p.currentCancel != nil {
		p.currentCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.currentCancel = cancel
	p.playbackGen++
	thisGen := p.playbackGen
	p.playbackMu.Unlock()

	go func() {
		defer func() {
			cleanup()
			p.playbackMu.Lock()
			if p.playbackGen == thisGen {
				p.currentCancel = nil
			}
			p.playbackMu.Unlock()
			cancel()
		}()

		if err := playWithMalgo(ctx, streamer); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Str("sound", name).Msg("failed to play audio")
			}
			return
		}
		log.Debug().Str("sound", name).Msg("completed audio playback")
	}()
}

func decode(path string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	case ".mp3":
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case ".ogg":
		streamer, format, err = vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	case ".flac":
		streamer, format, err = flac.Decode(bytes.NewReader(data))
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}

func (p *MalgoPlayer) readFileWithCache(path string) ([]byte, error) {
	p.fileCacheMu.RLock()
	if cached, ok := p.fileCache[path]; ok {
		p.fileCacheMu.RUnlock()
		return cached, nil
	}
	p.fileCacheMu.RUnlock()

	//nolint:gosec // G304: sound paths come from the local config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	p.fileCacheMu.Lock()
	p.fileCache[path] = data
	p.fileCacheMu.Unlock()

	return data, nil
}

// ClearFileCache forces the next PlayFile to re-read from disk.
func (p *MalgoPlayer) ClearFileCache() {
	p.fileCacheMu.Lock()
	defer p.fileCacheMu.Unlock()
	p.fileCache = make(map[string][]byte)
}

// playWithMalgo blocks until the streamer drains or ctx is cancelled.
func playWithMalgo(ctx context.Context, streamer beep.Streamer) error {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	if malgoCtx == nil {
		return errors.New("malgo context is nil after initialization")
	}
	defer func() {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
	}()

	// F32 avoids the S16->S32 conversion miniaudio gets wrong on PulseAudio
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 2
	deviceConfig.SampleRate = uint32(SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	done := make(chan struct{})

	var (
		mu       syncutil.Mutex
		finished bool
		samples  [][2]float64
	)

	onSamples := func(out, _ []byte, frameCount uint32) {
		mu.Lock()
		defer mu.Unlock()

		if finished {
			return
		}
		if ctx.Err() != nil {
			finished = true
			close(done)
			return
		}

		if len(samples) < int(frameCount) {
			samples = make([][2]float64, frameCount)
		}
		n, ok := streamer.Stream(samples[:frameCount])
		if !ok || n == 0 {
			finished = true
			close(done)
			return
		}
		offset := putFrames(out, samples[:n])
		clear(out[offset:])
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		finished = true
		mu.Unlock()
	}

	if err := device.Stop(); err != nil {
		log.Warn().Err(err).Msg("failed to stop audio device")
	}
	return ctx.Err()
}

// putFrames writes interleaved little-endian F32 stereo frames and returns
// the number of bytes written.
func putFrames(out []byte, frames [][2]float64) int {
	offset := 0
	for _, f := range frames {
		if offset+8 > len(out) {
			break
		}
		binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(float32(f[0])))
		binary.LittleEndian.PutUint32(out[offset+4:], math.Float32bits(float32(f[1])))
		offset += 8
	}
	return offset
}
