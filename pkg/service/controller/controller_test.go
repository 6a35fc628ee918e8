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

package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/lazeeeer/MD-Vision/pkg/input"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/lazeeeer/MD-Vision/pkg/pager/queue"
	"github.com/lazeeeer/MD-Vision/pkg/testing/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedButton returns queued levels, then Released forever.
type scriptedButton struct {
	levels []input.Level
	mu     sync.Mutex
}

func (b *scriptedButton) push(levels ...input.Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.levels = append(b.levels, levels...)
}

func (b *scriptedButton) ReadRaw() input.Level {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.levels) == 0 {
		return input.Released
	}
	l := b.levels[0]
	b.levels = b.levels[1:]
	return l
}

type fixture struct {
	ctrl   *Controller
	queue  *queue.Queue
	surf   *testutils.RecordingSurface
	button *scriptedButton
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	q, err := queue.New(4)
	require.NoError(t, err)
	surf := testutils.NewRecordingSurface()
	screen, err := display.NewScreen(surf, display.DefaultLayout)
	require.NoError(t, err)
	button := &scriptedButton{}
	ctrl, err := New(q, screen, button, opts...)
	require.NoError(t, err)
	return &fixture{ctrl: ctrl, queue: q, surf: surf, button: button}
}

func (f *fixture) enqueue(t *testing.T, text string) {
	t.Helper()
	rec, _ := message.FromString(text)
	_, err := f.queue.Enqueue(context.Background(), rec)
	require.NoError(t, err)
}

// press feeds a debounced press (two low samples at the default threshold)
// followed by a release, stepping once per sample.
func (f *fixture) press(t *testing.T) {
	t.Helper()
	f.steps(t, input.Pressed, input.Pressed, input.Released, input.Released)
}

func (f *fixture) steps(t *testing.T, levels ...input.Level) {
	t.Helper()
	f.button.push(levels...)
	for range levels {
		require.NoError(t, f.ctrl.Step(context.Background()))
	}
}

func (f *fixture) bodyTexts() []string {
	var out []string
	for _, op := range f.surf.Texts() {
		if op.Font == display.FontBody {
			out = append(out, op.Text)
		}
	}
	return out
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()
	q, err := queue.New(1)
	require.NoError(t, err)
	screen, err := display.NewScreen(testutils.NewRecordingSurface(), display.DefaultLayout)
	require.NoError(t, err)
	button := input.ButtonFunc(func() input.Level { return input.Released })

	_, err = New(nil, screen, button)
	require.Error(t, err)
	_, err = New(q, nil, button)
	require.Error(t, err)
	_, err = New(q, screen, nil)
	require.Error(t, err)
	_, err = New(q, screen, button, WithInterval(0))
	require.Error(t, err)
}

func TestController_DefaultDebounceThreshold(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	assert.Equal(t, 2, f.ctrl.debouncer.Threshold())
}

func TestController_Scenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	assert.Equal(t, Idle, f.ctrl.State())

	// press with nothing queued does nothing
	f.press(t)
	assert.Equal(t, Idle, f.ctrl.State())
	assert.Empty(t, f.bodyTexts())

	f.enqueue(t, "Room 12 needs assistance")
	f.press(t)
	assert.Equal(t, Showing, f.ctrl.State())
	assert.Equal(t, []string{"Room 12 needs assist", "ance"}, f.bodyTexts())
	shown, ok := f.ctrl.Shown()
	require.True(t, ok)
	assert.Equal(t, "Room 12 needs assistance", shown.Text())
	assert.Equal(t, 0, f.queue.Len())

	f.surf.Reset()
	f.press(t)
	assert.Equal(t, Idle, f.ctrl.State())
	assert.Contains(t, f.surf.Ops(), "clear_region 14,11,100,53")
	_, ok = f.ctrl.Shown()
	assert.False(t, ok)
}

func TestController_FIFOAcrossPresses(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.enqueue(t, "first")
	f.enqueue(t, "second")

	f.press(t)
	shown, _ := f.ctrl.Shown()
	assert.Equal(t, "first", shown.Text())

	// dismiss, then the next press shows the second page
	f.press(t)
	f.press(t)
	shown, _ = f.ctrl.Shown()
	assert.Equal(t, "second", shown.Text())
	assert.Equal(t, Showing, f.ctrl.State())
}

func TestController_GlitchCausesNoTransition(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.enqueue(t, "page")

	f.steps(t, input.Released, input.Pressed, input.Released, input.Released, input.Pressed, input.Released)
	assert.Equal(t, Idle, f.ctrl.State())
	assert.Equal(t, 1, f.queue.Len())
}

func TestController_HeldButtonActsOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.enqueue(t, "one")
	f.enqueue(t, "two")

	levels := make([]input.Level, 10)
	for i := range levels {
		levels[i] = input.Pressed
	}
	f.steps(t, levels...)
	assert.Equal(t, Showing, f.ctrl.State())
	assert.Equal(t, 1, f.queue.Len())
}

func TestController_HardwareDebounce(t *testing.T) {
	t.Parallel()
	f := newFixture(t, WithDebounce(0))
	f.enqueue(t, "page")

	f.steps(t, input.Pressed)
	assert.Equal(t, Showing, f.ctrl.State())
	f.steps(t, input.Released, input.Pressed)
	assert.Equal(t, Idle, f.ctrl.State())
}

func TestController_IndicatorTracksQueue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.steps(t, input.Released)
	assert.False(t, f.surf.MarkerOn())

	f.enqueue(t, "page")
	f.steps(t, input.Released)
	assert.True(t, f.surf.MarkerOn())

	// still lit while the page is shown if more are waiting
	f.enqueue(t, "another")
	f.press(t)
	assert.True(t, f.surf.MarkerOn())

	f.press(t)
	f.press(t)
	assert.False(t, f.surf.MarkerOn())
	assert.Equal(t, Showing, f.ctrl.State())
}

func TestController_IndicatorRedrawnEveryCycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.steps(t, input.Released, input.Released, input.Released)
	assert.Equal(t, 3, f.surf.Count("marker"))
}

func TestController_RenderFailureKeepsRunning(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.enqueue(t, "page")

	f.surf.FailOn = "text"
	f.press(t)
	assert.Equal(t, Showing, f.ctrl.State())

	f.surf.FailOn = ""
	f.press(t)
	assert.Equal(t, Idle, f.ctrl.State())
}

func TestController_KindLabelShown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.enqueue(t, "[ATTEND_ROOM] Room 7")

	f.press(t)
	var heading []string
	for _, op := range f.surf.Texts() {
		if op.Font == display.FontHeading {
			heading = append(heading, op.Text)
		}
	}
	assert.Equal(t, []string{"ROOM"}, heading)
	assert.Equal(t, []string{"Room 7"}, f.bodyTexts())
}

func TestController_Run(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	f := newFixture(t, WithClock(clock))
	f.enqueue(t, "page")
	f.button.push(input.Pressed, input.Pressed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.ctrl.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	for range 2 {
		markers := f.surf.Count("marker")
		clock.Advance(DefaultInterval)
		require.Eventually(t, func() bool {
			return f.surf.Count("marker") > markers
		}, time.Second, time.Millisecond)
	}
	require.Eventually(t, func() bool {
		return f.ctrl.State() == Showing
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestStateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "IDLE", Idle.String())
	assert.Equal(t, "SHOWING", Showing.String())
	assert.Equal(t, "state(7)", State(7).String())
}
