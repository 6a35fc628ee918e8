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

package display_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lazeeeer/MD-Vision/pkg/display"
	"github.com/lazeeeer/MD-Vision/pkg/pager/message"
	"github.com/lazeeeer/MD-Vision/pkg/testing/mocks"
	"github.com/lazeeeer/MD-Vision/pkg/testing/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newScreen(t *testing.T, opts ...display.ScreenOption) (*display.Screen, *testutils.RecordingSurface) {
	t.Helper()
	surf := testutils.NewRecordingSurface()
	s, err := display.NewScreen(surf, display.DefaultLayout, opts...)
	require.NoError(t, err)
	return s, surf
}

func record(t *testing.T, text string) *message.Record {
	t.Helper()
	rec, _ := message.FromString(text)
	return &rec
}

func TestNewScreen_Invalid(t *testing.T) {
	t.Parallel()

	_, err := display.NewScreen(nil, display.DefaultLayout)
	require.Error(t, err)

	l := display.DefaultLayout
	l.LineChars = 0
	_, err = display.NewScreen(testutils.NewRecordingSurface(), l)
	require.Error(t, err)
}

func TestScreen_ShowHUD(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	require.NoError(t, s.ShowHUD(""))
	assert.Equal(t, []string{
		"clear_all",
		"font 1",
		"text 0,10 MD-Vision",
		"flush",
	}, surf.Ops())

	surf.Reset()
	require.NoError(t, s.ShowHUD("Ward 4B"))
	assert.Contains(t, surf.Ops(), "text 0,10 Ward 4B")
}

func TestScreen_ShowMessage_ShortIsOneLine(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	require.NoError(t, s.ShowMessage(record(t, "Room 12 call")))

	texts := surf.Texts()
	require.Len(t, texts, 1)
	assert.Equal(t, testutils.TextOp{Text: "Room 12 call", X: 14, Y: 20, Font: display.FontBody}, texts[0])

	ops := surf.Ops()
	assert.Equal(t, "clear_region 14,11,100,53", ops[0])
	assert.Equal(t, "flush", ops[len(ops)-1])
}

func TestScreen_ShowMessage_LongSplits(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	text := strings.Repeat("x", 45)
	require.NoError(t, s.ShowMessage(record(t, text)))

	texts := surf.Texts()
	require.Len(t, texts, 3)
	for i, op := range texts {
		assert.Equal(t, 14, op.X)
		assert.Equal(t, 20+10*i, op.Y)
	}
	assert.Len(t, texts[0].Text, 20)
	assert.Len(t, texts[1].Text, 20)
	assert.Len(t, texts[2].Text, 5)
}

func TestScreen_ShowMessage_KindLabel(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	require.NoError(t, s.ShowMessage(record(t, "[CODE_BLUE] Room 4")))

	texts := surf.Texts()
	require.Len(t, texts, 2)
	assert.Equal(t, testutils.TextOp{Text: "BLUE", X: 96, Y: 10, Font: display.FontHeading}, texts[0])
	assert.Equal(t, "Room 4", texts[1].Text)
	assert.Equal(t, display.FontBody, texts[1].Font)
}

func TestScreen_ClearMessage(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	require.NoError(t, s.ClearMessage())
	assert.Equal(t, []string{
		"clear_region 14,11,100,53",
		"clear_region 96,0,32,11",
		"flush",
	}, surf.Ops())
}

func TestScreen_SetIndicator(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	require.NoError(t, s.SetIndicator(true))
	assert.True(t, surf.MarkerOn())
	require.NoError(t, s.SetIndicator(false))
	assert.False(t, surf.MarkerOn())
	assert.Equal(t, []string{
		"marker 124,59,2 on",
		"flush",
		"marker 124,59,2 off",
		"flush",
	}, surf.Ops())
}

func TestScreen_ReleasesLockAfterError(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	surf.FailOn = "text"
	err := s.ShowMessage(record(t, "hello"))
	require.ErrorIs(t, err, testutils.ErrSurfaceFailure)

	surf.FailOn = ""
	done := make(chan error, 1)
	go func() { done <- s.ClearMessage() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("screen still locked after failed render")
	}
}

func TestScreen_ReleasesLockAfterPanic(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	surf.PanicOn = "flush"
	err := s.SetIndicator(true)
	require.ErrorIs(t, err, display.ErrRenderPanic)

	surf.PanicOn = ""
	require.NoError(t, s.SetIndicator(false))
}

func TestScreen_MockSurfaceErrors(t *testing.T) {
	t.Parallel()

	surf := &mocks.MockSurface{}
	boom := errors.New("i2c nack")
	surf.On("ClearAll").Return(boom)
	s, err := display.NewScreen(surf, display.DefaultLayout)
	require.NoError(t, err)

	err = s.ShowHUD("")
	require.ErrorIs(t, err, boom)
	surf.AssertNotCalled(t, "Flush")

	surf2 := mocks.NewAcceptingSurface()
	s2, err := display.NewScreen(surf2, display.DefaultLayout)
	require.NoError(t, err)
	require.NoError(t, s2.ShowMessage(record(t, "ok")))
	surf2.AssertCalled(t, "DrawText", 14, 20, "ok")
	surf2.AssertCalled(t, "ClearRegion", 14, 11, 100, 53)
	surf2.AssertCalled(t, "SetFont", mock.Anything)
}

func TestScreen_RenderTransientMessage(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	s, surf := newScreen(t, display.WithScreenClock(clock))

	done := make(chan error, 1)
	go func() {
		done <- s.RenderTransientMessage(context.Background(), "Jane Doe", 5*time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	assert.Contains(t, surf.Ops(), "text 14,20 Jane Doe")
	assert.Equal(t, 1, surf.Count("flush"))

	// Another drawing task has to wait for the hold to finish.
	blocked := make(chan error, 1)
	go func() { blocked <- s.SetIndicator(true) }()
	select {
	case <-blocked:
		t.Fatal("indicator drew during transient hold")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(5 * time.Second)
	require.NoError(t, <-done)
	require.NoError(t, <-blocked)

	ops := surf.Ops()
	holdEnd := -1
	for i, op := range ops {
		if op == "marker 124,59,2 on" {
			holdEnd = i
		}
	}
	require.Positive(t, holdEnd)
	assert.Equal(t, "flush", ops[holdEnd-1])
	assert.Equal(t, "clear_region 96,0,32,11", ops[holdEnd-2])
}

func TestScreen_RenderTransientLines_CancelledStillClears(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t, display.WithScreenClock(clockwork.NewFakeClock()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RenderTransientLines(ctx, []string{"Jane Doe", "2026-10-01 09:30"}, time.Hour)
	require.NoError(t, err)

	ops := surf.Ops()
	assert.Contains(t, ops, "text 14,20 Jane Doe")
	assert.Contains(t, ops, "text 14,30 2026-10-01 09:30")
	assert.Equal(t, "flush", ops[len(ops)-1])
	assert.Equal(t, 2, surf.Count("flush"))
	assert.Equal(t, 4, surf.Count("clear_region"))
}

func TestScreen_ConcurrentTasksDoNotInterleave(t *testing.T) {
	t.Parallel()
	s, surf := newScreen(t)

	var inside sync.Mutex
	depth := 0
	overlap := false
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = s.Do(func(d display.Surface) error {
					inside.Lock()
					depth++
					if depth > 1 {
						overlap = true
					}
					inside.Unlock()

					err := d.DrawText(0, i, "x")

					inside.Lock()
					depth--
					inside.Unlock()
					return err
				})
			}
		}()
	}
	wg.Wait()

	assert.False(t, overlap)
	assert.Equal(t, 400, surf.Count("text"))
}
