package overlay

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cursortrail/internal/platform"
)

const testTitle = "cursortrail test overlay"

var magenta = color.RGBA{R: 0xff, B: 0xff, A: 0xff}

func newTestSurface(t *testing.T, screen platform.Rect) (*Surface, *platform.Fake, platform.Handle) {
	t.Helper()
	fake := platform.NewFake(screen)
	h := fake.CreateWindow(testTitle)
	s := New(fake, Config{Title: testTitle, TransparentKey: magenta}, nil)
	return s, fake, h
}

func TestNew_UsesVirtualScreen(t *testing.T) {
	screen := platform.Rect{X: -1920, Y: -120, Width: 4480, Height: 1440}
	s, _, _ := newTestSurface(t, screen)

	assert.Equal(t, screen, s.Bounds())
	x, y := s.Offset()
	assert.Equal(t, -1920, x)
	assert.Equal(t, -120, y)
	assert.False(t, s.Degraded())
}

func TestNew_FallsBackToPrimaryMonitor(t *testing.T) {
	fake := platform.NewFake(platform.Rect{})
	fake.ScreenErr = errors.New("no display")

	s := New(fake, Config{
		Title:        testTitle,
		FallbackSize: func() (int, int) { return 2560, 1440 },
	}, nil)

	assert.True(t, s.Degraded())
	assert.Equal(t, platform.Rect{Width: 2560, Height: 1440}, s.Bounds())
}

func TestEnforceAttributes(t *testing.T) {
	screen := platform.Rect{Width: 1920, Height: 1080}
	s, fake, h := newTestSurface(t, screen)

	require.NoError(t, s.EnforceAttributes())
	assert.Equal(t, h, s.Handle())

	attrs, ok := fake.Attributes(h)
	require.True(t, ok)
	assert.Equal(t, platform.OverlayAttributes(screen, magenta), attrs)
}

func TestEnforceAttributes_WindowNotFound(t *testing.T) {
	fake := platform.NewFake(platform.Rect{Width: 800, Height: 600})
	s := New(fake, Config{Title: "missing"}, nil)

	err := s.EnforceAttributes()
	assert.ErrorIs(t, err, platform.ErrNotFound)
	assert.Equal(t, 0, fake.ApplyCalls)
}

func TestMaintain_RestoresHiddenAndStrippedWindow(t *testing.T) {
	s, fake, h := newTestSurface(t, platform.Rect{Width: 800, Height: 600})
	require.NoError(t, s.EnforceAttributes())

	fake.HideWindow(h)
	fake.StripAttributes(h)

	require.NoError(t, s.Maintain())
	assert.True(t, fake.WindowVisible(h))
	_, ok := fake.Attributes(h)
	assert.True(t, ok)
}

func TestMaintain_DestroyedWindow(t *testing.T) {
	s, fake, h := newTestSurface(t, platform.Rect{Width: 800, Height: 600})
	require.NoError(t, s.EnforceAttributes())

	fake.DestroyWindow(h)

	var err error
	assert.NotPanics(t, func() { err = s.Maintain() })
	assert.ErrorIs(t, err, platform.ErrInvalidHandle)
	assert.Zero(t, s.Handle(), "stale handle should be forgotten")

	// The next tick looks the window up again and reports it missing.
	assert.ErrorIs(t, s.Maintain(), platform.ErrNotFound)
}

func TestMaintain_RecreatedWindow(t *testing.T) {
	s, fake, h := newTestSurface(t, platform.Rect{Width: 800, Height: 600})
	require.NoError(t, s.EnforceAttributes())

	fake.DestroyWindow(h)
	require.Error(t, s.Maintain())

	h2 := fake.CreateWindow(testTitle)
	require.NoError(t, s.Maintain())
	assert.Equal(t, h2, s.Handle())
}

func TestMaintain_AttemptsEveryStep(t *testing.T) {
	s, fake, h := newTestSurface(t, platform.Rect{Width: 800, Height: 600})
	require.NoError(t, s.EnforceAttributes())
	fake.ApplyErr = errors.New("access denied")
	fake.HideWindow(h)

	err := s.Maintain()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.True(t, fake.WindowVisible(h), "show should still run")
	assert.Equal(t, h, s.Handle(), "valid handle is kept on other errors")
}

func TestClose(t *testing.T) {
	s, fake, _ := newTestSurface(t, platform.Rect{Width: 800, Height: 600})

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrClosed)
	assert.ErrorIs(t, s.EnforceAttributes(), ErrClosed)
	assert.ErrorIs(t, s.Maintain(), ErrClosed)
	assert.Equal(t, 0, fake.ApplyCalls)
	assert.Equal(t, 0, fake.ShowCalls)
}
