package platform

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlankCursorMasks(t *testing.T) {
	and, xor := BlankCursorMasks()

	require.Len(t, and, 128)
	require.Len(t, xor, 128)
	for i := range and {
		assert.Equal(t, byte(0xff), and[i])
		assert.Equal(t, byte(0x00), xor[i])
	}
}

func TestCursorShapes(t *testing.T) {
	assert.Len(t, CursorShapes, 13)

	seen := make(map[CursorShape]bool)
	for _, s := range CursorShapes {
		assert.False(t, seen[s], "duplicate shape %d", s)
		seen[s] = true
	}
	assert.True(t, seen[CursorNormal])
	assert.True(t, seen[CursorAppStarting])
}

func TestRect(t *testing.T) {
	r := Rect{X: -1920, Y: -200, Width: 3840, Height: 1280}
	assert.False(t, r.Empty())
	assert.Equal(t, "3840x1280-1920-200", r.String())
	assert.True(t, Rect{Width: 10}.Empty())
}

func TestOverlayAttributes(t *testing.T) {
	key := color.RGBA{R: 0xff, B: 0xff, A: 0xff}
	bounds := Rect{X: -1280, Width: 3200, Height: 1080}

	a := OverlayAttributes(bounds, key)
	assert.True(t, a.Layered)
	assert.True(t, a.InputTransparent)
	assert.True(t, a.ToolWindow)
	assert.True(t, a.NoActivate)
	assert.True(t, a.Topmost)
	assert.Equal(t, bounds, a.Bounds)
	assert.Equal(t, key, a.TransparentKey)
}

func TestUnsupported(t *testing.T) {
	a := Unsupported()

	_, err := a.VirtualScreen()
	assert.ErrorIs(t, err, ErrUnsupported)
	_, _, err = a.CursorPosition()
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = a.FindWindow("x")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, a.ApplyWindowAttributes(1, WindowAttributes{}), ErrUnsupported)
	assert.ErrorIs(t, a.ShowWindow(1), ErrUnsupported)
	assert.ErrorIs(t, a.InstallBlankCursors(CursorShapes), ErrUnsupported)
	assert.ErrorIs(t, a.RestoreCursors(), ErrUnsupported)
	assert.ErrorIs(t, a.EnableDPIAwareness(), ErrUnsupported)
	assert.NoError(t, a.Close())
}

func TestFake_WindowLifecycle(t *testing.T) {
	f := NewFake(Rect{Width: 800, Height: 600})
	h := f.CreateWindow("overlay")

	got, err := f.FindWindow("overlay")
	require.NoError(t, err)
	assert.Equal(t, h, got)

	attrs := OverlayAttributes(Rect{Width: 800, Height: 600}, color.RGBA{})
	require.NoError(t, f.ApplyWindowAttributes(h, attrs))
	applied, ok := f.Attributes(h)
	require.True(t, ok)
	assert.Equal(t, attrs, applied)

	f.HideWindow(h)
	assert.False(t, f.WindowVisible(h))
	require.NoError(t, f.ShowWindow(h))
	assert.True(t, f.WindowVisible(h))

	f.DestroyWindow(h)
	_, err = f.FindWindow("overlay")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.ApplyWindowAttributes(h, attrs), ErrInvalidHandle)
	assert.ErrorIs(t, f.ShowWindow(h), ErrInvalidHandle)
}

func TestFake_Cursors(t *testing.T) {
	f := NewFake(Rect{Width: 800, Height: 600})

	require.NoError(t, f.InstallBlankCursors(CursorShapes))
	assert.True(t, f.CursorsHidden())
	require.NoError(t, f.RestoreCursors())
	assert.False(t, f.CursorsHidden())
	assert.Equal(t, 1, f.InstallCalls)
	assert.Equal(t, 1, f.RestoreCalls)
}
