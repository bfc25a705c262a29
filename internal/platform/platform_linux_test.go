//go:build linux

package platform

import (
	"os"
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newX11(t *testing.T) *x11Adapter {
	t.Helper()
	if os.Getenv("DISPLAY") == "" {
		t.Skip("no X server")
	}
	a, err := newNative()
	if err != nil {
		t.Skipf("X server unavailable: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a.(*x11Adapter)
}

func (a *x11Adapter) createWindow(t *testing.T, parent xproto.Window) xproto.Window {
	t.Helper()
	w, err := xproto.NewWindowId(a.conn)
	require.NoError(t, err)
	err = xproto.CreateWindowChecked(a.conn, a.screen.RootDepth, w, parent,
		0, 0, 64, 64, 0, xproto.WindowClassInputOutput, a.screen.RootVisual, 0, nil).Check()
	require.NoError(t, err)
	return w
}

func TestX11_TopLevelOfReparentedWindow(t *testing.T) {
	a := newX11(t)

	frame := a.createWindow(t, a.screen.Root)
	client := a.createWindow(t, frame)
	defer xproto.DestroyWindow(a.conn, frame)

	top, err := a.topLevel(client)
	require.NoError(t, err)
	assert.Equal(t, frame, top)

	top, err = a.topLevel(frame)
	require.NoError(t, err)
	assert.Equal(t, frame, top)

	assert.NoError(t, a.ApplyWindowAttributes(Handle(client), WindowAttributes{Topmost: true}))
}

func TestX11_DestroyedWindowIsInvalid(t *testing.T) {
	a := newX11(t)

	w := a.createWindow(t, a.screen.Root)
	require.NoError(t, xproto.DestroyWindowChecked(a.conn, w).Check())

	err := a.ApplyWindowAttributes(Handle(w), WindowAttributes{Topmost: true})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}
