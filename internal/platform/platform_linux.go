//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

// maxTreeDepth bounds the window-tree walk in FindWindow. Reparenting window
// managers put client windows two or three levels below the root.
const maxTreeDepth = 4

// x11Adapter drives an X server through a single xgb connection. Pointer
// hiding uses XFixes, which hides the cursor server-wide for as long as the
// connection lives or until ShowCursor is sent.
type x11Adapter struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo

	xfixesOnce sync.Once
	xfixesErr  error

	atomsOnce  sync.Once
	wmState    xproto.Atom
	stateAbove xproto.Atom
}

func newNative() (Adapter, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	return &x11Adapter{
		conn:   conn,
		screen: xproto.Setup(conn).DefaultScreen(conn),
	}, nil
}

// VirtualScreen returns the root window size. On X11 the root spans every
// monitor and its origin is always 0,0.
func (a *x11Adapter) VirtualScreen() (Rect, error) {
	r := Rect{Width: int(a.screen.WidthInPixels), Height: int(a.screen.HeightInPixels)}
	if r.Empty() {
		return Rect{}, fmt.Errorf("platform: empty root window %s", r)
	}
	return r, nil
}

func (a *x11Adapter) CursorPosition() (int, int, error) {
	reply, err := xproto.QueryPointer(a.conn, a.screen.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("QueryPointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), nil
}

func (a *x11Adapter) windowName(w xproto.Window) string {
	reply, err := xproto.GetProperty(a.conn, false, w, xproto.AtomWmName,
		xproto.GetPropertyTypeAny, 0, 256).Reply()
	if err != nil || reply == nil {
		return ""
	}
	return string(reply.Value)
}

func (a *x11Adapter) FindWindow(title string) (Handle, error) {
	level := []xproto.Window{a.screen.Root}
	for depth := 0; depth < maxTreeDepth && len(level) > 0; depth++ {
		var next []xproto.Window
		for _, w := range level {
			tree, err := xproto.QueryTree(a.conn, w).Reply()
			if err != nil {
				continue
			}
			for _, child := range tree.Children {
				if a.windowName(child) == title {
					return Handle(child), nil
				}
			}
			next = append(next, tree.Children...)
		}
		level = next
	}
	return 0, fmt.Errorf("%w: %q", ErrNotFound, title)
}

// ApplyWindowAttributes raises h to the top of the stack. Input passthrough
// and undecorated/floating hints are owned by the window toolkit on X11.
//
// A reparenting window manager stacks its frame, not the client, so the
// top-level ancestor of h is raised. The manager is also asked to keep h
// above through _NET_WM_STATE; managers without EWMH ignore the request.
func (a *x11Adapter) ApplyWindowAttributes(h Handle, attrs WindowAttributes) error {
	if h == 0 {
		return ErrInvalidHandle
	}
	if !attrs.Topmost {
		return nil
	}
	top, err := a.topLevel(xproto.Window(h))
	if err != nil {
		return err
	}
	err = xproto.ConfigureWindowChecked(a.conn, top,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
	if err != nil {
		return windowErr("ConfigureWindow", err)
	}
	a.requestAbove(xproto.Window(h))
	return nil
}

// topLevel returns the ancestor of w whose parent is the root window.
func (a *x11Adapter) topLevel(w xproto.Window) (xproto.Window, error) {
	for depth := 0; depth < maxTreeDepth; depth++ {
		tree, err := xproto.QueryTree(a.conn, w).Reply()
		if err != nil {
			return 0, windowErr("QueryTree", err)
		}
		if tree.Parent == tree.Root || tree.Parent == 0 {
			return w, nil
		}
		w = tree.Parent
	}
	return w, nil
}

func (a *x11Adapter) atom(name string) xproto.Atom {
	reply, err := xproto.InternAtom(a.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0
	}
	return reply.Atom
}

// requestAbove sends _NET_WM_STATE_ADD _NET_WM_STATE_ABOVE for w to the root.
func (a *x11Adapter) requestAbove(w xproto.Window) {
	a.atomsOnce.Do(func() {
		a.wmState = a.atom("_NET_WM_STATE")
		a.stateAbove = a.atom("_NET_WM_STATE_ABOVE")
	})
	if a.wmState == 0 || a.stateAbove == 0 {
		return
	}

	const netWMStateAdd = 1
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   a.wmState,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			netWMStateAdd, uint32(a.stateAbove), 0, 1, 0,
		}),
	}
	xproto.SendEvent(a.conn, false, a.screen.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()))
}

func (a *x11Adapter) ShowWindow(h Handle) error {
	if h == 0 {
		return ErrInvalidHandle
	}
	if err := xproto.MapWindowChecked(a.conn, xproto.Window(h)).Check(); err != nil {
		return windowErr("MapWindow", err)
	}
	return nil
}

// windowErr maps BadWindow to ErrInvalidHandle so callers drop the handle.
func windowErr(op string, err error) error {
	if _, ok := err.(xproto.WindowError); ok {
		return fmt.Errorf("%s: %w", op, ErrInvalidHandle)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (a *x11Adapter) initXFixes() error {
	a.xfixesOnce.Do(func() {
		if err := xfixes.Init(a.conn); err != nil {
			a.xfixesErr = fmt.Errorf("%w: XFixes: %v", ErrUnsupported, err)
			return
		}
		// HideCursor needs protocol version 4.
		if _, err := xfixes.QueryVersion(a.conn, 4, 0).Reply(); err != nil {
			a.xfixesErr = fmt.Errorf("XFixes QueryVersion: %w", err)
		}
	})
	return a.xfixesErr
}

// InstallBlankCursors hides the pointer. X11 has no per-shape glyph table,
// so shapes is ignored.
func (a *x11Adapter) InstallBlankCursors(shapes []CursorShape) error {
	if err := a.initXFixes(); err != nil {
		return err
	}
	if err := xfixes.HideCursorChecked(a.conn, a.screen.Root).Check(); err != nil {
		return fmt.Errorf("XFixes HideCursor: %w", err)
	}
	return nil
}

func (a *x11Adapter) RestoreCursors() error {
	if err := a.initXFixes(); err != nil {
		return err
	}
	if err := xfixes.ShowCursorChecked(a.conn, a.screen.Root).Check(); err != nil {
		return fmt.Errorf("XFixes ShowCursor: %w", err)
	}
	return nil
}

// EnableDPIAwareness is a no-op: X11 coordinates are always physical pixels.
func (a *x11Adapter) EnableDPIAwareness() error { return nil }

func (a *x11Adapter) Close() error {
	a.conn.Close()
	return nil
}
