// Package platform isolates every operating-system call the overlay makes.
//
// The rest of the module depends only on the Adapter interface. Each
// supported OS provides one implementation (see platform_windows.go and
// platform_linux.go); other systems get an adapter whose methods all return
// ErrUnsupported. Adapter methods never panic: a failed OS call is reported
// as an error and callers decide whether to care.
package platform

import (
	"errors"
	"fmt"
	"image/color"
)

// Common errors.
var (
	ErrUnsupported   = errors.New("platform: operation not supported")
	ErrInvalidHandle = errors.New("platform: invalid window handle")
	ErrNotFound      = errors.New("platform: window not found")
)

// Handle is an opaque native window handle (HWND on Windows, XID on X11).
type Handle uintptr

// Rect is a screen rectangle in physical pixels. X and Y may be negative
// when monitors sit left of or above the primary display.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}

// CursorShape identifies one system cursor glyph slot.
type CursorShape uint32

// Cursor shape identifiers. Values match the Win32 OCR_* constants.
const (
	CursorNormal      CursorShape = 32512
	CursorIBeam       CursorShape = 32513
	CursorWait        CursorShape = 32514
	CursorCross       CursorShape = 32515
	CursorUp          CursorShape = 32516
	CursorSizeNWSE    CursorShape = 32642
	CursorSizeNESW    CursorShape = 32643
	CursorSizeWE      CursorShape = 32644
	CursorSizeNS      CursorShape = 32645
	CursorSizeAll     CursorShape = 32646
	CursorNo          CursorShape = 32648
	CursorHand        CursorShape = 32649
	CursorAppStarting CursorShape = 32650
)

// CursorShapes is every glyph slot replaced while the system cursor is
// hidden.
var CursorShapes = []CursorShape{
	CursorNormal, CursorIBeam, CursorWait, CursorCross, CursorUp,
	CursorSizeNWSE, CursorSizeNESW, CursorSizeWE, CursorSizeNS,
	CursorSizeAll, CursorNo, CursorHand, CursorAppStarting,
}

// BlankCursorSize is the edge length of the transparent replacement cursor.
const BlankCursorSize = 32

// BlankCursorMasks returns the AND and XOR planes of a fully transparent
// monochrome cursor: every AND bit set, every XOR bit clear.
func BlankCursorMasks() (and, xor []byte) {
	n := BlankCursorSize * BlankCursorSize / 8
	and = make([]byte, n)
	xor = make([]byte, n)
	for i := range and {
		and[i] = 0xff
	}
	return and, xor
}

// WindowAttributes is the full OS-visible state the overlay window must
// carry. It is applied as a whole every time, never diffed.
type WindowAttributes struct {
	Layered          bool
	InputTransparent bool
	ToolWindow       bool
	NoActivate       bool
	Topmost          bool
	Bounds           Rect
	TransparentKey   color.RGBA
}

// OverlayAttributes returns the attribute set for a click-through overlay
// covering bounds.
func OverlayAttributes(bounds Rect, key color.RGBA) WindowAttributes {
	return WindowAttributes{
		Layered:          true,
		InputTransparent: true,
		ToolWindow:       true,
		NoActivate:       true,
		Topmost:          true,
		Bounds:           bounds,
		TransparentKey:   key,
	}
}

// Adapter is the set of OS services the overlay consumes.
type Adapter interface {
	// VirtualScreen returns the bounding rectangle of all monitors.
	VirtualScreen() (Rect, error)

	// CursorPosition returns the global pointer position in screen pixels.
	CursorPosition() (x, y int, err error)

	// FindWindow resolves the native handle of a top-level window by title.
	FindWindow(title string) (Handle, error)

	// ApplyWindowAttributes (re)applies styles and z-order to h without
	// moving, resizing or activating it.
	ApplyWindowAttributes(h Handle, attrs WindowAttributes) error

	// ShowWindow makes h visible again if it was hidden or minimized.
	ShowWindow(h Handle) error

	// InstallBlankCursors replaces each listed system glyph with a
	// transparent cursor.
	InstallBlankCursors(shapes []CursorShape) error

	// RestoreCursors reloads the system default cursor scheme.
	RestoreCursors() error

	// EnableDPIAwareness asks for per-monitor DPI awareness so coordinates
	// are physical pixels.
	EnableDPIAwareness() error

	// Close releases any connection the adapter holds.
	Close() error
}

// New returns the adapter for the running OS.
func New() (Adapter, error) {
	return newNative()
}
