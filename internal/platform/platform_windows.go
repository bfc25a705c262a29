//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// gwlExStyle is negative, so it cannot be converted to uintptr as a constant.
var gwlExStyle int32 = -20

// Win32 constants used by the adapter.
const (
	wsExLayered     = 0x00080000
	wsExTransparent = 0x00000020
	wsExTopmost     = 0x00000008
	wsExToolWindow  = 0x00000080
	wsExNoActivate  = 0x08000000

	hwndTopmost = ^uintptr(0) // (HWND)-1

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010
	swpShowWindow = 0x0040

	swShowNoActivate = 4

	lwaColorKey = 0x00000001
	lwaAlpha    = 0x00000002

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	spiSetCursors = 0x0057

	processPerMonitorDPIAware = 2
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	shcore = windows.NewLazySystemDLL("shcore.dll")

	procGetSystemMetrics           = user32.NewProc("GetSystemMetrics")
	procGetCursorPos               = user32.NewProc("GetCursorPos")
	procFindWindowW                = user32.NewProc("FindWindowW")
	procIsWindow                   = user32.NewProc("IsWindow")
	procIsWindowVisible            = user32.NewProc("IsWindowVisible")
	procIsIconic                   = user32.NewProc("IsIconic")
	procGetWindowLongW             = user32.NewProc("GetWindowLongW")
	procSetWindowLongW             = user32.NewProc("SetWindowLongW")
	procSetWindowPos               = user32.NewProc("SetWindowPos")
	procShowWindow                 = user32.NewProc("ShowWindow")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procCreateCursor               = user32.NewProc("CreateCursor")
	procSetSystemCursor            = user32.NewProc("SetSystemCursor")
	procSystemParametersInfoW      = user32.NewProc("SystemParametersInfoW")
	procSetProcessDPIAware         = user32.NewProc("SetProcessDPIAware")

	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
)

type point struct {
	X int32
	Y int32
}

// win32Adapter talks to user32 directly. It holds no state; every call is
// independent so a stale handle only fails the call it is passed to.
type win32Adapter struct{}

func newNative() (Adapter, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("load user32: %w", err)
	}
	return win32Adapter{}, nil
}

func metric(index uintptr) int {
	r, _, _ := procGetSystemMetrics.Call(index)
	return int(int32(r))
}

func (win32Adapter) VirtualScreen() (Rect, error) {
	r := Rect{
		X:      metric(smXVirtualScreen),
		Y:      metric(smYVirtualScreen),
		Width:  metric(smCXVirtualScreen),
		Height: metric(smCYVirtualScreen),
	}
	if r.Empty() {
		return Rect{}, fmt.Errorf("platform: GetSystemMetrics returned empty virtual screen %s", r)
	}
	return r, nil
}

func (win32Adapter) CursorPosition() (int, int, error) {
	var pt point
	r, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos: %w", err)
	}
	return int(pt.X), int(pt.Y), nil
}

func (win32Adapter) FindWindow(title string) (Handle, error) {
	name, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, fmt.Errorf("encode title: %w", err)
	}
	h, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(name)))
	if h == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return Handle(h), nil
}

func isWindow(h Handle) bool {
	if h == 0 {
		return false
	}
	r, _, _ := procIsWindow.Call(uintptr(h))
	return r != 0
}

func (win32Adapter) ApplyWindowAttributes(h Handle, attrs WindowAttributes) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}

	cur, _, _ := procGetWindowLongW.Call(uintptr(h), uintptr(gwlExStyle))
	style := uint32(cur)
	want := style
	if attrs.Layered {
		want |= wsExLayered
	}
	if attrs.InputTransparent {
		want |= wsExTransparent
	}
	if attrs.ToolWindow {
		want |= wsExToolWindow
	}
	if attrs.NoActivate {
		want |= wsExNoActivate
	}
	if attrs.Topmost {
		want |= wsExTopmost
	}

	if want != style {
		// SetWindowLong returns the previous value, which may legitimately
		// be zero, so read the style back instead.
		_, _, err := procSetWindowLongW.Call(uintptr(h), uintptr(gwlExStyle), uintptr(want))
		if got, _, _ := procGetWindowLongW.Call(uintptr(h), uintptr(gwlExStyle)); uint32(got)&want != want {
			return fmt.Errorf("SetWindowLongW: %w", err)
		}
		// A window that just became layered is invisible until its layered
		// attributes are set.
		if style&wsExLayered == 0 && want&wsExLayered != 0 {
			key := uintptr(attrs.TransparentKey.R) |
				uintptr(attrs.TransparentKey.G)<<8 |
				uintptr(attrs.TransparentKey.B)<<16
			if r, _, err := procSetLayeredWindowAttributes.Call(uintptr(h), key, 255, lwaColorKey|lwaAlpha); r == 0 {
				return fmt.Errorf("SetLayeredWindowAttributes: %w", err)
			}
		}
	}

	if attrs.Topmost {
		r, _, err := procSetWindowPos.Call(uintptr(h), hwndTopmost, 0, 0, 0, 0,
			swpNoMove|swpNoSize|swpNoActivate|swpShowWindow)
		if r == 0 {
			return fmt.Errorf("SetWindowPos: %w", err)
		}
	}
	return nil
}

func (win32Adapter) ShowWindow(h Handle) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}
	visible, _, _ := procIsWindowVisible.Call(uintptr(h))
	iconic, _, _ := procIsIconic.Call(uintptr(h))
	if visible != 0 && iconic == 0 {
		return nil
	}
	// ShowWindow returns the previous visibility, not success.
	procShowWindow.Call(uintptr(h), swShowNoActivate)
	return nil
}

func (win32Adapter) InstallBlankCursors(shapes []CursorShape) error {
	and, xor := BlankCursorMasks()
	var firstErr error
	for _, shape := range shapes {
		hcur, _, err := procCreateCursor.Call(0, 0, 0,
			BlankCursorSize, BlankCursorSize,
			uintptr(unsafe.Pointer(&and[0])), uintptr(unsafe.Pointer(&xor[0])))
		if hcur == 0 {
			if firstErr == nil {
				firstErr = fmt.Errorf("CreateCursor(%d): %w", shape, err)
			}
			continue
		}
		// SetSystemCursor takes ownership of hcur.
		if r, _, err := procSetSystemCursor.Call(hcur, uintptr(shape)); r == 0 && firstErr == nil {
			firstErr = fmt.Errorf("SetSystemCursor(%d): %w", shape, err)
		}
	}
	return firstErr
}

func (win32Adapter) RestoreCursors() error {
	r, _, err := procSystemParametersInfoW.Call(spiSetCursors, 0, 0, 0)
	if r == 0 {
		return fmt.Errorf("SystemParametersInfoW(SPI_SETCURSORS): %w", err)
	}
	return nil
}

func (win32Adapter) EnableDPIAwareness() error {
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		// Returns an HRESULT; S_OK is zero.
		hr, _, _ := procSetProcessDpiAwareness.Call(processPerMonitorDPIAware)
		if hr == 0 {
			return nil
		}
	}
	if r, _, err := procSetProcessDPIAware.Call(); r == 0 {
		return fmt.Errorf("SetProcessDPIAware: %w", err)
	}
	return nil
}

func (win32Adapter) Close() error { return nil }
