// Package overlay owns the click-through window the trail is painted on.
//
// Surface keeps the native window's styles asserted through the platform
// adapter; Painter turns a trail.Frame into draw calls on a Canvas. Neither
// depends on the windowing toolkit, which lives in overlay/ebitenwin.
package overlay

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"cursortrail/internal/platform"
)

// ErrClosed is returned by Surface methods after Close.
var ErrClosed = errors.New("overlay: surface closed")

// WindowAdapter is the subset of platform.Adapter the surface drives.
type WindowAdapter interface {
	VirtualScreen() (platform.Rect, error)
	FindWindow(title string) (platform.Handle, error)
	ApplyWindowAttributes(h platform.Handle, attrs platform.WindowAttributes) error
	ShowWindow(h platform.Handle) error
}

// Config describes the overlay window.
type Config struct {
	// Title identifies the native window.
	Title string

	// TransparentKey is keyed out on platforms without per-pixel alpha.
	TransparentKey color.RGBA

	// FallbackSize reports the primary monitor size in physical pixels. It
	// is used when the adapter cannot report the virtual screen.
	FallbackSize func() (width, height int)
}

// Surface is the overlay window as seen by the OS integration layer.
type Surface struct {
	adapter  WindowAdapter
	title    string
	key      color.RGBA
	bounds   platform.Rect
	degraded bool
	logger   *slog.Logger

	mu     sync.Mutex
	handle platform.Handle
	closed bool
}

// New sizes the surface to the virtual screen. When the adapter cannot
// report it the surface falls back to the primary monitor at the origin and
// is marked degraded.
func New(adapter WindowAdapter, cfg Config, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Surface{
		adapter: adapter,
		title:   cfg.Title,
		key:     cfg.TransparentKey,
		logger:  logger,
	}

	bounds, err := adapter.VirtualScreen()
	if err != nil || bounds.Empty() {
		s.degraded = true
		if cfg.FallbackSize != nil {
			w, h := cfg.FallbackSize()
			bounds = platform.Rect{Width: w, Height: h}
		}
		logger.Warn("virtual screen unavailable, using primary monitor",
			"error", err, "bounds", bounds.String())
	}
	s.bounds = bounds

	logger.Debug("overlay surface sized", "bounds", bounds.String(), "title", cfg.Title)
	return s
}

// Bounds returns the overlay rectangle in screen coordinates.
func (s *Surface) Bounds() platform.Rect {
	return s.bounds
}

// Offset returns the virtual-screen origin. Subtracting it from a screen
// coordinate yields an overlay-local one.
func (s *Surface) Offset() (x, y int) {
	return s.bounds.X, s.bounds.Y
}

// Degraded reports whether the bounds came from the fallback.
func (s *Surface) Degraded() bool {
	return s.degraded
}

// Attributes returns the window attributes the surface asserts.
func (s *Surface) Attributes() platform.WindowAttributes {
	return platform.OverlayAttributes(s.bounds, s.key)
}

// EnforceAttributes makes the window layered, click-through, tool-styled,
// non-activating and topmost. Failures are returned for logging only.
func (s *Surface) EnforceAttributes() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	h, err := s.resolveLocked()
	if err != nil {
		return err
	}
	if err := s.adapter.ApplyWindowAttributes(h, s.Attributes()); err != nil {
		s.forgetLocked(err)
		return fmt.Errorf("apply window attributes: %w", err)
	}
	return nil
}

// Maintain re-shows the window if it was hidden or minimized, then
// re-asserts z-order and click-through styles. Every step is attempted even
// if an earlier one failed.
func (s *Surface) Maintain() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	h, err := s.resolveLocked()
	if err != nil {
		return err
	}

	var errs error
	if err := s.adapter.ShowWindow(h); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("show window: %w", err))
	}
	if err := s.adapter.ApplyWindowAttributes(h, s.Attributes()); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("apply window attributes: %w", err))
	}
	if errs != nil {
		s.forgetLocked(errs)
	}
	return errs
}

// Handle returns the cached native handle, or 0 if not yet resolved.
func (s *Surface) Handle() platform.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Close marks the surface closed. It does not destroy the native window,
// which belongs to the windowing toolkit.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.handle = 0
	return nil
}

// resolveLocked returns the cached handle or looks the window up by title.
func (s *Surface) resolveLocked() (platform.Handle, error) {
	if s.handle != 0 {
		return s.handle, nil
	}
	h, err := s.adapter.FindWindow(s.title)
	if err != nil {
		return 0, fmt.Errorf("find window %q: %w", s.title, err)
	}
	s.handle = h
	return h, nil
}

// forgetLocked drops a handle the OS no longer recognises so the next call
// looks the window up again.
func (s *Surface) forgetLocked(err error) {
	if errors.Is(err, platform.ErrInvalidHandle) {
		s.handle = 0
	}
}
