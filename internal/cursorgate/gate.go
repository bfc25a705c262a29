// Package cursorgate hides and restores the system-wide mouse cursor.
//
// The gate owns the "cursor hidden" state for the process. It is created
// once at startup and must be opened again (Show) on every exit path; the
// OS does not restore the cursor scheme when the process dies.
package cursorgate

import (
	"log/slog"
	"sync"

	"cursortrail/internal/platform"
)

// Cursors is the subset of platform.Adapter the gate drives.
type Cursors interface {
	InstallBlankCursors(shapes []platform.CursorShape) error
	RestoreCursors() error
}

// Gate tracks whether the system cursor is currently replaced by a blank
// glyph. All methods are safe for concurrent use, so a signal watchdog can
// restore the cursor while the UI goroutine is stuck.
type Gate struct {
	mu      sync.Mutex
	cursors Cursors
	shapes  []platform.CursorShape
	hidden  bool
	sealed  bool
	logger  *slog.Logger
}

// New returns a visible gate over cursors. A nil logger uses slog.Default.
func New(cursors Cursors, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		cursors: cursors,
		shapes:  platform.CursorShapes,
		logger:  logger,
	}
}

// Hide installs a transparent cursor for every standard shape. Calling Hide
// on a hidden or restored gate does nothing. OS failures are logged and the
// gate is considered hidden anyway, so Show will still attempt a restore.
func (g *Gate) Hide() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hidden || g.sealed {
		return
	}
	g.hidden = true

	if err := g.cursors.InstallBlankCursors(g.shapes); err != nil {
		g.logger.Debug("install blank cursors", "error", err, "shapes", len(g.shapes))
		return
	}
	g.logger.Debug("system cursor hidden", "shapes", len(g.shapes))
}

// Show asks the OS to reload its default cursor scheme. Calling Show on a
// visible gate does nothing.
func (g *Gate) Show() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.show()
}

// Restore shows the cursor and keeps it shown: later Hide calls do nothing.
func (g *Gate) Restore() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sealed = true
	g.show()
}

func (g *Gate) show() {
	if !g.hidden {
		return
	}
	g.hidden = false

	if err := g.cursors.RestoreCursors(); err != nil {
		g.logger.Debug("restore system cursors", "error", err)
		return
	}
	g.logger.Debug("system cursor restored")
}

// Hidden reports the logical state of the gate.
func (g *Gate) Hidden() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hidden
}
