// Package ebitenwin hosts the overlay in an Ebiten window: transparent,
// undecorated, floating, mouse-passthrough and sized to the virtual screen.
//
// Build with -tags headless to drop the Ebiten dependency; Run then
// returns ErrNoWindow.
package ebitenwin

import (
	"context"
	"errors"
	"time"

	"cursortrail/internal/overlay"
	"cursortrail/internal/platform"
	"cursortrail/internal/schedule"
	"cursortrail/internal/trail"
)

var (
	// ErrNoWindow is returned by Run in builds without a window backend.
	ErrNoWindow = errors.New("ebitenwin: built without a window backend")

	// ErrPanicked ends the loop after a panic in Update or Draw.
	ErrPanicked = errors.New("ebitenwin: panic in frame loop")
)

// Options configures the overlay window and its frame loop.
type Options struct {
	// Title is the window title; the platform adapter finds the native
	// window by it.
	Title string

	// Bounds is the overlay rectangle in physical screen pixels.
	Bounds platform.Rect

	// Tick is the physics period. The loop runs Update at 1/Tick.
	Tick time.Duration

	// Step runs once per Update, before the scheduler is polled. Ebiten
	// catches up missed ticks by running Update back to back, so a task on
	// the wall-clock scheduler would only fire once per frame.
	Step func()

	// Scheduler is polled on every Update.
	Scheduler *schedule.Scheduler

	// Frame returns the latest geometry to paint.
	Frame func() *trail.Frame

	// Painter draws the frame.
	Painter *overlay.Painter

	// OnPaint is called after every painted frame with the skipped draw count.
	OnPaint func(skipped int)

	// OnStop runs once on the loop goroutine before the window is torn
	// down, whether the loop ends by cancellation or by a panic.
	OnStop func()

	// OnPanic receives a value recovered from Update or Draw. Ebiten runs
	// them off the main goroutine, where a panic would kill the process
	// without unwinding main.
	OnPanic func(v any)
}

// TPS converts a tick period to Ebiten ticks per second, at least 1.
func TPS(tick time.Duration) int {
	if tick <= 0 {
		return 60
	}
	tps := int((time.Second + tick/2) / tick)
	if tps < 1 {
		tps = 1
	}
	return tps
}

// validate checks the options needed by Run.
func (o *Options) validate(ctx context.Context) error {
	switch {
	case ctx == nil:
		return errors.New("ebitenwin: nil context")
	case o.Scheduler == nil:
		return errors.New("ebitenwin: nil scheduler")
	case o.Frame == nil:
		return errors.New("ebitenwin: nil frame source")
	case o.Painter == nil:
		return errors.New("ebitenwin: nil painter")
	case o.Bounds.Empty():
		return errors.New("ebitenwin: empty bounds")
	}
	return nil
}
