//go:build !headless

package ebitenwin

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Canvas draws onto an Ebiten image with antialiasing.
type Canvas struct {
	dst       *ebiten.Image
	antialias bool
}

// NewCanvas wraps dst.
func NewCanvas(dst *ebiten.Image) *Canvas {
	return &Canvas{dst: dst, antialias: true}
}

// Clear resets dst to fully transparent.
func (c *Canvas) Clear() {
	c.dst.Clear()
}

// StrokeLine draws a line segment.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, width float32, clr color.Color) {
	vector.StrokeLine(c.dst, x0, y0, x1, y1, width, clr, c.antialias)
}

// FillCircle draws a filled disc.
func (c *Canvas) FillCircle(cx, cy, r float32, clr color.Color) {
	vector.DrawFilledCircle(c.dst, cx, cy, r, clr, c.antialias)
}

// Available reports whether this build can open a window.
const Available = true

// Game adapts the scheduler and painter to ebiten.Game.
type Game struct {
	ctx     context.Context
	opts    Options
	canvas  *Canvas
	stopped bool
	failed  error
}

// NewGame returns the ebiten.Game for opts. The loop ends on the first
// Update after ctx is done.
func NewGame(ctx context.Context, opts Options) (*Game, error) {
	if err := opts.validate(ctx); err != nil {
		return nil, err
	}
	return &Game{ctx: ctx, opts: opts, canvas: NewCanvas(nil)}, nil
}

// Update advances one step and runs every due task. Returning
// ebiten.Termination stops the loop without an error.
func (g *Game) Update() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = g.panicked(r)
		}
	}()

	if g.failed != nil {
		return g.failed
	}
	if g.ctx.Err() != nil {
		g.stop()
		return ebiten.Termination
	}
	if g.opts.Step != nil {
		g.opts.Step()
	}
	s := g.opts.Scheduler
	s.Poll(s.Clock().Now())
	return nil
}

// Draw paints the latest frame. A panic here ends the loop on the next
// Update.
func (g *Game) Draw(screen *ebiten.Image) {
	defer func() {
		if r := recover(); r != nil {
			g.failed = g.panicked(r)
		}
	}()

	g.canvas.dst = screen
	skipped := g.opts.Painter.Paint(g.canvas, g.opts.Frame())
	if g.opts.OnPaint != nil {
		g.opts.OnPaint(skipped)
	}
}

func (g *Game) panicked(r any) error {
	if g.opts.OnPanic != nil {
		g.opts.OnPanic(r)
	}
	g.stop()
	return fmt.Errorf("%w: %v", ErrPanicked, r)
}

// stop runs OnStop at most once.
func (g *Game) stop() {
	if g.stopped {
		return
	}
	g.stopped = true
	if g.opts.OnStop != nil {
		g.opts.OnStop()
	}
}

// Layout keeps one screen pixel per physical pixel regardless of the
// window's device-independent size.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.opts.Bounds.Width, g.opts.Bounds.Height
}

// deviceScale returns the current monitor scale factor, 1 if unknown.
func deviceScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		if s := m.DeviceScaleFactor(); s > 0 {
			return s
		}
	}
	return 1
}

// FallbackSize reports the primary monitor size in physical pixels.
func FallbackSize() (width, height int) {
	m := ebiten.Monitor()
	if m == nil {
		return 0, 0
	}
	w, h := m.Size()
	s := deviceScale()
	return int(float64(w) * s), int(float64(h) * s)
}

// configure applies the window flags. Ebiten positions and sizes windows in
// device-independent pixels, so physical bounds are divided by the scale.
func configure(opts Options) {
	s := deviceScale()
	b := opts.Bounds

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowMousePassthrough(true)
	ebiten.SetWindowPosition(int(float64(b.X)/s), int(float64(b.Y)/s))
	ebiten.SetWindowSize(int(float64(b.Width)/s), int(float64(b.Height)/s))
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetTPS(TPS(opts.Tick))
}

// Run opens the overlay window and blocks until ctx is done or the loop
// fails. It must be called from the main goroutine.
func Run(ctx context.Context, opts Options) error {
	g, err := NewGame(ctx, opts)
	if err != nil {
		return err
	}
	configure(opts)
	return ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		InitUnfocused:     true,
		SkipTaskbar:       true,
	})
}
