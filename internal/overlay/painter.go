package overlay

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"

	"cursortrail/internal/trail"
)

// Canvas is a drawing target in overlay-local pixels.
type Canvas interface {
	// Clear resets every pixel to the transparent background.
	Clear()

	// StrokeLine draws a butt-capped line of the given width.
	StrokeLine(x0, y0, x1, y1, width float32, clr color.Color)

	// FillCircle draws a filled disc.
	FillCircle(cx, cy, r float32, clr color.Color)
}

// Painter draws frames onto a canvas. A draw call that panics is skipped
// and counted; the rest of the frame is still painted.
type Painter struct {
	logger  *slog.Logger
	skipped atomic.Uint64
	painted atomic.Uint64
}

// NewPainter returns a painter. A nil logger uses slog.Default.
func NewPainter(logger *slog.Logger) *Painter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Painter{logger: logger}
}

// Paint clears c and draws f: each segment as a stroke with round caps
// (discs of radius width/2 at both ends), then the head disc on top. It
// returns the number of draw calls that were skipped.
func (p *Painter) Paint(c Canvas, f *trail.Frame) (skipped int) {
	if !p.draw(func() { c.Clear() }) {
		skipped++
	}
	if f == nil {
		return skipped
	}

	clr := f.Color
	for i := range f.Segments {
		seg := &f.Segments[i]
		w := float32(seg.Width)
		r := w / 2
		x0, y0 := float32(seg.From.X), float32(seg.From.Y)
		x1, y1 := float32(seg.To.X), float32(seg.To.Y)

		if !p.draw(func() { c.StrokeLine(x0, y0, x1, y1, w, clr) }) {
			skipped++
		}
		if !p.draw(func() { c.FillCircle(x0, y0, r, clr) }) {
			skipped++
		}
		if !p.draw(func() { c.FillCircle(x1, y1, r, clr) }) {
			skipped++
		}
	}

	head := f.Head
	if !p.draw(func() {
		c.FillCircle(float32(head.Center.X), float32(head.Center.Y), float32(head.Radius), clr)
	}) {
		skipped++
	}

	p.painted.Add(1)
	return skipped
}

// draw runs one primitive and reports whether it completed.
func (p *Painter) draw(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if p.skipped.Add(1) == 1 {
				p.logger.Warn("draw call failed, skipping", "panic", fmt.Sprint(r))
			} else {
				p.logger.Debug("draw call failed, skipping", "panic", fmt.Sprint(r))
			}
		}
	}()
	fn()
	return true
}

// Skipped returns the total number of draw calls skipped.
func (p *Painter) Skipped() uint64 {
	return p.skipped.Load()
}

// Painted returns the number of frames painted.
func (p *Painter) Painted() uint64 {
	return p.painted.Load()
}
