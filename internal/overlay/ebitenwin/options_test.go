package ebitenwin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cursortrail/internal/overlay"
	"cursortrail/internal/platform"
	"cursortrail/internal/schedule"
	"cursortrail/internal/trail"
)

func TestTPS(t *testing.T) {
	tests := []struct {
		tick time.Duration
		want int
	}{
		{2 * time.Millisecond, 500},
		{time.Millisecond, 1000},
		{16 * time.Millisecond, 63},
		{time.Second, 1},
		{5 * time.Second, 1},
		{0, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TPS(tt.tick), "tick %v", tt.tick)
	}
}

func validOptions() Options {
	return Options{
		Title:     "overlay",
		Bounds:    platform.Rect{Width: 640, Height: 480},
		Tick:      2 * time.Millisecond,
		Scheduler: schedule.New(schedule.NewManualClock(time.Unix(0, 0))),
		Frame:     func() *trail.Frame { return nil },
		Painter:   overlay.NewPainter(nil),
	}
}

func TestOptionsValidate(t *testing.T) {
	o := validOptions()
	assert.NoError(t, o.validate(context.Background()))

	//nolint:staticcheck // nil context is the case under test
	assert.Error(t, o.validate(nil))

	noSched := validOptions()
	noSched.Scheduler = nil
	assert.Error(t, noSched.validate(context.Background()))

	noFrame := validOptions()
	noFrame.Frame = nil
	assert.Error(t, noFrame.validate(context.Background()))

	noPainter := validOptions()
	noPainter.Painter = nil
	assert.Error(t, noPainter.validate(context.Background()))

	empty := validOptions()
	empty.Bounds = platform.Rect{Width: 640}
	assert.Error(t, empty.validate(context.Background()))
}
