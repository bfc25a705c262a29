package trail

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var black = color.RGBA{A: 0xff}

func TestStyle_Width(t *testing.T) {
	s := Style{StartWidth: 16, MinWidth: 0.5}

	assert.Equal(t, 16.0, s.Width(0, 35))
	assert.InDelta(t, 8.0, s.Width(17, 35), 1e-9)
	assert.Equal(t, 0.5, s.Width(34, 35))
	assert.Equal(t, 0.5, s.Width(0, 1))
}

func TestStyle_WidthMonotoneWithFloor(t *testing.T) {
	s := Style{StartWidth: 16, MinWidth: 0.5}
	const n = 35

	prev := s.Width(0, n)
	for i := 0; i <= n-2; i++ {
		w := s.Width(i, n)
		assert.LessOrEqual(t, w, prev, "segment %d widened", i)
		assert.GreaterOrEqual(t, w, s.MinWidth, "segment %d below floor", i)
		prev = w
	}
}

func TestBuildFrame(t *testing.T) {
	c, err := NewChain(3, 0.5, Point{})
	require.NoError(t, err)
	c.Update(Point{X: 100})

	s := Style{StartWidth: 16, MinWidth: 0.5, Color: black}
	var f Frame
	BuildFrame(c, s, &f)

	require.Len(t, f.Segments, 2)
	assert.Equal(t, Segment{From: Point{X: 100}, To: Point{X: 50}, Width: 16}, f.Segments[0])
	assert.Equal(t, Segment{From: Point{X: 50}, To: Point{X: 25}, Width: 8}, f.Segments[1])
	assert.Equal(t, Head{Center: Point{X: 100}, Radius: 8}, f.Head)
	assert.Equal(t, black, f.Color)
}

func TestBuildFrame_ReusesSegments(t *testing.T) {
	c, err := NewChain(35, 0.6, Point{})
	require.NoError(t, err)

	s := Style{StartWidth: 16, MinWidth: 0.5, Color: black}
	var f Frame
	BuildFrame(c, s, &f)
	first := &f.Segments[0]

	c.Update(Point{X: 10, Y: 10})
	BuildFrame(c, s, &f)

	assert.Len(t, f.Segments, 34)
	assert.Same(t, first, &f.Segments[0])
	assert.Equal(t, Point{X: 10, Y: 10}, f.Segments[0].From)
}
