package trail

import (
	"image/color"
)

// Style holds the fixed visual parameters of the trail.
type Style struct {
	// StartWidth is the width of the segment touching the head. The head
	// marker radius is half of it.
	StartWidth float64

	// MinWidth is the floor applied to tapered widths so tail segments stay
	// visible.
	MinWidth float64

	// Color is used for every segment and the head marker.
	Color color.RGBA
}

// Width returns the render width of segment i in a chain of n nodes.
// Widths taper linearly from StartWidth at i=0 and never drop below MinWidth.
func (s Style) Width(i, n int) float64 {
	segments := n - 1
	if segments <= 0 {
		return s.MinWidth
	}
	w := s.StartWidth * (1 - float64(i)/float64(segments))
	if w < s.MinWidth {
		w = s.MinWidth
	}
	return w
}

// Segment is one stroke between adjacent nodes.
type Segment struct {
	From, To Point
	Width    float64
}

// Head is the filled disc drawn over node 0.
type Head struct {
	Center Point
	Radius float64
}

// Frame is the complete geometry for one paint.
type Frame struct {
	Segments []Segment
	Head     Head
	Color    color.RGBA
}

// BuildFrame recomputes every primitive from the chain into dst. The segment
// slice is reused across calls since the primitive count never changes.
func BuildFrame(c *Chain, s Style, dst *Frame) {
	n := c.Len()
	if cap(dst.Segments) < n-1 {
		dst.Segments = make([]Segment, n-1)
	}
	dst.Segments = dst.Segments[:n-1]

	for i := 0; i < n-1; i++ {
		dst.Segments[i] = Segment{
			From:  c.nodes[i],
			To:    c.nodes[i+1],
			Width: s.Width(i, n),
		}
	}
	dst.Head = Head{Center: c.nodes[0], Radius: s.StartWidth / 2}
	dst.Color = s.Color
}
