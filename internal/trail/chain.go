// Package trail implements the damped-chain model behind the cursor trail
// and the per-frame geometry derived from it.
//
// A Chain is a fixed-length sequence of points. The head is pinned to the
// cursor on every tick; every following node closes a constant fraction of
// the gap to its predecessor. Updates run head to tail, so a single tick
// propagates movement down the whole chain.
package trail

import (
	"errors"
	"fmt"
)

// MinLength is the smallest chain that still produces a segment.
const MinLength = 2

// Errors returned by NewChain.
var (
	ErrChainTooShort   = errors.New("trail: chain length must be at least 2")
	ErrInvalidFriction = errors.New("trail: friction must be in (0, 1)")
)

// Point is a position in overlay-local coordinates.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p * k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Chain is the damped node sequence. It is not safe for concurrent use; the
// owning loop serializes Update and reads.
type Chain struct {
	nodes    []Point
	friction float64
}

// NewChain creates a chain of n nodes, all placed at start.
func NewChain(n int, friction float64, start Point) (*Chain, error) {
	if n < MinLength {
		return nil, fmt.Errorf("%w: got %d", ErrChainTooShort, n)
	}
	if !(friction > 0 && friction < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFriction, friction)
	}

	nodes := make([]Point, n)
	for i := range nodes {
		nodes[i] = start
	}
	return &Chain{nodes: nodes, friction: friction}, nil
}

// Update pins the head to cursor and pulls every other node toward its
// predecessor by the friction fraction. Node i reads node i-1 after it has
// already moved this tick.
func (c *Chain) Update(cursor Point) {
	c.nodes[0] = cursor
	for i := 1; i < len(c.nodes); i++ {
		delta := c.nodes[i-1].Sub(c.nodes[i]).Scale(c.friction)
		c.nodes[i] = c.nodes[i].Add(delta)
	}
}

// Reset places every node at p.
func (c *Chain) Reset(p Point) {
	for i := range c.nodes {
		c.nodes[i] = p
	}
}

// Len returns the number of nodes.
func (c *Chain) Len() int { return len(c.nodes) }

// Friction returns the per-tick gap fraction.
func (c *Chain) Friction() float64 { return c.friction }

// Head returns node 0.
func (c *Chain) Head() Point { return c.nodes[0] }

// Node returns node i. It panics if i is out of range, like a slice index.
func (c *Chain) Node(i int) Point { return c.nodes[i] }

// Nodes returns a copy of the node positions, head first.
func (c *Chain) Nodes() []Point {
	out := make([]Point, len(c.nodes))
	copy(out, c.nodes)
	return out
}
