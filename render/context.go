package render

import (
	"time"
)

// RenderContext provides frame state for hooks, passed by value
type RenderContext struct {
	// Frame counter, the same value the root sees through SetTick
	Tick uint64

	// Time state
	FrameTime time.Time
	DeltaTime time.Duration

	// Root dimensions
	Width  int
	Height int

	// FullRedraw is set when every cell is about to be rewritten
	FullRedraw bool
}

// InBounds checks if a coordinate lies on the root
func (rc *RenderContext) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < rc.Width && y < rc.Height
}

// Center returns the middle cell of the root
func (rc *RenderContext) Center() (int, int) {
	return rc.Width / 2, rc.Height / 2
}
