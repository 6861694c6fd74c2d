package parameter

// Dirty tracking
const (
	// DirtyTileSize is the edge length in cells of one dirty tile
	DirtyTileSize = 8
)

// Shape storage
const (
	// UndoDepth is the maximum number of undo groups retained per FullShape
	UndoDepth = 100

	// PaletteFirstFree is the first index handed out when a pixel is added to a palette
	PaletteFirstFree = 1
)

// Output
const (
	// OutputBufferSize is the initial capacity of the in-memory frame buffer
	OutputBufferSize = 128 * 1024

	// DefaultFPS is the frame rate of the demo loop
	DefaultFPS = 30
)

// Demo
const (
	// DemoWidth and DemoHeight size the scene when no terminal is attached
	DemoWidth  = 80
	DemoHeight = 24

	// DemoSpinnerCycle is the number of ticks each spinner frame stays visible
	DemoSpinnerCycle = 3

	// DemoFlashPeriod is the banner blink half-period in ticks
	DemoFlashPeriod = 15
)
