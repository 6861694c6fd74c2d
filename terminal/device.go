package terminal

// Device abstracts the platform side of a terminal: raw mode, size queries,
// byte output and resize notification
type Device interface {
	// Lifecycle
	Init() error
	Fini()

	// Size returns the current dimensions in cells
	Size() (width, height int)

	// Write writes raw bytes to the terminal output
	Write(p []byte) (int, error)

	// SetResizeHandler registers a callback for terminal resize events
	SetResizeHandler(handler func(width, height int))
}
