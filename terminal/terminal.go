package terminal

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// ResizeEvent represents a terminal resize
type ResizeEvent struct {
	Width  int
	Height int
}

// Terminal owns the device lifecycle and the ANSI emitter drawing on it
type Terminal struct {
	device  Device
	emitter *Emitter

	resizeCh      chan ResizeEvent
	cursorVisible atomic.Bool

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// New creates a Terminal on the process's controlling terminal
func New(colorMode ColorMode, mode Mode) *Terminal {
	return NewWithDevice(newDevice(), colorMode, mode)
}

// NewWithDevice creates a Terminal on an arbitrary device
func NewWithDevice(d Device, colorMode ColorMode, mode Mode) *Terminal {
	return &Terminal{
		device:   d,
		emitter:  NewEmitter(d, colorMode, mode),
		resizeCh: make(chan ResizeEvent, 1),
	}
}

// Init enters raw mode, alternate screen and hides the cursor
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	// Initialize device (raw mode)
	if err := t.device.Init(); err != nil {
		return err
	}

	t.device.SetResizeHandler(func(w, h int) {
		// Non-blocking send, latest size wins
		select {
		case t.resizeCh <- ResizeEvent{Width: w, Height: h}:
		default:
			select {
			case <-t.resizeCh:
			default:
			}
			select {
			case t.resizeCh <- ResizeEvent{Width: w, Height: h}:
			default:
			}
		}
	})

	t.device.Write(csiAltScreenEnter)
	t.device.Write(csiCursorHide)

	// DISABLE AUTO-WRAP
	// Prevents terminal scroll/wrap on bottom-right corner write
	t.device.Write(csiAutoWrapOff)
	t.cursorVisible.Store(false)

	w, h := t.device.Size()
	t.emitter.mu.Lock()
	t.emitter.resize(w, h)
	t.emitter.mu.Unlock()
	if err := t.emitter.clear(); err != nil {
		return err
	}

	t.initialized = true
	return nil
}

// Fini restores terminal state. Safe to call multiple times
func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	t.device.Write(csiCursorShow)
	t.device.Write(csiAltScreenExit)

	// Re-enable Auto-Wrap AFTER exiting alt screen to ensure the main buffer has wrap enabled
	t.device.Write(csiAutoWrapOn)
	t.device.Write(csiSGR0)

	t.device.Fini()
	t.finalized = true
}

// Size returns current terminal dimensions
func (t *Terminal) Size() (int, int) {
	return t.device.Size()
}

// ResizeChan returns the resize event channel
func (t *Terminal) ResizeChan() <-chan ResizeEvent {
	return t.resizeCh
}

// Emitter returns the backend drawing on this terminal
func (t *Terminal) Emitter() *Emitter {
	return t.emitter
}

// ColorMode returns the configured color capability
func (t *Terminal) ColorMode() ColorMode {
	return t.emitter.colorMode
}

// SetCursorVisible shows or hides the cursor
func (t *Terminal) SetCursorVisible(visible bool) {
	if t.cursorVisible.Swap(visible) == visible {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}
	if visible {
		t.device.Write(csiCursorShow)
	} else {
		t.device.Write(csiCursorHide)
	}
}

// Sync clears the screen and forgets the emitter's view of it, so the next
// frame must redraw everything
func (t *Terminal) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}
	// Diff-based rendering assumes physical terminal matches front buffer state
	return t.emitter.clear()
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
