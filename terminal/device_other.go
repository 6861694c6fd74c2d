//go:build !unix

package terminal

import (
	"errors"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by Init when stdin is not a terminal
var ErrNotTerminal = errors.New("stdin is not a terminal")

type fallbackDevice struct {
	oldTerm *term.State
}

func newDevice() Device {
	return &fallbackDevice{}
}

func (d *fallbackDevice) Init() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	d.oldTerm = old
	return nil
}

func (d *fallbackDevice) Fini() {
	if d.oldTerm != nil {
		term.Restore(int(os.Stdin.Fd()), d.oldTerm)
		d.oldTerm = nil
	}
}

func (d *fallbackDevice) Size() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

func (d *fallbackDevice) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

// SetResizeHandler is a no-op; callers poll Size each frame
func (d *fallbackDevice) SetResizeHandler(func(width, height int)) {}
