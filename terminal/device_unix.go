//go:build unix

package terminal

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by Init when stdin is not a terminal
var ErrNotTerminal = errors.New("stdin is not a terminal")

type unixDevice struct {
	in      *os.File
	out     *os.File
	inFd    int
	outFd   int
	oldTerm *term.State

	resizeStopCh chan struct{}
	resizeDoneCh chan struct{}
}

func newDevice() Device {
	return &unixDevice{
		in:    os.Stdin,
		out:   os.Stdout,
		inFd:  int(os.Stdin.Fd()),
		outFd: int(os.Stdout.Fd()),
	}
}

func (d *unixDevice) Init() error {
	if !term.IsTerminal(d.inFd) {
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(d.inFd)
	if err != nil {
		return err
	}
	d.oldTerm = old
	return nil
}

func (d *unixDevice) Fini() {
	if d.resizeStopCh != nil {
		close(d.resizeStopCh)
		<-d.resizeDoneCh
		d.resizeStopCh = nil
	}
	if d.oldTerm != nil {
		term.Restore(d.inFd, d.oldTerm)
		d.oldTerm = nil
	}
}

func (d *unixDevice) Size() (int, int) {
	return getTerminalSize(d.outFd)
}

func (d *unixDevice) Write(p []byte) (int, error) {
	return d.out.Write(p)
}

func (d *unixDevice) SetResizeHandler(handler func(width, height int)) {
	d.resizeStopCh = make(chan struct{})
	d.resizeDoneCh = make(chan struct{})

	go func() {
		defer close(d.resizeDoneCh)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGWINCH)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-d.resizeStopCh:
				return
			case <-sigCh:
				w, h := d.Size()
				if w > 0 && h > 0 {
					handler(w, h)
				}
			}
		}
	}()
}

// getTerminalSize returns the terminal size for a given fd
func getTerminalSize(fd int) (int, int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 80, 24 // Fallback
	}
	return int(ws.Col), int(ws.Row)
}
