package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cellforge/backend"
	"github.com/lixenwraith/cellforge/parameter"
	"github.com/lixenwraith/cellforge/render"
	"github.com/lixenwraith/cellforge/shape"
	"github.com/lixenwraith/cellforge/terminal"
)

var (
	colorModeFlag = flag.String("color", "auto", "Color mode: auto, truecolor, 256")
	fpsFlag       = flag.Int("fps", parameter.DefaultFPS, "Frames per second")
	durationFlag  = flag.Duration("duration", 0, "Stop after this long (0 runs until q or Ctrl-C)")
	naiveFlag     = flag.Bool("naive", false, "Position and style every cell instead of diffing")
	strictFlag    = flag.Bool("strict", false, "Report out-of-range shape access as errors")
	htmlFlag      = flag.String("html", "", "Write one frame as an HTML document to this file instead of the terminal")
	logFlag       = flag.String("log", "", "Write debug logs to this file")
	tcellFlag     = flag.Bool("tcell", false, "Draw through a tcell screen instead of the built-in emitter")
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the demo crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\n\x1b[31mCELLFORGE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	logFile, err := setupLogging(*logFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	shape.SetStrict(*strictFlag)

	if *htmlFlag != "" {
		if err := writeHTML(*htmlFlag); err != nil {
			fmt.Fprintf(os.Stderr, "HTML export failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	colorMode, err := terminal.ParseColorMode(*colorModeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	mode := terminal.ModeDiff
	if *naiveFlag {
		mode = terminal.ModeNaive
	}

	fps := max(*fpsFlag, 1)
	if *tcellFlag {
		err = runTcell(fps, *durationFlag)
	} else {
		err = run(colorMode, mode, fps, *durationFlag)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// setupLogging routes render logs to path. An empty path keeps logging off;
// the terminal being drawn on is never a log target
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		render.SetLogger(nil)
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	render.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f, nil
}

// writeHTML renders the first frame of the demo scene into an HTML file
func writeHTML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := renderHTML(f, parameter.DemoWidth, parameter.DemoHeight); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderHTML(w io.Writer, width, height int) error {
	sc, err := newScene(width, height)
	if err != nil {
		return err
	}
	r := render.NewRenderer(sc.comp, backend.NewHTML(w), nil)
	r.Register(sc, render.PriorityAnimation)
	return r.RenderFrame(context.Background())
}

func run(colorMode terminal.ColorMode, mode terminal.Mode, fps int, duration time.Duration) error {
	term := terminal.New(colorMode, mode)
	if err := term.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	// Normal exit terminal cleanup
	defer term.Fini()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, duration)
		defer stop()
	}

	// Raw mode swallows SIGINT, so quit keys are read directly
	go func() {
		defer func() {
			if r := recover(); r != nil {
				terminal.EmergencyReset(os.Stdout)
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT READER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()
		watchQuit(os.Stdin, cancel)
	}()

	w, h := term.Size()
	sc, err := newScene(w, h)
	if err != nil {
		return err
	}
	r := render.NewRenderer(sc.comp, term.Emitter(), term.Size)
	r.Register(sc, render.PriorityAnimation)

	log := render.Logger()
	log.Info("demo started",
		slog.Int("width", w), slog.Int("height", h),
		slog.String("color", colorMode.String()), slog.Int("fps", fps))

	frameTicker := time.NewTicker(time.Second / time.Duration(fps))
	defer frameTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("demo stopped", slog.Any("stats", r.Stats()))
			return nil

		case ev := <-term.ResizeChan():
			if err := sc.Resize(ev.Width, ev.Height); err != nil {
				log.Warn("resize failed", slog.Any("err", err))
			}
			if err := term.Sync(); err != nil {
				log.Warn("sync failed", slog.Any("err", err))
			}
			r.FullRedraw()

		case <-frameTicker.C:
			err := r.RenderFrame(ctx)
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			case errors.Is(err, render.ErrSizeMismatch):
				// a resize event is on its way
			default:
				log.Warn("frame dropped", slog.Any("err", err))
			}
		}
	}
}

// watchQuit calls quit when q, Esc or Ctrl-C arrives on r
func watchQuit(r io.Reader, quit func()) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			switch b {
			case 'q', 0x03, 0x1b:
				quit()
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// runTcell drives the same scene through tcell, which owns raw mode, resize
// and input
func runTcell(fps int, duration time.Duration) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, duration)
		defer stop()
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	w, h := screen.Size()
	sc, err := newScene(w, h)
	if err != nil {
		return err
	}
	r := render.NewRenderer(sc.comp, backend.NewScreen(screen), screen.Size)
	r.Register(sc, render.PriorityAnimation)

	log := render.Logger()
	log.Info("demo started", slog.Int("width", w), slog.Int("height", h), slog.Bool("tcell", true))

	frameTicker := time.NewTicker(time.Second / time.Duration(fps))
	defer frameTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("demo stopped", slog.Any("stats", r.Stats()))
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				if err := sc.Resize(ev.Size()); err != nil {
					log.Warn("resize failed", slog.Any("err", err))
				}
				screen.Sync()
				r.FullRedraw()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					cancel()
				}
			}

		case <-frameTicker.C:
			if err := r.RenderFrame(ctx); err != nil && !errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, render.ErrSizeMismatch) {
				log.Warn("frame dropped", slog.Any("err", err))
			}
		}
	}
}
