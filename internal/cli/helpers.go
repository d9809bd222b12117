package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/arttic/internal/config"
	"github.com/aretw0/arttic/internal/logging"
	"github.com/muesli/termenv"
)

// SignalContext is a context cancelled on SIGINT or SIGTERM that remembers
// which signal arrived.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}
	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sc.sigCh)
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger returns a stderr debug logger, or a no-op one so the
// terminal UI keeps the screen.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// loadConfig reads the config file and applies flag overrides. An explicit
// path must exist.
func loadConfig(opts RunOptions) (config.Config, error) {
	path := opts.ConfigPath
	required := path != ""
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return config.Config{}, err
	}
	if opts.BackendURL != "" {
		cfg.BackendURL = opts.BackendURL
	}
	if opts.Addr != "" {
		cfg.Introspection.Addr = opts.Addr
	}
	if opts.Metrics {
		cfg.Metrics = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// printSystemMessage prints a standardized system line.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// statusLine colors a message by severity for headless output.
func statusLine(out *termenv.Output, kind, message string) termenv.Style {
	p := out.ColorProfile()
	s := out.String(fmt.Sprintf("[%s] %s", kind, message))
	switch kind {
	case "error":
		return s.Foreground(p.Color("#ef4444"))
	case "success":
		return s.Foreground(p.Color("#22c55e"))
	case "progress":
		return s.Foreground(p.Color("#f59e0b"))
	}
	return s.Foreground(p.Color("#60a5fa"))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

func logCompletion(w io.Writer, sig os.Signal) {
	switch sig {
	case nil:
		printSystemMessage(w, "Session closed.")
	case os.Interrupt:
		printSystemMessage(w, "Interrupted.")
	default:
		printSystemMessage(w, "Terminated.")
	}
}
