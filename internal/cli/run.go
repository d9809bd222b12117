package cli

import (
	"os"

	"golang.org/x/term"
)

// RunOptions carries the flags shared by the commands.
type RunOptions struct {
	ConfigPath string
	BackendURL string
	Addr       string
	Debug      bool
	Headless   bool
	Metrics    bool
}

// Execute runs the terminal UI, or watch mode when headless is requested or
// stdout is not a terminal.
func Execute(opts RunOptions) error {
	if opts.Headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		return RunWatch(opts, os.Stdout)
	}
	return RunSession(opts)
}
