package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// RunSession runs the interactive terminal UI until the user quits or a
// signal arrives.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	app, err := Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("error initializing session: %w", err)
	}

	tui.PrintBanner(os.Stdout, arttic.Version)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	// A failed bootstrap is retried on every reconnect; the UI starts anyway.
	if err := app.Session.Start(sigCtx); err != nil {
		logger.Warn("bootstrap failed", "err", err)
	}
	defer app.Session.Close()

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	model := tui.New(sigCtx, app.Session, tui.WithRenderer(tui.NewRenderer(max(width/2, 40))))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(sigCtx))

	_, runErr := program.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && sigCtx.Err() != nil {
		runErr = sigCtx.Err()
	}
	logCompletion(os.Stdout, sigCtx.Signal())
	return handleExecutionError(runErr)
}
