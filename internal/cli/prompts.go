package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/arttic/internal/validator"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/ports"
)

// promptTimeout bounds each prompt library request.
const promptTimeout = 10 * time.Second

// PromptCommand is one prompt library operation.
type PromptCommand struct {
	Op       string
	Title    string
	NewTitle string
	Prompt   domain.Prompt
}

// RunPrompts executes a prompt library operation against the backend.
func RunPrompts(opts RunOptions, cmd PromptCommand, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	app, err := Build(cfg, createLogger(opts.Debug))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), promptTimeout)
	defer cancel()
	return runPrompt(ctx, app.API, cmd, w)
}

func runPrompt(ctx context.Context, api ports.BackendAPI, cmd PromptCommand, w io.Writer) error {
	switch cmd.Op {
	case "list":
		prompts, err := api.Prompts(ctx)
		if err != nil {
			return err
		}
		for _, p := range prompts {
			fmt.Fprintf(w, "%s\n  + %s\n", p.Title, p.Prompt)
			if p.NegativePrompt != "" {
				fmt.Fprintf(w, "  - %s\n", p.NegativePrompt)
			}
		}
		return nil
	case "add":
		if err := validator.Struct(cmd.Prompt); err != nil {
			return err
		}
		if err := api.SavePrompt(ctx, cmd.Prompt); err != nil {
			return err
		}
		printSystemMessage(w, "Saved %q.", cmd.Prompt.Title)
		return nil
	case "update":
		if err := validator.Struct(domain.Prompt{Title: cmd.NewTitle}); err != nil {
			return err
		}
		if err := api.RenamePrompt(ctx, cmd.Title, cmd.NewTitle); err != nil {
			return err
		}
		printSystemMessage(w, "Renamed %q to %q.", cmd.Title, cmd.NewTitle)
		return nil
	case "delete":
		if err := api.DeletePrompt(ctx, cmd.Title); err != nil {
			return err
		}
		printSystemMessage(w, "Deleted %q.", cmd.Title)
		return nil
	}
	return fmt.Errorf("unknown prompt operation %q", cmd.Op)
}
