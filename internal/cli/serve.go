package cli

import (
	"context"
	"fmt"
	"os"

	httpAdapter "github.com/aretw0/arttic/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/arttic/pkg/adapters/mcp"
)

// RunServe runs the session behind the introspection HTTP server.
func RunServe(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	app, err := Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("error initializing session: %w", err)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if err := app.Session.Start(sigCtx); err != nil {
		logger.Warn("bootstrap failed", "err", err)
	}
	defer app.Session.Close()

	handlerOpts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
	if app.Registry != nil {
		handlerOpts = append(handlerOpts, httpAdapter.WithGatherer(app.Registry))
	}
	printSystemMessage(os.Stderr, "Serving on %s", cfg.Introspection.Addr)
	err = httpAdapter.Serve(sigCtx, cfg.Introspection.Addr, httpAdapter.NewHandler(sigCtx, app.Session, handlerOpts...), logger)
	return handleExecutionError(err)
}

// MCPOptions selects the MCP transport.
type MCPOptions struct {
	RunOptions
	Transport string
	Port      int
}

// RunMCP exposes the session intents as MCP tools over stdio or SSE.
func RunMCP(opts MCPOptions) error {
	logger := createLogger(opts.Debug)
	cfg, err := loadConfig(opts.RunOptions)
	if err != nil {
		return err
	}
	app, err := Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("error initializing session: %w", err)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if err := app.Session.Start(sigCtx); err != nil {
		logger.Warn("bootstrap failed", "err", err)
	}
	defer app.Session.Close()

	srv := mcpAdapter.NewServer(app.Session, mcpAdapter.WithLogger(logger))
	switch opts.Transport {
	case "stdio", "":
		return srv.ServeStdio()
	case "sse":
		return handleExecutionError(srv.ServeSSE(sigCtx, opts.Port))
	}
	return fmt.Errorf("unknown transport %q (use stdio or sse)", opts.Transport)
}
