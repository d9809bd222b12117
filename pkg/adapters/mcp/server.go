// Package mcp exposes a running session as Model Context Protocol tools, so
// an agent can load models, tune parameters and generate images.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const stateURI = "arttic://state"

// Session is the part of arttic.Session the tools drive.
type Session interface {
	Status() arttic.Status
	LoadModel() error
	UnloadModel() error
	Generate() error
	SetParams(domain.Params) error
	ApplyAspectRatio(domain.AspectRatio) error
	RandomizeSeed() (int64, error)
}

// Server wraps a Session and exposes it as an MCP server.
type Server struct {
	session   Session
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP server instance.
func NewServer(sess Session, opts ...Option) *Server {
	s := &Server{
		session:   sess,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("arttic-mcp", strings.TrimSpace(arttic.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the session state: connection, loaded model, parameters, notices and dialogs."),
		mcp.WithOutputSchema[arttic.Status](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("load_model",
		mcp.WithDescription("Load a model on the backend. Progress and completion are reflected in get_state."),
		mcp.WithString("model_name", mcp.Description("Model to load (defaults to the current selection)")),
		mcp.WithString("scheduler_name", mcp.Description("Sampler to use")),
		mcp.WithOutputSchema[arttic.Status](),
	), mcp.NewStructuredToolHandler(s.handleLoadModel))

	s.mcpServer.AddTool(mcp.NewTool("unload_model",
		mcp.WithDescription("Unload the current model."),
		mcp.WithOutputSchema[arttic.Status](),
	), mcp.NewStructuredToolHandler(s.handleUnloadModel))

	s.mcpServer.AddTool(mcp.NewTool("generate_image",
		mcp.WithDescription("Generate one image with the current parameters. Given arguments are applied first."),
		mcp.WithString("prompt", mcp.Description("Positive prompt")),
		mcp.WithString("negative_prompt", mcp.Description("Negative prompt")),
		mcp.WithNumber("steps", mcp.Description("Inference steps")),
		mcp.WithNumber("guidance", mcp.Description("Guidance scale")),
		mcp.WithNumber("seed", mcp.Description("Seed in [0, 2^32)")),
		mcp.WithNumber("width", mcp.Description("Width in pixels")),
		mcp.WithNumber("height", mcp.Description("Height in pixels")),
		mcp.WithOutputSchema[arttic.Status](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("set_param",
		mcp.WithDescription("Set one session parameter. Numbers and booleans are given as JSON; text and base64 images are taken verbatim."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Parameter name, e.g. steps or lora_name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Value, e.g. 30, true, a cat, or a data URL")),
		mcp.WithOutputSchema[arttic.Status](),
	), mcp.NewStructuredToolHandler(s.handleSetParam))

	s.mcpServer.AddTool(mcp.NewTool("apply_aspect_ratio",
		mcp.WithDescription("Set width and height from the preset of the loaded model type."),
		mcp.WithString("ratio", mcp.Required(), mcp.Description("One of 1:1, 4:3, 3:2, 16:9")),
		mcp.WithOutputSchema[arttic.Status](),
	), mcp.NewStructuredToolHandler(s.handleAspectRatio))

	s.mcpServer.AddTool(mcp.NewTool("randomize_seed",
		mcp.WithDescription("Draw a new random seed."),
		mcp.WithOutputSchema[arttic.Status](),
	), mcp.NewStructuredToolHandler(s.handleRandomizeSeed))
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arttic.Status, error) {
	return s.session.Status(), nil
}

func (s *Server) handleLoadModel(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arttic.Status, error) {
	p := domain.Params{}
	if v, ok := args["model_name"].(string); ok && v != "" {
		p[domain.KeyModel] = v
	}
	if v, ok := args["scheduler_name"].(string); ok && v != "" {
		p[domain.KeyScheduler] = v
	}
	return s.run("load_model", p, s.session.LoadModel)
}

func (s *Server) handleUnloadModel(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arttic.Status, error) {
	return s.run("unload_model", nil, s.session.UnloadModel)
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arttic.Status, error) {
	p := domain.Params{}
	for _, k := range []domain.Key{
		domain.KeyPrompt, domain.KeyNegativePrompt,
		domain.KeySteps, domain.KeyWidth, domain.KeyHeight,
		domain.KeySeed, domain.KeyGuidance,
	} {
		if v, ok := args[string(k)]; ok {
			p[k] = v
		}
	}
	return s.run("generate_image", p, s.session.Generate)
}

// handleSetParam decodes a string value as JSON for keys that are not text,
// so "40" sets an integer and "true" a boolean.
func (s *Server) handleSetParam(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arttic.Status, error) {
	name, _ := args["key"].(string)
	key := domain.Key(name)
	value := args["value"]
	if raw, ok := value.(string); ok {
		if kind, known := domain.KindOf(key); known && kind != domain.KindString && kind != domain.KindBytes {
			var decoded any
			if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
				return arttic.Status{}, s.toolError("set_param", fmt.Errorf("%q: %v: %w", key, err, domain.ErrInvalidParam))
			}
			value = decoded
		}
	}
	return s.run("set_param", domain.Params{key: value}, nil)
}

func (s *Server) handleAspectRatio(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arttic.Status, error) {
	ratio, _ := args["ratio"].(string)
	return s.run("apply_aspect_ratio", nil, func() error {
		return s.session.ApplyAspectRatio(domain.AspectRatio(ratio))
	})
}

func (s *Server) handleRandomizeSeed(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (arttic.Status, error) {
	return s.run("randomize_seed", nil, func() error {
		_, err := s.session.RandomizeSeed()
		return err
	})
}

// run applies params, then the intent, and returns the resulting state.
func (s *Server) run(tool string, params domain.Params, intent func() error) (arttic.Status, error) {
	if len(params) > 0 {
		if err := s.session.SetParams(params); err != nil {
			return arttic.Status{}, s.toolError(tool, err)
		}
	}
	if intent != nil {
		if err := intent(); err != nil {
			return arttic.Status{}, s.toolError(tool, err)
		}
	}
	return s.session.Status(), nil
}

func (s *Server) toolError(tool string, err error) error {
	s.logger.Warn("MCP tool rejected", "tool", tool, "error", err)
	if errors.Is(err, domain.ErrNotConnected) {
		return fmt.Errorf("%s: backend channel is not connected, retry shortly: %w", tool, err)
	}
	return fmt.Errorf("%s: %w", tool, err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(stateURI, "Current Session State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.session.Status())
		if err != nil {
			return nil, fmt.Errorf("failed to encode state: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      stateURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
