package cli

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/config"
	"github.com/aretw0/arttic/pkg/adapters/backend"
	"github.com/aretw0/arttic/pkg/adapters/file"
	"github.com/aretw0/arttic/pkg/adapters/memory"
	"github.com/aretw0/arttic/pkg/adapters/redis"
	"github.com/aretw0/arttic/pkg/adapters/websocket"
	"github.com/aretw0/arttic/pkg/canvas"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/metrics"
	"github.com/aretw0/arttic/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// App is a session with the adapters it was built from.
type App struct {
	Config   config.Config
	Session  *arttic.Session
	API      *backend.Client
	Layouts  ports.LayoutStore
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Build wires a session from cfg. Nothing is dialed until Session.Start.
func Build(cfg config.Config, logger *slog.Logger, extra ...arttic.Option) (*App, error) {
	api, err := backend.New(cfg.BackendURL, backend.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	wsURL, err := WebsocketURL(cfg.BackendURL)
	if err != nil {
		return nil, err
	}
	layouts, err := newLayoutStore(cfg.Layouts)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, API: api, Layouts: layouts, Logger: logger}

	var m *metrics.Metrics
	if cfg.Metrics {
		app.Registry = prometheus.NewRegistry()
		m = metrics.New(app.Registry)
	}

	opts := []arttic.Option{
		arttic.WithLogger(logger),
		arttic.WithMetrics(m),
		arttic.WithReconnectDelay(cfg.ReconnectDelay),
		arttic.WithDurations(arttic.Durations{
			Success: cfg.Notices.Success,
			Info:    cfg.Notices.Info,
			Error:   cfg.Notices.Error,
		}),
		arttic.WithLayoutStore(layouts),
		arttic.WithImageBaseURL(api.BaseURL()),
		arttic.WithCanvasOptions(
			canvas.WithBounds(canvas.Bounds{MinScale: cfg.Zoom.Min, MaxScale: cfg.Zoom.Max}),
			canvas.WithViewport(domain.Rect{Max: domain.Point{X: cfg.Viewport.Width, Y: cfg.Viewport.Height}}),
		),
	}
	dialer := websocket.NewDialer(websocket.WithLogger(logger))
	app.Session = arttic.New(dialer, wsURL, api, append(opts, extra...)...)
	return app, nil
}

// WebsocketURL derives the channel address from the backend root:
// http becomes ws, https becomes wss, and /ws is appended to the path.
func WebsocketURL(backendURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(backendURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid backend url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid backend url %q: scheme must be http or https", backendURL)
	}
	u.Path += "/ws"
	return u.String(), nil
}

func newLayoutStore(cfg config.Layouts) (ports.LayoutStore, error) {
	switch cfg.Kind {
	case config.StoreMemory, "":
		return memory.NewStore(), nil
	case config.StoreFile:
		return file.New(cfg.Path), nil
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...), nil
	}
	return nil, fmt.Errorf("unknown layout store %q", cfg.Kind)
}
