// Package backend is the HTTP client for the one-shot endpoints of the image
// backend: configuration, status, gallery listing, the prompt library and
// image metadata.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/internal/validator"
	"github.com/aretw0/arttic/pkg/domain"
)

// ErrRequestFailed is returned for non-2xx responses that map to no domain error.
var ErrRequestFailed = errors.New("backend request failed")

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Client implements ports.BackendAPI.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend at baseURL (e.g. "http://127.0.0.1:7860").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root, used to build image URLs.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// WebSocketURL returns the live channel endpoint: the base URL with a ws or
// wss scheme and the /ws path.
func (c *Client) WebSocketURL() string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

func (c *Client) Config(ctx context.Context) (domain.BackendConfig, error) {
	var cfg domain.BackendConfig
	err := c.do(ctx, http.MethodGet, "/api/config", nil, &cfg)
	return cfg, err
}

func (c *Client) Status(ctx context.Context) (domain.BackendStatus, error) {
	var st domain.BackendStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &st)
	return st, err
}

func (c *Client) Gallery(ctx context.Context) ([]string, error) {
	var resp struct {
		Images []string `json:"images"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/gallery", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

func (c *Client) ImageMetadata(ctx context.Context, filename string) (domain.ImageMetadata, error) {
	var md domain.ImageMetadata
	err := c.do(ctx, http.MethodGet, "/api/image_metadata/"+url.PathEscape(filename), nil, &md)
	return md, err
}

// Prompts accepts both a bare array and an object wrapping it.
func (c *Client) Prompts(ctx context.Context) ([]domain.Prompt, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/prompts", nil, &raw); err != nil {
		return nil, err
	}

	var list []domain.Prompt
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Prompts        []domain.Prompt `json:"prompts"`
		DefaultPrompts []domain.Prompt `json:"default_prompts"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode prompts: %w", err)
	}
	if wrapped.Prompts != nil {
		return wrapped.Prompts, nil
	}
	return wrapped.DefaultPrompts, nil
}

func (c *Client) SavePrompt(ctx context.Context, p domain.Prompt) error {
	if err := validator.Struct(p); err != nil {
		return err
	}
	ok, err := c.doResult(ctx, http.MethodPost, "/api/prompts", p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateTitle, p.Title)
	}
	return nil
}

// RenamePrompt changes the title of an entry, keeping its text.
func (c *Client) RenamePrompt(ctx context.Context, oldTitle, newTitle string) error {
	return c.UpdatePrompt(ctx, oldTitle, domain.Prompt{Title: newTitle}, true)
}

// UpdatePrompt replaces the entry titled oldTitle with p. With keepText the
// prompt texts of the existing entry are preserved.
func (c *Client) UpdatePrompt(ctx context.Context, oldTitle string, p domain.Prompt, keepText bool) error {
	if err := validator.Struct(p); err != nil {
		return err
	}
	if keepText {
		existing, err := c.find(ctx, oldTitle)
		if err != nil {
			return err
		}
		p.Prompt, p.NegativePrompt = existing.Prompt, existing.NegativePrompt
	}

	body := map[string]string{
		"old_title":       oldTitle,
		"new_title":       p.Title,
		"prompt":          p.Prompt,
		"negative_prompt": p.NegativePrompt,
	}
	ok, err := c.doResult(ctx, http.MethodPut, "/api/prompts", body)
	if err != nil {
		return err
	}
	if !ok {
		if oldTitle != p.Title {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateTitle, p.Title)
		}
		return fmt.Errorf("%w: %q", domain.ErrPromptNotFound, oldTitle)
	}
	return nil
}

func (c *Client) DeletePrompt(ctx context.Context, title string) error {
	ok, err := c.doResult(ctx, http.MethodDelete, "/api/prompts", map[string]string{"title": title})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrPromptNotFound, title)
	}
	return nil
}

func (c *Client) find(ctx context.Context, title string) (domain.Prompt, error) {
	prompts, err := c.Prompts(ctx)
	if err != nil {
		return domain.Prompt{}, err
	}
	for _, p := range prompts {
		if p.Title == title {
			return p, nil
		}
	}
	return domain.Prompt{}, fmt.Errorf("%w: %q", domain.ErrPromptNotFound, title)
}

// doResult performs a mutation whose reply is a bare boolean or an object
// with a success flag or status field.
func (c *Client) doResult(ctx context.Context, method, path string, body any) (bool, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, body, &raw); err != nil {
		return false, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true, nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		return b, nil
	}
	var obj struct {
		Success *bool  `json:"success"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	if obj.Success != nil {
		return *obj.Success, nil
	}
	return obj.Status == "" || obj.Status == domain.StatusSuccess, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Backend request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrDuplicateTitle
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/api/prompts"):
		return domain.ErrPromptNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRequestFailed, method, path, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
