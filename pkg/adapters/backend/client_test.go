package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aretw0/arttic/pkg/adapters/backend"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend mimics the prompt book semantics: mutations answer with a bare boolean.
type fakeBackend struct {
	mu      sync.Mutex
	prompts []domain.Prompt
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, domain.BackendConfig{
			Models:        []string{"sdxl-base"},
			Loras:         []string{"detail"},
			Schedulers:    []string{"Euler A", "DPM++ 2M"},
			GalleryImages: []string{"2.png", "1.png"},
		})
	})
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"is_model_loaded": true, "status_message": "Ready", "model_type": "SDXL"})
	})
	r.Get("/api/gallery", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"images": []string{"2.png", "1.png"}})
	})
	r.Get("/api/image_metadata/{filename}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"file": chi.URLParam(r, "filename"), "steps": 30})
	})
	r.Get("/api/prompts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, f.prompts)
	})
	r.Post("/api/prompts", func(w http.ResponseWriter, r *http.Request) {
		var p domain.Prompt
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, existing := range f.prompts {
			if existing.Title == p.Title {
				writeJSON(w, false)
				return
			}
		}
		f.prompts = append(f.prompts, p)
		writeJSON(w, true)
	})
	r.Put("/api/prompts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, p := range f.prompts {
			if p.Title == body["old_title"] {
				f.prompts[i] = domain.Prompt{Title: body["new_title"], Prompt: body["prompt"], NegativePrompt: body["negative_prompt"]}
				writeJSON(w, true)
				return
			}
		}
		writeJSON(w, false)
	})
	r.Delete("/api/prompts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, p := range f.prompts {
			if p.Title == body["title"] {
				f.prompts = append(f.prompts[:i], f.prompts[i+1:]...)
				writeJSON(w, true)
				return
			}
		}
		writeJSON(w, false)
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T) (*backend.Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb.router())
	t.Cleanup(srv.Close)

	c, err := backend.New(srv.URL)
	require.NoError(t, err)
	return c, fb
}

func TestClient_ConfigStatusGallery(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	cfg, err := c.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sdxl-base"}, cfg.Models)
	assert.Equal(t, []string{"2.png", "1.png"}, cfg.GalleryImages)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.IsModelLoaded)
	assert.Equal(t, "SDXL", st.ModelType)

	images, err := c.Gallery(ctx)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	md, err := c.ImageMetadata(ctx, "1.png")
	require.NoError(t, err)
	assert.Equal(t, "1.png", md["file"])
}

func TestClient_PromptLibrary(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.SavePrompt(ctx, domain.Prompt{Title: "Portrait", Prompt: "a cat", NegativePrompt: "blurry"}))
	assert.ErrorIs(t, c.SavePrompt(ctx, domain.Prompt{Title: "Portrait", Prompt: "a dog"}), domain.ErrDuplicateTitle)

	require.NoError(t, c.RenamePrompt(ctx, "Portrait", "Cat portrait"))
	prompts, err := c.Prompts(ctx)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, domain.Prompt{Title: "Cat portrait", Prompt: "a cat", NegativePrompt: "blurry"}, prompts[0], "rename keeps the text")

	assert.ErrorIs(t, c.RenamePrompt(ctx, "Nope", "Other"), domain.ErrPromptNotFound)

	require.NoError(t, c.DeletePrompt(ctx, "Cat portrait"))
	assert.ErrorIs(t, c.DeletePrompt(ctx, "Cat portrait"), domain.ErrPromptNotFound)
}

func TestClient_PromptValidation(t *testing.T) {
	c, fb := newClient(t)
	err := c.SavePrompt(context.Background(), domain.Prompt{Prompt: "no title"})
	assert.ErrorContains(t, err, "title is required")
	assert.Empty(t, fb.prompts, "invalid prompts are never sent")
}

func TestClient_HTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := backend.New(srv.URL + "/")
	require.NoError(t, err)

	_, err = c.Config(context.Background())
	assert.ErrorIs(t, err, backend.ErrRequestFailed)
	assert.ErrorContains(t, err, "boom")

	err = c.SavePrompt(context.Background(), domain.Prompt{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)
}

func TestClient_URLs(t *testing.T) {
	c, err := backend.New("https://gpu.example.com:8443/")
	require.NoError(t, err)
	assert.Equal(t, "https://gpu.example.com:8443", c.BaseURL())
	assert.Equal(t, "wss://gpu.example.com:8443/ws", c.WebSocketURL())

	c, err = backend.New("http://127.0.0.1:7860")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:7860/ws", c.WebSocketURL())

	_, err = backend.New("ftp://nope")
	assert.Error(t, err)
}
