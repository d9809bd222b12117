package testutils

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/arttic/pkg/domain"
)

// FakeBackend is an in-memory ports.BackendAPI. Err, when set, is returned
// by every call.
type FakeBackend struct {
	mu sync.Mutex

	Cfg      domain.BackendConfig
	St       domain.BackendStatus
	Metadata map[string]domain.ImageMetadata
	Err      error

	prompts     []domain.Prompt
	statusCalls int
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Cfg: domain.BackendConfig{
			Models:        []string{"sd15-base", "sdxl-turbo"},
			Loras:         []string{"pixel-art"},
			Schedulers:    slices.Clone(domain.Schedulers),
			GalleryImages: []string{"a.png", "b.png"},
		},
		St:       domain.BackendStatus{StatusMessage: "No model loaded."},
		Metadata: map[string]domain.ImageMetadata{},
	}
}

// SetStatus replaces the status returned on the next Status call.
func (f *FakeBackend) SetStatus(st domain.BackendStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.St = st
}

// StatusCalls reports how many times Status was called.
func (f *FakeBackend) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

func (f *FakeBackend) Config(ctx context.Context) (domain.BackendConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Cfg, f.Err
}

func (f *FakeBackend) Status(ctx context.Context) (domain.BackendStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.St, f.Err
}

func (f *FakeBackend) Gallery(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Cfg.GalleryImages), f.Err
}

func (f *FakeBackend) ImageMetadata(ctx context.Context, filename string) (domain.ImageMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Metadata[filename], nil
}

func (f *FakeBackend) Prompts(ctx context.Context) ([]domain.Prompt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.prompts), f.Err
}

func (f *FakeBackend) SavePrompt(ctx context.Context, p domain.Prompt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if f.indexLocked(p.Title) >= 0 {
		return domain.ErrDuplicateTitle
	}
	f.prompts = append(f.prompts, p)
	return nil
}

func (f *FakeBackend) RenamePrompt(ctx context.Context, oldTitle, newTitle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	i := f.indexLocked(oldTitle)
	if i < 0 {
		return domain.ErrPromptNotFound
	}
	if oldTitle != newTitle && f.indexLocked(newTitle) >= 0 {
		return domain.ErrDuplicateTitle
	}
	f.prompts[i].Title = newTitle
	return nil
}

func (f *FakeBackend) DeletePrompt(ctx context.Context, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	i := f.indexLocked(title)
	if i < 0 {
		return domain.ErrPromptNotFound
	}
	f.prompts = slices.Delete(f.prompts, i, i+1)
	return nil
}

func (f *FakeBackend) indexLocked(title string) int {
	return slices.IndexFunc(f.prompts, func(p domain.Prompt) bool { return p.Title == title })
}
