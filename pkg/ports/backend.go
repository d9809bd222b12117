package ports

import (
	"context"

	"github.com/aretw0/arttic/pkg/domain"
)

// BackendAPI covers the one-shot HTTP endpoints of the backend.
type BackendAPI interface {
	Config(ctx context.Context) (domain.BackendConfig, error)
	Status(ctx context.Context) (domain.BackendStatus, error)
	Gallery(ctx context.Context) ([]string, error)
	ImageMetadata(ctx context.Context, filename string) (domain.ImageMetadata, error)

	Prompts(ctx context.Context) ([]domain.Prompt, error)
	// SavePrompt returns domain.ErrDuplicateTitle when the title is taken.
	SavePrompt(ctx context.Context, p domain.Prompt) error
	RenamePrompt(ctx context.Context, oldTitle, newTitle string) error
	DeletePrompt(ctx context.Context, title string) error
}
