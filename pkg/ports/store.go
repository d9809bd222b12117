package ports

import (
	"context"

	"github.com/aretw0/arttic/pkg/domain"
)

// LayoutStore persists named canvas layouts so a workspace can be restored.
type LayoutStore interface {
	// Save persists the layout under name, replacing any previous one.
	Save(ctx context.Context, name string, layout domain.Layout) error

	// Load retrieves the layout saved under name.
	// Returns domain.ErrLayoutNotFound if there is none.
	Load(ctx context.Context, name string) (domain.Layout, error)

	// Delete removes the layout. Deleting a missing layout is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all saved layouts.
	List(ctx context.Context) ([]string, error)
}
