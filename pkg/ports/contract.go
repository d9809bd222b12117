package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLayoutStoreContract runs a suite of tests to verify that a LayoutStore
// implementation adheres to the defined interface contract.
func RunLayoutStoreContract(t *testing.T, store LayoutStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	layout := domain.Layout{
		Scale:   1.5,
		OffsetX: -120,
		OffsetY: 40,
		Positions: map[domain.NodeType]domain.Point{
			domain.NodeModelSampler: {X: 10, Y: 20},
			domain.NodeLora:         {X: 400, Y: 320},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, layout))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, loaded.Scale, 1e-9)
		assert.InDelta(t, -120, loaded.OffsetX, 1e-9)
		assert.Equal(t, layout.Positions, loaded.Positions)
	})

	t.Run("Loaded layout is a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		loaded.Positions[domain.NodeLora] = domain.Point{}

		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.Point{X: 400, Y: 320}, again.Positions[domain.NodeLora])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+name)
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := name + "-2"
		require.NoError(t, store.Save(ctx, other, layout))
		defer func() { _ = store.Delete(ctx, other) }()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, name)
		assert.Contains(t, names, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, name))

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
		assert.NoError(t, store.Delete(ctx, name), "deleting twice is not an error")
	})
}
