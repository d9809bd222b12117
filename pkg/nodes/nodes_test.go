package nodes_test

import (
	"testing"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/nodes"
	"github.com/aretw0/arttic/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CoversEveryType(t *testing.T) {
	ctx := nodes.Context{Snapshot: session.NewStore().Snapshot()}
	for _, nt := range append(append([]domain.NodeType{}, domain.PermanentNodes...), domain.OptionalNodes...) {
		v := nodes.New(nt, ctx)
		require.NotNil(t, v, nt)
		assert.Equal(t, nt, v.Type())
		assert.NotEmpty(t, v.Body())
	}
	assert.Nil(t, nodes.New(domain.NodeType("edge"), ctx))
}

func TestImagePreview_GenerateGatedOnModel(t *testing.T) {
	snap := session.NewStore().Snapshot()
	v := nodes.New(domain.NodeImagePreview, nodes.Context{Snapshot: snap}).(*nodes.ImagePreview)
	assert.False(t, v.GenerateEnabled)

	loaded := v.Refresh(nodes.Context{Snapshot: snap, Loaded: true}).(*nodes.ImagePreview)
	assert.True(t, loaded.GenerateEnabled)
	assert.False(t, v.GenerateEnabled, "refresh must not touch the previous view")

	busy := loaded.Refresh(nodes.Context{Snapshot: snap, Loaded: true, Busy: true}).(*nodes.ImagePreview)
	assert.False(t, busy.GenerateEnabled)
	assert.True(t, loaded.GenerateEnabled)
}

func TestModelSampler_Buttons(t *testing.T) {
	store := session.NewStore()
	store.Set(domain.KeyModel, "sdxl.safetensors")
	v := nodes.New(domain.NodeModelSampler, nodes.Context{
		Snapshot:    store.Snapshot(),
		LoadEnabled: true,
	}).(*nodes.ModelSampler)

	assert.True(t, v.LoadEnabled)
	assert.False(t, v.UnloadEnabled)

	next := v.Refresh(nodes.Context{Snapshot: store.Snapshot(), Loaded: true, LoadEnabled: false}).(*nodes.ModelSampler)
	assert.False(t, next.LoadEnabled)
	assert.True(t, next.UnloadEnabled)
}

func TestParameters_ReadsSnapshot(t *testing.T) {
	store := session.NewStore()
	store.Update(func(tx *session.Tx) {
		tx.Set(domain.KeyWidth, 1344)
		tx.Set(domain.KeyHeight, 768)
		tx.Set(domain.KeySeed, int64(4294967295))
	})
	v := nodes.New(domain.NodeParameters, nodes.Context{
		Snapshot:       store.Snapshot(),
		ResolutionHint: "Est. max resolution: 1536px (VRAM), 2048px (Offload)",
	}).(*nodes.Parameters)

	assert.Equal(t, 1344, v.Width)
	assert.Equal(t, 768, v.Height)
	assert.Equal(t, int64(4294967295), v.Seed)
	assert.Contains(t, v.Body(), "size 1344x768")
	assert.Contains(t, v.Body(), "Est. max resolution: 1536px (VRAM), 2048px (Offload)")
}
