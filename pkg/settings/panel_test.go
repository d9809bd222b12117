package settings_test

import (
	"testing"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/settings"
	"github.com/stretchr/testify/assert"
)

func TestPanel_ApplyAndResolve(t *testing.T) {
	p := settings.New()
	assert.False(t, p.Snapshot().Loaded)

	p.Apply(domain.SettingsData{Models: []string{"a.safetensors", "b.safetensors"}, Loras: []string{"x.safetensors"}})
	p.MarkPending(domain.FileModel, "a.safetensors")

	name := p.Resolve(domain.FileDeleted{Kind: domain.FileModel, Status: domain.StatusSuccess})
	assert.Equal(t, "a.safetensors", name)
	assert.Equal(t, []string{"b.safetensors"}, p.Snapshot().Models)
	assert.Equal(t, []string{"x.safetensors"}, p.Snapshot().Loras)
}

func TestPanel_FailedDeleteKeepsList(t *testing.T) {
	p := settings.New()
	p.Apply(domain.SettingsData{Loras: []string{"x.safetensors"}})
	p.MarkPending(domain.FileLora, "x.safetensors")

	name := p.Resolve(domain.FileDeleted{Kind: domain.FileLora, Status: "error", Message: "in use"})
	assert.Equal(t, "x.safetensors", name)
	assert.Equal(t, []string{"x.safetensors"}, p.Snapshot().Loras)
}
