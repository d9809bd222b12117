package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/arttic/internal/testutils"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrompt(t *testing.T) {
	ctx := context.Background()
	api := testutils.NewFakeBackend()
	var buf bytes.Buffer

	require.NoError(t, runPrompt(ctx, api, PromptCommand{Op: "add", Prompt: domain.Prompt{Title: "castle", Prompt: "a castle at dusk"}}, &buf))
	assert.Contains(t, buf.String(), `Saved "castle".`)

	err := runPrompt(ctx, api, PromptCommand{Op: "add", Prompt: domain.Prompt{Title: "castle"}}, &buf)
	assert.ErrorIs(t, err, domain.ErrDuplicateTitle)

	require.NoError(t, runPrompt(ctx, api, PromptCommand{Op: "update", Title: "castle", NewTitle: "keep"}, &buf))

	buf.Reset()
	require.NoError(t, runPrompt(ctx, api, PromptCommand{Op: "list"}, &buf))
	assert.Equal(t, "keep\n  + a castle at dusk\n", buf.String())

	require.NoError(t, runPrompt(ctx, api, PromptCommand{Op: "delete", Title: "keep"}, &buf))
	assert.ErrorIs(t, runPrompt(ctx, api, PromptCommand{Op: "delete", Title: "keep"}, &buf), domain.ErrPromptNotFound)
}

func TestRunPrompt_Validation(t *testing.T) {
	ctx := context.Background()
	api := testutils.NewFakeBackend()

	assert.Error(t, runPrompt(ctx, api, PromptCommand{Op: "add"}, &bytes.Buffer{}), "title is required")
	assert.Error(t, runPrompt(ctx, api, PromptCommand{Op: "update", Title: "x"}, &bytes.Buffer{}), "new title is required")
	assert.Error(t, runPrompt(ctx, api, PromptCommand{Op: "export"}, &bytes.Buffer{}))
}
