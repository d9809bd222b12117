package mcp

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/testutils"
	"github.com/aretw0/arttic/pkg/clock"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	params  domain.Params
	intents []string
	err     error
}

func (s *stubSession) Status() arttic.Status {
	return arttic.Status{Connection: "open", Params: s.params}
}

func (s *stubSession) record(name string) error {
	s.intents = append(s.intents, name)
	return s.err
}

func (s *stubSession) LoadModel() error   { return s.record("load") }
func (s *stubSession) UnloadModel() error { return s.record("unload") }
func (s *stubSession) Generate() error    { return s.record("generate") }

func (s *stubSession) SetParams(p domain.Params) error {
	p, err := domain.CoerceAll(p)
	if err != nil {
		return err
	}
	if s.params == nil {
		s.params = domain.Params{}
	}
	for k, v := range p {
		s.params[k] = v
	}
	return nil
}

func (s *stubSession) ApplyAspectRatio(r domain.AspectRatio) error {
	return s.record("aspect " + string(r))
}

func (s *stubSession) RandomizeSeed() (int64, error) {
	return 7, s.record("seed")
}

func TestGenerate_AppliesArgumentsFirst(t *testing.T) {
	sess := &stubSession{}
	srv := NewServer(sess)

	st, err := srv.handleGenerate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"prompt": "a red fox",
		"steps":  float64(25),
		"seed":   float64(4294967295),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"generate"}, sess.intents)
	assert.Equal(t, "a red fox", st.Params[domain.KeyPrompt])
	assert.Equal(t, 25, st.Params[domain.KeySteps])
	assert.Equal(t, int64(4294967295), st.Params[domain.KeySeed])
}

func TestSetParam_DecodesJSONValues(t *testing.T) {
	sess := &stubSession{}
	srv := NewServer(sess)

	_, err := srv.handleSetParam(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"key": "guidance", "value": "6.5"})
	require.NoError(t, err)
	_, err = srv.handleSetParam(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"key": "lora_name", "value": "pixel-art"})
	require.NoError(t, err)

	assert.Equal(t, 6.5, sess.params[domain.KeyGuidance])
	assert.Equal(t, "pixel-art", sess.params[domain.KeyLora])
	assert.Empty(t, sess.intents)
}

func TestIntentErrorsAreWrapped(t *testing.T) {
	sess := &stubSession{err: domain.ErrNotConnected}
	srv := NewServer(sess)

	_, err := srv.handleLoadModel(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"model_name": "sdxl"})
	require.ErrorIs(t, err, domain.ErrNotConnected)
	assert.Contains(t, err.Error(), "load_model")
	assert.Equal(t, "sdxl", sess.params[domain.KeyModel])
}

func newSession(t *testing.T) *arttic.Session {
	t.Helper()
	sess := arttic.New(&testutils.FakeDialer{}, "ws://backend/ws", testutils.NewFakeBackend(),
		arttic.WithClock(clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))),
	)
	require.NoError(t, sess.Start(context.Background()))
	t.Cleanup(sess.Close)
	return sess
}

func setParam(srv *Server, key string, value any) (arttic.Status, error) {
	return srv.handleSetParam(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"key": key, "value": value})
}

func TestSetParam_CoercesOnSession(t *testing.T) {
	sess := newSession(t)
	srv := NewServer(sess)

	st, err := setParam(srv, "steps", "40")
	require.NoError(t, err)
	assert.Equal(t, 40, st.Params[domain.KeySteps])

	st, err = setParam(srv, "vae_tiling", "false")
	require.NoError(t, err)
	assert.Equal(t, false, st.Params[domain.KeyVAETiling])

	st, err = setParam(srv, "prompt", "null")
	require.NoError(t, err)
	assert.Equal(t, "null", st.Params[domain.KeyPrompt])

	png := []byte{0x89, 'P', 'N', 'G'}
	_, err = setParam(srv, "init_image", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png))
	require.NoError(t, err)
	assert.Equal(t, png, sess.Store().Snapshot().Bytes(domain.KeyInitImage))
}

func TestSetParam_RejectsBadValues(t *testing.T) {
	sess := newSession(t)
	srv := NewServer(sess)

	for _, tc := range []struct {
		key   string
		value any
	}{
		{"steps", "abc"},
		{"steps", "12.5"},
		{"steps", "null"},
		{"steps", "0"},
		{"guidance", `"7"`},
		{"lora_weight", float64(9)},
		{"init_image", "data:image/png,raw"},
		{"prompt", nil},
	} {
		_, err := setParam(srv, tc.key, tc.value)
		require.ErrorIs(t, err, domain.ErrInvalidParam, "%s=%v", tc.key, tc.value)
		assert.Contains(t, err.Error(), "set_param")
	}

	_, err := setParam(srv, "temperature", "1")
	require.ErrorIs(t, err, domain.ErrUnknownParam)

	snap := sess.Store().Snapshot()
	assert.Equal(t, 30, snap.Int(domain.KeySteps))
	assert.Empty(t, snap.Bytes(domain.KeyInitImage))
}

func TestGenerate_RejectsFractionalSteps(t *testing.T) {
	sess := newSession(t)
	srv := NewServer(sess)

	_, err := srv.handleGenerate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"steps": 12.7})
	require.ErrorIs(t, err, domain.ErrInvalidParam)
	assert.Equal(t, 30, sess.Store().Snapshot().Int(domain.KeySteps))
}
