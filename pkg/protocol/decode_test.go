package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KnownEvents(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Event
	}{
		{
			name: "model loaded",
			raw:  `{"type":"model_loaded","data":{"status_message":"Ready","model_type":"SDXL","width":1024,"height":1024,"max_res_vram":1536,"max_res_offload":2048}}`,
			want: domain.ModelLoaded{StatusMessage: "Ready", ModelType: "SDXL", Width: 1024, Height: 1024, MaxResVRAM: 1536, MaxResOffload: 2048},
		},
		{
			name: "progress",
			raw:  `{"type":"progress_update","data":{"progress":0.25,"description":"Step 5/20"}}`,
			want: domain.ProgressUpdate{Progress: 0.25, Description: "Step 5/20"},
		},
		{
			name: "gallery",
			raw:  `{"type":"gallery_updated","data":{"images":["b.png","a.png"]}}`,
			want: domain.GalleryUpdated{Images: []string{"b.png", "a.png"}},
		},
		{
			name: "settings updated",
			raw:  `{"type":"settings_data_updated","data":{"models":["m.safetensors"],"loras":[]}}`,
			want: domain.SettingsData{Models: []string{"m.safetensors"}, Loras: []string{}, Updated: true},
		},
		{
			name: "lora file deleted",
			raw:  `{"type":"lora_file_deleted","data":{"status":"success","filename":"x.safetensors"}}`,
			want: domain.FileDeleted{Kind: domain.FileLora, Status: "success", Filename: "x.safetensors"},
		},
		{
			name: "backend restarting without data",
			raw:  `{"type":"backend_restarting"}`,
			want: domain.BackendRestarting{},
		},
		{
			name: "error",
			raw:  `{"type":"error","data":{"message":"CUDA out of memory"}}`,
			want: domain.ServerError{Message: "CUDA out of memory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := protocol.Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestDecode_WeakTyping(t *testing.T) {
	ev, err := protocol.Decode([]byte(`{"type":"model_loaded","data":{"width":"768","height":512.0}}`))
	require.NoError(t, err)

	loaded, ok := ev.(domain.ModelLoaded)
	require.True(t, ok)
	assert.Equal(t, 768, loaded.Width)
	assert.Equal(t, 512, loaded.Height)
}

func TestDecode_Unrecognized(t *testing.T) {
	ev, err := protocol.Decode([]byte(`{"type":"telemetry","data":{"gpu":"busy"}}`))
	require.NoError(t, err)

	u, ok := ev.(domain.Unrecognized)
	require.True(t, ok)
	assert.Equal(t, "telemetry", u.Name)
	assert.Equal(t, "busy", u.Data["gpu"])
}

func TestDecode_Invalid(t *testing.T) {
	_, err := protocol.Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = protocol.Decode([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, protocol.ErrMissingType)
}

func TestEncode(t *testing.T) {
	raw, err := protocol.Encode(domain.ActionDeleteImage, domain.FilePayload{Filename: "a.png"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"delete_image","payload":{"filename":"a.png"}}`, string(raw))

	raw, err = protocol.Encode(domain.ActionUnloadModel, nil)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, map[string]any{}, msg["payload"])
}
