package domain

// BackendConfig is the bootstrap payload of GET /api/config.
type BackendConfig struct {
	Models        []string `json:"models"`
	Loras         []string `json:"loras"`
	Schedulers    []string `json:"schedulers"`
	GalleryImages []string `json:"gallery_images"`
}

// BackendStatus is returned by GET /api/status and used to resync the
// loaded-model state after a reconnect.
type BackendStatus struct {
	IsModelLoaded    bool   `json:"is_model_loaded"`
	StatusMessage    string `json:"status_message"`
	ModelType        string `json:"model_type,omitempty"`
	CurrentModelName string `json:"current_model_name,omitempty"`
}

// Prompt is one entry of the prompt library.
type Prompt struct {
	Title          string `json:"title" validate:"required,max=200"`
	Prompt         string `json:"prompt" validate:"max=10000"`
	NegativePrompt string `json:"negative_prompt" validate:"max=10000"`
}

// ImageMetadata is the generation info embedded in an output image.
type ImageMetadata map[string]any
