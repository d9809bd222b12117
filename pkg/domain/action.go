package domain

// Action is the "action" field of an outgoing message.
type Action string

const (
	ActionLoadModel       Action = "load_model"
	ActionUnloadModel     Action = "unload_model"
	ActionGenerateImage   Action = "generate_image"
	ActionDeleteImage     Action = "delete_image"
	ActionGetSettingsData Action = "get_settings_data"
	ActionDeleteModelFile Action = "delete_model_file"
	ActionDeleteLoraFile  Action = "delete_lora_file"
	ActionRestartBackend  Action = "restart_backend"
	ActionClearCache      Action = "clear_cache"
)

// LoadModelPayload selects the pipeline configuration to load.
type LoadModelPayload struct {
	ModelName     string `json:"model_name"`
	SchedulerName string `json:"scheduler_name"`
	LoraName      string `json:"lora_name"`
	VAETiling     bool   `json:"vae_tiling"`
	CPUOffload    bool   `json:"cpu_offload"`
}

// GeneratePayload is the session snapshot sent with generate_image.
type GeneratePayload struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"steps"`
	Guidance       float64 `json:"guidance"`
	Seed           int64   `json:"seed"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	LoraWeight     float64 `json:"lora_weight"`

	// InitImage is a data URL, or nil for text-to-image.
	InitImage *string `json:"init_image"`
	Strength  float64 `json:"strength"`
}

// FilePayload names a file for the delete actions.
type FilePayload struct {
	Filename string `json:"filename"`
}

// LoadedConfig is the configuration the backend currently has loaded.
// Comparing it with the selected one gates the load trigger.
type LoadedConfig struct {
	ModelName  string `json:"model_name"`
	LoraName   string `json:"lora_name"`
	CPUOffload bool   `json:"cpu_offload"`
	VAETiling  bool   `json:"vae_tiling"`
}
