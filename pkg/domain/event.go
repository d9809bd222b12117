package domain

// EventType is the "type" field of an incoming message.
type EventType string

const (
	EventModelLoaded         EventType = "model_loaded"
	EventModelUnloaded       EventType = "model_unloaded"
	EventGenerationComplete  EventType = "generation_complete"
	EventGenerationFailed    EventType = "generation_failed"
	EventProgressUpdate      EventType = "progress_update"
	EventGalleryUpdated      EventType = "gallery_updated"
	EventImageDeleted        EventType = "image_deleted"
	EventSettingsData        EventType = "settings_data"
	EventSettingsDataUpdated EventType = "settings_data_updated"
	EventModelFileDeleted    EventType = "model_file_deleted"
	EventLoraFileDeleted     EventType = "lora_file_deleted"
	EventError               EventType = "error"
	EventBackendRestarting   EventType = "backend_restarting"
	EventCacheCleared        EventType = "cache_cleared"
)

// StatusSuccess is the status value the backend uses for completed deletions.
const StatusSuccess = "success"

// Event is a decoded server event. The set is closed: every implementation
// lives in this file and dispatches to its own EventHandler method.
type Event interface {
	Type() EventType
	Accept(h EventHandler)
}

// EventHandler receives decoded events. Adding an event type adds a method
// here, so every handler must be updated before the build passes.
type EventHandler interface {
	OnModelLoaded(ModelLoaded)
	OnModelUnloaded(ModelUnloaded)
	OnGenerationComplete(GenerationComplete)
	OnGenerationFailed(GenerationFailed)
	OnProgressUpdate(ProgressUpdate)
	OnGalleryUpdated(GalleryUpdated)
	OnImageDeleted(ImageDeleted)
	OnSettingsData(SettingsData)
	OnFileDeleted(FileDeleted)
	OnServerError(ServerError)
	OnBackendRestarting(BackendRestarting)
	OnCacheCleared(CacheCleared)
	OnUnrecognized(Unrecognized)
}

type ModelLoaded struct {
	StatusMessage string `mapstructure:"status_message" json:"status_message"`
	ModelType     string `mapstructure:"model_type" json:"model_type"`
	Width         int    `mapstructure:"width" json:"width"`
	Height        int    `mapstructure:"height" json:"height"`
	MaxResVRAM    int    `mapstructure:"max_res_vram" json:"max_res_vram,omitempty"`
	MaxResOffload int    `mapstructure:"max_res_offload" json:"max_res_offload,omitempty"`
}

func (ModelLoaded) Type() EventType         { return EventModelLoaded }
func (e ModelLoaded) Accept(h EventHandler) { h.OnModelLoaded(e) }

type ModelUnloaded struct {
	StatusMessage string `mapstructure:"status_message" json:"status_message"`
}

func (ModelUnloaded) Type() EventType         { return EventModelUnloaded }
func (e ModelUnloaded) Accept(h EventHandler) { h.OnModelUnloaded(e) }

type GenerationComplete struct {
	ImageFilename string `mapstructure:"image_filename" json:"image_filename"`
	Info          string `mapstructure:"info" json:"info"`
}

func (GenerationComplete) Type() EventType         { return EventGenerationComplete }
func (e GenerationComplete) Accept(h EventHandler) { h.OnGenerationComplete(e) }

type GenerationFailed struct {
	Message string `mapstructure:"message" json:"message"`
}

func (GenerationFailed) Type() EventType         { return EventGenerationFailed }
func (e GenerationFailed) Accept(h EventHandler) { h.OnGenerationFailed(e) }

// ProgressUpdate reports a fraction in [0,1] of the running operation.
type ProgressUpdate struct {
	Progress    float64 `mapstructure:"progress" json:"progress"`
	Description string  `mapstructure:"description" json:"description"`
}

func (ProgressUpdate) Type() EventType         { return EventProgressUpdate }
func (e ProgressUpdate) Accept(h EventHandler) { h.OnProgressUpdate(e) }

type GalleryUpdated struct {
	Images []string `mapstructure:"images" json:"images"`
}

func (GalleryUpdated) Type() EventType         { return EventGalleryUpdated }
func (e GalleryUpdated) Accept(h EventHandler) { h.OnGalleryUpdated(e) }

type ImageDeleted struct {
	Status   string `mapstructure:"status" json:"status"`
	Message  string `mapstructure:"message" json:"message,omitempty"`
	Filename string `mapstructure:"filename" json:"filename,omitempty"`
}

func (ImageDeleted) Type() EventType         { return EventImageDeleted }
func (e ImageDeleted) Accept(h EventHandler) { h.OnImageDeleted(e) }

// Succeeded reports whether the backend removed the file.
func (e ImageDeleted) Succeeded() bool { return e.Status == StatusSuccess }

// SettingsData carries the model and LoRA file lists. Updated distinguishes
// the broadcast sent after a file deletion from the initial reply.
type SettingsData struct {
	Models  []string `mapstructure:"models" json:"models"`
	Loras   []string `mapstructure:"loras" json:"loras"`
	Updated bool     `mapstructure:"-" json:"-"`
}

func (e SettingsData) Type() EventType {
	if e.Updated {
		return EventSettingsDataUpdated
	}
	return EventSettingsData
}
func (e SettingsData) Accept(h EventHandler) { h.OnSettingsData(e) }

// FileKind selects which model directory a file deletion applied to.
type FileKind string

const (
	FileModel FileKind = "model"
	FileLora  FileKind = "lora"
)

type FileDeleted struct {
	Kind     FileKind `mapstructure:"-" json:"kind"`
	Status   string   `mapstructure:"status" json:"status"`
	Message  string   `mapstructure:"message" json:"message,omitempty"`
	Filename string   `mapstructure:"filename" json:"filename,omitempty"`
}

func (e FileDeleted) Type() EventType {
	if e.Kind == FileLora {
		return EventLoraFileDeleted
	}
	return EventModelFileDeleted
}
func (e FileDeleted) Accept(h EventHandler) { h.OnFileDeleted(e) }

// Succeeded reports whether the backend removed the file.
func (e FileDeleted) Succeeded() bool { return e.Status == StatusSuccess }

type ServerError struct {
	Message string `mapstructure:"message" json:"message"`
}

func (ServerError) Type() EventType         { return EventError }
func (e ServerError) Accept(h EventHandler) { h.OnServerError(e) }

type BackendRestarting struct{}

func (BackendRestarting) Type() EventType         { return EventBackendRestarting }
func (e BackendRestarting) Accept(h EventHandler) { h.OnBackendRestarting(e) }

type CacheCleared struct {
	Status        string `mapstructure:"status" json:"status,omitempty"`
	StatusMessage string `mapstructure:"status_message" json:"status_message,omitempty"`
	Message       string `mapstructure:"message" json:"message,omitempty"`
}

func (CacheCleared) Type() EventType         { return EventCacheCleared }
func (e CacheCleared) Accept(h EventHandler) { h.OnCacheCleared(e) }

// Text returns whichever message field the backend populated.
func (e CacheCleared) Text() string {
	if e.StatusMessage != "" {
		return e.StatusMessage
	}
	if e.Message != "" {
		return e.Message
	}
	return "Cache cleared."
}

// Unrecognized wraps a message whose type is outside the known set.
type Unrecognized struct {
	Name string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func (e Unrecognized) Type() EventType      { return EventType(e.Name) }
func (e Unrecognized) Accept(h EventHandler) { h.OnUnrecognized(e) }
