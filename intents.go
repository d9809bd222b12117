package arttic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/aretw0/arttic/internal/validator"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/nodes"
	"github.com/aretw0/arttic/pkg/protocol"
	"github.com/aretw0/arttic/pkg/session"
)

// ErrNoLayoutStore is returned by SaveLayout and LoadLayout when the session
// was built without WithLayoutStore.
var ErrNoLayoutStore = errors.New("no layout store configured")

// Bootstrap pulls the model, LoRA, scheduler and gallery lists from the
// backend. A missing model selection defaults to the first model.
func (s *Session) Bootstrap(ctx context.Context) error {
	if s.api == nil {
		return nil
	}
	cfg, err := s.api.Config(ctx)
	if err != nil {
		s.feed.Show("Could not load backend configuration.", domain.NoticeError, s.durations.Error)
		return fmt.Errorf("bootstrap: %w", err)
	}

	s.gallery.SetImages(cfg.GalleryImages)
	return s.mutate(func() error {
		s.applyConfigLocked(cfg)
		return nil
	})
}

// RefreshModels re-reads the model and LoRA lists.
func (s *Session) RefreshModels(ctx context.Context) error {
	if s.api == nil {
		return nil
	}
	cfg, err := s.api.Config(ctx)
	if err != nil {
		s.feed.Show("Could not refresh models.", domain.NoticeError, s.durations.Error)
		return fmt.Errorf("refresh models: %w", err)
	}
	return s.mutate(func() error {
		s.applyConfigLocked(cfg)
		return nil
	})
}

// RefreshGallery re-reads the output image list.
func (s *Session) RefreshGallery(ctx context.Context) error {
	if s.api == nil {
		return nil
	}
	images, err := s.api.Gallery(ctx)
	if err != nil {
		s.feed.Show("Could not refresh the gallery.", domain.NoticeError, s.durations.Error)
		return fmt.Errorf("refresh gallery: %w", err)
	}
	s.gallery.SetImages(images)
	s.changed()
	return nil
}

func (s *Session) applyConfigLocked(cfg domain.BackendConfig) {
	s.models = slices.Clone(cfg.Models)
	s.loras = slices.Clone(cfg.Loras)
	if len(cfg.Schedulers) > 0 {
		s.schedulers = slices.Clone(cfg.Schedulers)
	}

	s.store.Update(func(tx *session.Tx) {
		if m, _ := tx.Get(domain.KeyModel).(string); !slices.Contains(s.models, m) {
			next := ""
			if len(s.models) > 0 {
				next = s.models[0]
			}
			tx.Set(domain.KeyModel, next)
		}
		if l, _ := tx.Get(domain.KeyLora).(string); l != domain.NoLora && !slices.Contains(s.loras, l) {
			tx.Set(domain.KeyLora, domain.NoLora)
		}
		if sc, _ := tx.Get(domain.KeyScheduler).(string); !slices.Contains(s.schedulers, sc) && len(s.schedulers) > 0 {
			tx.Set(domain.KeyScheduler, s.schedulers[0])
		}
	})
}

// LoadModel asks the backend to load the selected model configuration.
func (s *Session) LoadModel() error {
	return s.mutate(func() error {
		if err := s.guardLocked(true); err != nil {
			return err
		}
		snap := s.store.Snapshot()
		cfg := s.selectedConfigLocked(snap)
		if cfg.ModelName == "" {
			s.feed.Show("Select a model first.", domain.NoticeError, s.durations.Error)
			return domain.ErrNoModelSelected
		}
		if s.sameConfigLocked(snap) {
			return domain.ErrSameConfiguration
		}

		payload := domain.LoadModelPayload{
			ModelName:     cfg.ModelName,
			SchedulerName: snap.String(domain.KeyScheduler),
			LoraName:      cfg.LoraName,
			VAETiling:     cfg.VAETiling,
			CPUOffload:    cfg.CPUOffload,
		}
		if !s.client.Send(domain.ActionLoadModel, payload) {
			return s.notConnectedLocked()
		}
		s.busy = true
		s.pendingLoad = &cfg
		s.setStatusLocked("Loading model...", nodes.StatusBusy)
		return nil
	})
}

// UnloadModel asks the backend to release the loaded model.
func (s *Session) UnloadModel() error {
	return s.mutate(func() error {
		if err := s.guardLocked(true); err != nil {
			return err
		}
		if !s.loaded {
			return domain.ErrNoModelLoaded
		}
		if !s.client.Send(domain.ActionUnloadModel, nil) {
			return s.notConnectedLocked()
		}
		s.busy = true
		s.setStatusLocked("Unloading model...", nodes.StatusBusy)
		return nil
	})
}

// Generate sends the current parameters for one image. Without a loaded
// model nothing is sent and ErrNoModelLoaded is returned.
func (s *Session) Generate() error {
	return s.mutate(func() error {
		if err := s.guardLocked(true); err != nil {
			return err
		}
		if !s.loaded {
			s.feed.Show("Load a model before generating.", domain.NoticeError, s.durations.Error)
			return domain.ErrNoModelLoaded
		}

		snap := s.store.Snapshot()
		payload := domain.GeneratePayload{
			Prompt:         snap.String(domain.KeyPrompt),
			NegativePrompt: snap.String(domain.KeyNegativePrompt),
			Steps:          snap.Int(domain.KeySteps),
			Guidance:       snap.Float(domain.KeyGuidance),
			Seed:           snap.Int64(domain.KeySeed),
			Width:          snap.Int(domain.KeyWidth),
			Height:         snap.Int(domain.KeyHeight),
		}
		if s.canvas.Has(domain.NodeLora) && snap.Bool(domain.KeyLoraEnabled) {
			payload.LoraWeight = snap.Float(domain.KeyLoraWeight)
		}
		if img := snap.Bytes(domain.KeyInitImage); len(img) > 0 && s.canvas.Has(domain.NodeInputImage) {
			uri := dataURL(img)
			payload.InitImage = &uri
			payload.Strength = snap.Float(domain.KeyStrength)
		}

		if !s.client.Send(domain.ActionGenerateImage, payload) {
			return s.notConnectedLocked()
		}
		s.busy = true
		s.previewInfo = ""
		return nil
	})
}

// DeleteImage asks the backend to delete filename. An empty filename
// deletes the image open in the lightbox. The viewer closes only once the
// backend confirms.
func (s *Session) DeleteImage(filename string) error {
	if filename == "" {
		f, err := s.gallery.RequestDelete()
		if err != nil {
			return err
		}
		filename = f
	}
	return s.send(domain.ActionDeleteImage, domain.FilePayload{Filename: filename})
}

// RequestSettings asks for the model and LoRA file lists.
func (s *Session) RequestSettings() error {
	return s.send(domain.ActionGetSettingsData, nil)
}

// DeleteModelFile asks the backend to delete a model file.
func (s *Session) DeleteModelFile(filename string) error {
	s.settings.MarkPending(domain.FileModel, filename)
	return s.send(domain.ActionDeleteModelFile, domain.FilePayload{Filename: filename})
}

// DeleteLoraFile asks the backend to delete a LoRA file.
func (s *Session) DeleteLoraFile(filename string) error {
	s.settings.MarkPending(domain.FileLora, filename)
	return s.send(domain.ActionDeleteLoraFile, domain.FilePayload{Filename: filename})
}

func (s *Session) RestartBackend() error {
	return s.send(domain.ActionRestartBackend, nil)
}

func (s *Session) ClearCache() error {
	return s.send(domain.ActionClearCache, nil)
}

// send is the path for intents that do not mark the session busy.
func (s *Session) send(action domain.Action, payload any) error {
	return s.mutate(func() error {
		if err := s.guardLocked(false); err != nil {
			return err
		}
		if !s.client.Send(action, payload) {
			return s.notConnectedLocked()
		}
		return nil
	})
}

// SetParam writes one parameter. Parameters are locked while an operation
// is in flight.
func (s *Session) SetParam(key domain.Key, value any) error {
	return s.SetParams(domain.Params{key: value})
}

// SetParams writes several parameters in one update. Each value is coerced
// to its key's type and range checked; one bad value rejects the whole set.
func (s *Session) SetParams(p domain.Params) error {
	p, err := domain.CoerceAll(p)
	if err != nil {
		return fmt.Errorf("set params: %w", err)
	}
	if err := validator.Params(p); err != nil {
		return fmt.Errorf("set params: %w: %w", domain.ErrInvalidParam, err)
	}
	return s.mutate(func() error {
		if s.busy {
			return domain.ErrBusy
		}
		s.store.Update(func(tx *session.Tx) {
			for k, v := range p {
				tx.Set(k, v)
			}
		})
		return nil
	})
}

// ApplyAspectRatio sets width and height from the preset table of the
// loaded model type.
func (s *Session) ApplyAspectRatio(ratio domain.AspectRatio) error {
	return s.mutate(func() error {
		if s.busy {
			return domain.ErrBusy
		}
		w, h, ok := domain.Dimensions(s.modelType, ratio)
		if !ok {
			return fmt.Errorf("aspect ratio %q: %w", ratio, domain.ErrUnknownParam)
		}
		s.store.Update(func(tx *session.Tx) {
			tx.Set(domain.KeyWidth, w)
			tx.Set(domain.KeyHeight, h)
		})
		return nil
	})
}

// RandomizeSeed draws a seed in [0, 2^32) and returns it.
func (s *Session) RandomizeSeed() (int64, error) {
	seed := s.seed()
	err := s.mutate(func() error {
		if s.busy {
			return domain.ErrBusy
		}
		s.store.Set(domain.KeySeed, seed)
		return nil
	})
	return seed, err
}

// CreateNode places an optional node. A duplicate is rejected with a notice.
func (s *Session) CreateNode(nt domain.NodeType, pos domain.Point) error {
	return s.canvas.Create(nt, pos)
}

// DeleteNode removes an optional node.
func (s *Session) DeleteNode(nt domain.NodeType) error {
	return s.canvas.Delete(nt)
}

// OpenPreview shows the last generated image in the lightbox.
func (s *Session) OpenPreview() bool {
	s.mu.Lock()
	f := s.previewFile
	s.mu.Unlock()
	if f == "" {
		return false
	}
	s.gallery.OpenSingle(f)
	s.changed()
	return true
}

// SaveLayout stores the canvas arrangement under name.
func (s *Session) SaveLayout(ctx context.Context, name string) error {
	if s.layouts == nil {
		return ErrNoLayoutStore
	}
	if err := s.layouts.Save(ctx, name, s.canvas.Layout()); err != nil {
		return fmt.Errorf("save layout %q: %w", name, err)
	}
	return nil
}

// LoadLayout restores the arrangement saved under name.
func (s *Session) LoadLayout(ctx context.Context, name string) error {
	if s.layouts == nil {
		return ErrNoLayoutStore
	}
	l, err := s.layouts.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load layout %q: %w", name, err)
	}
	b := s.canvas.Bounds()
	if err := validator.Layout(l, b.MinScale, b.MaxScale); err != nil {
		return fmt.Errorf("load layout %q: %w", name, err)
	}
	s.canvas.ApplyLayout(l)
	s.changed()
	return nil
}

// Dialogs returns the pending blocking dialogs, oldest first.
func (s *Session) Dialogs() []domain.Dialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.dialogs)
}

// DismissDialog removes the oldest dialog.
func (s *Session) DismissDialog() {
	_ = s.mutate(func() error {
		if len(s.dialogs) > 0 {
			s.dialogs = s.dialogs[1:]
		}
		return nil
	})
}

// guardLocked rejects an intent locally: the channel must be open and, for
// busy-controlled intents, no operation may be in flight.
func (s *Session) guardLocked(busyControl bool) error {
	if s.Connection() != protocol.StateOpen {
		return s.notConnectedLocked()
	}
	if busyControl && s.busy {
		return domain.ErrBusy
	}
	return nil
}

func (s *Session) notConnectedLocked() error {
	s.feed.Show("Not connected to the backend.", domain.NoticeError, s.durations.Error)
	return domain.ErrNotConnected
}

func dataURL(b []byte) string {
	return "data:" + http.DetectContentType(b) + ";base64," + base64.StdEncoding.EncodeToString(b)
}
