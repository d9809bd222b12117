package arttic

import (
	"fmt"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/nodes"
	"github.com/aretw0/arttic/pkg/notify"
	"github.com/aretw0/arttic/pkg/session"
)

var _ domain.EventHandler = (*Session)(nil)

func (s *Session) OnModelLoaded(e domain.ModelLoaded) {
	_ = s.mutate(func() error {
		snap := s.store.Snapshot()
		if s.pendingLoad != nil {
			s.current = *s.pendingLoad
		} else {
			s.current = s.selectedConfigLocked(snap)
		}
		s.pendingLoad = nil
		s.loaded = true
		s.modelType = domain.ModelType(e.ModelType)

		if e.Width > 0 && e.Height > 0 {
			s.store.Update(func(tx *session.Tx) {
				tx.Set(domain.KeyWidth, e.Width)
				tx.Set(domain.KeyHeight, e.Height)
			})
		}
		s.resHint = ""
		if e.MaxResVRAM > 0 || e.MaxResOffload > 0 {
			s.resHint = fmt.Sprintf("Est. max resolution: %dpx (VRAM), %dpx (Offload)", e.MaxResVRAM, e.MaxResOffload)
		}

		msg := orDefault(e.StatusMessage, "Model loaded.")
		s.settleLocked()
		s.setStatusLocked(msg, nodes.StatusReady)
		s.feed.Show(msg, domain.NoticeSuccess, s.durations.Success)
		return nil
	})
}

func (s *Session) OnModelUnloaded(e domain.ModelUnloaded) {
	_ = s.mutate(func() error {
		s.loaded = false
		s.pendingLoad = nil
		s.current = unloadedConfig()
		s.resHint = ""

		msg := orDefault(e.StatusMessage, "No model loaded.")
		s.settleLocked()
		s.setStatusLocked(msg, nodes.StatusUnloaded)
		s.feed.Show(msg, domain.NoticeInfo, s.durations.Info)
		return nil
	})
}

// OnProgressUpdate shows every tick under ProgressHandle so the feed holds
// one progress element however many ticks arrive.
func (s *Session) OnProgressUpdate(e domain.ProgressUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.Show(orDefault(e.Description, "Working..."), domain.NoticeProgress, notify.Persistent,
		notify.WithHandle(ProgressHandle),
		notify.WithProgress(e.Progress),
	)
}

func (s *Session) OnGenerationComplete(e domain.GenerationComplete) {
	_ = s.mutate(func() error {
		s.previewFile = e.ImageFilename
		s.previewInfo = e.Info
		s.settleLocked()
		s.feed.Show("Image generated.", domain.NoticeSuccess, s.durations.Success)
		return nil
	})
}

func (s *Session) OnGenerationFailed(e domain.GenerationFailed) {
	_ = s.mutate(func() error {
		s.failLocked("Generation Failed", e.Message)
		return nil
	})
}

func (s *Session) OnServerError(e domain.ServerError) {
	_ = s.mutate(func() error {
		s.pendingLoad = nil
		s.failLocked("Server Error", e.Message)
		return nil
	})
}

// failLocked ends the operation in flight with a blocking dialog. Progress
// is cleared even when no tick arrived.
func (s *Session) failLocked(title, message string) {
	s.settleLocked()
	s.pushDialogLocked(title, message)
	s.feed.Show(orDefault(message, title), domain.NoticeError, s.durations.Error)
}

func (s *Session) OnGalleryUpdated(e domain.GalleryUpdated) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gallery.SetImages(e.Images)
	s.changed()
}

func (s *Session) OnImageDeleted(e domain.ImageDeleted) {
	_ = s.mutate(func() error {
		if !e.Succeeded() {
			s.pushDialogLocked("Error", "Could not delete image: "+e.Message)
			return nil
		}
		deleted := e.Filename
		if deleted == "" {
			deleted, _ = s.gallery.Current()
		}
		s.gallery.ConfirmDeleted(e.Filename)
		if deleted != "" && deleted == s.previewFile {
			s.previewFile = ""
			s.previewInfo = ""
		}
		s.feed.Show("Image deleted.", domain.NoticeSuccess, s.durations.Success)
		return nil
	})
}

func (s *Session) OnSettingsData(e domain.SettingsData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Apply(e)
	s.changed()
}

func (s *Session) OnFileDeleted(e domain.FileDeleted) {
	_ = s.mutate(func() error {
		name := s.settings.Resolve(e)
		if !e.Succeeded() {
			s.pushDialogLocked("Error", fmt.Sprintf("Could not delete %s: %s", orDefault(name, "file"), e.Message))
			return nil
		}
		s.feed.Show(orDefault(e.Message, "Deleted "+name+"."), domain.NoticeSuccess, s.durations.Success)
		return nil
	})
}

// OnBackendRestarting keeps a notice up until the channel reconnects.
func (s *Session) OnBackendRestarting(domain.BackendRestarting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.Show("Backend is restarting...", domain.NoticeInfo, notify.Persistent, notify.WithHandle(restartHandle))
}

func (s *Session) OnCacheCleared(e domain.CacheCleared) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Status != "" && e.Status != domain.StatusSuccess {
		s.feed.Show(e.Text(), domain.NoticeError, s.durations.Error)
		return
	}
	s.feed.Show(e.Text(), domain.NoticeSuccess, s.durations.Success)
}

func (s *Session) OnUnrecognized(e domain.Unrecognized) {
	s.logger.Debug("Unrecognized event dropped", "type", e.Name)
}
