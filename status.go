package arttic

import (
	"slices"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/gallery"
	"github.com/aretw0/arttic/pkg/nodes"
)

// Status is a read-only copy of the session for front-ends that do not
// render node views: the introspection server, the MCP tools and watch mode.
type Status struct {
	Connection  string              `json:"connection"`
	Loaded      bool                `json:"loaded"`
	Busy        bool                `json:"busy"`
	LoadEnabled bool                `json:"load_enabled"`
	ModelType   domain.ModelType    `json:"model_type,omitempty"`
	StatusText  string              `json:"status_text"`
	StatusClass nodes.StatusClass   `json:"status_class"`
	Current     domain.LoadedConfig `json:"current"`

	Models     []string `json:"models"`
	Loras      []string `json:"loras"`
	Schedulers []string `json:"schedulers"`

	ResolutionHint string `json:"resolution_hint,omitempty"`
	PreviewFile    string `json:"preview_file,omitempty"`
	PreviewInfo    string `json:"preview_info,omitempty"`
	PreviewURL     string `json:"preview_url,omitempty"`

	Revision uint64            `json:"revision"`
	Params   domain.Params     `json:"params"`
	Nodes    []domain.NodeType `json:"nodes"`
	Dialogs  []domain.Dialog   `json:"dialogs"`
	Notices  []domain.Notice   `json:"notices"`
	Gallery  gallery.State     `json:"gallery"`
}

// Status returns the current session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	ctx := s.contextLocked()
	st := Status{
		Connection:     s.Connection().String(),
		Loaded:         ctx.Loaded,
		Busy:           ctx.Busy,
		LoadEnabled:    ctx.LoadEnabled,
		ModelType:      ctx.ModelType,
		StatusText:     ctx.StatusText,
		StatusClass:    ctx.StatusClass,
		Current:        s.current,
		Models:         slices.Clone(s.models),
		Loras:          slices.Clone(s.loras),
		Schedulers:     slices.Clone(s.schedulers),
		ResolutionHint: ctx.ResolutionHint,
		PreviewFile:    ctx.PreviewFile,
		PreviewInfo:    ctx.PreviewInfo,
		PreviewURL:     ctx.PreviewURL,
		Revision:       ctx.Snapshot.Revision(),
		Params:         ctx.Snapshot.Params(),
		Dialogs:        slices.Clone(s.dialogs),
	}
	s.mu.Unlock()

	for _, n := range s.canvas.Nodes() {
		st.Nodes = append(st.Nodes, n.Type)
	}
	st.Notices = s.feed.Active()
	st.Gallery = s.gallery.State()
	return st
}
