// Package nodes defines the per-type canvas node views. A view is rebuilt
// from a session snapshot plus the orchestrator's status; it never holds the
// store itself.
package nodes

import (
	"fmt"
	"strings"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/session"
)

// StatusClass drives the model status icon.
type StatusClass string

const (
	StatusReady    StatusClass = "ready"
	StatusUnloaded StatusClass = "unloaded"
	StatusBusy     StatusClass = "busy"
)

// Context is everything a view may render.
type Context struct {
	Snapshot session.Snapshot

	Loaded      bool
	Busy        bool
	LoadEnabled bool
	ModelType   domain.ModelType
	StatusText  string
	StatusClass StatusClass

	Models     []string
	Loras      []string
	Schedulers []string

	ResolutionHint string
	PreviewFile    string
	PreviewInfo    string
	PreviewURL     string
}

// View is implemented by every node view. Views are immutable: Refresh
// returns a new view and leaves the receiver untouched, so a view can be
// read while the next one is built.
type View interface {
	Type() domain.NodeType
	Refresh(Context) View
	Body() []string
}

// New builds the view for nt and fills it from ctx. It returns nil for an
// unknown type.
func New(nt domain.NodeType, ctx Context) View {
	var v View
	switch nt {
	case domain.NodeModelSampler:
		v = &ModelSampler{}
	case domain.NodePrompt:
		v = &Prompt{}
	case domain.NodeParameters:
		v = &Parameters{}
	case domain.NodeImagePreview:
		v = &ImagePreview{}
	case domain.NodeLora:
		v = &Lora{}
	case domain.NodeInputImage:
		v = &InputImage{}
	default:
		return nil
	}
	return v.Refresh(ctx)
}

type ModelSampler struct {
	Model         string
	Scheduler     string
	Models        []string
	Schedulers    []string
	StatusText    string
	StatusClass   StatusClass
	LoadEnabled   bool
	UnloadEnabled bool
}

func (*ModelSampler) Type() domain.NodeType { return domain.NodeModelSampler }

func (v *ModelSampler) Refresh(ctx Context) View {
	n := *v
	n.Model = ctx.Snapshot.String(domain.KeyModel)
	n.Scheduler = ctx.Snapshot.String(domain.KeyScheduler)
	n.Models = ctx.Models
	n.Schedulers = ctx.Schedulers
	n.StatusText = ctx.StatusText
	n.StatusClass = ctx.StatusClass
	n.LoadEnabled = !ctx.Busy && ctx.LoadEnabled && n.Model != ""
	n.UnloadEnabled = !ctx.Busy && ctx.Loaded
	return &n
}

func (v *ModelSampler) Body() []string {
	model := v.Model
	if model == "" {
		model = "(none selected)"
	}
	return []string{
		"model:   " + model,
		"sampler: " + v.Scheduler,
		fmt.Sprintf("[%s] %s", v.StatusClass, v.StatusText),
		button("load", v.LoadEnabled) + " " + button("unload", v.UnloadEnabled),
	}
}

type Prompt struct {
	Prompt         string
	NegativePrompt string
	Enabled        bool
}

func (*Prompt) Type() domain.NodeType { return domain.NodePrompt }

func (v *Prompt) Refresh(ctx Context) View {
	n := *v
	n.Prompt = ctx.Snapshot.String(domain.KeyPrompt)
	n.NegativePrompt = ctx.Snapshot.String(domain.KeyNegativePrompt)
	n.Enabled = !ctx.Busy
	return &n
}

func (v *Prompt) Body() []string {
	return []string{
		"+ " + orDash(v.Prompt),
		"- " + orDash(v.NegativePrompt),
	}
}

type Parameters struct {
	Steps          int
	Guidance       float64
	Seed           int64
	Width          int
	Height         int
	VAETiling      bool
	CPUOffload     bool
	ResolutionHint string
	Enabled        bool
}

func (*Parameters) Type() domain.NodeType { return domain.NodeParameters }

func (v *Parameters) Refresh(ctx Context) View {
	n := *v
	s := ctx.Snapshot
	n.Steps = s.Int(domain.KeySteps)
	n.Guidance = s.Float(domain.KeyGuidance)
	n.Seed = s.Int64(domain.KeySeed)
	n.Width = s.Int(domain.KeyWidth)
	n.Height = s.Int(domain.KeyHeight)
	n.VAETiling = s.Bool(domain.KeyVAETiling)
	n.CPUOffload = s.Bool(domain.KeyCPUOffload)
	n.ResolutionHint = ctx.ResolutionHint
	n.Enabled = !ctx.Busy
	return &n
}

func (v *Parameters) Body() []string {
	lines := []string{
		fmt.Sprintf("steps %d  cfg %.1f", v.Steps, v.Guidance),
		fmt.Sprintf("seed %d", v.Seed),
		fmt.Sprintf("size %dx%d", v.Width, v.Height),
		fmt.Sprintf("tiling %s  offload %s", onOff(v.VAETiling), onOff(v.CPUOffload)),
	}
	if v.ResolutionHint != "" {
		lines = append(lines, v.ResolutionHint)
	}
	return lines
}

type ImagePreview struct {
	Filename        string
	Info            string
	URL             string
	GenerateEnabled bool
	Busy            bool
}

func (*ImagePreview) Type() domain.NodeType { return domain.NodeImagePreview }

func (v *ImagePreview) Refresh(ctx Context) View {
	n := *v
	n.Filename = ctx.PreviewFile
	n.Info = ctx.PreviewInfo
	n.URL = ctx.PreviewURL
	n.Busy = ctx.Busy
	n.GenerateEnabled = ctx.Loaded && !ctx.Busy
	return &n
}

func (v *ImagePreview) Body() []string {
	lines := []string{button("generate", v.GenerateEnabled)}
	if v.Filename == "" {
		return append(lines, "(no image yet)")
	}
	lines = append(lines, v.Filename)
	if v.Info != "" {
		lines = append(lines, strings.Split(v.Info, "\n")...)
	}
	return lines
}

type Lora struct {
	Loras   []string
	Name    string
	Enabled bool
	Weight  float64
}

func (*Lora) Type() domain.NodeType { return domain.NodeLora }

func (v *Lora) Refresh(ctx Context) View {
	n := *v
	n.Loras = ctx.Loras
	n.Name = ctx.Snapshot.String(domain.KeyLora)
	n.Enabled = ctx.Snapshot.Bool(domain.KeyLoraEnabled)
	n.Weight = ctx.Snapshot.Float(domain.KeyLoraWeight)
	return &n
}

func (v *Lora) Body() []string {
	return []string{
		fmt.Sprintf("%s %s", onOff(v.Enabled), v.Name),
		fmt.Sprintf("weight %.2f", v.Weight),
	}
}

type InputImage struct {
	Bytes    int
	Strength float64
}

func (*InputImage) Type() domain.NodeType { return domain.NodeInputImage }

func (v *InputImage) Refresh(ctx Context) View {
	n := *v
	n.Bytes = len(ctx.Snapshot.Bytes(domain.KeyInitImage))
	n.Strength = ctx.Snapshot.Float(domain.KeyStrength)
	return &n
}

func (v *InputImage) Body() []string {
	img := "(none)"
	if v.Bytes > 0 {
		img = fmt.Sprintf("%d bytes", v.Bytes)
	}
	return []string{
		"image " + img,
		fmt.Sprintf("strength %.2f", v.Strength),
	}
}

func button(label string, enabled bool) string {
	if enabled {
		return "[" + label + "]"
	}
	return "(" + label + ")"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
