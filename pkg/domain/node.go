package domain

// NodeType identifies a canvas node kind. Each type has at most one live
// instance, so the type doubles as the node's identity.
type NodeType string

const (
	NodeModelSampler NodeType = "model_sampler"
	NodePrompt       NodeType = "prompt"
	NodeParameters   NodeType = "parameters"
	NodeImagePreview NodeType = "image_preview"
	NodeLora         NodeType = "lora"
	NodeInputImage   NodeType = "input_image"
)

// PermanentNodes are created at startup and can never be deleted.
var PermanentNodes = []NodeType{NodeModelSampler, NodePrompt, NodeParameters, NodeImagePreview}

// OptionalNodes are created from the dock and may be deleted.
var OptionalNodes = []NodeType{NodeLora, NodeInputImage}

// Permanent reports whether t is one of the startup nodes.
func (t NodeType) Permanent() bool {
	switch t {
	case NodeModelSampler, NodePrompt, NodeParameters, NodeImagePreview:
		return true
	}
	return false
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	return t.Permanent() || t == NodeLora || t == NodeInputImage
}

// Title is the header label shown on the node.
func (t NodeType) Title() string {
	switch t {
	case NodeModelSampler:
		return "Model & Sampler"
	case NodePrompt:
		return "Prompt"
	case NodeParameters:
		return "Parameters"
	case NodeImagePreview:
		return "Image Preview"
	case NodeLora:
		return "LoRA"
	case NodeInputImage:
		return "Input Image"
	}
	return string(t)
}

// Point is a position in world or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in world units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Width of the rectangle.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height of the rectangle.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: min(r.Min.X, o.Min.X), Y: min(r.Min.Y, o.Min.Y)},
		Max: Point{X: max(r.Max.X, o.Max.X), Y: max(r.Max.Y, o.Max.Y)},
	}
}
