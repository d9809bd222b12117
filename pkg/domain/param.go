package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"strings"
)

// Key names a session parameter.
type Key string

const (
	KeyPrompt         Key = "prompt"
	KeyNegativePrompt Key = "negative_prompt"
	KeySteps          Key = "steps"
	KeyGuidance       Key = "guidance"
	KeySeed           Key = "seed"
	KeyWidth          Key = "width"
	KeyHeight         Key = "height"
	KeyScheduler      Key = "scheduler_name"
	KeyModel          Key = "model_name"
	KeyLora           Key = "lora_name"
	KeyLoraEnabled    Key = "lora_enabled"
	KeyLoraWeight     Key = "lora_weight"
	KeyVAETiling      Key = "vae_tiling"
	KeyCPUOffload     Key = "cpu_offload"
	KeyInitImage      Key = "init_image"
	KeyStrength       Key = "strength"
)

// NoLora is the lora_name sent when the LoRA toggle is off.
const NoLora = "None"

// Schedulers lists the sampler names the backend accepts.
var Schedulers = []string{"Euler A", "DPM++ 2M", "DDIM", "UniPC", "Euler", "LMS"}

// Params is the flat parameter mapping. Values are string, int, float64,
// bool or []byte.
type Params map[Key]any

// DefaultParams returns a fully populated parameter set.
func DefaultParams() Params {
	return Params{
		KeyPrompt:         "",
		KeyNegativePrompt: "",
		KeySteps:          30,
		KeyGuidance:       7.5,
		KeySeed:           int64(0),
		KeyWidth:          512,
		KeyHeight:         512,
		KeyScheduler:      Schedulers[0],
		KeyModel:          "",
		KeyLora:           NoLora,
		KeyLoraEnabled:    false,
		KeyLoraWeight:     1.0,
		KeyVAETiling:      true,
		KeyCPUOffload:     false,
		KeyInitImage:      []byte(nil),
		KeyStrength:       0.75,
	}
}

// Clone returns a deep copy. Binary values get their own backing array.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	for k, v := range out {
		if b, ok := v.([]byte); ok && b != nil {
			out[k] = append([]byte(nil), b...)
		}
	}
	return out
}

// Kind is the value type a parameter holds.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindInt64
	KindFloat
	KindBool
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt, KindInt64:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindBytes:
		return "base64 image"
	}
	return "unknown"
}

var paramKinds = map[Key]Kind{
	KeyPrompt:         KindString,
	KeyNegativePrompt: KindString,
	KeySteps:          KindInt,
	KeyGuidance:       KindFloat,
	KeySeed:           KindInt64,
	KeyWidth:          KindInt,
	KeyHeight:         KindInt,
	KeyScheduler:      KindString,
	KeyModel:          KindString,
	KeyLora:           KindString,
	KeyLoraEnabled:    KindBool,
	KeyLoraWeight:     KindFloat,
	KeyVAETiling:      KindBool,
	KeyCPUOffload:     KindBool,
	KeyInitImage:      KindBytes,
	KeyStrength:       KindFloat,
}

// KindOf reports the value type of k.
func KindOf(k Key) (Kind, bool) {
	kind, ok := paramKinds[k]
	return kind, ok
}

// Coerce converts v to the value type of k. Whole JSON numbers become ints
// for integer keys, and a base64 string or data URL becomes bytes for the
// init image. An empty string clears the init image. Null is never accepted.
func Coerce(k Key, v any) (any, error) {
	kind, ok := paramKinds[k]
	if !ok {
		return nil, fmt.Errorf("%q: %w", k, ErrUnknownParam)
	}
	if v == nil {
		return nil, fmt.Errorf("%q must not be null: %w", k, ErrInvalidParam)
	}
	switch kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindInt:
		if n, ok := integer(v); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int(n), nil
		}
	case KindInt64:
		if n, ok := integer(v); ok {
			return n, nil
		}
	case KindFloat:
		if f, ok := number(v); ok {
			return f, nil
		}
	case KindBytes:
		switch b := v.(type) {
		case []byte:
			return bytes.Clone(b), nil
		case string:
			img, err := decodeImage(b)
			if err != nil {
				return nil, fmt.Errorf("%q: %v: %w", k, err, ErrInvalidParam)
			}
			return img, nil
		}
	}
	return nil, fmt.Errorf("%q must be a %s, got %T: %w", k, kind, v, ErrInvalidParam)
}

// CoerceAll applies Coerce to every entry of p.
func CoerceAll(p Params) (Params, error) {
	out := make(Params, len(p))
	for k, v := range p {
		c, err := Coerce(k, v)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}

func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// decodeImage accepts raw base64 or a data:<mime>;base64,<data> URL.
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, errors.New("data URL is not base64")
		}
		s = data
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad base64: %w", err)
	}
	return b, nil
}
