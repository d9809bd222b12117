// Package validator wraps go-playground/validator with readable messages,
// checks parameter ranges and checks restored canvas layouts before they are
// applied.
package validator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every error returned from this package.
var ErrInvalid = errors.New("validation failed")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// fieldKeys maps paramRanges fields back to parameter names.
var fieldKeys = map[string]string{
	"loraweight": string(domain.KeyLoraWeight),
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	field = strings.ToLower(field)
	if name, ok := fieldKeys[field]; ok {
		field = name
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, strings.ToLower(e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// paramRanges holds the bounded parameters. Nil fields were not set.
type paramRanges struct {
	Steps      *int     `validate:"omitempty,min=1,max=150"`
	Guidance   *float64 `validate:"omitempty,min=0,max=30"`
	Seed       *int64   `validate:"omitempty,min=0,max=4294967295"`
	Width      *int     `validate:"omitempty,min=64,max=4096"`
	Height     *int     `validate:"omitempty,min=64,max=4096"`
	LoraWeight *float64 `validate:"omitempty,min=0,max=2"`
	Strength   *float64 `validate:"omitempty,min=0,max=1"`
}

// Params checks the ranges of coerced parameter values.
func Params(p domain.Params) error {
	var r paramRanges
	r.Steps = valueOf[int](p, domain.KeySteps)
	r.Guidance = valueOf[float64](p, domain.KeyGuidance)
	r.Seed = valueOf[int64](p, domain.KeySeed)
	r.Width = valueOf[int](p, domain.KeyWidth)
	r.Height = valueOf[int](p, domain.KeyHeight)
	r.LoraWeight = valueOf[float64](p, domain.KeyLoraWeight)
	r.Strength = valueOf[float64](p, domain.KeyStrength)
	return Struct(r)
}

func valueOf[T any](p domain.Params, k domain.Key) *T {
	if v, ok := p[k].(T); ok {
		return &v
	}
	return nil
}

// Layout checks a stored layout before it is applied to the canvas. Every
// problem is reported, not just the first.
func Layout(l domain.Layout, minScale, maxScale float64) error {
	var problems []string

	if math.IsNaN(l.Scale) || l.Scale < minScale || l.Scale > maxScale {
		problems = append(problems, fmt.Sprintf("scale %v outside [%v, %v]", l.Scale, minScale, maxScale))
	}
	if !finite(l.OffsetX) || !finite(l.OffsetY) {
		problems = append(problems, "offset is not finite")
	}
	for nt, p := range l.Positions {
		if !nt.Valid() {
			problems = append(problems, fmt.Sprintf("unknown node type '%s'", nt))
			continue
		}
		if !finite(p.X) || !finite(p.Y) {
			problems = append(problems, fmt.Sprintf("node '%s' has a non-finite position", nt))
		}
	}
	for _, nt := range domain.PermanentNodes {
		if _, ok := l.Positions[nt]; !ok {
			problems = append(problems, fmt.Sprintf("missing permanent node '%s'", nt))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: found %d errors:\n- %s", ErrInvalid, len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
