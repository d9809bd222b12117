package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		model  ModelType
		ratio  AspectRatio
		w, h   int
		wantOK bool
	}{
		{ModelSD15, Ratio1x1, 512, 512, true},
		{ModelSD15, Ratio16x9, 672, 384, true},
		{ModelSD2, Ratio3x2, 960, 640, true},
		{ModelSDXL, Ratio4x3, 1152, 896, true},
		{ModelFluxSchnell, Ratio16x9, 1344, 768, true},
		{ModelType("Mystery"), Ratio4x3, 576, 448, true},
		{ModelSDXL, AspectRatio("21:9"), 0, 0, false},
	}
	for _, tt := range tests {
		w, h, ok := Dimensions(tt.model, tt.ratio)
		assert.Equal(t, tt.wantOK, ok, "%s %s", tt.model, tt.ratio)
		assert.Equal(t, tt.w, w)
		assert.Equal(t, tt.h, h)
	}
}

func TestNodeType_Cardinality(t *testing.T) {
	for _, nt := range PermanentNodes {
		assert.True(t, nt.Permanent(), nt)
		assert.True(t, nt.Valid(), nt)
	}
	for _, nt := range OptionalNodes {
		assert.False(t, nt.Permanent(), nt)
		assert.True(t, nt.Valid(), nt)
	}
	assert.False(t, NodeType("edge").Valid())
}
