package domain

// ModelType is the model family reported by model_loaded.
type ModelType string

const (
	ModelSD15        ModelType = "SD 1.5"
	ModelSD2         ModelType = "SD 2.x"
	ModelSDXL        ModelType = "SDXL"
	ModelSD3         ModelType = "SD3"
	ModelFluxDev     ModelType = "FLUX Dev"
	ModelFluxSchnell ModelType = "FLUX Schnell"
)

// AspectRatio names a preset button.
type AspectRatio string

const (
	Ratio1x1  AspectRatio = "1:1"
	Ratio4x3  AspectRatio = "4:3"
	Ratio3x2  AspectRatio = "3:2"
	Ratio16x9 AspectRatio = "16:9"
)

// AspectRatios lists the presets in button order.
var AspectRatios = []AspectRatio{Ratio1x1, Ratio4x3, Ratio3x2, Ratio16x9}

var largePresets = map[AspectRatio][2]int{
	Ratio1x1:  {1024, 1024},
	Ratio4x3:  {1152, 896},
	Ratio3x2:  {1216, 832},
	Ratio16x9: {1344, 768},
}

var aspectPresets = map[ModelType]map[AspectRatio][2]int{
	ModelSD15: {
		Ratio1x1:  {512, 512},
		Ratio4x3:  {576, 448},
		Ratio3x2:  {608, 416},
		Ratio16x9: {672, 384},
	},
	ModelSD2: {
		Ratio1x1:  {768, 768},
		Ratio4x3:  {864, 640},
		Ratio3x2:  {960, 640},
		Ratio16x9: {1024, 576},
	},
	ModelSDXL:        largePresets,
	ModelSD3:         largePresets,
	ModelFluxDev:     largePresets,
	ModelFluxSchnell: largePresets,
}

// Dimensions returns the width and height for ratio on model type mt.
// Unknown model types use the SD 1.5 table. ok is false for an unknown ratio.
func Dimensions(mt ModelType, ratio AspectRatio) (width, height int, ok bool) {
	table, found := aspectPresets[mt]
	if !found {
		table = aspectPresets[ModelSD15]
	}
	wh, ok := table[ratio]
	return wh[0], wh[1], ok
}
