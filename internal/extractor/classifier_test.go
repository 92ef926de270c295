package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownPixels(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name    string
		r, g, b uint8
		want    Class
	}{
		{"warm skin tone", 200, 140, 120, ClassSkin},
		{"dark shadow", 10, 10, 10, ClassBackground},
		{"blown-out white", 255, 250, 250, ClassBackground},
		{"neutral light background", 210, 205, 200, ClassBackground},
		{"saturated red polish", 200, 30, 60, ClassDesign},
		{"blue polish", 50, 50, 200, ClassDesign},
		{"mid gray", 128, 128, 128, ClassDesign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Classify(tt.r, tt.g, tt.b))
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	th := DefaultThresholds()
	first := th.Classify(180, 120, 100)
	for range 5 {
		assert.Equal(t, first, th.Classify(180, 120, 100))
	}
}

// Dark background uses a strict less-than: a sum of exactly 60 is not dark.
func TestDarkSumBoundary(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, ClassBackground, th.Classify(19, 20, 20)) // sum 59
	assert.Equal(t, ClassDesign, th.Classify(20, 20, 20))     // sum 60
}

// Bright background uses a strict greater-than on 720, but a neutral pixel
// at exactly 720 is still caught by the neutral-and-bright rule.
func TestBrightSumBoundary(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, ClassBackground, th.Classify(240, 240, 240)) // neutral rule at sum 720
	assert.Equal(t, ClassBackground, th.Classify(255, 255, 211)) // sum 721, bright rule
}

// The neutral rule needs brightness strictly above 600: uniform gray 200
// (sum exactly 600) stays design, gray 201 becomes background.
func TestNeutralBrightnessBoundary(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, ClassDesign, th.Classify(200, 200, 200))
	assert.Equal(t, ClassBackground, th.Classify(201, 201, 201))
}

// Mid gray has zero channel variance but sits far below the neutral
// brightness threshold, so it must remain design.
func TestMidGrayStaysDesign(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, ClassDesign, th.Classify(128, 128, 128))
}

func TestSkinRGBRatioRule(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.skinRGBRatio(200, 140, 120))
	assert.False(t, th.skinRGBRatio(200, 190, 180), "spread and r-g delta too small")
	assert.False(t, th.skinRGBRatio(90, 140, 120), "r below floor and not dominant")
}

func TestSkinYCrCbRule(t *testing.T) {
	th := DefaultThresholds()
	// Chosen so the RGB-ratio rule does not fire (r-g delta only 10).
	assert.True(t, th.skinYCrCb(120, 110, 60))
	assert.False(t, th.skinYCrCb(30, 30, 30), "luma below floor")
	assert.False(t, th.skinYCrCb(200, 30, 60), "chroma outside skin band")
}

func TestSkinHSVRule(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.skinHSV(90, 75, 60))
	assert.False(t, th.skinHSV(85, 70, 55), "value below floor")
	assert.False(t, th.skinHSV(60, 90, 200), "hue outside skin band")
}

func TestSkinLooseRangeRule(t *testing.T) {
	th := DefaultThresholds()
	// Dim pixel that only the loose-range rule accepts.
	assert.True(t, th.skinLooseRange(85, 70, 55))
	assert.Equal(t, ClassSkin, th.Classify(85, 70, 55))
	assert.False(t, th.skinLooseRange(85, 70, 68), "g-b delta too small")
	assert.False(t, th.skinLooseRange(70, 80, 55), "channels not ordered r>g>b")
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "skin", ClassSkin.String())
	assert.Equal(t, "background", ClassBackground.String())
	assert.Equal(t, "design", ClassDesign.String())
	assert.Equal(t, "unknown", Class(9).String())
}

func TestRGBToHSV(t *testing.T) {
	h, s, v := rgbToHSV(255, 0, 0)
	assert.InDelta(t, 0, h, 1e-9)
	assert.InDelta(t, 1, s, 1e-9)
	assert.InDelta(t, 1, v, 1e-9)

	h, s, v = rgbToHSV(0, 255, 0)
	assert.InDelta(t, 120, h, 1e-9)
	assert.InDelta(t, 1, s, 1e-9)
	assert.InDelta(t, 1, v, 1e-9)

	h, s, v = rgbToHSV(128, 128, 128)
	assert.InDelta(t, 0, h, 1e-9)
	assert.InDelta(t, 0, s, 1e-9)
	assert.InDelta(t, 128.0/255.0, v, 1e-9)
}
