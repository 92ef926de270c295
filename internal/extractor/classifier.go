// Package extractor crops, cleans and enhances nail designs from a source
// photo, producing per-finger design canvases in a de-rotated local frame.
package extractor

import "math"

// Class is the per-pixel classification of an extracted region.
type Class int

const (
	ClassSkin Class = iota
	ClassBackground
	ClassDesign
)

func (c Class) String() string {
	switch c {
	case ClassSkin:
		return "skin"
	case ClassBackground:
		return "background"
	case ClassDesign:
		return "design"
	default:
		return "unknown"
	}
}

// Thresholds centralizes the empirical constants of the skin and background
// heuristics. The four skin rules deliberately overlap; their redundancy is
// what makes the classifier robust across lighting conditions, so no single
// rule is authoritative.
type Thresholds struct {
	// RGB-ratio skin rule.
	RatioRMin      float64 // r must exceed this (default 95)
	RatioGMin      float64 // g must exceed this (default 40)
	RatioBMin      float64 // b must exceed this (default 20)
	RatioSpreadMin float64 // max-min channel spread must exceed this (default 15)
	RatioRGDelta   float64 // r-g must exceed this (default 15)

	// YCrCb skin rule.
	LumaMin float64 // default 80
	CrMin   float64 // default 133
	CrMax   float64 // default 173
	CbMin   float64 // default 77
	CbMax   float64 // default 127

	// HSV skin rule.
	HueMaxDeg float64 // default 50
	SatMin    float64 // default 0.23
	SatMax    float64 // default 0.68
	ValMin    float64 // default 0.35

	// Loose-range skin rule.
	LooseRMin    float64 // default 60
	LooseGMin    float64 // default 40
	LooseBMin    float64 // default 20
	LooseRGDelta float64 // r-g must be at least this (default 10)
	LooseGBDelta float64 // g-b must be at least this (default 5)

	// Background rules.
	DarkSumMax        float64 // r+g+b strictly below this is background (default 60)
	BrightSumMin      float64 // r+g+b strictly above this is background (default 720)
	NeutralSpreadMax  float64 // max pairwise channel difference strictly below this… (default 18)
	NeutralBrightness float64 // …combined with r+g+b strictly above this is background (default 600)
}

// DefaultThresholds returns the tuned constants for skin and background
// detection.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RatioRMin:      95,
		RatioGMin:      40,
		RatioBMin:      20,
		RatioSpreadMin: 15,
		RatioRGDelta:   15,

		LumaMin: 80,
		CrMin:   133,
		CrMax:   173,
		CbMin:   77,
		CbMax:   127,

		HueMaxDeg: 50,
		SatMin:    0.23,
		SatMax:    0.68,
		ValMin:    0.35,

		LooseRMin:    60,
		LooseGMin:    40,
		LooseBMin:    20,
		LooseRGDelta: 10,
		LooseGBDelta: 5,

		DarkSumMax:        60,
		BrightSumMin:      720,
		NeutralSpreadMax:  18,
		NeutralBrightness: 600,
	}
}

// Classify buckets a pixel as skin, background or design. A pixel is design
// iff no skin and no background rule fires. The function is pure: the same
// input always yields the same class.
func (t Thresholds) Classify(r, g, b uint8) Class {
	rf, gf, bf := float64(r), float64(g), float64(b)
	if t.isSkin(rf, gf, bf) {
		return ClassSkin
	}
	if t.isBackground(rf, gf, bf) {
		return ClassBackground
	}
	return ClassDesign
}

// isSkin is the OR of four independent heuristics.
func (t Thresholds) isSkin(r, g, b float64) bool {
	return t.skinRGBRatio(r, g, b) ||
		t.skinYCrCb(r, g, b) ||
		t.skinHSV(r, g, b) ||
		t.skinLooseRange(r, g, b)
}

func (t Thresholds) skinRGBRatio(r, g, b float64) bool {
	spread := max3(r, g, b) - min3(r, g, b)
	return r > t.RatioRMin && g > t.RatioGMin && b > t.RatioBMin &&
		spread > t.RatioSpreadMin &&
		r-g > t.RatioRGDelta && r > g && r > b
}

func (t Thresholds) skinYCrCb(r, g, b float64) bool {
	y := 0.299*r + 0.587*g + 0.114*b
	cr := 0.713*(r-y) + 128
	cb := 0.564*(b-y) + 128
	return y > t.LumaMin &&
		cr >= t.CrMin && cr <= t.CrMax &&
		cb >= t.CbMin && cb <= t.CbMax
}

func (t Thresholds) skinHSV(r, g, b float64) bool {
	h, s, v := rgbToHSV(r, g, b)
	return h >= 0 && h <= t.HueMaxDeg &&
		s >= t.SatMin && s <= t.SatMax &&
		v >= t.ValMin
}

func (t Thresholds) skinLooseRange(r, g, b float64) bool {
	return r >= t.LooseRMin && g >= t.LooseGMin && b >= t.LooseBMin &&
		r > g && g > b &&
		r-g >= t.LooseRGDelta && g-b >= t.LooseGBDelta
}

// isBackground is the OR of the brightness-extreme rule and the
// neutral-and-bright rule.
func (t Thresholds) isBackground(r, g, b float64) bool {
	sum := r + g + b
	if sum < t.DarkSumMax || sum > t.BrightSumMin {
		return true
	}
	spread := max3(r, g, b) - min3(r, g, b)
	return spread < t.NeutralSpreadMax && sum > t.NeutralBrightness
}

// rgbToHSV converts 0-255 channel values to hue in degrees, and saturation
// and value in [0,1].
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255
	g /= 255
	b /= 255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	v = maxC
	if maxC > 0 {
		s = delta / maxC
	}
	if delta == 0 {
		return 0, s, v
	}
	switch maxC {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }
func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
