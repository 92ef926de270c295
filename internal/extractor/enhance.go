package extractor

import (
	"image"

	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// EnhanceConfig holds the vividness boost applied to design pixels.
type EnhanceConfig struct {
	BrightnessFactor float64 // Per-channel multiplier (default 1.15)
	ContrastFactor   float64 // Stretch around mid-gray 128 (default 1.3)
	AlphaBoost       float64 // Alpha multiplier compensating resize fade (default 1.1)
}

// DefaultEnhanceConfig returns the default enhancement factors.
func DefaultEnhanceConfig() EnhanceConfig {
	return EnhanceConfig{
		BrightnessFactor: 1.15,
		ContrastFactor:   1.3,
		AlphaBoost:       1.1,
	}
}

const midGray = 128

// EnhanceRegion classifies every pixel of the region and mutates the buffer
// in place: skin and background pixels become fully transparent, design
// pixels get a brightness and contrast boost. It returns the per-row design
// coverage fractions for quality scoring.
func EnhanceRegion(region *image.NRGBA, thresholds Thresholds, cfg EnhanceConfig) []float64 {
	if region == nil {
		return nil
	}
	b := region.Bounds()
	w, h := b.Dx(), b.Dy()
	rowCoverage := make([]float64, h)

	for y := range h {
		designInRow := 0
		for x := range w {
			off := region.PixOffset(x, y)
			r := region.Pix[off]
			g := region.Pix[off+1]
			bl := region.Pix[off+2]
			a := region.Pix[off+3]

			if a == 0 {
				continue // off-image sample, already transparent
			}

			if thresholds.Classify(r, g, bl) != ClassDesign {
				region.Pix[off+3] = 0
				continue
			}

			designInRow++
			region.Pix[off] = enhanceChannel(r, cfg)
			region.Pix[off+1] = enhanceChannel(g, cfg)
			region.Pix[off+2] = enhanceChannel(bl, cfg)
			region.Pix[off+3] = utils.ClampUint8(float64(a) * cfg.AlphaBoost)
		}
		if w > 0 {
			rowCoverage[y] = float64(designInRow) / float64(w)
		}
	}
	return rowCoverage
}

// enhanceChannel brightens then stretches contrast around mid-gray.
func enhanceChannel(v uint8, cfg EnhanceConfig) uint8 {
	brightened := float64(v) * cfg.BrightnessFactor
	stretched := (brightened-midGray)*cfg.ContrastFactor + midGray
	return utils.ClampUint8(stretched)
}
