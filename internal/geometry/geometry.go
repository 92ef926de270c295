// Package geometry derives per-finger nail geometry from hand landmarks.
package geometry

import (
	"math"

	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// Config holds the tunable constants for nail geometry derivation. The
// extraction and compositing phases use slightly different center bias and
// width ratio values; both sets are kept as documented defaults rather than
// silently reconciled.
type Config struct {
	CenterBias  float64 // Weight toward the tip when placing the sampling center
	WidthRatio  float64 // Nail width as a fraction of length
	MinLengthPx float64 // Fingers shorter than this are rejected
	MinQuality  float64 // Quality floor below which a finger is rejected
	LengthNorm  float64 // Length at which the size factor saturates to 1
}

// DefaultExtractionConfig returns the constants used when sampling a design
// from the source photo.
func DefaultExtractionConfig() Config {
	return Config{
		CenterBias:  0.70,
		WidthRatio:  0.70,
		MinLengthPx: 20,
		MinQuality:  0.3,
		LengthNorm:  50,
	}
}

// DefaultCompositeConfig returns the constants used when placing a design on
// the target hand.
func DefaultCompositeConfig() Config {
	return Config{
		CenterBias:  0.75,
		WidthRatio:  0.75,
		MinLengthPx: 20,
		MinQuality:  0.3,
		LengthNorm:  50,
	}
}

// NailGeometry is the derived pixel-space geometry for one fingernail.
type NailGeometry struct {
	Center   utils.Point // Sampling center, biased toward the tip
	Rotation float64     // Angle of the mid→tip vector, radians from horizontal
	Length   float64     // Euclidean tip↔base distance in pixels
	Width    float64     // WidthRatio fraction of Length
	Quality  float64     // Combined visibility and size confidence in [0,1]
}

// Compute derives nail geometry from a (tip, base, mid) landmark triple and
// the image pixel dimensions. It returns nil when any landmark is missing,
// the length falls below the pixel floor, or the combined quality is below
// the quality floor.
func Compute(tip, base, mid *hand.Landmark, imageWidth, imageHeight int, cfg Config) *NailGeometry {
	if tip == nil || base == nil || mid == nil {
		return nil
	}
	if tip.IsMissing() || base.IsMissing() || mid.IsMissing() {
		return nil
	}
	if imageWidth <= 0 || imageHeight <= 0 {
		return nil
	}

	w := float64(imageWidth)
	h := float64(imageHeight)
	tipPx := utils.Point{X: tip.X * w, Y: tip.Y * h}
	basePx := utils.Point{X: base.X * w, Y: base.Y * h}
	midPx := utils.Point{X: mid.X * w, Y: mid.Y * h}

	length := tipPx.Distance(basePx)
	if length < cfg.MinLengthPx {
		return nil
	}

	// Orientation from the mid→tip segment approximates the nail's own long
	// axis better than base→tip does.
	rotation := math.Atan2(tipPx.Y-midPx.Y, tipPx.X-midPx.X)

	center := utils.Lerp(basePx, tipPx, cfg.CenterBias)

	quality := combineQuality(tip, base, mid, length, cfg)
	if quality < cfg.MinQuality {
		return nil
	}

	return &NailGeometry{
		Center:   center,
		Rotation: rotation,
		Length:   length,
		Width:    length * cfg.WidthRatio,
		Quality:  quality,
	}
}

// combineQuality multiplies landmark visibilities with a size factor that
// saturates at LengthNorm pixels. Landmarks without a visibility score
// (zero) are treated as fully visible.
func combineQuality(tip, base, mid *hand.Landmark, length float64, cfg Config) float64 {
	quality := 1.0
	for _, lm := range []*hand.Landmark{tip, base, mid} {
		if lm.Visibility > 0 {
			quality *= lm.Visibility
		}
	}
	norm := cfg.LengthNorm
	if norm <= 0 {
		norm = 50
	}
	sizeFactor := math.Min(length/norm, 1)
	return quality * sizeFactor
}

// ComputeAll derives geometry for every finger of a landmark set, skipping
// fingers that fail the floors. The result holds at most five entries.
func ComputeAll(ls *hand.Landmarks, imageWidth, imageHeight int, cfg Config) map[hand.Finger]*NailGeometry {
	out := make(map[hand.Finger]*NailGeometry, len(hand.AllFingers))
	if ls == nil {
		return out
	}
	for _, f := range hand.AllFingers {
		tip, base, mid := ls.Triple(f)
		if g := Compute(&tip, &base, &mid, imageWidth, imageHeight, cfg); g != nil {
			out[f] = g
		}
	}
	return out
}
