package extractor

import (
	"image"
	"math"

	"github.com/geuryroustand/nail-design-try-on/internal/geometry"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// RegionConfig controls the size of the extracted canvas. The crop is
// deliberately oversized relative to the nail so the classifier sees enough
// surrounding context to separate design from skin and background.
type RegionConfig struct {
	SizeFactor  float64 // Canvas size as a multiple of nail width/length (default 1.5)
	MinWidthPx  int     // Canvas width floor (default 64)
	MinHeightPx int     // Canvas height floor (default 96)
}

// DefaultRegionConfig returns the default crop sizing.
func DefaultRegionConfig() RegionConfig {
	return RegionConfig{
		SizeFactor:  1.5,
		MinWidthPx:  64,
		MinHeightPx: 96,
	}
}

// ExtractRegion copies a de-rotated window around the nail into a local
// canvas. The nail's long axis becomes vertical with the tip at the top,
// regardless of finger orientation in the source. Sampling outside the
// source bounds yields fully transparent pixels; a window entirely off the
// image produces a blank canvas rather than an error.
func ExtractRegion(src *image.NRGBA, g *geometry.NailGeometry, cfg RegionConfig) *image.NRGBA {
	if src == nil || g == nil {
		return nil
	}

	w := int(math.Max(g.Width*cfg.SizeFactor, float64(cfg.MinWidthPx)))
	h := int(math.Max(g.Length*cfg.SizeFactor, float64(cfg.MinHeightPx)))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	// Rotating the sampling frame by rotation+π/2 maps dst-up onto the
	// mid→tip direction in the source.
	phi := g.Rotation + math.Pi/2
	sin, cos := math.Sincos(phi)
	cx := float64(w) / 2
	cy := float64(h) / 2

	for v := range h {
		for u := range w {
			du := float64(u) - cx
			dv := float64(v) - cy
			sx := g.Center.X + cos*du - sin*dv
			sy := g.Center.Y + sin*du + cos*dv

			r, gg, b, a, ok := utils.BilinearNRGBA(src, sx, sy)
			if !ok {
				continue // stays transparent
			}
			off := dst.PixOffset(u, v)
			dst.Pix[off] = utils.ClampUint8(r)
			dst.Pix[off+1] = utils.ClampUint8(gg)
			dst.Pix[off+2] = utils.ClampUint8(b)
			dst.Pix[off+3] = utils.ClampUint8(a)
		}
	}
	return dst
}
