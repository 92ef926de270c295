// Package compositor re-projects extracted nail designs onto a target hand
// photo. Each design is scaled to the target nail length, rotated to the
// target orientation and blended multiplicatively so the hand's own shading
// shows through.
package compositor

import (
	"image"
	"image/draw"
	"log/slog"
	"math"

	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/geometry"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// Config holds the compositing parameters.
type Config struct {
	Opacity float64 // Blend opacity in [0,1] (default 0.85)
}

// DefaultConfig returns the default compositing configuration.
func DefaultConfig() Config {
	return Config{Opacity: 0.85}
}

// Compositor blends stored designs onto a result canvas.
type Compositor struct {
	cfg Config
}

// New creates a compositor with the given configuration.
func New(cfg Config) *Compositor {
	if cfg.Opacity <= 0 || cfg.Opacity > 1 {
		cfg.Opacity = DefaultConfig().Opacity
	}
	return &Compositor{cfg: cfg}
}

// Render composites every available design onto a copy of the target image.
// A finger is drawn only when it has both a target geometry and a stored
// design; everything else is left untouched. It returns the result canvas
// and the number of fingers actually modified.
func (c *Compositor) Render(target image.Image, geoms map[hand.Finger]*geometry.NailGeometry, designs map[hand.Finger]*extractor.Design) (*image.NRGBA, int) {
	canvas := cloneToNRGBA(target)
	applied := 0
	for _, finger := range hand.AllFingers {
		g, ok := geoms[finger]
		if !ok || g == nil {
			continue
		}
		d, ok := designs[finger]
		if !ok || d == nil {
			continue
		}
		if c.Apply(canvas, g, d) {
			applied++
		}
	}
	slog.Debug("Composited designs", "applied", applied, "stored", len(designs))
	return canvas, applied
}

// Apply blends a single design onto the canvas at the target geometry.
// The design canvas was stored de-rotated with the nail tip pointing up, so
// the forward transform rotates canvas-up onto the target's mid→tip
// direction, mirroring the de-rotation done at extraction time. Reports
// whether any pixel changed.
func (c *Compositor) Apply(canvas *image.NRGBA, g *geometry.NailGeometry, d *extractor.Design) bool {
	if canvas == nil || g == nil || d == nil || d.Image == nil {
		return false
	}
	db := d.Image.Bounds()
	dw, dh := db.Dx(), db.Dy()
	if dw == 0 || dh == 0 || g.Length <= 0 {
		return false
	}

	scale := g.Length / float64(dh)
	phi := g.Rotation + math.Pi/2
	sin, cos := math.Sincos(phi)
	dcx := float64(dw) / 2
	dcy := float64(dh) / 2

	// Iterate the axis-aligned bounding box of the rotated, scaled design
	// and map each canvas pixel back into design coordinates.
	radius := scale * 0.5 * math.Hypot(float64(dw), float64(dh))
	cb := canvas.Bounds()
	x0 := max(cb.Min.X, int(math.Floor(g.Center.X-radius)))
	x1 := min(cb.Max.X, int(math.Ceil(g.Center.X+radius))+1)
	y0 := max(cb.Min.Y, int(math.Floor(g.Center.Y-radius)))
	y1 := min(cb.Max.Y, int(math.Ceil(g.Center.Y+radius))+1)

	changed := false
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) - g.Center.X
			dy := float64(y) - g.Center.Y
			// Inverse rotation then inverse scale.
			u := (cos*dx + sin*dy) / scale
			v := (-sin*dx + cos*dy) / scale

			r, gg, b, a, ok := utils.BilinearNRGBA(d.Image, u+dcx, v+dcy)
			if !ok || a < 1 {
				continue
			}

			off := canvas.PixOffset(x, y)
			weight := c.cfg.Opacity * a / 255
			canvas.Pix[off] = multiplyBlend(canvas.Pix[off], r, weight)
			canvas.Pix[off+1] = multiplyBlend(canvas.Pix[off+1], gg, weight)
			canvas.Pix[off+2] = multiplyBlend(canvas.Pix[off+2], b, weight)
			changed = true
		}
	}
	return changed
}

// multiplyBlend mixes base toward base×overlay by the given weight.
// Weight 0 leaves the base untouched, weight 1 is a full multiply.
func multiplyBlend(base uint8, overlay, weight float64) uint8 {
	bf := float64(base)
	multiplied := bf * overlay / 255
	return utils.ClampUint8(bf + (multiplied-bf)*weight)
}

func cloneToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
