package compositor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/geometry"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

func whiteCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// dotDesign returns a transparent design canvas with a small opaque block
// of the given color at each listed point.
func dotDesign(w, h int, c color.NRGBA, points ...image.Point) *extractor.Design {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for _, p := range points {
		img.SetNRGBA(p.X, p.Y, c)
	}
	return &extractor.Design{
		Finger:  hand.Index,
		Image:   img,
		Length:  40,
		Width:   28,
		Quality: 0.8,
	}
}

func uprightGeometry(cx, cy, length float64) *geometry.NailGeometry {
	return &geometry.NailGeometry{
		Center:   utils.Point{X: cx, Y: cy},
		Rotation: -math.Pi / 2,
		Length:   length,
		Width:    length * 0.75,
		Quality:  1,
	}
}

func TestApplyCenterMapsToTargetCenter(t *testing.T) {
	canvas := whiteCanvas(200, 200)
	design := dotDesign(64, 96, color.NRGBA{R: 40, G: 40, B: 180, A: 255},
		image.Pt(32, 48))
	g := uprightGeometry(100, 100, 48)

	changed := New(DefaultConfig()).Apply(canvas, g, design)
	require.True(t, changed)

	// Multiply blend of white base: 255 + (overlay-255)*0.85.
	c := canvas.NRGBAAt(100, 100)
	assert.Equal(t, uint8(72), c.R)
	assert.Equal(t, uint8(72), c.G)
	assert.Equal(t, uint8(191), c.B)
}

// A target finger pointing right must rotate the design with it: a design
// pixel toward canvas-up (the nail tip) lands to the right of the center.
func TestApplyFollowsTargetRotation(t *testing.T) {
	canvas := whiteCanvas(300, 300)
	design := dotDesign(64, 96, color.NRGBA{R: 10, G: 10, B: 10, A: 255},
		image.Pt(32, 48), image.Pt(32, 38))
	g := &geometry.NailGeometry{
		Center:   utils.Point{X: 150, Y: 150},
		Rotation: 0, // tip to the right
		Length:   96, // scale 1 against the 96px canvas
		Width:    72,
		Quality:  1,
	}

	require.True(t, New(DefaultConfig()).Apply(canvas, g, design))

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	assert.NotEqual(t, white, canvas.NRGBAAt(150, 150), "center pixel blended")
	assert.NotEqual(t, white, canvas.NRGBAAt(160, 150), "tip-side pixel lands to the right")
	assert.Equal(t, white, canvas.NRGBAAt(150, 140), "nothing drawn straight up")
}

// Extracting a design and compositing it back with the same geometry must
// place its footprint at the original nail center.
func TestRoundTripRestoresPlacement(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	skin := color.NRGBA{R: 200, G: 140, B: 120, A: 255}
	for y := range 200 {
		for x := range 200 {
			src.SetNRGBA(x, y, skin)
		}
	}
	for y := 60; y < 84; y++ {
		for x := 90; x < 110; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 50, G: 50, B: 200, A: 255})
		}
	}
	g := uprightGeometry(100, 72, 40)
	g.Quality = 0.8

	d := extractor.New(extractor.DefaultConfig()).Extract(src, hand.Index, g)
	require.NotNil(t, d)

	canvas := whiteCanvas(200, 200)
	require.True(t, New(DefaultConfig()).Apply(canvas, g, d))

	// Centroid of blended pixels must match the geometry center within 1px.
	var sumX, sumY, n float64
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := range 200 {
		for x := range 200 {
			if canvas.NRGBAAt(x, y) != white {
				sumX += float64(x)
				sumY += float64(y)
				n++
			}
		}
	}
	require.NotZero(t, n)
	assert.InDelta(t, g.Center.X, sumX/n, 1.0)
	assert.InDelta(t, g.Center.Y, sumY/n, 1.0)
}

// A finger present in the target landmarks but without a stored design is
// skipped: its region of the canvas stays pixel-identical.
func TestRenderSkipsFingersWithoutDesign(t *testing.T) {
	target := whiteCanvas(300, 300)
	geoms := map[hand.Finger]*geometry.NailGeometry{
		hand.Index:  uprightGeometry(80, 80, 48),
		hand.Middle: uprightGeometry(220, 80, 48),
	}
	designs := map[hand.Finger]*extractor.Design{
		hand.Index: dotDesign(64, 96, color.NRGBA{R: 40, G: 40, B: 180, A: 255},
			image.Pt(32, 48)),
	}

	result, applied := New(DefaultConfig()).Render(target, geoms, designs)
	require.NotNil(t, result)
	assert.Equal(t, 1, applied)

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	assert.NotEqual(t, white, result.NRGBAAt(80, 80))
	for y := 30; y < 130; y++ {
		for x := 170; x < 270; x++ {
			require.Equal(t, white, result.NRGBAAt(x, y),
				"middle finger region must stay untouched at (%d,%d)", x, y)
		}
	}
}

func TestRenderWithNoDesigns(t *testing.T) {
	target := whiteCanvas(50, 50)
	result, applied := New(DefaultConfig()).Render(target,
		map[hand.Finger]*geometry.NailGeometry{hand.Ring: uprightGeometry(25, 25, 30)},
		nil)
	require.NotNil(t, result)
	assert.Zero(t, applied)
	assert.Equal(t, target.Pix, result.Pix)
}

func TestApplyNilInputs(t *testing.T) {
	c := New(DefaultConfig())
	canvas := whiteCanvas(10, 10)
	g := uprightGeometry(5, 5, 30)
	d := dotDesign(8, 8, color.NRGBA{A: 255}, image.Pt(4, 4))

	assert.False(t, c.Apply(nil, g, d))
	assert.False(t, c.Apply(canvas, nil, d))
	assert.False(t, c.Apply(canvas, g, nil))
	assert.False(t, c.Apply(canvas, g, &extractor.Design{}))
}

func TestMultiplyBlend(t *testing.T) {
	assert.Equal(t, uint8(200), multiplyBlend(200, 100, 0), "zero weight keeps the base")
	assert.Equal(t, uint8(78), multiplyBlend(200, 100, 1), "full weight is a pure multiply")
	assert.Equal(t, uint8(255), multiplyBlend(255, 255, 0.85), "white on white stays white")
}

func TestNewClampsOpacity(t *testing.T) {
	assert.InDelta(t, 0.85, New(Config{Opacity: 0}).cfg.Opacity, 1e-9)
	assert.InDelta(t, 0.85, New(Config{Opacity: 1.5}).cfg.Opacity, 1e-9)
	assert.InDelta(t, 0.6, New(Config{Opacity: 0.6}).cfg.Opacity, 1e-9)
}
