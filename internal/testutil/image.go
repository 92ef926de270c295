package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SkinTone is the default skin color used by synthetic hand images. It
// passes the extractor's skin classification rules.
var SkinTone = color.NRGBA{R: 200, G: 140, B: 120, A: 255}

// BluePolish is a polish color that survives skin and background
// classification.
var BluePolish = color.NRGBA{R: 50, G: 50, B: 200, A: 255}

// SkinImage returns a w x h image filled with SkinTone.
func SkinImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, SkinTone)
		}
	}
	return img
}

// PaintPatch fills the given rectangle with a color, clipped to the image.
func PaintPatch(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// PaintedHandImage returns a 200x200 skin image with a BluePolish patch
// covering the nail of the upright index finger from
// UprightIndexDetection.
func PaintedHandImage() *image.NRGBA {
	img := SkinImage(200, 200)
	PaintPatch(img, image.Rect(88, 56, 112, 88), BluePolish)
	return img
}

// WritePNG saves an image below dir and returns its path.
func WritePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
	return path
}

// ReadPNG loads a PNG from disk.
func ReadPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}
