package utils

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/geuryroustand/nail-design-try-on/internal/mempool"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ResizeForModel resizes an image to the exact model input size using Lanczos
// resampling. Aspect ratio is not preserved; landmark coordinates come back
// normalized, so the distortion cancels when mapping to the original frame.
func ResizeForModel(img image.Image, width, height int) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("input image is nil")}
	}
	if width <= 0 || height <= 0 {
		return nil, &ImageProcessingError{
			Operation: "resize",
			Err:       fmt.Errorf("invalid target dimensions: %dx%d", width, height),
		}
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// ToNRGBA converts any image to *image.NRGBA with bounds anchored at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// NormalizeImageNHWC converts an image into a float32 NHWC tensor scaled to
// [0,1], the input layout of the hand landmark model. The returned buffer
// comes from the mempool; callers return it via mempool.PutFloat32.
func NormalizeImageNHWC(img image.Image) ([]float32, int, int, error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("input image is nil")}
	}
	nrgba := ToNRGBA(img)
	width := nrgba.Bounds().Dx()
	height := nrgba.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("invalid image dimensions")}
	}

	data := mempool.GetFloat32(height * width * 3)
	for y := range height {
		for x := range width {
			off := nrgba.PixOffset(x, y)
			idx := (y*width + x) * 3
			data[idx] = float32(nrgba.Pix[off]) / 255.0
			data[idx+1] = float32(nrgba.Pix[off+1]) / 255.0
			data[idx+2] = float32(nrgba.Pix[off+2]) / 255.0
		}
	}
	return data, width, height, nil
}

// BilinearNRGBA samples src at fractional coordinates (x, y) with bilinear
// interpolation. ok is false when the point lies outside the image.
func BilinearNRGBA(src *image.NRGBA, x, y float64) (r, g, b, a float64, ok bool) {
	bnd := src.Bounds()
	if x < 0 || y < 0 || x > float64(bnd.Dx()-1) || y > float64(bnd.Dy()-1) {
		return 0, 0, 0, 0, false
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 > bnd.Dx()-1 {
		x1 = bnd.Dx() - 1
	}
	if y1 > bnd.Dy()-1 {
		y1 = bnd.Dy() - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	sample := func(px, py int) (float64, float64, float64, float64) {
		off := src.PixOffset(px, py)
		return float64(src.Pix[off]), float64(src.Pix[off+1]), float64(src.Pix[off+2]), float64(src.Pix[off+3])
	}
	r00, g00, b00, a00 := sample(x0, y0)
	r10, g10, b10, a10 := sample(x1, y0)
	r01, g01, b01, a01 := sample(x0, y1)
	r11, g11, b11, a11 := sample(x1, y1)

	lerp := func(p, q, t float64) float64 { return p + (q-p)*t }
	r = lerp(lerp(r00, r10, fx), lerp(r01, r11, fx), fy)
	g = lerp(lerp(g00, g10, fx), lerp(g01, g11, fx), fy)
	b = lerp(lerp(b00, b10, fx), lerp(b01, b11, fx), fy)
	a = lerp(lerp(a00, a10, fx), lerp(a01, a11, fx), fy)
	return r, g, b, a, true
}

// ClampUint8 clamps v to [0,255] and converts to uint8.
func ClampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
