package utils

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupportedImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"hand.jpg", true},
		{"hand.JPEG", true},
		{"design.png", true},
		{"scan.bmp", true},
		{"doc.pdf", false},
		{"noext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupportedImage(tt.path), tt.path)
	}
}

func TestLoadImageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	img := solidNRGBA(20, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, SavePNG(path, img))

	loaded, meta, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 20, meta.Width)
	assert.Equal(t, 10, meta.Height)
	assert.InDelta(t, 2.0, meta.AspectRatio, 1e-9)
	assert.Equal(t, 20, loaded.Bounds().Dx())
}

func TestLoadImageErrors(t *testing.T) {
	_, _, err := LoadImage("")
	assert.Error(t, err)

	_, _, err = LoadImage("missing.png")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "notimage.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))
	_, _, err = LoadImage(bad)
	assert.Error(t, err)

	unsupported := filepath.Join(dir, "file.gif")
	require.NoError(t, os.WriteFile(unsupported, []byte("GIF89a"), 0o600))
	_, _, err = LoadImage(unsupported)
	assert.Error(t, err)
}

func TestDecodeImageSizeCap(t *testing.T) {
	img := solidNRGBA(8, 8, color.NRGBA{R: 1, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	decoded, format, err := DecodeImage(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, decoded.Bounds().Dx())

	_, _, err = DecodeImage(bytes.NewReader(buf.Bytes()), int64(buf.Len()-1))
	assert.Error(t, err)
}

func TestMirrorImage(t *testing.T) {
	img := solidNRGBA(2, 1, color.NRGBA{A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	mirrored := ToNRGBA(MirrorImage(img))
	assert.Equal(t, uint8(0), mirrored.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), mirrored.NRGBAAt(1, 0).R)

	assert.Nil(t, MirrorImage(nil))
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(solidNRGBA(4, 4, color.NRGBA{G: 9, A: 255}))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = EncodePNG(nil)
	assert.Error(t, err)
}
