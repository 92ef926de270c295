package server

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
)

// mockTryOnPipeline is a scripted pipelineInterface implementation for
// handler tests.
type mockTryOnPipeline struct {
	extractResult *pipeline.ExtractionResult
	extractErr    error
	tryonResult   *pipeline.TryOnResult
	tryonErr      error

	// Optional real pipeline backing NewSession for WebSocket tests.
	sessionPipeline *pipeline.Pipeline
}

func (m *mockTryOnPipeline) Extract(ctx context.Context, source image.Image) (*pipeline.ExtractionResult, error) {
	return m.extractResult, m.extractErr
}

func (m *mockTryOnPipeline) TryOn(ctx context.Context, source, target image.Image) (*pipeline.TryOnResult, error) {
	return m.tryonResult, m.tryonErr
}

func (m *mockTryOnPipeline) NewSession() *pipeline.Session {
	if m.sessionPipeline == nil {
		return nil
	}
	return m.sessionPipeline.NewSession()
}

func (m *mockTryOnPipeline) Close() error {
	return nil
}

// newTestServer builds a server around a mock pipeline with sane limits.
func newTestServer(mock pipelineInterface) *Server {
	return &Server{
		pipeline:    mock,
		corsOrigin:  "*",
		maxUploadMB: 10,
		timeoutSec:  5,
	}
}

// testDesign builds an extracted design with a solid-color canvas.
func testDesign(finger hand.Finger) *extractor.Design {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 96))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	return &extractor.Design{
		Finger:   finger,
		Image:    img,
		Rotation: 0.4,
		Length:   42,
		Width:    28,
		Quality:  0.85,
	}
}

// createTestImage creates a gradient test image.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{byte(x % 256), byte(y % 256), 120, 255})
		}
	}
	return img
}

// encodeImageToPNG encodes an image to PNG bytes.
func encodeImageToPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	return buf.Bytes(), err
}

// newUploadRequest builds a multipart request with the given image files
// and extra form fields.
func newUploadRequest(path string, files map[string][]byte, fields map[string]string) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, data := range files {
		part, err := writer.CreateFormFile(field, field+".png")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
