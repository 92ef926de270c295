// Package server exposes the try-on pipeline over HTTP and WebSocket.
package server

import (
	"context"
	"image"
	"net/http"

	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
)

// pipelineInterface defines the methods needed by the server from a pipeline.
type pipelineInterface interface {
	Extract(ctx context.Context, source image.Image) (*pipeline.ExtractionResult, error)
	TryOn(ctx context.Context, source, target image.Image) (*pipeline.TryOnResult, error)
	NewSession() *pipeline.Session
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    pipelineInterface
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	rateLimiter *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PipelineConfig pipeline.Config

	// Optional rate limiting; zero values disable the corresponding limit.
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64
}

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ModelInfo describes one available landmark model.
type ModelInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ModelsResponse lists the available landmark models.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
	Count  int         `json:"count"`
}

// DesignInfo describes one extracted design in API responses.
type DesignInfo struct {
	Finger   string  `json:"finger"`
	Rotation float64 `json:"rotation"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Quality  float64 `json:"quality"`
	Image    string  `json:"image,omitempty"` // base64-encoded PNG when requested
}

// ExtractResponse is the payload of the extract endpoint.
type ExtractResponse struct {
	Success bool         `json:"success"`
	Designs []DesignInfo `json:"designs,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// TryOnResponse is the JSON payload of the try-on endpoint.
type TryOnResponse struct {
	Success          bool   `json:"success"`
	FingersExtracted int    `json:"fingers_extracted,omitempty"`
	FingersApplied   int    `json:"fingers_applied,omitempty"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	Image            string `json:"image,omitempty"` // base64-encoded PNG
	Error            string `json:"error,omitempty"`
	ErrorKind        string `json:"error_kind,omitempty"`
}

// NewServer creates a new try-on server instance.
func NewServer(config Config) (*Server, error) {
	cfg := config.PipelineConfig

	pl, err := pipeline.NewBuilder().
		WithModelsDir(cfg.ModelsDir).
		WithModelPath(cfg.Hand.ModelPath).
		WithComplexity(cfg.Hand.Complexity).
		WithDetectionConfidence(cfg.Hand.DetectionConfidence).
		WithThreads(cfg.Hand.NumThreads).
		WithOpacity(cfg.Compositing.Opacity).
		WithMinQuality(cfg.Extraction.MinQuality).
		Build()
	if err != nil {
		return nil, err
	}

	s := &Server{
		pipeline:    pl,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}
	if config.RequestsPerMinute > 0 || config.RequestsPerHour > 0 ||
		config.MaxRequestsPerDay > 0 || config.MaxDataPerDay > 0 {
		s.rateLimiter = NewRateLimiter(config.RequestsPerMinute, config.RequestsPerHour,
			config.MaxRequestsPerDay, config.MaxDataPerDay)
	}
	return s, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/models", s.corsMiddleware(s.modelsHandler))
	mux.HandleFunc("/v1/extract", s.corsMiddleware(s.rateLimitMiddleware(s.extractHandler)))
	mux.HandleFunc("/v1/tryon", s.corsMiddleware(s.rateLimitMiddleware(s.tryonHandler)))
	mux.HandleFunc("/ws/tryon", s.tryonWebSocketHandler)
}
