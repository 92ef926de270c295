package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/models"
	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
	"github.com/geuryroustand/nail-design-try-on/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// modelsHandler returns information about available landmark models.
func (s *Server) modelsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	modelInfos := models.ListAvailableModels()
	modelList := make([]ModelInfo, len(modelInfos))
	for i, info := range modelInfos {
		modelList[i] = ModelInfo{
			Name:        info.Name,
			Path:        models.ResolveModelPath("", info.Type, info.Variant, info.Filename),
			Type:        info.Type,
			Description: info.Description,
		}
	}

	response := ModelsResponse{
		Models: modelList,
		Count:  len(modelList),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode models response", "error", err)
	}
}

// extractHandler extracts per-finger designs from an uploaded source photo.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source, ok := s.readImageUpload(w, r, "source")
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	res, err := s.pipeline.Extract(ctx, source)
	if err != nil {
		tryonRequestsTotal.WithLabelValues("extract", "error").Inc()
		s.writePipelineError(w, err)
		return
	}
	tryonRequestsTotal.WithLabelValues("extract", "success").Inc()
	tryonProcessingDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	fingersProcessed.WithLabelValues("extract").Observe(float64(len(res.Designs)))

	designs := designInfos(res.Designs, r.FormValue("images") == "1")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ExtractResponse{Success: true, Designs: designs}); err != nil {
		slog.Error("Failed to encode extract response", "error", err)
	}
}

// tryonHandler runs the full source→target flow on a pair of uploads.
// The default response is the composited PNG; format=json returns metadata
// with the image base64-encoded.
func (s *Server) tryonHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source, ok := s.readImageUpload(w, r, "source")
	if !ok {
		return
	}
	target, ok := s.readImageUpload(w, r, "target")
	if !ok {
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	res, err := s.pipeline.TryOn(ctx, source, target)
	if err != nil {
		tryonRequestsTotal.WithLabelValues("tryon", "error").Inc()
		// A target detection failure still carries the original image.
		if res == nil || res.Image == nil {
			s.writePipelineError(w, err)
			return
		}
		slog.Warn("Try-on degraded to original image", "error", err)
	} else {
		tryonRequestsTotal.WithLabelValues("tryon", "success").Inc()
		tryonProcessingDuration.WithLabelValues("tryon").Observe(time.Since(start).Seconds())
		fingersProcessed.WithLabelValues("composite").Observe(float64(res.FingersApplied))
	}

	data, encErr := utils.EncodePNG(res.Image)
	if encErr != nil {
		s.writeErrorResponse(w, "Failed to encode result image", http.StatusInternalServerError)
		return
	}

	if r.FormValue("format") == "json" {
		resp := TryOnResponse{
			Success:          err == nil,
			FingersExtracted: res.FingersExtracted,
			FingersApplied:   res.FingersApplied,
			Width:            res.Width,
			Height:           res.Height,
			Image:            base64.StdEncoding.EncodeToString(data),
		}
		if err != nil {
			resp.Error = err.Error()
			if kind, ok := pipeline.KindOf(err); ok {
				resp.ErrorKind = kind.String()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("Failed to encode try-on response", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Fingers-Applied", fmt.Sprintf("%d", res.FingersApplied))
	_, _ = w.Write(data)
}

// designInfos converts the per-finger design map into API metadata,
// ordered by finger name for stable responses.
func designInfos(designs map[hand.Finger]*extractor.Design, includeImages bool) []DesignInfo {
	out := make([]DesignInfo, 0, len(designs))
	for finger, d := range designs {
		info := DesignInfo{
			Finger:   finger.String(),
			Rotation: d.Rotation,
			Length:   d.Length,
			Width:    d.Width,
			Quality:  d.Quality,
		}
		if includeImages {
			if data, err := utils.EncodePNG(d.Image); err == nil {
				info.Image = base64.StdEncoding.EncodeToString(data)
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Finger < out[j].Finger })
	return out
}

// readImageUpload parses one named image file from the multipart form,
// enforcing the upload cap. It writes the error response itself.
func (s *Server) readImageUpload(w http.ResponseWriter, r *http.Request, field string) (image.Image, bool) {
	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxBytes) // two files per request

	if err := r.ParseMultipartForm(2 * maxBytes); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("No %s image provided", field), http.StatusBadRequest)
		return nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := utils.DecodeImage(file, maxBytes)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, false
	}
	return img, true
}

// requestContext derives the per-request processing deadline.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeoutSec <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
}

// writePipelineError maps the pipeline error taxonomy to HTTP status codes.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kindName := ""
	if kind, ok := pipeline.KindOf(err); ok {
		kindName = kind.String()
		switch kind {
		case pipeline.KindInput:
			status = http.StatusBadRequest
		case pipeline.KindDetection, pipeline.KindExtraction, pipeline.KindCompositing:
			status = http.StatusUnprocessableEntity
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := TryOnResponse{Success: false, Error: err.Error(), ErrorKind: kindName}
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.Error("Failed to encode error response", "error", encErr)
	}
}

// writeErrorResponse writes a simple JSON error payload.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(TryOnResponse{Success: false, Error: message}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
