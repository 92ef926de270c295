package hand

import (
	"errors"
	"time"

	"github.com/geuryroustand/nail-design-try-on/internal/models"
	"github.com/geuryroustand/nail-design-try-on/internal/onnx"
)

// Config holds configuration for the hand landmark detector.
type Config struct {
	ModelPath           string         // Path to ONNX hand landmark model
	MaxHands            int            // Maximum hands to report (the pipeline uses 1)
	Complexity          int            // Model complexity level: 0 = lite, 1 = full
	DetectionConfidence float64        // Minimum presence score to accept a hand (default: 0.7)
	TrackingConfidence  float64        // Minimum score to keep reusing a prior detection (default: 0.7)
	InputSize           int            // Model input edge length in pixels (default: 224)
	NumThreads          int            // Number of CPU threads (0 = auto)
	Timeout             time.Duration  // Per-detection deadline (default: 10s)
	GPU                 onnx.GPUConfig // GPU acceleration configuration
}

// DefaultConfig returns a default detector configuration.
func DefaultConfig() Config {
	return Config{
		ModelPath:           models.GetLandmarkModelPath("", 1),
		MaxHands:            1,
		Complexity:          1,
		DetectionConfidence: 0.7,
		TrackingConfidence:  0.7,
		InputSize:           224,
		NumThreads:          0,
		Timeout:             10 * time.Second,
		GPU:                 onnx.DefaultGPUConfig(),
	}
}

// UpdateModelPath updates ModelPath based on modelsDir and the complexity level.
func (c *Config) UpdateModelPath(modelsDir string) {
	c.ModelPath = models.GetLandmarkModelPath(modelsDir, c.Complexity)
}

// validateConfig validates the detector configuration.
func validateConfig(config Config) error {
	if config.ModelPath == "" {
		return errors.New("model path cannot be empty")
	}
	if config.MaxHands < 1 {
		return errors.New("max hands must be at least 1")
	}
	if config.DetectionConfidence < 0 || config.DetectionConfidence > 1 {
		return errors.New("detection confidence must be in [0,1]")
	}
	if config.TrackingConfidence < 0 || config.TrackingConfidence > 1 {
		return errors.New("tracking confidence must be in [0,1]")
	}
	if config.InputSize <= 0 {
		return errors.New("input size must be positive")
	}
	return nil
}
