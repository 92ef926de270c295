// Package pipeline sequences hand detection, nail-design extraction and
// compositing, and owns the at-most-one-hand, up-to-five-fingers contract.
package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/geuryroustand/nail-design-try-on/internal/compositor"
	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/geometry"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/models"
)

// HandDetector is the part of the landmark detector the pipeline depends
// on. The production implementation wraps an ONNX session; tests substitute
// a scripted fake.
type HandDetector interface {
	Detect(ctx context.Context, img image.Image) (*hand.Detection, error)
	Close() error
}

// Config holds configuration for the try-on pipeline and its components.
// Extraction and compositing deliberately carry independent geometry
// constant sets; the source material tuned them separately per phase.
type Config struct {
	ModelsDir          string
	Hand               hand.Config
	ExtractionGeometry geometry.Config
	CompositeGeometry  geometry.Config
	Extraction         extractor.Config
	Compositing        compositor.Config
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir:          models.GetModelsDir(""),
		Hand:               hand.DefaultConfig(),
		ExtractionGeometry: geometry.DefaultExtractionConfig(),
		CompositeGeometry:  geometry.DefaultCompositeConfig(),
		Extraction:         extractor.DefaultConfig(),
		Compositing:        compositor.DefaultConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg       Config
	detector  HandDetector
	modelPath string // explicit override, wins over ModelsDir resolution
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithModelsDir sets the models directory and updates the landmark model path.
func (b *Builder) WithModelsDir(dir string) *Builder {
	if dir != "" {
		b.cfg.ModelsDir = dir
	}
	b.cfg.Hand.UpdateModelPath(b.cfg.ModelsDir)
	return b
}

// WithModelPath overrides the landmark model path directly.
func (b *Builder) WithModelPath(path string) *Builder {
	if path != "" {
		b.modelPath = path
		b.cfg.Hand.ModelPath = path
	}
	return b
}

// WithComplexity selects the landmark model variant (0 = lite, 1 = full).
func (b *Builder) WithComplexity(level int) *Builder {
	if level >= 0 {
		b.cfg.Hand.Complexity = level
	}
	b.cfg.Hand.UpdateModelPath(b.cfg.ModelsDir)
	return b
}

// WithDetectionConfidence sets the hand presence confidence floor.
func (b *Builder) WithDetectionConfidence(c float64) *Builder {
	if c > 0 && c <= 1 {
		b.cfg.Hand.DetectionConfidence = c
	}
	return b
}

// WithThreads sets the intra-op thread count for inference (if >0).
func (b *Builder) WithThreads(n int) *Builder {
	if n > 0 {
		b.cfg.Hand.NumThreads = n
	}
	return b
}

// WithOpacity sets the compositing blend opacity.
func (b *Builder) WithOpacity(o float64) *Builder {
	if o > 0 && o <= 1 {
		b.cfg.Compositing.Opacity = o
	}
	return b
}

// WithMinQuality sets the extraction quality floor for both the geometric
// rejection and the design acceptance gate.
func (b *Builder) WithMinQuality(q float64) *Builder {
	if q >= 0 && q <= 1 {
		b.cfg.ExtractionGeometry.MinQuality = q
		b.cfg.Extraction.MinQuality = q
	}
	return b
}

// WithHandDetector injects a pre-built detector, bypassing model loading.
func (b *Builder) WithHandDetector(d HandDetector) *Builder {
	b.detector = d
	return b
}

// Validate checks the configuration before building.
func (b *Builder) Validate() error {
	if b.detector == nil && b.cfg.Hand.ModelPath == "" {
		return fmt.Errorf("hand landmark model path is not set")
	}
	if b.cfg.Compositing.Opacity <= 0 || b.cfg.Compositing.Opacity > 1 {
		return fmt.Errorf("compositing opacity must be in (0,1], got %v", b.cfg.Compositing.Opacity)
	}
	return nil
}

// Pipeline bundles the detector with the extraction and compositing stages.
type Pipeline struct {
	cfg        Config
	Detector   HandDetector
	Extractor  *extractor.Extractor
	Compositor *compositor.Compositor
}

// Build initializes the pipeline components, loading the landmark model
// unless a detector was injected.
func (b *Builder) Build() (*Pipeline, error) {
	if b.modelPath != "" {
		b.cfg.Hand.ModelPath = b.modelPath
	} else {
		b.cfg.Hand.UpdateModelPath(b.cfg.ModelsDir)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	det := b.detector
	if det == nil {
		d, err := hand.NewDetector(b.cfg.Hand)
		if err != nil {
			return nil, fmt.Errorf("init hand detector: %w", err)
		}
		det = d
	}

	return &Pipeline{
		cfg:        b.cfg,
		Detector:   det,
		Extractor:  extractor.New(b.cfg.Extraction),
		Compositor: compositor.New(b.cfg.Compositing),
	}, nil
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Close releases the detector's model session.
func (p *Pipeline) Close() error {
	if p.Detector == nil {
		return nil
	}
	return p.Detector.Close()
}
