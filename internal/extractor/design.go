package extractor

import (
	"image"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/geuryroustand/nail-design-try-on/internal/geometry"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// Design is the persisted output of the extraction phase for one finger.
// The pixel buffer is stored de-rotated in its own local frame; the recorded
// rotation must be reapplied at composite time.
type Design struct {
	Finger   hand.Finger  `json:"finger"`
	Image    *image.NRGBA `json:"-"`
	Rotation float64      `json:"rotation"` // Source-frame rotation at extraction time
	Length   float64      `json:"length"`   // Source nail length in pixels
	Width    float64      `json:"width"`    // Source nail width in pixels
	Quality  float64      `json:"quality"`  // Extraction confidence in [0,1]
}

// Config bundles the extraction stage configuration.
type Config struct {
	Region      RegionConfig
	Thresholds  Thresholds
	Enhance     EnhanceConfig
	MinQuality  float64 // Designs scoring below this are discarded (default 0.3)
	CoverageRef float64 // Mean design coverage at which the coverage factor saturates (default 0.10)
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		Region:      DefaultRegionConfig(),
		Thresholds:  DefaultThresholds(),
		Enhance:     DefaultEnhanceConfig(),
		MinQuality:  0.3,
		CoverageRef: 0.10,
	}
}

// Extractor turns source-photo nail regions into cleaned design canvases.
type Extractor struct {
	cfg Config
}

// New creates an extractor with the given configuration.
func New(cfg Config) *Extractor {
	if cfg.CoverageRef <= 0 {
		cfg.CoverageRef = 0.10
	}
	return &Extractor{cfg: cfg}
}

// Config returns a copy of the extractor configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Extract crops, classifies and enhances the nail region for one finger.
// It returns nil when the extraction quality falls below the floor — the
// finger then simply has no stored design.
func (e *Extractor) Extract(src image.Image, finger hand.Finger, g *geometry.NailGeometry) *Design {
	if src == nil || g == nil {
		return nil
	}

	region := ExtractRegion(utils.ToNRGBA(src), g, e.cfg.Region)
	if region == nil {
		return nil
	}

	rowCoverage := EnhanceRegion(region, e.cfg.Thresholds, e.cfg.Enhance)
	quality := e.scoreExtraction(g, rowCoverage)

	if quality < e.cfg.MinQuality {
		slog.Debug("Discarding low-quality extraction",
			"finger", finger.String(), "quality", quality)
		return nil
	}

	return &Design{
		Finger:   finger,
		Image:    region,
		Rotation: g.Rotation,
		Length:   g.Length,
		Width:    g.Width,
		Quality:  quality,
	}
}

// scoreExtraction combines the geometric quality with how much of the region
// survived classification. A region where almost nothing classified as
// design is either bare skin or a miss; its mean row coverage drags the
// score below the floor.
func (e *Extractor) scoreExtraction(g *geometry.NailGeometry, rowCoverage []float64) float64 {
	if len(rowCoverage) == 0 {
		return 0
	}
	mean := stat.Mean(rowCoverage, nil)
	coverageFactor := math.Min(mean/e.cfg.CoverageRef, 1)
	return g.Quality * coverageFactor
}
