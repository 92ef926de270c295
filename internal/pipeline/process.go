package pipeline

import (
	"context"
	"image"

	"github.com/geuryroustand/nail-design-try-on/internal/common"
	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
)

// ExtractionResult is the aggregated output of an extraction pass.
type ExtractionResult struct {
	Designs map[hand.Finger]*extractor.Design `json:"designs"`
	Timings common.StageTimings               `json:"-"`
}

// TryOnResult is the aggregated output of one full source→target run.
type TryOnResult struct {
	Image            *image.NRGBA        `json:"-"`
	FingersExtracted int                 `json:"fingers_extracted"`
	FingersApplied   int                 `json:"fingers_applied"`
	Width            int                 `json:"width"`
	Height           int                 `json:"height"`
	Timings          common.StageTimings `json:"-"`
}

// Extract runs a single extraction pass over a source photo using a fresh
// session and returns the per-finger designs.
func (p *Pipeline) Extract(ctx context.Context, source image.Image) (*ExtractionResult, error) {
	s := NewSession(p)
	if _, err := s.ExtractDesigns(ctx, source); err != nil {
		return nil, err
	}
	return &ExtractionResult{
		Designs: s.Designs(),
		Timings: s.Timings(),
	}, nil
}

// Apply composites previously extracted designs onto a target photo using
// a fresh session seeded with the designs.
func (p *Pipeline) Apply(
	ctx context.Context,
	designs map[hand.Finger]*extractor.Design,
	target image.Image,
) (*TryOnResult, error) {
	s := NewSession(p)
	if err := s.LoadDesigns(designs); err != nil {
		return nil, err
	}

	img, applied, err := s.ApplyDesigns(ctx, target)
	res := &TryOnResult{
		Image:            img,
		FingersExtracted: len(designs),
		FingersApplied:   applied,
		Timings:          s.Timings(),
	}
	if img != nil {
		res.Width = img.Bounds().Dx()
		res.Height = img.Bounds().Dy()
	}
	return res, err
}

// TryOn runs the full flow on a fresh session: extract designs from the
// source photo, then composite them onto the target photo. On a target
// detection failure, the returned result still carries the original target
// image alongside the error.
func (p *Pipeline) TryOn(ctx context.Context, source, target image.Image) (*TryOnResult, error) {
	s := NewSession(p)

	extracted, err := s.ExtractDesigns(ctx, source)
	if err != nil {
		return nil, err
	}

	img, applied, err := s.ApplyDesigns(ctx, target)
	res := &TryOnResult{
		Image:            img,
		FingersExtracted: extracted,
		FingersApplied:   applied,
		Timings:          s.Timings(),
	}
	if img != nil {
		res.Width = img.Bounds().Dx()
		res.Height = img.Bounds().Dy()
	}
	if err != nil {
		return res, err
	}
	return res, nil
}
