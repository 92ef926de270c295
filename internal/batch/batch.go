package batch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// TargetResult records the outcome for one target photo.
type TargetResult struct {
	Path           string `json:"path"`
	OutputPath     string `json:"output_path,omitempty"`
	FingersApplied int    `json:"fingers_applied"`
	Error          string `json:"error,omitempty"`
	DurationMs     int64  `json:"duration_ms"`
}

// Result aggregates a whole batch run.
type Result struct {
	SourcePath       string         `json:"source_path"`
	FingersExtracted int            `json:"fingers_extracted"`
	Targets          []TargetResult `json:"targets"`
	Succeeded        int            `json:"succeeded"`
	Failed           int            `json:"failed"`
	DurationMs       int64          `json:"duration_ms"`
}

// runtime carries the built pipeline and the shared design set.
type runtime struct {
	pipeline *pipeline.Pipeline
	designs  map[hand.Finger]*extractor.Design
}

// Run extracts designs from the source photo once and composites them onto
// every discovered target, writing one output image per target.
func Run(ctx context.Context, cfg *Config, detector pipeline.HandDetector) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	targets, err := discoverTargetImages(cfg.Targets, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discover target images: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no target images found")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	rt, err := setup(ctx, cfg, detector)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rt.pipeline.Close() }()

	start := time.Now()
	result := &Result{
		SourcePath:       cfg.SourcePath,
		FingersExtracted: len(rt.designs),
		Targets:          make([]TargetResult, len(targets)),
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := cfg.Workers
	if workers > len(targets) {
		workers = len(targets)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				tr := rt.applyOne(runCtx, cfg, targets[idx])
				result.Targets[idx] = tr
				if tr.Error != "" && !cfg.ContinueOnError {
					cancel()
				}
			}
		}()
	}

	for i := range targets {
		select {
		case <-runCtx.Done():
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for i := range result.Targets {
		tr := &result.Targets[i]
		if tr.Path == "" {
			// Never scheduled: the run was cancelled first.
			tr.Path = targets[i]
			tr.Error = "skipped"
		}
		if tr.OutputPath != "" {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	result.DurationMs = time.Since(start).Milliseconds()

	if result.Failed > 0 && !cfg.ContinueOnError {
		return result, fmt.Errorf("batch aborted: %d of %d targets failed", result.Failed, len(targets))
	}
	return result, nil
}

// setup builds the pipeline and runs the one-time extraction pass.
func setup(ctx context.Context, cfg *Config, detector pipeline.HandDetector) (*runtime, error) {
	b := pipeline.NewBuilder().
		WithConfig(cfg.Pipeline).
		WithModelPath(cfg.Pipeline.Hand.ModelPath)
	if detector != nil {
		b = b.WithHandDetector(detector)
	}
	pl, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	src, _, err := utils.LoadImage(cfg.SourcePath)
	if err != nil {
		_ = pl.Close()
		return nil, fmt.Errorf("load source photo: %w", err)
	}
	if cfg.Mirror {
		src = utils.MirrorImage(src)
	}

	res, err := pl.Extract(ctx, src)
	if err != nil {
		_ = pl.Close()
		return nil, fmt.Errorf("extract designs from %s: %w", cfg.SourcePath, err)
	}

	if !cfg.Quiet {
		slog.Info("Extracted designs from source",
			"source", cfg.SourcePath, "fingers", len(res.Designs))
	}
	return &runtime{pipeline: pl, designs: res.Designs}, nil
}

// applyOne composites the shared designs onto a single target.
func (rt *runtime) applyOne(ctx context.Context, cfg *Config, path string) TargetResult {
	start := time.Now()
	tr := TargetResult{Path: path}

	if ctx.Err() != nil {
		tr.Error = "skipped"
		return tr
	}

	img, _, err := utils.LoadImage(path)
	if err != nil {
		tr.Error = err.Error()
		tr.DurationMs = time.Since(start).Milliseconds()
		return tr
	}
	var target image.Image = img
	if cfg.Mirror {
		target = utils.MirrorImage(target)
	}

	res, err := rt.pipeline.Apply(ctx, rt.designs, target)
	if err != nil {
		tr.Error = err.Error()
		tr.DurationMs = time.Since(start).Milliseconds()
		return tr
	}

	outPath := outputPath(cfg.OutputDir, path)
	if err := utils.SavePNG(outPath, res.Image); err != nil {
		tr.Error = err.Error()
		tr.DurationMs = time.Since(start).Milliseconds()
		return tr
	}

	tr.OutputPath = outPath
	tr.FingersApplied = res.FingersApplied
	tr.DurationMs = time.Since(start).Milliseconds()

	if !cfg.Quiet {
		slog.Info("Composited target", "target", path, "output", outPath,
			"fingers_applied", res.FingersApplied)
	}
	return tr
}

// outputPath derives the result filename for a target photo.
func outputPath(outputDir, targetPath string) string {
	base := filepath.Base(targetPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, name+"_tryon.png")
}
