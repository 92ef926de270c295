package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 0.70, cfg.ExtractionGeometry.CenterBias, 1e-9)
	assert.InDelta(t, 0.75, cfg.CompositeGeometry.CenterBias, 1e-9)
	assert.InDelta(t, 0.85, cfg.Compositing.Opacity, 1e-9)
	assert.InDelta(t, 0.7, cfg.Hand.DetectionConfidence, 1e-9)
}

func TestBuilderFluentConfiguration(t *testing.T) {
	p, err := NewBuilder().
		WithHandDetector(&fakeDetector{}).
		WithDetectionConfidence(0.8).
		WithOpacity(0.6).
		WithMinQuality(0.5).
		WithThreads(2).
		Build()
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	cfg := p.Config()
	assert.InDelta(t, 0.8, cfg.Hand.DetectionConfidence, 1e-9)
	assert.InDelta(t, 0.6, cfg.Compositing.Opacity, 1e-9)
	assert.InDelta(t, 0.5, cfg.Extraction.MinQuality, 1e-9)
	assert.InDelta(t, 0.5, cfg.ExtractionGeometry.MinQuality, 1e-9)
	assert.Equal(t, 2, cfg.Hand.NumThreads)
}

func TestBuilderIgnoresOutOfRangeValues(t *testing.T) {
	p, err := NewBuilder().
		WithHandDetector(&fakeDetector{}).
		WithDetectionConfidence(7).
		WithOpacity(-1).
		WithThreads(0).
		Build()
	require.NoError(t, err)

	cfg := p.Config()
	assert.InDelta(t, 0.7, cfg.Hand.DetectionConfidence, 1e-9)
	assert.InDelta(t, 0.85, cfg.Compositing.Opacity, 1e-9)
}

func TestBuildRequiresModelOrDetector(t *testing.T) {
	b := NewBuilder()
	b.cfg.Hand.ModelPath = ""
	b.cfg.ModelsDir = ""
	_, err := b.Build()
	require.Error(t, err)
}

func TestWithModelPathOverride(t *testing.T) {
	b := NewBuilder().WithModelPath("/opt/models/hand_landmark_full.onnx")
	assert.Equal(t, "/opt/models/hand_landmark_full.onnx", b.cfg.Hand.ModelPath)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(wrapErr(KindShare, "share result", errors.New("unsupported")))
	require.True(t, ok)
	assert.Equal(t, KindShare, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "input", KindInput.String())
	assert.Equal(t, "detection", KindDetection.String())
	assert.Equal(t, "extraction", KindExtraction.String())
	assert.Equal(t, "compositing", KindCompositing.String())
	assert.Equal(t, "share", KindShare.String())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "extracting", StateExtracting.String())
	assert.Equal(t, "extraction_done", StateExtractionDone.String())
	assert.Equal(t, "compositing", StateCompositing.String())
	assert.Equal(t, "done", StateDone.String())
}
