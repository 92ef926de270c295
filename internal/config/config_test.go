package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.InDelta(t, 0.70, cfg.Pipeline.Extraction.CenterBias, 1e-9)
	assert.InDelta(t, 0.75, cfg.Pipeline.Compositing.CenterBias, 1e-9)
	assert.InDelta(t, 0.85, cfg.Pipeline.Compositing.Opacity, 1e-9)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	assert.Equal(t, 10, cfg.Pipeline.Detector.TimeoutSec)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"bad output format", func(c *Config) { c.Output.Format = "bmp" }},
		{"confidence above one", func(c *Config) { c.Pipeline.Detector.DetectionConfidence = 1.5 }},
		{"negative quality", func(c *Config) { c.Pipeline.Extraction.MinQuality = -0.1 }},
		{"opacity above one", func(c *Config) { c.Pipeline.Compositing.Opacity = 2 }},
		{"bad complexity", func(c *Config) { c.Pipeline.Detector.Complexity = 3 }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero upload cap", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"zero batch workers", func(c *Config) { c.Batch.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Detector.DetectionConfidence = 0.8
	cfg.Pipeline.Detector.TimeoutSec = 5
	cfg.Pipeline.Compositing.Opacity = 0.6
	cfg.Pipeline.Extraction.MinQuality = 0.4
	cfg.GPU.Enabled = true
	cfg.GPU.Device = 1

	pc := cfg.ToPipelineConfig()
	assert.InDelta(t, 0.8, pc.Hand.DetectionConfidence, 1e-9)
	assert.Equal(t, "5s", pc.Hand.Timeout.String())
	assert.InDelta(t, 0.6, pc.Compositing.Opacity, 1e-9)
	assert.InDelta(t, 0.4, pc.Extraction.MinQuality, 1e-9)
	assert.InDelta(t, 0.4, pc.ExtractionGeometry.MinQuality, 1e-9)
	assert.True(t, pc.Hand.GPU.UseGPU)
	assert.Equal(t, 1, pc.Hand.GPU.DeviceID)
	assert.NotEmpty(t, pc.Hand.ModelPath)
}

func TestToPipelineConfigModelPathOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Detector.ModelPath = "/opt/models/custom.onnx"
	pc := cfg.ToPipelineConfig()
	assert.Equal(t, "/opt/models/custom.onnx", pc.Hand.ModelPath)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nailtry.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_level: info")
	assert.Contains(t, string(data), "opacity: 0.85")

	assert.Error(t, WriteDefault(path), "must not overwrite an existing file")
}

func TestLoaderDefaults(t *testing.T) {
	l := NewLoaderWith(viper.New())
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 0.85, cfg.Pipeline.Compositing.Opacity, 1e-9)
}

func TestLoaderReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := []byte("log_level: debug\npipeline:\n  compositing:\n    opacity: 0.5\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 0.5, cfg.Pipeline.Compositing.Opacity, 1e-9)
	// Unset keys fall back to defaults.
	assert.InDelta(t, 0.7, cfg.Pipeline.Detector.DetectionConfidence, 1e-9)
}

func TestLoaderRejectsMissingFile(t *testing.T) {
	_, err := NewLoaderWith(viper.New()).LoadWithFile("/nonexistent/nailtry.yaml")
	assert.Error(t, err)
}

func TestLoaderRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: nope\n"), 0o644))

	_, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	assert.Error(t, err)
}
