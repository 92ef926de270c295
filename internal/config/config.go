// Package config defines the application configuration and loads it from
// files, environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geuryroustand/nail-design-try-on/internal/compositor"
	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/geometry"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/models"
	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
)

// Config represents the complete configuration for the nailtry application.
// It covers all commands (extract, apply, serve) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`

	// GPU configuration
	GPU GPUConfig `mapstructure:"gpu" yaml:"gpu" json:"gpu"`
}

// PipelineConfig contains try-on pipeline settings.
type PipelineConfig struct {
	Detector    DetectorConfig    `mapstructure:"detector" yaml:"detector" json:"detector"`
	Extraction  ExtractionConfig  `mapstructure:"extraction" yaml:"extraction" json:"extraction"`
	Compositing CompositingConfig `mapstructure:"compositing" yaml:"compositing" json:"compositing"`
}

// DetectorConfig contains hand landmark detector settings.
type DetectorConfig struct {
	ModelPath           string  `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	Complexity          int     `mapstructure:"complexity" yaml:"complexity" json:"complexity"`
	DetectionConfidence float64 `mapstructure:"detection_confidence" yaml:"detection_confidence" json:"detection_confidence"`
	TrackingConfidence  float64 `mapstructure:"tracking_confidence" yaml:"tracking_confidence" json:"tracking_confidence"`
	NumThreads          int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
	TimeoutSec          int     `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// ExtractionConfig contains design extraction settings.
type ExtractionConfig struct {
	CenterBias       float64 `mapstructure:"center_bias" yaml:"center_bias" json:"center_bias"`
	WidthRatio       float64 `mapstructure:"width_ratio" yaml:"width_ratio" json:"width_ratio"`
	MinQuality       float64 `mapstructure:"min_quality" yaml:"min_quality" json:"min_quality"`
	BrightnessFactor float64 `mapstructure:"brightness_factor" yaml:"brightness_factor" json:"brightness_factor"`
	ContrastFactor   float64 `mapstructure:"contrast_factor" yaml:"contrast_factor" json:"contrast_factor"`
	AlphaBoost       float64 `mapstructure:"alpha_boost" yaml:"alpha_boost" json:"alpha_boost"`
}

// CompositingConfig contains design compositing settings.
type CompositingConfig struct {
	CenterBias float64 `mapstructure:"center_bias" yaml:"center_bias" json:"center_bias"`
	WidthRatio float64 `mapstructure:"width_ratio" yaml:"width_ratio" json:"width_ratio"`
	Opacity    float64 `mapstructure:"opacity" yaml:"opacity" json:"opacity"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// GPUConfig contains GPU acceleration settings.
type GPUConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Device      int    `mapstructure:"device" yaml:"device" json:"device"`
	MemoryLimit string `mapstructure:"memory_limit" yaml:"memory_limit" json:"memory_limit"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	handCfg := hand.DefaultConfig()
	extGeo := geometry.DefaultExtractionConfig()
	compGeo := geometry.DefaultCompositeConfig()
	extCfg := extractor.DefaultConfig()
	compCfg := compositor.DefaultConfig()

	return Config{
		ModelsDir: models.GetModelsDir(""),
		LogLevel:  "info",
		Verbose:   false,
		Pipeline: PipelineConfig{
			Detector: DetectorConfig{
				Complexity:          handCfg.Complexity,
				DetectionConfidence: handCfg.DetectionConfidence,
				TrackingConfidence:  handCfg.TrackingConfidence,
				NumThreads:          handCfg.NumThreads,
				TimeoutSec:          int(handCfg.Timeout / time.Second),
			},
			Extraction: ExtractionConfig{
				CenterBias:       extGeo.CenterBias,
				WidthRatio:       extGeo.WidthRatio,
				MinQuality:       extCfg.MinQuality,
				BrightnessFactor: extCfg.Enhance.BrightnessFactor,
				ContrastFactor:   extCfg.Enhance.ContrastFactor,
				AlphaBoost:       extCfg.Enhance.AlphaBoost,
			},
			Compositing: CompositingConfig{
				CenterBias: compGeo.CenterBias,
				WidthRatio: compGeo.WidthRatio,
				Opacity:    compCfg.Opacity,
			},
		},
		Output: OutputConfig{
			Format: "png",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     10,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: false,
		},
		GPU: GPUConfig{
			Enabled:     false,
			Device:      0,
			MemoryLimit: "auto",
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"png", "jpeg"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	if err := validateFraction(c.Pipeline.Detector.DetectionConfidence, "detector.detection_confidence"); err != nil {
		return err
	}
	if err := validateFraction(c.Pipeline.Detector.TrackingConfidence, "detector.tracking_confidence"); err != nil {
		return err
	}
	if err := validateFraction(c.Pipeline.Extraction.MinQuality, "extraction.min_quality"); err != nil {
		return err
	}
	if err := validateFraction(c.Pipeline.Compositing.Opacity, "compositing.opacity"); err != nil {
		return err
	}
	if c.Pipeline.Detector.Complexity != 0 && c.Pipeline.Detector.Complexity != 1 {
		return fmt.Errorf("invalid detector complexity: %d (must be 0 or 1)", c.Pipeline.Detector.Complexity)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToPipelineConfig converts the config to the internal pipeline configuration.
func (c *Config) ToPipelineConfig() pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.ModelsDir = c.ModelsDir

	pc.Hand.Complexity = c.Pipeline.Detector.Complexity
	pc.Hand.DetectionConfidence = c.Pipeline.Detector.DetectionConfidence
	pc.Hand.TrackingConfidence = c.Pipeline.Detector.TrackingConfidence
	pc.Hand.NumThreads = c.Pipeline.Detector.NumThreads
	pc.Hand.GPU.UseGPU = c.GPU.Enabled
	pc.Hand.GPU.DeviceID = c.GPU.Device
	if c.Pipeline.Detector.TimeoutSec > 0 {
		pc.Hand.Timeout = time.Duration(c.Pipeline.Detector.TimeoutSec) * time.Second
	}
	pc.Hand.UpdateModelPath(c.ModelsDir)
	if c.Pipeline.Detector.ModelPath != "" {
		pc.Hand.ModelPath = c.Pipeline.Detector.ModelPath
	}

	pc.ExtractionGeometry.CenterBias = c.Pipeline.Extraction.CenterBias
	pc.ExtractionGeometry.WidthRatio = c.Pipeline.Extraction.WidthRatio
	pc.ExtractionGeometry.MinQuality = c.Pipeline.Extraction.MinQuality
	pc.Extraction.MinQuality = c.Pipeline.Extraction.MinQuality
	pc.Extraction.Enhance.BrightnessFactor = c.Pipeline.Extraction.BrightnessFactor
	pc.Extraction.Enhance.ContrastFactor = c.Pipeline.Extraction.ContrastFactor
	pc.Extraction.Enhance.AlphaBoost = c.Pipeline.Extraction.AlphaBoost

	pc.CompositeGeometry.CenterBias = c.Pipeline.Compositing.CenterBias
	pc.CompositeGeometry.WidthRatio = c.Pipeline.Compositing.WidthRatio
	pc.Compositing.Opacity = c.Pipeline.Compositing.Opacity

	return pc
}

// Marshal renders a configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default configuration as YAML to the given path.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	cfg := DefaultConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func validateFraction(v float64, name string) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("invalid %s: %v (must be between 0.0 and 1.0)", name, v)
	}
	return nil
}
