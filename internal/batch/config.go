// Package batch applies one extracted design set to many target photos.
package batch

import (
	"errors"
	"fmt"

	"github.com/geuryroustand/nail-design-try-on/internal/pipeline"
)

// Config holds all configuration for a batch try-on run.
type Config struct {
	// SourcePath is the photo the designs are extracted from.
	SourcePath string

	// Targets are files or directories to composite onto.
	Targets []string

	// OutputDir receives one result image per target.
	OutputDir string

	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Workers is the number of parallel compositing workers.
	Workers int

	// ContinueOnError keeps going after a per-target failure.
	ContinueOnError bool

	// Mirror flips inputs horizontally before detection.
	Mirror bool

	Quiet bool

	// Pipeline carries the detector and stage configuration.
	Pipeline pipeline.Config
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:  4,
		Pipeline: pipeline.DefaultConfig(),
	}
}

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if c.SourcePath == "" {
		return errors.New("source photo path is required")
	}
	if len(c.Targets) == 0 {
		return errors.New("at least one target path is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("invalid worker count: %d (must be positive)", c.Workers)
	}
	return nil
}
