package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Model name constants to avoid typos and ensure consistency.
const (
	// Hand landmark models by complexity level. Lite trades accuracy for
	// speed; full is the default for still-photo processing.
	HandLandmarkLite = "hand_landmark_lite.onnx"
	HandLandmarkFull = "hand_landmark_full.onnx"
)

// Model type categories for organized directory structure.
const (
	TypeLandmark = "landmark"
)

// Model variant categories.
const (
	VariantLite = "lite"
	VariantFull = "full"
)

// Default models directory.
const DefaultModelsDir = "models"

// Environment variable for models directory override.
const EnvModelsDir = "NAILTRY_MODELS_DIR"

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not find project root (go.mod not found)")
}

// ModelInfo contains metadata about a model.
type ModelInfo struct {
	Name        string
	Type        string
	Variant     string
	Description string
	Filename    string
}

// GetModelsDir returns the models directory path from various sources.
// Priority: 1. Explicit modelsDir parameter, 2. Environment variable, 3. Project root + default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// ResolveModelPath resolves a model filename to its full path.
// Supports both the organized structure (models/landmark/full/…) and a flat
// models directory for backward compatibility.
func ResolveModelPath(modelsDir, modelType, variant, filename string) string {
	baseDir := GetModelsDir(modelsDir)

	if modelType != "" {
		var organizedPath string
		if variant != "" {
			organizedPath = filepath.Join(baseDir, modelType, variant, filename)
		} else {
			organizedPath = filepath.Join(baseDir, modelType, filename)
		}
		if _, err := os.Stat(organizedPath); err == nil {
			return organizedPath
		}
	}

	return filepath.Join(baseDir, filename)
}

// GetLandmarkModelPath returns the path for a hand landmark model.
// Complexity levels above zero select the full model.
func GetLandmarkModelPath(modelsDir string, complexity int) string {
	filename := HandLandmarkLite
	variant := VariantLite
	if complexity > 0 {
		filename = HandLandmarkFull
		variant = VariantFull
	}
	return ResolveModelPath(modelsDir, TypeLandmark, variant, filename)
}

// ValidateModelExists checks if a model file exists at the given path.
func ValidateModelExists(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// ListAvailableModels returns information about available models.
func ListAvailableModels() []ModelInfo {
	return []ModelInfo{
		{
			Name:        "hand-landmark-lite",
			Type:        TypeLandmark,
			Variant:     VariantLite,
			Description: "Hand landmark model, lite complexity",
			Filename:    HandLandmarkLite,
		},
		{
			Name:        "hand-landmark-full",
			Type:        TypeLandmark,
			Variant:     VariantFull,
			Description: "Hand landmark model, full complexity",
			Filename:    HandLandmarkFull,
		},
	}
}
