// Package config loads analysis settings from JSON files. Fields are pointers
// so a partial config file only overrides what it names; the Get* accessors
// supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/turbulence-data/vsf.report/internal/units"
)

// AnalysisConfig represents the tunable parameters of a structure-function
// run. The schema matches the cmd/vsf flags so a config file can stand in for
// a flag set.
type AnalysisConfig struct {
	// Kernel params
	Order        *int  `json:"order,omitempty"`
	Workers      *int  `json:"workers,omitempty"`
	SubtractMean *bool `json:"subtract_mean,omitempty"`

	// Lag unit params
	Units           *string  `json:"units,omitempty"`
	ArcsecPerPixel  *float64 `json:"arcsec_per_pixel,omitempty"`
	ParsecPerArcsec *float64 `json:"parsec_per_arcsec,omitempty"`

	// Power-law fit params
	FitMin        *float64 `json:"fit_min,omitempty"`
	FitMax        *float64 `json:"fit_max,omitempty"`
	FitIterations *int     `json:"fit_iterations,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
}

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.Order != nil && *c.Order < 1 {
		return fmt.Errorf("order must be >= 1, got %d", *c.Order)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("invalid units %q, valid values: %s", *c.Units, units.ValidUnitsString())
	}
	if c.ArcsecPerPixel != nil && *c.ArcsecPerPixel <= 0 {
		return fmt.Errorf("arcsec_per_pixel must be positive, got %f", *c.ArcsecPerPixel)
	}
	if c.ParsecPerArcsec != nil && *c.ParsecPerArcsec <= 0 {
		return fmt.Errorf("parsec_per_arcsec must be positive, got %f", *c.ParsecPerArcsec)
	}
	if c.FitMin != nil && c.FitMax != nil && *c.FitMin >= *c.FitMax {
		return fmt.Errorf("fit_min (%f) must be less than fit_max (%f)", *c.FitMin, *c.FitMax)
	}
	if c.FitIterations != nil && *c.FitIterations < 1 {
		return fmt.Errorf("fit_iterations must be >= 1, got %d", *c.FitIterations)
	}
	return nil
}

// GetOrder returns the structure-function order or the default.
func (c *AnalysisConfig) GetOrder() int {
	if c.Order == nil {
		return 1 // first-order structure function
	}
	return *c.Order
}

// GetWorkers returns the worker count or hardware concurrency.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

// GetSubtractMean returns whether to mean-subtract the grid before analysis.
func (c *AnalysisConfig) GetSubtractMean() bool {
	if c.SubtractMean == nil {
		return false
	}
	return *c.SubtractMean
}

// GetUnits returns the output lag unit or the default.
func (c *AnalysisConfig) GetUnits() string {
	if c.Units == nil {
		return units.Pixel
	}
	return *c.Units
}

// GetScale returns the lag conversion scale, using defaults for unset fields.
func (c *AnalysisConfig) GetScale() units.Scale {
	s := units.DefaultScale()
	if c.ArcsecPerPixel != nil {
		s.ArcsecPerPixel = *c.ArcsecPerPixel
	}
	if c.ParsecPerArcsec != nil {
		s.ParsecPerArcsec = *c.ParsecPerArcsec
	}
	return s
}

// GetFitIterations returns the Monte-Carlo iteration count or the default.
func (c *AnalysisConfig) GetFitIterations() int {
	if c.FitIterations == nil {
		return 10000
	}
	return *c.FitIterations
}
