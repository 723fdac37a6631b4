package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/stcluster/internal/engine"
	"github.com/banshee-data/stcluster/internal/overlap"
	"github.com/banshee-data/stcluster/internal/spatialindex"
	"github.com/banshee-data/stcluster/internal/units"
)

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// RunConfig holds the parameters of a clustering run as read from a JSON
// or YAML file. Every field is optional; the Get* methods fall back to the
// engine defaults for fields that are not set.
//
// The time threshold can be given in one of three forms: a duration string
// ("2h"), a number of seconds, or a value with a unit ("time_value": 2,
// "time_unit": "hours"). The overlap threshold is a ratio or a percentage.
// Setting more than one form of the same parameter is an error.
type RunConfig struct {
	// Temporal params
	TimeThreshold        *string  `json:"time_threshold,omitempty" yaml:"time_threshold,omitempty"` // duration string like "2h"
	TimeThresholdSeconds *float64 `json:"time_threshold_seconds,omitempty" yaml:"time_threshold_seconds,omitempty"`
	TimeValue            *float64 `json:"time_value,omitempty" yaml:"time_value,omitempty"`
	TimeUnit             *string  `json:"time_unit,omitempty" yaml:"time_unit,omitempty"` // seconds, minutes, hours or days

	// Overlap params
	OverlapThreshold *float64 `json:"overlap_threshold,omitempty" yaml:"overlap_threshold,omitempty"` // ratio in [0,1]
	OverlapPercent   *float64 `json:"overlap_percent,omitempty" yaml:"overlap_percent,omitempty"`     // percentage in [0,100]
	OverlapMode      *string  `json:"overlap_mode,omitempty" yaml:"overlap_mode,omitempty"`           // "iou" or "min_area"

	// Labeling params
	MinClusterSize *int `json:"min_cluster_size,omitempty" yaml:"min_cluster_size,omitempty"`

	// Execution params
	Index        *string  `json:"index,omitempty" yaml:"index,omitempty"` // "grid" or "rtree"
	GridCellSize *float64 `json:"grid_cell_size,omitempty" yaml:"grid_cell_size,omitempty"`
	Workers      *int     `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyRunConfig returns a RunConfig with all fields set to nil.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// DefaultRunConfig returns a RunConfig with every field set to the engine
// defaults.
func DefaultRunConfig() *RunConfig {
	p := engine.DefaultParams()
	return &RunConfig{
		TimeThreshold:    ptrString(p.TimeThreshold.String()),
		OverlapThreshold: ptrFloat64(p.OverlapThreshold),
		OverlapMode:      ptrString(p.OverlapMode.String()),
		MinClusterSize:   ptrInt(p.MinClusterSize),
		Index:            ptrString(string(p.Index)),
		GridCellSize:     ptrFloat64(0),
		Workers:          ptrInt(0),
	}
}

// LoadRunConfig loads a RunConfig from a .json, .yaml or .yml file.
// The file must be under the max file size. Unknown fields are rejected so
// a misspelt parameter does not silently fall back to its default.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *RunConfig
	if ext == ".json" {
		cfg, err = ParseJSON(data)
	} else {
		cfg, err = ParseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ParseJSON decodes a RunConfig from JSON without validating it.
func ParseJSON(data []byte) (*RunConfig, error) {
	cfg := EmptyRunConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// ParseYAML decodes a RunConfig from YAML without validating it. An empty
// document yields an empty config.
func ParseYAML(data []byte) (*RunConfig, error) {
	cfg := EmptyRunConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid and that no
// parameter is given in more than one form.
func (c *RunConfig) Validate() error {
	timeForms := 0
	if c.TimeThreshold != nil && *c.TimeThreshold != "" {
		timeForms++
		d, err := time.ParseDuration(*c.TimeThreshold)
		if err != nil {
			return fmt.Errorf("invalid time_threshold '%s': %w", *c.TimeThreshold, err)
		}
		if d < 0 {
			return fmt.Errorf("time_threshold must be non-negative, got %v", d)
		}
	}
	if c.TimeThresholdSeconds != nil {
		timeForms++
		if s := *c.TimeThresholdSeconds; math.IsNaN(s) || s < 0 {
			return fmt.Errorf("time_threshold_seconds must be non-negative, got %v", s)
		}
	}
	if c.TimeValue != nil || c.TimeUnit != nil {
		timeForms++
		if c.TimeValue == nil || c.TimeUnit == nil {
			return fmt.Errorf("time_value and time_unit must be set together")
		}
		if !units.IsValid(*c.TimeUnit) {
			return fmt.Errorf("invalid time_unit '%s', must be one of: %s", *c.TimeUnit, units.GetValidUnitsString())
		}
		if v := *c.TimeValue; math.IsNaN(v) || v < 0 {
			return fmt.Errorf("time_value must be non-negative, got %v", v)
		}
	}
	if timeForms > 1 {
		return fmt.Errorf("set only one of time_threshold, time_threshold_seconds or time_value/time_unit")
	}

	if c.OverlapThreshold != nil && c.OverlapPercent != nil {
		return fmt.Errorf("set only one of overlap_threshold or overlap_percent")
	}
	if c.OverlapThreshold != nil {
		if r := *c.OverlapThreshold; math.IsNaN(r) || r < 0 || r > 1 {
			return fmt.Errorf("overlap_threshold must be between 0 and 1, got %v", r)
		}
	}
	if c.OverlapPercent != nil {
		if _, err := units.PercentToRatio(*c.OverlapPercent); err != nil {
			return fmt.Errorf("invalid overlap_percent: %w", err)
		}
	}
	if c.OverlapMode != nil {
		if _, err := overlap.ParseMode(*c.OverlapMode); err != nil {
			return fmt.Errorf("invalid overlap_mode: %w", err)
		}
	}

	if c.MinClusterSize != nil && *c.MinClusterSize < 1 {
		return fmt.Errorf("min_cluster_size must be at least 1, got %d", *c.MinClusterSize)
	}

	if c.Index != nil {
		if _, err := spatialindex.ParseKind(*c.Index); err != nil {
			return fmt.Errorf("invalid index: %w", err)
		}
	}
	if c.GridCellSize != nil {
		if s := *c.GridCellSize; math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			return fmt.Errorf("grid_cell_size must be a non-negative finite number, got %v", s)
		}
	}

	return nil
}

// GetTimeThreshold returns the time threshold from whichever form is set,
// or the default.
func (c *RunConfig) GetTimeThreshold() time.Duration {
	switch {
	case c.TimeThreshold != nil && *c.TimeThreshold != "":
		d, err := time.ParseDuration(*c.TimeThreshold)
		if err != nil {
			return engine.DefaultTimeThreshold // default on parse error
		}
		return d
	case c.TimeThresholdSeconds != nil:
		d, err := units.ToDuration(*c.TimeThresholdSeconds, units.Seconds)
		if err != nil {
			return engine.DefaultTimeThreshold
		}
		return d
	case c.TimeValue != nil && c.TimeUnit != nil:
		d, err := units.ToDuration(*c.TimeValue, *c.TimeUnit)
		if err != nil {
			return engine.DefaultTimeThreshold
		}
		return d
	}
	return engine.DefaultTimeThreshold
}

// GetOverlapThreshold returns the overlap threshold as a ratio or the default.
func (c *RunConfig) GetOverlapThreshold() float64 {
	if c.OverlapThreshold != nil {
		return *c.OverlapThreshold
	}
	if c.OverlapPercent != nil {
		if r, err := units.PercentToRatio(*c.OverlapPercent); err == nil {
			return r
		}
	}
	return engine.DefaultOverlapThreshold
}

// GetOverlapMode returns the overlap_mode value or the default.
func (c *RunConfig) GetOverlapMode() overlap.Mode {
	if c.OverlapMode == nil {
		return overlap.ModeIoU
	}
	m, err := overlap.ParseMode(*c.OverlapMode)
	if err != nil {
		return overlap.ModeIoU
	}
	return m
}

// GetMinClusterSize returns the min_cluster_size value or the default.
func (c *RunConfig) GetMinClusterSize() int {
	if c.MinClusterSize == nil {
		return engine.DefaultMinClusterSize
	}
	return *c.MinClusterSize
}

// GetIndex returns the index value or the default.
func (c *RunConfig) GetIndex() spatialindex.Kind {
	if c.Index == nil {
		return spatialindex.KindGrid
	}
	k, err := spatialindex.ParseKind(*c.Index)
	if err != nil {
		return spatialindex.KindGrid
	}
	return k
}

// GetGridCellSize returns the grid_cell_size value or 0 (derive from data).
func (c *RunConfig) GetGridCellSize() float64 {
	if c.GridCellSize == nil {
		return 0
	}
	return *c.GridCellSize
}

// GetWorkers returns the workers value or 0 (GOMAXPROCS).
func (c *RunConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// ToParams converts the configuration to engine parameters. The result is
// validated again by the engine when a run starts.
func (c *RunConfig) ToParams() engine.Params {
	return engine.Params{
		TimeThreshold:    c.GetTimeThreshold(),
		MinClusterSize:   c.GetMinClusterSize(),
		OverlapThreshold: c.GetOverlapThreshold(),
		OverlapMode:      c.GetOverlapMode(),
		Index:            c.GetIndex(),
		GridCellSize:     c.GetGridCellSize(),
		Workers:          c.GetWorkers(),
	}
}
