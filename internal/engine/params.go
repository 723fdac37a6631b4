package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/stcluster/internal/overlap"
	"github.com/banshee-data/stcluster/internal/spatialindex"
)

// Default run parameters, matching the demo form's initial values.
const (
	DefaultTimeThreshold    = time.Hour
	DefaultMinClusterSize   = 2
	DefaultOverlapThreshold = 0.0
)

// Params are fixed for the duration of one run.
type Params struct {
	TimeThreshold    time.Duration     // Max |t1-t2| for neighbors, >= 0
	MinClusterSize   int               // Smallest component that is a cluster, >= 1
	OverlapThreshold float64           // Min overlap ratio for neighbors, in [0,1]
	OverlapMode      overlap.Mode      // IoU unless set
	Index            spatialindex.Kind // Grid unless set
	GridCellSize     float64           // 0 picks one from the data
	Workers          int               // <= 0 means GOMAXPROCS
}

// DefaultParams returns the default run parameters.
func DefaultParams() Params {
	return Params{
		TimeThreshold:    DefaultTimeThreshold,
		MinClusterSize:   DefaultMinClusterSize,
		OverlapThreshold: DefaultOverlapThreshold,
		OverlapMode:      overlap.ModeIoU,
		Index:            spatialindex.KindGrid,
	}
}

// ParameterError reports a run parameter outside its allowed range. It is
// returned before any work is done.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// Validate checks every parameter and returns the first *ParameterError.
func (p Params) Validate() error {
	if p.MinClusterSize < 1 {
		return &ParameterError{Field: "min_cluster_size", Reason: fmt.Sprintf("must be at least 1, got %d", p.MinClusterSize)}
	}
	if math.IsNaN(p.OverlapThreshold) || p.OverlapThreshold < 0 || p.OverlapThreshold > 1 {
		return &ParameterError{Field: "overlap_threshold", Reason: fmt.Sprintf("must be between 0 and 1, got %v", p.OverlapThreshold)}
	}
	if p.TimeThreshold < 0 {
		return &ParameterError{Field: "time_threshold", Reason: fmt.Sprintf("must be non-negative, got %v", p.TimeThreshold)}
	}
	if p.OverlapMode != overlap.ModeIoU && p.OverlapMode != overlap.ModeMinArea {
		return &ParameterError{Field: "overlap_mode", Reason: fmt.Sprintf("unknown mode %v", p.OverlapMode)}
	}
	if p.Index != "" {
		if _, err := spatialindex.ParseKind(string(p.Index)); err != nil {
			return &ParameterError{Field: "index", Reason: err.Error()}
		}
	}
	if math.IsNaN(p.GridCellSize) || math.IsInf(p.GridCellSize, 0) || p.GridCellSize < 0 {
		return &ParameterError{Field: "grid_cell_size", Reason: fmt.Sprintf("must be a non-negative finite number, got %v", p.GridCellSize)}
	}
	return nil
}
