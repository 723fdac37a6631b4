// Package feature defines the input record of a clustering run: one polygon
// with an optional timestamp and opaque attributes.
package feature

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
)

// Feature is one input record. The engine treats it as immutable.
type Feature struct {
	ID         int            // Index into the input collection
	Polygon    orb.Polygon    // Outer ring first, then holes
	Time       *time.Time     // nil means no timestamp; compatible with every feature
	Attributes map[string]any // Carried through to the output untouched
}

// HasTime reports whether the feature carries a timestamp.
func (f Feature) HasTime() bool {
	return f.Time != nil
}

// Bound returns the bounding box of the outer ring.
func (f Feature) Bound() orb.Bound {
	if len(f.Polygon) == 0 {
		return orb.Bound{}
	}
	return f.Polygon[0].Bound()
}

// InputError reports a structural problem with the feature collection.
// A run that hits one produces no labeling at all.
type InputError struct {
	FeatureID int // -1 when the error is about the collection as a whole
	Reason    string
}

func (e *InputError) Error() string {
	if e.FeatureID < 0 {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: feature %d: %s", e.FeatureID, e.Reason)
}

// MinRingPoints is the smallest number of distinct vertices a ring may have.
const MinRingPoints = 3

// Validate checks that f has usable geometry. Zero-area or self-intersecting
// polygons pass; those are handled as geometry warnings during overlap.
func (f Feature) Validate() error {
	if len(f.Polygon) == 0 {
		return &InputError{FeatureID: f.ID, Reason: "empty polygon"}
	}
	for r, ring := range f.Polygon {
		n := len(ring)
		if n > 1 && ring[0] == ring[n-1] {
			n-- // closing point repeats the first
		}
		if n < MinRingPoints {
			return &InputError{
				FeatureID: f.ID,
				Reason:    fmt.Sprintf("ring %d has %d distinct points, need at least %d", r, n, MinRingPoints),
			}
		}
		for _, p := range ring {
			if !finite(p[0]) || !finite(p[1]) {
				return &InputError{
					FeatureID: f.ID,
					Reason:    fmt.Sprintf("ring %d has non-finite coordinate (%v, %v)", r, p[0], p[1]),
				}
			}
		}
	}
	return nil
}

// ValidateAll checks the whole collection and that IDs match positions.
// It stops at the first problem.
func ValidateAll(features []Feature) error {
	if len(features) == 0 {
		return &InputError{FeatureID: -1, Reason: "empty feature collection"}
	}
	for i, f := range features {
		if f.ID != i {
			return &InputError{
				FeatureID: i,
				Reason:    fmt.Sprintf("id %d does not match position %d", f.ID, i),
			}
		}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Index assigns IDs from slice position. Callers building features by hand
// use it before handing them to the engine.
func Index(features []Feature) []Feature {
	for i := range features {
		features[i].ID = i
	}
	return features
}

// Bounds returns the bounding box of every feature, in input order.
func Bounds(features []Feature) []orb.Bound {
	out := make([]orb.Bound, len(features))
	for i, f := range features {
		out[i] = f.Bound()
	}
	return out
}

// Polygons returns the geometry of every feature, in input order.
func Polygons(features []Feature) []orb.Polygon {
	out := make([]orb.Polygon, len(features))
	for i, f := range features {
		out[i] = f.Polygon
	}
	return out
}

// Times returns the timestamp of every feature, in input order.
func Times(features []Feature) []*time.Time {
	out := make([]*time.Time, len(features))
	for i, f := range features {
		out[i] = f.Time
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
