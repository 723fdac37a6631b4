package spatialindex

import (
	"fmt"
	"slices"
	"strings"

	"github.com/paulmach/orb"
)

// Index answers bounding-box range queries over a fixed set of boxes.
type Index interface {
	// Query returns the ids of every indexed box that intersects b,
	// touching edges included, sorted ascending without duplicates.
	Query(b orb.Bound) []int

	// Len returns the number of indexed boxes.
	Len() int
}

// Kind names an Index implementation.
type Kind string

const (
	KindGrid  Kind = "grid"
	KindRTree Kind = "rtree"
)

// ValidKinds lists the accepted index names.
var ValidKinds = []Kind{KindGrid, KindRTree}

// ParseKind maps a configuration name to a Kind. Empty means grid.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindGrid, nil
	}
	if !slices.Contains(ValidKinds, k) {
		return "", fmt.Errorf("unknown spatial index %q (want grid or rtree)", s)
	}
	return k, nil
}

// New builds an index of the requested kind. cellSize only applies to the
// grid; zero or negative picks one from the data.
func New(kind Kind, bounds []orb.Bound, cellSize float64) (Index, error) {
	switch kind {
	case KindGrid, "":
		return NewGrid(bounds, cellSize), nil
	case KindRTree:
		return NewRTree(bounds), nil
	default:
		return nil, fmt.Errorf("unknown spatial index %q", kind)
	}
}

// scan is the linear fallback shared by both implementations.
func scan(bounds []orb.Bound, b orb.Bound, ids []int) []int {
	for i, other := range bounds {
		if other.Intersects(b) {
			ids = append(ids, i)
		}
	}
	return ids
}

// finish filters candidates to true intersections, sorts and de-duplicates.
func finish(bounds []orb.Bound, b orb.Bound, candidates []int) []int {
	out := candidates[:0]
	for _, id := range candidates {
		if bounds[id].Intersects(b) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
