// Package overlap scores how much two polygons overlap.
//
// The default score is intersection-over-union. ModeMinArea divides the
// intersection by the smaller polygon's area instead, which makes a small
// polygon fully inside a large one score 1.0 where IoU would score low.
//
// Geometry work is delegated to GEOS through go-geos. Degenerate polygons
// (invalid per GEOS, for example self-intersecting, or with zero area) never
// fail a run: every comparison involving one scores 0 and yields a Warning.
package overlap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"

	"github.com/banshee-data/stcluster/internal/monitoring"
)

// Mode selects the normalising area of the overlap ratio.
type Mode int

const (
	// ModeIoU divides by the area of the union.
	ModeIoU Mode = iota
	// ModeMinArea divides by the area of the smaller polygon.
	ModeMinArea
)

// Mode names as used in configuration files.
const (
	ModeIoUName     = "iou"
	ModeMinAreaName = "min_area"
)

func (m Mode) String() string {
	switch m {
	case ModeIoU:
		return ModeIoUName
	case ModeMinArea:
		return ModeMinAreaName
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a configuration name to a Mode. Empty means IoU.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ModeIoUName:
		return ModeIoU, nil
	case ModeMinAreaName:
		return ModeMinArea, nil
	default:
		return 0, fmt.Errorf("unknown overlap mode %q (want %s or %s)", s, ModeIoUName, ModeMinAreaName)
	}
}

// Warning is a non-fatal geometry diagnostic attached to one feature.
type Warning struct {
	FeatureID int
	Reason    string
}

func (w Warning) String() string {
	return fmt.Sprintf("feature %d: %s", w.FeatureID, w.Reason)
}

// Exceeds reports whether ratio meets threshold. The boundary is inclusive,
// so a zero threshold accepts every pair.
func Exceeds(ratio, threshold float64) bool {
	return ratio >= threshold
}

// Evaluator holds GEOS geometries prepared once per run, indexed by
// feature id.
type Evaluator struct {
	mode   Mode
	geoms  []*geos.Geom
	areas  []float64
	bounds []orb.Bound
	broken []string // degenerate reason per feature, "" when usable
}

// Prepare converts every polygon to GEOS and records area and validity.
func Prepare(polys []orb.Polygon, mode Mode) *Evaluator {
	e := &Evaluator{
		mode:   mode,
		geoms:  make([]*geos.Geom, len(polys)),
		areas:  make([]float64, len(polys)),
		bounds: make([]orb.Bound, len(polys)),
		broken: make([]string, len(polys)),
	}

	for i, p := range polys {
		e.bounds[i] = p.Bound()

		g, area, reason := prepareOne(p)
		e.geoms[i] = g
		e.areas[i] = area
		e.broken[i] = reason
		if reason != "" {
			monitoring.Logf("overlap: feature %d is degenerate, its overlaps score 0: %s", i, reason)
		}
	}

	return e
}

func prepareOne(p orb.Polygon) (g *geos.Geom, area float64, reason string) {
	defer func() {
		if r := recover(); r != nil {
			g, area, reason = nil, 0, fmt.Sprintf("geos: %v", r)
		}
	}()

	g = geos.NewPolygon(toCoords(p))
	if g == nil || g.IsEmpty() {
		return nil, 0, "empty geometry"
	}
	if !g.IsValid() {
		return g, 0, "invalid geometry: " + g.IsValidReason()
	}
	area = g.Area()
	if area <= 0 {
		return g, 0, "zero area"
	}
	return g, area, ""
}

// toCoords closes any open ring, since GEOS requires closed linear rings.
func toCoords(p orb.Polygon) [][][]float64 {
	coords := make([][][]float64, 0, len(p))
	for _, ring := range p {
		cs := make([][]float64, 0, len(ring)+1)
		for _, pt := range ring {
			cs = append(cs, []float64{pt[0], pt[1]})
		}
		if n := len(ring); n > 0 && ring[0] != ring[n-1] {
			cs = append(cs, []float64{ring[0][0], ring[0][1]})
		}
		coords = append(coords, cs)
	}
	return coords
}

// Len returns the number of prepared polygons.
func (e *Evaluator) Len() int { return len(e.geoms) }

// Mode returns the normalisation in use.
func (e *Evaluator) Mode() Mode { return e.mode }

// Degenerate reports whether feature i scores 0 against everything, and why.
func (e *Evaluator) Degenerate(i int) (string, bool) {
	return e.broken[i], e.broken[i] != ""
}

// Area returns the area of feature i, 0 for degenerate features.
func (e *Evaluator) Area(i int) float64 { return e.areas[i] }

// Overlap returns the overlap ratio of features i and j in [0, 1] plus any
// warnings raised on the way. The pair is always evaluated lower id first so
// the result is exactly symmetric.
func (e *Evaluator) Overlap(i, j int) (float64, []Warning) {
	if i > j {
		i, j = j, i
	}

	var warns []Warning
	for _, k := range [2]int{i, j} {
		if reason := e.broken[k]; reason != "" {
			warns = append(warns, Warning{FeatureID: k, Reason: reason})
		}
	}
	if len(warns) > 0 {
		return 0, warns
	}

	if !e.bounds[i].Intersects(e.bounds[j]) {
		return 0, nil
	}

	inter, err := intersectionArea(e.geoms[i], e.geoms[j])
	if err != nil {
		monitoring.Logf("overlap: intersection of features %d and %d failed: %v", i, j, err)
		reason := "intersection failed: " + err.Error()
		return 0, []Warning{{FeatureID: i, Reason: reason}, {FeatureID: j, Reason: reason}}
	}

	return ratio(inter, e.areas[i], e.areas[j], e.mode), nil
}

func intersectionArea(a, b *geos.Geom) (area float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			area, err = 0, fmt.Errorf("geos: %v", r)
		}
	}()

	inter := a.Intersection(b)
	if inter == nil {
		return 0, fmt.Errorf("geos returned no geometry")
	}
	defer inter.Destroy()
	return inter.Area(), nil
}

func ratio(inter, areaA, areaB float64, mode Mode) float64 {
	if inter <= 0 {
		return 0
	}

	var denom float64
	switch mode {
	case ModeMinArea:
		denom = min(areaA, areaB)
	default:
		denom = areaA + areaB - inter
	}
	if denom <= 0 {
		return 0
	}

	r := inter / denom
	if r > 1 {
		r = 1
	}
	return r
}

// Free releases the GEOS geometries. The Evaluator must not be used after.
func (e *Evaluator) Free() {
	for i, g := range e.geoms {
		if g != nil {
			g.Destroy()
			e.geoms[i] = nil
		}
	}
}

// Ratio scores a single pair of polygons. It is a convenience over Prepare
// for callers that only need one comparison.
func Ratio(a, b orb.Polygon, mode Mode) (float64, []Warning) {
	e := Prepare([]orb.Polygon{a, b}, mode)
	defer e.Free()
	return e.Overlap(0, 1)
}

// Dedupe keeps the first warning per feature and orders the result by
// feature id.
func Dedupe(warns []Warning) []Warning {
	if len(warns) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(warns))
	out := make([]Warning, 0, len(warns))
	for _, w := range warns {
		if seen[w.FeatureID] {
			continue
		}
		seen[w.FeatureID] = true
		out = append(out, w)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].FeatureID < out[b].FeatureID
	})
	return out
}
