package spatialindex

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// R-tree node fan-out, 2D.
const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
)

// rtreeEntry wraps a box id for R-tree storage.
type rtreeEntry struct {
	id   int
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *rtreeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// RTree is an Index backed by a bulk-loaded rtreego tree.
type RTree struct {
	tree     *rtreego.Rtree
	bounds   []orb.Bound
	rejected []int // boxes rtreego would not accept, checked on every query
}

// NewRTree bulk-loads bounds into an R-tree.
func NewRTree(bounds []orb.Bound) *RTree {
	objs := make([]rtreego.Spatial, 0, len(bounds))
	var rejected []int
	for i, b := range bounds {
		rect, err := toRect(b)
		if err != nil {
			rejected = append(rejected, i)
			continue
		}
		objs = append(objs, &rtreeEntry{id: i, rect: rect})
	}

	return &RTree{
		tree:     rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, objs...),
		bounds:   bounds,
		rejected: rejected,
	}
}

// Len returns the number of indexed boxes.
func (t *RTree) Len() int { return len(t.bounds) }

// Query returns ids of boxes intersecting b.
func (t *RTree) Query(b orb.Bound) []int {
	rect, err := toRect(b)
	if err != nil {
		return finish(t.bounds, b, scan(t.bounds, b, nil))
	}

	candidates := append([]int(nil), t.rejected...)
	for _, s := range t.tree.SearchIntersect(rect) {
		candidates = append(candidates, s.(*rtreeEntry).id)
	}
	return finish(t.bounds, b, candidates)
}

// toRect converts b to an rtreego rectangle grown by a small margin on every
// side. rtreego rejects zero-length sides and does not report boxes that
// only touch, so the margin keeps both cases findable; finish drops the
// extra candidates afterwards.
func toRect(b orb.Bound) (rtreego.Rect, error) {
	padX := pad(b.Min[0], b.Max[0])
	padY := pad(b.Min[1], b.Max[1])
	return rtreego.NewRect(
		rtreego.Point{b.Min[0] - padX, b.Min[1] - padY},
		[]float64{b.Max[0] - b.Min[0] + 2*padX, b.Max[1] - b.Min[1] + 2*padY},
	)
}

func pad(lo, hi float64) float64 {
	scale := math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))
	return scale * 1e-9
}
