package spatialindex

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// MaxCellsPerItem caps how many cells one box is registered in. Larger
	// boxes go to the oversized list and are checked on every query.
	MaxCellsPerItem = 4096

	// EstimatedItemsPerCell is used for initial map capacity estimation.
	EstimatedItemsPerCell = 4

	// maxCellCoord keeps zigzag-encoded coordinates small enough that the
	// Szudzik pair a*a+a+b cannot overflow int64.
	maxCellCoord = 1 << 30
)

// Grid is a uniform grid over box extents. A box is registered in every
// cell it covers.
type Grid struct {
	CellSize  float64
	Cells     map[int64][]int // Cell ID → box ids
	oversized []int
	bounds    []orb.Bound
}

// NewGrid builds a grid over bounds. A non-positive cellSize is replaced
// with AutoCellSize(bounds).
func NewGrid(bounds []orb.Bound, cellSize float64) *Grid {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = AutoCellSize(bounds)
	}
	g := &Grid{CellSize: cellSize, bounds: bounds}
	g.build()
	return g
}

// AutoCellSize returns the mean of the larger side of each box, so a
// typical box spans a handful of cells. Falls back to 1 for point-like data.
func AutoCellSize(bounds []orb.Bound) float64 {
	var sum float64
	var n int
	for _, b := range bounds {
		side := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
		if side > 0 && !math.IsInf(side, 0) {
			sum += side
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

func (g *Grid) build() {
	g.Cells = make(map[int64][]int, len(g.bounds)/EstimatedItemsPerCell+1)
	g.oversized = nil

	for i, b := range g.bounds {
		x0, y0, x1, y1, ok := g.cellRange(b)
		if !ok || cellCount(x0, y0, x1, y1) > MaxCellsPerItem {
			g.oversized = append(g.oversized, i)
			continue
		}
		for cx := x0; cx <= x1; cx++ {
			for cy := y0; cy <= y1; cy++ {
				id := cellID(cx, cy)
				g.Cells[id] = append(g.Cells[id], i)
			}
		}
	}
}

// Len returns the number of indexed boxes.
func (g *Grid) Len() int { return len(g.bounds) }

// Oversized returns the ids kept outside the grid.
func (g *Grid) Oversized() []int { return g.oversized }

// Query returns ids of boxes intersecting b.
func (g *Grid) Query(b orb.Bound) []int {
	x0, y0, x1, y1, ok := g.cellRange(b)
	if !ok || cellCount(x0, y0, x1, y1) > float64(max(len(g.Cells), MaxCellsPerItem)) {
		// Visiting more cells than exist costs more than a scan.
		return finish(g.bounds, b, scan(g.bounds, b, nil))
	}

	candidates := append([]int(nil), g.oversized...)
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			candidates = append(candidates, g.Cells[cellID(cx, cy)]...)
		}
	}
	return finish(g.bounds, b, candidates)
}

// cellRange returns the inclusive cell coordinates covered by b. ok is false
// when the range falls outside what cellID can encode.
func (g *Grid) cellRange(b orb.Bound) (x0, y0, x1, y1 int64, ok bool) {
	fx0 := math.Floor(b.Min[0] / g.CellSize)
	fy0 := math.Floor(b.Min[1] / g.CellSize)
	fx1 := math.Floor(b.Max[0] / g.CellSize)
	fy1 := math.Floor(b.Max[1] / g.CellSize)
	for _, v := range [4]float64{fx0, fy0, fx1, fy1} {
		if math.IsNaN(v) || math.Abs(v) > maxCellCoord {
			return 0, 0, 0, 0, false
		}
	}
	return int64(fx0), int64(fy0), int64(fx1), int64(fy1), true
}

func cellCount(x0, y0, x1, y1 int64) float64 {
	return float64(x1-x0+1) * float64(y1-y0+1)
}

// cellID computes a unique cell identifier using Szudzik's pairing function
// over zigzag-encoded coordinates, so negative cells are handled.
func cellID(cellX, cellY int64) int64 {
	a := zigzag(cellX)
	b := zigzag(cellY)
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

func zigzag(v int64) int64 {
	if v >= 0 {
		return 2 * v
	}
	return -2*v - 1
}
