package neighbors

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stcluster/internal/monitoring"
	"github.com/banshee-data/stcluster/internal/overlap"
	"github.com/banshee-data/stcluster/internal/spatialindex"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

func rect(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func bounds(polys []orb.Polygon) []orb.Bound {
	out := make([]orb.Bound, len(polys))
	for i, p := range polys {
		out[i] = p.Bound()
	}
	return out
}

// tableScorer returns fixed scores and records which pairs it was asked for.
type tableScorer struct {
	scores map[[2]int]float64
	warn   map[int]string
}

func (s *tableScorer) Overlap(i, j int) (float64, []overlap.Warning) {
	if i > j {
		i, j = j, i
	}
	var warns []overlap.Warning
	for _, k := range []int{i, j} {
		if r, ok := s.warn[k]; ok {
			warns = append(warns, overlap.Warning{FeatureID: k, Reason: r})
		}
	}
	return s.scores[[2]int{i, j}], warns
}

func ts(h float64) *time.Time {
	t := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(h * float64(time.Hour)))
	return &t
}

func TestBuild_StripsChain(t *testing.T) {
	// IoU(0,1) = IoU(1,2) = 0.6, IoU(0,2) = 1/3.
	polys := []orb.Polygon{
		rect(0, 0, 10, 1),
		rect(2.5, 0, 12.5, 1),
		rect(5, 0, 15, 1),
		rect(100, 100, 101, 101),
	}
	ev := overlap.Prepare(polys, overlap.ModeIoU)
	defer ev.Free()

	b := &Builder{
		Scorer:           ev,
		Times:            []*time.Time{ts(0), ts(0.5), ts(1), ts(0)},
		TimeThreshold:    2 * time.Hour,
		OverlapThreshold: 0.5,
	}
	bs := bounds(polys)
	rel, warns, stats, err := b.Build(context.Background(), spatialindex.NewGrid(bs, 0), bs)
	require.NoError(t, err)
	assert.Empty(t, warns)

	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, rel.Edges())
	assert.Equal(t, 3, stats.Candidates)
	assert.Equal(t, 3, stats.TemporalPassed)
	assert.Equal(t, 2, stats.Edges)
	assert.Equal(t, 2, rel.NumEdges())
	assert.Equal(t, []int{0, 2}, rel.Neighbors(1))
	assert.Empty(t, rel.Neighbors(3))
}

func TestBuild_TemporalFilter(t *testing.T) {
	polys := []orb.Polygon{rect(0, 0, 10, 1), rect(2.5, 0, 12.5, 1)}
	ev := overlap.Prepare(polys, overlap.ModeIoU)
	defer ev.Free()

	bs := bounds(polys)
	b := &Builder{
		Scorer:           ev,
		Times:            []*time.Time{ts(0), ts(10)},
		TimeThreshold:    7200 * time.Second,
		OverlapThreshold: 0.5,
	}
	rel, _, stats, err := b.Build(context.Background(), spatialindex.NewRTree(bs), bs)
	require.NoError(t, err)
	assert.Zero(t, rel.NumEdges())
	assert.Equal(t, 1, stats.Candidates)
	assert.Zero(t, stats.TemporalPassed)

	// Dropping one timestamp disables the temporal filter for that pair.
	b.Times = []*time.Time{ts(0), nil}
	rel, _, _, err = b.Build(context.Background(), spatialindex.NewRTree(bs), bs)
	require.NoError(t, err)
	assert.True(t, rel.HasEdge(0, 1))
	assert.True(t, rel.HasEdge(1, 0))
}

func TestBuild_ZeroThresholdAcceptsBoxContact(t *testing.T) {
	// Boxes touch at a corner: overlap area is zero, but the box test passes.
	polys := []orb.Polygon{rect(0, 0, 1, 1), rect(1, 1, 2, 2), rect(3, 3, 4, 4)}
	ev := overlap.Prepare(polys, overlap.ModeIoU)
	defer ev.Free()

	bs := bounds(polys)
	b := &Builder{Scorer: ev, OverlapThreshold: 0}
	rel, _, _, err := b.Build(context.Background(), spatialindex.NewGrid(bs, 0), bs)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 1}}, rel.Edges())
}

func TestBuild_WarningsDeduplicated(t *testing.T) {
	polys := []orb.Polygon{rect(0, 0, 2, 2), rect(1, 1, 3, 3), rect(0, 1, 2, 3)}
	scorer := &tableScorer{
		scores: map[[2]int]float64{{0, 1}: 0.9, {0, 2}: 0.9, {1, 2}: 0.9},
		warn:   map[int]string{2: "zero area"},
	}
	bs := bounds(polys)
	b := &Builder{Scorer: scorer, OverlapThreshold: 0.5}
	_, warns, _, err := b.Build(context.Background(), spatialindex.NewGrid(bs, 0), bs)
	require.NoError(t, err)
	assert.Equal(t, []overlap.Warning{{FeatureID: 2, Reason: "zero area"}}, warns)
}

func TestBuild_DeterministicAcrossWorkers(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var polys []orb.Polygon
	var times []*time.Time
	for i := 0; i < 400; i++ {
		x, y := r.Float64()*60, r.Float64()*60
		w, h := 1+r.Float64()*4, 1+r.Float64()*4
		polys = append(polys, rect(x, y, x+w, y+h))
		times = append(times, ts(r.Float64()*48))
	}
	ev := overlap.Prepare(polys, overlap.ModeIoU)
	defer ev.Free()
	bs := bounds(polys)

	build := func(workers int, ix spatialindex.Index) [][2]int {
		b := &Builder{
			Scorer:           ev,
			Times:            times,
			TimeThreshold:    6 * time.Hour,
			OverlapThreshold: 0.1,
			Workers:          workers,
		}
		rel, _, _, err := b.Build(context.Background(), ix, bs)
		require.NoError(t, err)
		return rel.Edges()
	}

	want := build(1, spatialindex.NewGrid(bs, 0))
	require.NotEmpty(t, want)
	for _, workers := range []int{2, 8, 0} {
		if diff := cmp.Diff(want, build(workers, spatialindex.NewGrid(bs, 0))); diff != "" {
			t.Errorf("workers=%d grid mismatch (-want +got):\n%s", workers, diff)
		}
		if diff := cmp.Diff(want, build(workers, spatialindex.NewRTree(bs))); diff != "" {
			t.Errorf("workers=%d rtree mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestBuild_Cancelled(t *testing.T) {
	polys := []orb.Polygon{rect(0, 0, 1, 1), rect(0.5, 0.5, 1.5, 1.5)}
	bs := bounds(polys)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Builder{Scorer: &tableScorer{}, OverlapThreshold: 0.5}
	rel, _, _, err := b.Build(ctx, spatialindex.NewGrid(bs, 0), bs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, rel)
}

func TestNewRelation(t *testing.T) {
	rel, err := NewRelation(5, [][2]int{{3, 1}, {1, 3}, {0, 4}, {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 5, rel.Len())
	assert.Equal(t, 3, rel.NumEdges())
	assert.Equal(t, [][2]int{{0, 4}, {1, 2}, {1, 3}}, rel.Edges())
	assert.Equal(t, []int{2, 3}, rel.Neighbors(1))
	assert.Equal(t, 2, rel.Degree(1))
	assert.False(t, rel.HasEdge(2, 3))
	assert.False(t, rel.HasEdge(-1, 3))

	_, err = NewRelation(3, [][2]int{{0, 3}})
	assert.Error(t, err)
	_, err = NewRelation(3, [][2]int{{1, 1}})
	assert.Error(t, err)
	_, err = NewRelation(-1, nil)
	assert.Error(t, err)

	empty, err := NewRelation(0, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
	assert.Empty(t, empty.Edges())
}
