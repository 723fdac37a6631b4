package neighbors

import (
	"context"
	"runtime"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/stcluster/internal/monitoring"
	"github.com/banshee-data/stcluster/internal/overlap"
	"github.com/banshee-data/stcluster/internal/spatialindex"
	"github.com/banshee-data/stcluster/internal/temporal"
)

// rowsPerTask is how many feature rows one worker task handles.
const rowsPerTask = 64

// Scorer scores the spatial overlap of two features by id.
// *overlap.Evaluator implements it.
type Scorer interface {
	Overlap(i, j int) (float64, []overlap.Warning)
}

// Builder computes the neighbor relation of one run.
type Builder struct {
	Scorer           Scorer
	Times            []*time.Time // per feature, nil entries have no timestamp
	TimeThreshold    time.Duration
	OverlapThreshold float64
	Workers          int // <= 0 means GOMAXPROCS
}

// Stats counts the work done by Build.
type Stats struct {
	Candidates     int // pairs (i<j) returned by the spatial index
	TemporalPassed int // candidates inside the time window
	Edges          int // pairs that passed the overlap threshold as well
}

type rowResult struct {
	edges    []int
	warnings []overlap.Warning
	stats    Stats
}

// Build queries index with each feature's bound and keeps pairs that are
// temporally close and overlap at or above the threshold. Rows run in
// parallel, but each is written to its own slot and merged in id order, so
// the relation and warnings do not depend on Workers.
func (b *Builder) Build(ctx context.Context, index spatialindex.Index, bounds []orb.Bound) (*Relation, []overlap.Warning, Stats, error) {
	n := len(bounds)
	rows := make([]rowResult, n)

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += rowsPerTask {
		start, end := start, min(start+rowsPerTask, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				rows[i] = b.row(i, index, bounds)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, Stats{}, err
	}

	var stats Stats
	var warns []overlap.Warning
	edgeRows := make([][]int, n)
	for i, r := range rows {
		edgeRows[i] = r.edges
		warns = append(warns, r.warnings...)
		stats.Candidates += r.stats.Candidates
		stats.TemporalPassed += r.stats.TemporalPassed
		stats.Edges += r.stats.Edges
	}

	rel := fromRows(edgeRows)
	monitoring.Debugf("neighbors: %d features, %d candidates, %d in time window, %d edges",
		n, stats.Candidates, stats.TemporalPassed, stats.Edges)
	return rel, overlap.Dedupe(warns), stats, nil
}

// row evaluates feature i against its higher-id candidates.
func (b *Builder) row(i int, index spatialindex.Index, bounds []orb.Bound) rowResult {
	var r rowResult
	for _, j := range index.Query(bounds[i]) {
		if j <= i {
			continue
		}
		r.stats.Candidates++

		if !temporal.Close(b.time(i), b.time(j), b.TimeThreshold) {
			continue
		}
		r.stats.TemporalPassed++

		ratio, warns := b.Scorer.Overlap(i, j)
		r.warnings = append(r.warnings, warns...)
		if !overlap.Exceeds(ratio, b.OverlapThreshold) {
			continue
		}
		r.edges = append(r.edges, j)
		r.stats.Edges++
	}
	return r
}

func (b *Builder) time(i int) *time.Time {
	if i >= len(b.Times) {
		return nil
	}
	return b.Times[i]
}
