package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/stcluster/internal/feature"
	"github.com/banshee-data/stcluster/internal/labeler"
	"github.com/banshee-data/stcluster/internal/monitoring"
	"github.com/banshee-data/stcluster/internal/neighbors"
	"github.com/banshee-data/stcluster/internal/overlap"
	"github.com/banshee-data/stcluster/internal/spatialindex"
	"github.com/banshee-data/stcluster/internal/timeutil"
)

// Noise is the ClusterID of features outside every cluster.
const Noise = labeler.Noise

// Engine runs clustering passes. The zero value is not usable; use New.
type Engine struct {
	clock   timeutil.Clock
	labeler func(minClusterSize int) labeler.ClustererInterface
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for phase timings.
func WithClock(c timeutil.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLabeler replaces the component labeler.
func WithLabeler(newLabeler func(minClusterSize int) labeler.ClustererInterface) Option {
	return func(e *Engine) { e.labeler = newLabeler }
}

// New creates an Engine with a real clock and the component labeler.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock: timeutil.RealClock{},
		labeler: func(minClusterSize int) labeler.ClustererInterface {
			return labeler.NewComponentLabeler(minClusterSize)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run clusters features with a default Engine.
func Run(ctx context.Context, features []feature.Feature, params Params) (*Result, error) {
	return New().Run(ctx, features, params)
}

// Run performs one clustering pass over the complete batch.
//
// Parameter and input errors (*ParameterError, *feature.InputError) are
// returned before any work starts. Geometry problems never fail the run;
// they are listed in Result.Warnings. On error no partial result is returned.
func (e *Engine) Run(ctx context.Context, features []feature.Feature, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("run rejected: %w", err)
	}
	if err := feature.ValidateAll(features); err != nil {
		return nil, fmt.Errorf("run rejected: %w", err)
	}

	runID := uuid.New().String()
	var stats Stats
	stats.Features = len(features)
	start := e.clock.Now()

	phase := e.clock.Now()
	ev := overlap.Prepare(feature.Polygons(features), params.OverlapMode)
	defer ev.Free()
	var warns []overlap.Warning
	for i := range features {
		if reason, bad := ev.Degenerate(i); bad {
			warns = append(warns, overlap.Warning{FeatureID: i, Reason: reason})
			stats.Degenerate++
		}
	}
	stats.Prepare = e.clock.Since(phase)

	phase = e.clock.Now()
	bounds := feature.Bounds(features)
	index, err := spatialindex.New(params.Index, bounds, params.GridCellSize)
	if err != nil {
		return nil, fmt.Errorf("run %s: building spatial index: %w", runID, err)
	}
	stats.IndexBuild = e.clock.Since(phase)

	phase = e.clock.Now()
	builder := &neighbors.Builder{
		Scorer:           ev,
		Times:            feature.Times(features),
		TimeThreshold:    params.TimeThreshold,
		OverlapThreshold: params.OverlapThreshold,
		Workers:          params.Workers,
	}
	rel, buildWarns, buildStats, err := builder.Build(ctx, index, bounds)
	if err != nil {
		return nil, fmt.Errorf("run %s: building neighbor relation: %w", runID, err)
	}
	stats.GraphBuild = e.clock.Since(phase)
	stats.Candidates = buildStats.Candidates
	stats.TemporalPassed = buildStats.TemporalPassed
	stats.Edges = buildStats.Edges

	phase = e.clock.Now()
	labels := e.labeler(params.MinClusterSize).Cluster(rel)
	stats.Labeling = e.clock.Since(phase)
	stats.Clusters = labels.Clusters()
	stats.Noise = labels.Noise()
	stats.Total = e.clock.Since(start)

	res := &Result{
		RunID:    runID,
		Params:   params,
		Features: make([]Labeled, len(features)),
		Labels:   []int(labels),
		Warnings: overlap.Dedupe(append(warns, buildWarns...)),
		Stats:    stats,
	}
	for i, f := range features {
		res.Features[i] = Labeled{Feature: f, ClusterID: labels[i]}
	}

	monitoring.Logf("run %s: %d features, %d clusters, %d noise, %d edges, %d warnings in %v",
		runID, stats.Features, stats.Clusters, stats.Noise, stats.Edges, len(res.Warnings), stats.Total.Round(time.Microsecond))
	return res, nil
}
