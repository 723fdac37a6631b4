package engine

import (
	"time"

	"github.com/banshee-data/stcluster/internal/feature"
	"github.com/banshee-data/stcluster/internal/overlap"
)

// Labeled is an input feature with its assigned cluster.
type Labeled struct {
	feature.Feature
	ClusterID int // >= 0, or Noise
}

// IsNoise reports whether the feature belongs to no cluster.
func (l Labeled) IsNoise() bool {
	return l.ClusterID == Noise
}

// Stats summarizes one run. Durations come from the engine clock.
type Stats struct {
	Features       int `json:"features"`
	Candidates     int `json:"candidates"`
	TemporalPassed int `json:"temporal_passed"`
	Edges          int `json:"edges"`
	Clusters       int `json:"clusters"`
	Noise          int `json:"noise"`
	Degenerate     int `json:"degenerate"`

	Prepare    time.Duration `json:"prepare_ns"`
	IndexBuild time.Duration `json:"index_build_ns"`
	GraphBuild time.Duration `json:"graph_build_ns"`
	Labeling   time.Duration `json:"labeling_ns"`
	Total      time.Duration `json:"total_ns"`
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string
	Params   Params
	Features []Labeled         // Same order and length as the input
	Labels   []int             // Labels[i] == Features[i].ClusterID
	Warnings []overlap.Warning // At most one per feature, ascending by id
	Stats    Stats
}

// Clusters returns the member ids of each cluster, indexed by cluster id.
func (r *Result) Clusters() [][]int {
	out := make([][]int, r.Stats.Clusters)
	for i, id := range r.Labels {
		if id >= 0 {
			out[id] = append(out[id], i)
		}
	}
	return out
}

// NoiseIDs returns the ascending ids of features labeled Noise.
func (r *Result) NoiseIDs() []int {
	var out []int
	for i, id := range r.Labels {
		if id == Noise {
			out = append(out, i)
		}
	}
	return out
}
