// Package main provides a benchmark and comparison tool for the clustering
// engine. It generates a synthetic batch of timestamped polygons, clusters it
// with every spatial index and checks that the labelings agree.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/stcluster/internal/config"
	"github.com/banshee-data/stcluster/internal/engine"
	"github.com/banshee-data/stcluster/internal/feature"
	"github.com/banshee-data/stcluster/internal/palette"
	"github.com/banshee-data/stcluster/internal/spatialindex"
	"github.com/banshee-data/stcluster/internal/version"
)

// Config holds configuration for the benchmark.
type Config struct {
	ConfigFile    string
	OutputDir     string
	OutputJSON    string
	OutputGeoJSON string
	Verbose       bool
	ShowVersion   bool
	Gen           GenConfig
}

// BenchResult holds the results of one benchmark invocation.
type BenchResult struct {
	Features       int                   `json:"features"`
	Params         ParamsSummary         `json:"params"`
	PerIndex       map[string]IndexStats `json:"per_index"`
	AgreementStats AgreementStats        `json:"agreement_stats"`
	ClusterSizes   []int                 `json:"cluster_sizes"`
	Warnings       int                   `json:"warnings"`
}

// ParamsSummary is the JSON form of the run parameters.
type ParamsSummary struct {
	TimeThresholdSecs float64 `json:"time_threshold_secs"`
	MinClusterSize    int     `json:"min_cluster_size"`
	OverlapThreshold  float64 `json:"overlap_threshold"`
	OverlapMode       string  `json:"overlap_mode"`
	Workers           int     `json:"workers"`
}

// IndexStats holds per-index statistics.
type IndexStats struct {
	RunID string       `json:"run_id"`
	Stats engine.Stats `json:"stats"`
}

// AgreementStats compares labelings against the first index.
type AgreementStats struct {
	Reference    string         `json:"reference"`
	Mismatches   map[string]int `json:"mismatches"`
	AgreementPct float64        `json:"agreement_pct"`
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Println(version.String("stcluster-bench"))
		return
	}

	params := engine.DefaultParams()
	if cfg.ConfigFile != "" {
		rc, err := config.LoadRunConfig(cfg.ConfigFile)
		if err != nil {
			log.Fatalf("Failed to load run config: %v", err)
		}
		params = rc.ToParams()
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	features := Generate(cfg.Gen)
	log.Printf("Generated %d features (seed %d)", len(features), cfg.Gen.Seed)

	result, reference, err := runBench(context.Background(), features, params)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	printResults(result, cfg.Verbose)

	if cfg.OutputJSON != "" {
		path := outputPath(cfg, cfg.OutputJSON)
		if err := exportJSON(result, path); err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		} else {
			log.Printf("Results exported to: %s", path)
		}
	}

	if cfg.OutputGeoJSON != "" {
		path := outputPath(cfg, cfg.OutputGeoJSON)
		colors := palette.NewAssigner(cfg.Gen.Seed)
		if err := exportGeoJSON(reference, colors, path); err != nil {
			log.Printf("Warning: failed to export GeoJSON: %v", err)
		} else {
			log.Printf("Labeled features exported to: %s", path)
		}
	}

	if result.AgreementStats.AgreementPct < 100 {
		log.Fatalf("Indexes disagree: %v", result.AgreementStats.Mismatches)
	}
}

func parseFlags() Config {
	cfg := Config{Gen: DefaultGenConfig()}

	flag.StringVar(&cfg.ConfigFile, "config", "", "Run config file (.json, .yaml or .yml); engine defaults when empty")
	flag.StringVar(&cfg.OutputDir, "output", "", "Output directory for results")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., results.json)")
	flag.StringVar(&cfg.OutputGeoJSON, "geojson", "", "Output GeoJSON filename for the labeled batch")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Print every cluster size")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")
	flag.Int64Var(&cfg.Gen.Seed, "seed", cfg.Gen.Seed, "Random seed for the synthetic batch")
	flag.IntVar(&cfg.Gen.Blobs, "blobs", cfg.Gen.Blobs, "Number of overlapping polygon groups")
	flag.IntVar(&cfg.Gen.PerBlob, "per-blob", cfg.Gen.PerBlob, "Polygons per group")
	flag.IntVar(&cfg.Gen.Noise, "noise", cfg.Gen.Noise, "Scattered polygons outside any group")
	flag.Float64Var(&cfg.Gen.Extent, "extent", cfg.Gen.Extent, "Side of the square holding the batch")
	flag.Float64Var(&cfg.Gen.Radius, "radius", cfg.Gen.Radius, "Typical polygon radius")
	flag.DurationVar(&cfg.Gen.TimeSpread, "time-spread", cfg.Gen.TimeSpread, "Timestamp spread inside one group")
	flag.Float64Var(&cfg.Gen.Untimed, "untimed", cfg.Gen.Untimed, "Fraction of polygons without a timestamp")

	flag.Parse()

	return cfg
}

func outputPath(cfg Config, name string) string {
	if cfg.OutputDir != "" {
		return filepath.Join(cfg.OutputDir, name)
	}
	return name
}

// runBench clusters features once per index kind and returns the summary
// together with the first kind's result.
func runBench(ctx context.Context, features []feature.Feature, params engine.Params) (*BenchResult, *engine.Result, error) {
	result := &BenchResult{
		Features: len(features),
		Params: ParamsSummary{
			TimeThresholdSecs: params.TimeThreshold.Seconds(),
			MinClusterSize:    params.MinClusterSize,
			OverlapThreshold:  params.OverlapThreshold,
			OverlapMode:       params.OverlapMode.String(),
			Workers:           params.Workers,
		},
		PerIndex: make(map[string]IndexStats),
		AgreementStats: AgreementStats{
			Reference:  string(spatialindex.ValidKinds[0]),
			Mismatches: make(map[string]int),
		},
	}

	var reference *engine.Result
	compared, agreed := 0, 0
	for _, kind := range spatialindex.ValidKinds {
		p := params
		p.Index = kind

		start := time.Now()
		res, err := engine.Run(ctx, features, p)
		if err != nil {
			return nil, nil, fmt.Errorf("index %s: %w", kind, err)
		}
		log.Printf("Index %s finished in %v", kind, time.Since(start))
		result.PerIndex[string(kind)] = IndexStats{RunID: res.RunID, Stats: res.Stats}

		if reference == nil {
			reference = res
			result.ClusterSizes = clusterSizes(res)
			result.Warnings = len(res.Warnings)
			continue
		}
		mismatches := compareLabels(reference.Labels, res.Labels)
		result.AgreementStats.Mismatches[string(kind)] = mismatches
		compared += len(res.Labels)
		agreed += len(res.Labels) - mismatches
	}

	result.AgreementStats.AgreementPct = 100
	if compared > 0 {
		result.AgreementStats.AgreementPct = 100 * float64(agreed) / float64(compared)
	}
	return result, reference, nil
}

func clusterSizes(res *engine.Result) []int {
	clusters := res.Clusters()
	sizes := make([]int, len(clusters))
	for id, members := range clusters {
		sizes[id] = len(members)
	}
	return sizes
}

func compareLabels(want, got []int) int {
	if len(want) != len(got) {
		return max(len(want), len(got))
	}
	mismatches := 0
	for i := range want {
		if want[i] != got[i] {
			mismatches++
		}
	}
	return mismatches
}

func printResults(result *BenchResult, verbose bool) {
	fmt.Println("\n=== Clustering Benchmark Results ===")
	fmt.Printf("Features: %d\n", result.Features)
	fmt.Printf("Time Threshold: %.0fs\n", result.Params.TimeThresholdSecs)
	fmt.Printf("Overlap: %s >= %.3f\n", result.Params.OverlapMode, result.Params.OverlapThreshold)
	fmt.Printf("Min Cluster Size: %d\n", result.Params.MinClusterSize)
	fmt.Printf("Clusters: %d\n", len(result.ClusterSizes))
	fmt.Printf("Geometry Warnings: %d\n", result.Warnings)

	fmt.Println("\n--- Per-Index Statistics ---")
	for _, kind := range spatialindex.ValidKinds {
		s, ok := result.PerIndex[string(kind)]
		if !ok {
			continue
		}
		fmt.Printf("\n%s:\n", kind)
		fmt.Printf("  Candidates: %d\n", s.Stats.Candidates)
		fmt.Printf("  Temporal Passed: %d\n", s.Stats.TemporalPassed)
		fmt.Printf("  Edges: %d\n", s.Stats.Edges)
		fmt.Printf("  Noise: %d\n", s.Stats.Noise)
		fmt.Printf("  Index Build: %v\n", s.Stats.IndexBuild)
		fmt.Printf("  Graph Build: %v\n", s.Stats.GraphBuild)
		fmt.Printf("  Total: %v\n", s.Stats.Total)
	}

	fmt.Println("\n--- Agreement Statistics ---")
	fmt.Printf("Reference: %s\n", result.AgreementStats.Reference)
	fmt.Printf("Agreement: %.2f%%\n", result.AgreementStats.AgreementPct)

	if verbose {
		fmt.Println("\n--- Cluster Sizes ---")
		for id, size := range result.ClusterSizes {
			fmt.Printf("cluster %d: %d\n", id, size)
		}
	}
}

func exportJSON(result *BenchResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
