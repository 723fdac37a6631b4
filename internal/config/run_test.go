package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stcluster/internal/engine"
	"github.com/banshee-data/stcluster/internal/overlap"
	"github.com/banshee-data/stcluster/internal/spatialindex"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultRunConfig(t *testing.T) {
	cfg := DefaultRunConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, engine.DefaultParams(), cfg.ToParams())
}

func TestEmptyRunConfig_UsesDefaults(t *testing.T) {
	cfg := EmptyRunConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, time.Hour, cfg.GetTimeThreshold())
	assert.Equal(t, 2, cfg.GetMinClusterSize())
	assert.Equal(t, 0.0, cfg.GetOverlapThreshold())
	assert.Equal(t, overlap.ModeIoU, cfg.GetOverlapMode())
	assert.Equal(t, spatialindex.KindGrid, cfg.GetIndex())
	assert.Zero(t, cfg.GetGridCellSize())
	assert.Zero(t, cfg.GetWorkers())
	assert.Equal(t, engine.DefaultParams(), cfg.ToParams())
}

func TestLoadRunConfig_JSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{
  "time_threshold": "2h",
  "min_cluster_size": 3,
  "overlap_threshold": 0.5,
  "overlap_mode": "min_area",
  "index": "rtree",
  "workers": 4
}`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)

	p := cfg.ToParams()
	assert.Equal(t, 2*time.Hour, p.TimeThreshold)
	assert.Equal(t, 3, p.MinClusterSize)
	assert.Equal(t, 0.5, p.OverlapThreshold)
	assert.Equal(t, overlap.ModeMinArea, p.OverlapMode)
	assert.Equal(t, spatialindex.KindRTree, p.Index)
	assert.Equal(t, 4, p.Workers)
	require.NoError(t, p.Validate())
}

func TestLoadRunConfig_YAML(t *testing.T) {
	body := `
time_value: 90
time_unit: minutes
overlap_percent: 25
min_cluster_size: 1
grid_cell_size: 12.5
`
	for _, name := range []string{"run.yaml", "run.yml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadRunConfig(writeConfig(t, name, body))
			require.NoError(t, err)

			p := cfg.ToParams()
			assert.Equal(t, 90*time.Minute, p.TimeThreshold)
			assert.Equal(t, 0.25, p.OverlapThreshold)
			assert.Equal(t, 1, p.MinClusterSize)
			assert.Equal(t, 12.5, p.GridCellSize)
		})
	}
}

func TestLoadRunConfig_EmptyYAML(t *testing.T) {
	cfg, err := LoadRunConfig(writeConfig(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultParams(), cfg.ToParams())
}

func TestLoadRunConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "run.toml", `min_cluster_size = 2`, "extension"},
		{"malformed json", "run.json", `{"min_cluster_size": }`, "parse config JSON"},
		{"unknown json field", "run.json", `{"min_clustr_size": 2}`, "parse config JSON"},
		{"unknown yaml field", "run.yaml", "overlap: 0.5\n", "parse config YAML"},
		{"invalid value", "run.json", `{"min_cluster_size": 0}`, "min_cluster_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRunConfig(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "stat")
}

func TestLoadRunConfig_TooLarge(t *testing.T) {
	body := `{"workers": 1` + strings.Repeat(" ", maxFileSize) + `}`
	_, err := LoadRunConfig(writeConfig(t, "big.json", body))
	assert.ErrorContains(t, err, "too large")
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RunConfig
		wantErr bool
	}{
		{"seconds form", RunConfig{TimeThresholdSeconds: ptrFloat64(7200)}, false},
		{"bad duration", RunConfig{TimeThreshold: ptrString("two hours")}, true},
		{"negative duration", RunConfig{TimeThreshold: ptrString("-1h")}, true},
		{"negative seconds", RunConfig{TimeThresholdSeconds: ptrFloat64(-1)}, true},
		{"value without unit", RunConfig{TimeValue: ptrFloat64(2)}, true},
		{"unknown unit", RunConfig{TimeValue: ptrFloat64(2), TimeUnit: ptrString("weeks")}, true},
		{"two time forms", RunConfig{TimeThreshold: ptrString("1h"), TimeThresholdSeconds: ptrFloat64(60)}, true},
		{"ratio and percent", RunConfig{OverlapThreshold: ptrFloat64(0.5), OverlapPercent: ptrFloat64(50)}, true},
		{"ratio above one", RunConfig{OverlapThreshold: ptrFloat64(1.2)}, true},
		{"percent above hundred", RunConfig{OverlapPercent: ptrFloat64(150)}, true},
		{"unknown mode", RunConfig{OverlapMode: ptrString("union")}, true},
		{"unknown index", RunConfig{Index: ptrString("quadtree")}, true},
		{"negative cell size", RunConfig{GridCellSize: ptrFloat64(-3)}, true},
		{"all forms valid", RunConfig{TimeValue: ptrFloat64(1), TimeUnit: ptrString("days"), OverlapPercent: ptrFloat64(10)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunConfig_TimeForms(t *testing.T) {
	assert.Equal(t, 2*time.Hour, (&RunConfig{TimeThresholdSeconds: ptrFloat64(7200)}).GetTimeThreshold())
	assert.Equal(t, 36*time.Hour, (&RunConfig{TimeValue: ptrFloat64(1.5), TimeUnit: ptrString("days")}).GetTimeThreshold())
	assert.Equal(t, 45*time.Second, (&RunConfig{TimeThreshold: ptrString("45s")}).GetTimeThreshold())

	// Unparseable values fall back to the default.
	assert.Equal(t, engine.DefaultTimeThreshold, (&RunConfig{TimeThreshold: ptrString("soon")}).GetTimeThreshold())
	assert.Equal(t, overlap.ModeIoU, (&RunConfig{OverlapMode: ptrString("union")}).GetOverlapMode())
	assert.Equal(t, spatialindex.KindGrid, (&RunConfig{Index: ptrString("quadtree")}).GetIndex())
}
