package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/paulmach/orb"

	"github.com/banshee-data/stcluster/internal/feature"
)

// GenConfig controls the synthetic batch.
type GenConfig struct {
	Seed       int64
	Blobs      int           // Groups of overlapping polygons
	PerBlob    int           // Polygons per group
	Noise      int           // Scattered polygons outside any group
	Extent     float64       // Side of the square the batch is placed in
	Radius     float64       // Typical polygon radius
	TimeSpread time.Duration // Spread of timestamps inside one group
	Untimed    float64       // Fraction of polygons without a timestamp
	Start      time.Time
}

// DefaultGenConfig returns a moderate batch of a few thousand polygons.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:       1,
		Blobs:      40,
		PerBlob:    50,
		Noise:      500,
		Extent:     10000,
		Radius:     25,
		TimeSpread: 45 * time.Minute,
		Untimed:    0.05,
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generate builds the batch. Output ids match positions; the same config
// always yields the same batch.
func Generate(cfg GenConfig) []feature.Feature {
	r := rand.New(rand.NewSource(cfg.Seed))
	var out []feature.Feature

	add := func(p orb.Polygon, t *time.Time, blob int) {
		out = append(out, feature.Feature{
			ID:         len(out),
			Polygon:    p,
			Time:       t,
			Attributes: map[string]any{"blob": blob},
		})
	}
	stamp := func(center time.Time) *time.Time {
		if r.Float64() < cfg.Untimed {
			return nil
		}
		offset := time.Duration((r.Float64()*2 - 1) * float64(cfg.TimeSpread))
		t := center.Add(offset)
		return &t
	}

	for b := 0; b < cfg.Blobs; b++ {
		center := orb.Point{r.Float64() * cfg.Extent, r.Float64() * cfg.Extent}
		blobTime := cfg.Start.Add(time.Duration(r.Int63n(int64(30 * 24 * time.Hour))))
		for i := 0; i < cfg.PerBlob; i++ {
			c := orb.Point{
				center[0] + r.NormFloat64()*cfg.Radius,
				center[1] + r.NormFloat64()*cfg.Radius,
			}
			add(blobPolygon(r, c, cfg.Radius*(0.7+0.6*r.Float64())), stamp(blobTime), b)
		}
	}

	for i := 0; i < cfg.Noise; i++ {
		c := orb.Point{r.Float64() * cfg.Extent, r.Float64() * cfg.Extent}
		t := cfg.Start.Add(time.Duration(r.Int63n(int64(30 * 24 * time.Hour))))
		add(blobPolygon(r, c, cfg.Radius*(0.3+0.4*r.Float64())), stamp(t), -1)
	}

	return out
}

// blobPolygon returns a closed star-convex polygon around c.
func blobPolygon(r *rand.Rand, c orb.Point, radius float64) orb.Polygon {
	n := 5 + r.Intn(6)
	ring := make(orb.Ring, 0, n+1)
	for k := 0; k < n; k++ {
		angle := 2 * math.Pi * float64(k) / float64(n)
		rad := radius * (0.75 + 0.5*r.Float64())
		ring = append(ring, orb.Point{c[0] + rad*math.Cos(angle), c[1] + rad*math.Sin(angle)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
