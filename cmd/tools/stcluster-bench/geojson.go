package main

import (
	"os"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/stcluster/internal/engine"
	"github.com/banshee-data/stcluster/internal/palette"
)

// toFeatureCollection converts a labeled batch to GeoJSON. Each feature
// keeps its attributes and gains cluster_id, color and (when set) time.
func toFeatureCollection(res *engine.Result, colors *palette.Assigner) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, lf := range res.Features {
		f := geojson.NewFeature(lf.Polygon)
		f.ID = lf.ID
		for k, v := range lf.Attributes {
			f.Properties[k] = v
		}
		f.Properties["cluster_id"] = lf.ClusterID
		f.Properties["color"] = colors.Color(lf.ClusterID)
		if lf.Time != nil {
			f.Properties["time"] = lf.Time.UTC().Format(time.RFC3339)
		}
		fc.Append(f)
	}
	return fc
}

func exportGeoJSON(res *engine.Result, colors *palette.Assigner, path string) error {
	data, err := toFeatureCollection(res, colors).MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
