package report

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/census-cli/internal/spatial"
	"github.com/sells-group/census-cli/pkg/census"
)

const circleSegments = 64

// PopulationGeoJSON encodes a population result as a FeatureCollection: the
// search circle first, then one point per counted block group.
func PopulationGeoJSON(res *census.PopulationResult) ([]byte, error) {
	fc := &geojson.FeatureCollection{
		BBox: spatial.Bounds(res.Latitude, res.Longitude, res.RadiusMeters),
	}

	fc.Features = append(fc.Features, &geojson.Feature{
		ID:       "radius",
		Geometry: spatial.Circle(res.Latitude, res.Longitude, res.RadiusMeters, circleSegments),
		Properties: map[string]any{
			"kind":          "radius",
			"geography":     res.Geography,
			"name":          res.Name,
			"population":    res.Population,
			"radius_meters": res.RadiusMeters,
			"dataset":       res.Dataset,
			"variable":      res.Variable,
		},
	})

	for _, bg := range res.BlockGroups {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       bg.GEOID,
			Geometry: spatial.Point(bg.Latitude, bg.Longitude),
			Properties: map[string]any{
				"kind":            "block_group",
				"geoid":           bg.GEOID,
				"population":      bg.Population,
				"distance_meters": bg.DistanceMeters,
				"containing":      bg.GEOID == res.Geography,
			},
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "report: encode geojson")
	}
	return data, nil
}
