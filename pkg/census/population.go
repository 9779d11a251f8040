package census

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/census-cli/internal/spatial"
)

// PopulationResult is the population found within a radius of a coordinate.
type PopulationResult struct {
	// Geography is the GEOID of the block group containing the coordinate.
	Geography    string       `json:"geography" yaml:"geography"`
	Name         string       `json:"name" yaml:"name"`
	Population   int          `json:"population" yaml:"population"`
	Latitude     float64      `json:"latitude" yaml:"latitude"`
	Longitude    float64      `json:"longitude" yaml:"longitude"`
	RadiusMeters float64      `json:"radius_meters" yaml:"radius_meters"`
	Dataset      string       `json:"dataset" yaml:"dataset"`
	Variable     string       `json:"variable" yaml:"variable"`
	BlockGroups  []BlockGroup `json:"block_groups" yaml:"block_groups"`
}

// Population returns the population living in the block groups around q.
//
// The block group containing the coordinate is always counted. Every other
// block group touching the radius circle is counted when its internal point
// lies within the radius. Requests are issued one at a time: geocoder,
// TIGERweb, then one Data API call per county.
func (c *Client) Population(ctx context.Context, q Query) (*PopulationResult, error) {
	p, err := BuildParams(q)
	if err != nil {
		return nil, err
	}

	loc, err := c.Locate(ctx, p)
	if err != nil {
		return nil, eris.Wrap(err, "census: locate coordinate")
	}

	near, err := c.BlockGroupsNear(ctx, p)
	if err != nil {
		return nil, eris.Wrap(err, "census: find block groups")
	}

	selected := SelectBlockGroups(q, loc.BlockGroup, near)

	byCounty := make(map[string][]int)
	var counties []string
	for i, bg := range selected {
		key := bg.CountyKey()
		if _, ok := byCounty[key]; !ok {
			counties = append(counties, key)
		}
		byCounty[key] = append(byCounty[key], i)
	}
	sort.Strings(counties)

	total := 0
	for _, key := range counties {
		idxs := byCounty[key]
		first := selected[idxs[0]]
		pops, err := c.BlockGroupPopulation(ctx, first.State, first.County)
		if err != nil {
			return nil, err
		}
		for _, i := range idxs {
			pop, ok := pops[selected[i].GEOID]
			if !ok {
				return nil, parseErrorf("data api: no %s value for block group %s", c.variable, selected[i].GEOID)
			}
			selected[i].Population = pop
			total += pop
		}
	}

	zap.L().Info("population computed",
		zap.String("geography", loc.BlockGroup.GEOID),
		zap.Float64("radius_meters", q.RadiusMeters),
		zap.Int("block_groups", len(selected)),
		zap.Int("counties", len(counties)),
		zap.Int("population", total),
	)

	return &PopulationResult{
		Geography:    loc.BlockGroup.GEOID,
		Name:         loc.Name,
		Population:   total,
		Latitude:     q.Latitude,
		Longitude:    q.Longitude,
		RadiusMeters: q.RadiusMeters,
		Dataset:      c.dataset,
		Variable:     c.variable,
		BlockGroups:  selected,
	}, nil
}

// SelectBlockGroups applies the radius rule to the candidate block groups and
// returns them ordered by distance from the query point. The containing block
// group is always first and never duplicated.
func SelectBlockGroups(q Query, containing BlockGroup, candidates []BlockGroup) []BlockGroup {
	containing.DistanceMeters = spatial.Haversine(q.Latitude, q.Longitude, containing.Latitude, containing.Longitude)
	out := []BlockGroup{containing}
	seen := map[string]bool{containing.GEOID: true}

	for _, bg := range candidates {
		if seen[bg.GEOID] {
			continue
		}
		seen[bg.GEOID] = true
		bg.DistanceMeters = spatial.Haversine(q.Latitude, q.Longitude, bg.Latitude, bg.Longitude)
		if bg.DistanceMeters <= q.RadiusMeters {
			out = append(out, bg)
		}
	}

	rest := out[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].DistanceMeters != rest[j].DistanceMeters {
			return rest[i].DistanceMeters < rest[j].DistanceMeters
		}
		return rest[i].GEOID < rest[j].GEOID
	})
	return out
}
