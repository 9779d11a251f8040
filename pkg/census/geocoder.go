package census

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// geocoderResponse is the JSON response from the geographies/coordinates endpoint.
type geocoderResponse struct {
	Result struct {
		Geographies map[string][]blockGroupAttrs `json:"geographies"`
	} `json:"result"`
}

// Location is the geography containing a coordinate.
type Location struct {
	BlockGroup BlockGroup
	Name       string // e.g. "Block Group 1, San Francisco County, California"
}

// Locate resolves the block group containing the coordinate in p.
func (c *Client) Locate(ctx context.Context, p Params) (*Location, error) {
	body, err := c.get(ctx, serviceGeocoder, c.geocoderURL, p.GeocoderValues(c.benchmark, c.vintage))
	if err != nil {
		return nil, err
	}
	return parseGeocoderResponse(body)
}

func parseGeocoderResponse(body []byte) (*Location, error) {
	var resp geocoderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parseErrorf("geocoder: decode response: %v", err)
	}
	if resp.Result.Geographies == nil {
		return nil, parseErrorf("geocoder: response has no geographies")
	}

	groups := findLayer(resp.Result.Geographies, "Block Groups")
	if len(groups) == 0 {
		return nil, eris.Wrap(ErrOutsideCoverage, "geocoder: no block group contains the coordinate")
	}

	bg, err := groups[0].toBlockGroup(serviceGeocoder)
	if err != nil {
		return nil, err
	}

	name := []string{groups[0].NAME.String()}
	for _, layer := range []string{"Counties", "States"} {
		if entries := findLayer(resp.Result.Geographies, layer); len(entries) > 0 {
			name = append(name, entries[0].NAME.String())
		}
	}
	return &Location{BlockGroup: bg, Name: joinNonEmpty(name, ", ")}, nil
}

// findLayer returns the entries of the first layer whose name ends with suffix.
// Layer names carry vintage prefixes ("2020 Census Block Groups") that vary by
// request, so exact matching is avoided.
func findLayer(geos map[string][]blockGroupAttrs, suffix string) []blockGroupAttrs {
	if entries, ok := geos[suffix]; ok {
		return entries
	}
	names := make([]string, 0, len(geos))
	for name := range geos {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			return geos[name]
		}
	}
	return nil
}

func joinNonEmpty(parts []string, sep string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
