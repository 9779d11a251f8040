package census

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// DataParams are the predicates of a Data API request.
type DataParams struct {
	Get []string // variables, e.g. NAME, P1_001N
	For string   // e.g. "state:*"
	In  []string // parent geographies, e.g. "state:06", "county:075"
}

// Values builds the request query string, adding the API key.
func (p DataParams) Values(apiKey string) url.Values {
	v := url.Values{"get": {strings.Join(p.Get, ",")}}
	if p.For != "" {
		v.Set("for", p.For)
	}
	for _, in := range p.In {
		v.Add("in", in)
	}
	if apiKey != "" {
		v.Set("key", apiKey)
	}
	return v
}

// Table is a Data API response: a header row followed by data rows.
type Table struct {
	Header []string   `json:"header" yaml:"header"`
	Rows   [][]string `json:"rows" yaml:"rows"`
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Records returns the rows as header-keyed maps.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Query issues an arbitrary Data API request against dataset
// (e.g. "2020/dec/pl") and returns the decoded table.
func (c *Client) Query(ctx context.Context, dataset string, p DataParams) (*Table, error) {
	dataset = strings.Trim(strings.TrimSpace(dataset), "/")
	if dataset == "" {
		return nil, eris.Wrap(ErrValidation, "dataset is required")
	}
	if len(p.Get) == 0 {
		return nil, eris.Wrap(ErrValidation, "at least one variable is required")
	}

	body, err := c.get(ctx, serviceData, c.dataURL+"/"+dataset, p.Values(c.apiKey))
	if err != nil {
		return nil, err
	}
	return parseDataTable(body)
}

// BlockGroupPopulation returns the population of every block group in a
// county, keyed by GEOID.
func (c *Client) BlockGroupPopulation(ctx context.Context, state, county string) (map[string]int, error) {
	table, err := c.Query(ctx, c.dataset, DataParams{
		Get: []string{c.variable},
		For: "block group:*",
		In:  []string{"state:" + state, "county:" + county, "tract:*"},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "census: population for county %s%s", state, county)
	}
	return populationByGEOID(table, c.variable)
}

func parseDataTable(body []byte) (*Table, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, parseErrorf("data api: empty response")
	}
	// An invalid key yields an HTML page rather than an error status.
	if trimmed[0] == '<' {
		if bytes.Contains(trimmed, []byte("Invalid Key")) {
			return nil, &APIError{Service: serviceData, StatusCode: http.StatusUnauthorized, Message: "invalid API key"}
		}
		return nil, parseErrorf("data api: unexpected non-JSON response")
	}

	var raw [][]attrString
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, parseErrorf("data api: decode response: %v", err)
	}
	if len(raw) == 0 {
		return nil, parseErrorf("data api: response has no header row")
	}

	t := &Table{Header: toStrings(raw[0])}
	for i, row := range raw[1:] {
		if len(row) != len(t.Header) {
			return nil, parseErrorf("data api: row %d has %d columns, header has %d", i+1, len(row), len(t.Header))
		}
		t.Rows = append(t.Rows, toStrings(row))
	}
	return t, nil
}

// populationByGEOID indexes the variable column by the block group GEOID
// assembled from the geography columns.
func populationByGEOID(t *Table, variable string) (map[string]int, error) {
	cols := map[string]int{}
	for _, name := range []string{variable, "state", "county", "tract", "block group"} {
		idx := t.Column(name)
		if idx < 0 {
			return nil, parseErrorf("data api: response is missing column %q", name)
		}
		cols[name] = idx
	}

	out := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		geoid := row[cols["state"]] + row[cols["county"]] + row[cols["tract"]] + row[cols["block group"]]
		pop, err := strconv.Atoi(row[cols[variable]])
		if err != nil {
			return nil, parseErrorf("data api: %s for %s is not an integer: %q", variable, geoid, row[cols[variable]])
		}
		if pop < 0 {
			return nil, parseErrorf("data api: %s for %s is negative: %d", variable, geoid, pop)
		}
		out[geoid] = pop
	}
	return out, nil
}

func toStrings(in []attrString) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.String()
	}
	return out
}
