package census

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

// White House area fixtures. Distances from (38.8977, -77.0365):
// 110010062021 ~45 m (containing), 110010062022 ~400 m, 110010058001 ~1.37 km,
// 510131017001 ~1.45 km (Arlington, VA), 110010107001 ~3.6 km.
const (
	testLat = 38.8977
	testLon = -77.0365

	geocoderBody = `{
		"result": {
			"input": {"location": {"x": -77.0365, "y": 38.8977}},
			"geographies": {
				"Census Block Groups": [{
					"GEOID": "110010062021", "STATE": "11", "COUNTY": "001",
					"TRACT": "006202", "BLKGRP": "1", "NAME": "Block Group 1",
					"INTPTLAT": "+38.8973000", "INTPTLON": "-077.0366000"
				}],
				"Counties": [{"NAME": "District of Columbia", "STATE": "11", "COUNTY": "001"}],
				"States": [{"NAME": "District of Columbia", "STATE": "11"}]
			}
		}
	}`

	tigerWebBody = `{
		"features": [
			{"attributes": {"GEOID": "110010062021", "STATE": "11", "COUNTY": "001", "TRACT": "006202", "BLKGRP": "1", "INTPTLAT": "+38.8973000", "INTPTLON": "-077.0366000"}},
			{"attributes": {"GEOID": "110010062022", "STATE": "11", "COUNTY": "001", "TRACT": "006202", "BLKGRP": "2", "INTPTLAT": "+38.9000000", "INTPTLON": "-077.0400000"}},
			{"attributes": {"GEOID": "110010058001", "STATE": "11", "COUNTY": "001", "TRACT": "005800", "BLKGRP": "1", "INTPTLAT": "+38.9100000", "INTPTLON": "-077.0365000"}},
			{"attributes": {"GEOID": "110010107001", "STATE": "11", "COUNTY": "001", "TRACT": "010700", "BLKGRP": "1", "INTPTLAT": "+38.9300000", "INTPTLON": "-077.0365000"}},
			{"attributes": {"GEOID": "510131017001", "STATE": "51", "COUNTY": "013", "TRACT": "101700", "BLKGRP": "1", "CENTLAT": "+38.8900000", "CENTLON": "-077.0500000"}}
		],
		"exceededTransferLimit": false
	}`

	dcPopulationBody = `[["P1_001N","state","county","tract","block group"],
		["1200","11","001","006202","1"],
		["800","11","001","006202","2"],
		["950","11","001","005800","1"],
		["2000","11","001","010700","1"]]`

	arlingtonPopulationBody = `[["P1_001N","state","county","tract","block group"],
		["1500","51","013","101700","1"]]`
)

// fakeCensus serves the geocoder, TIGERweb and Data API from one test server.
type fakeCensus struct {
	srv  *httptest.Server
	hits atomic.Int32

	geocoder http.HandlerFunc
	tigerWeb http.HandlerFunc
	data     http.HandlerFunc
}

func newFakeCensus(t *testing.T) *fakeCensus {
	t.Helper()
	f := &fakeCensus{
		geocoder: writeBody(geocoderBody),
		tigerWeb: writeBody(tigerWebBody),
		data:     countyPopulation,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		switch {
		case strings.HasPrefix(r.URL.Path, "/geocoder/"):
			f.geocoder(w, r)
		case strings.HasPrefix(r.URL.Path, "/tigerweb/"):
			f.tigerWeb(w, r)
		case strings.HasPrefix(r.URL.Path, "/data/"):
			if r.URL.Query().Get("key") != testKey {
				w.WriteHeader(http.StatusOK)
				_, _ = io.WriteString(w, "<html><body><p>Invalid Key</p></body></html>")
				return
			}
			f.data(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCensus) options() []Option {
	return []Option{
		WithDataURL(f.srv.URL + "/data"),
		WithGeocoderURL(f.srv.URL + "/geocoder/geographies/coordinates"),
		WithTigerWeb(f.srv.URL+"/tigerweb/MapServer", 10),
		WithRateLimit(1000),
	}
}

func (f *fakeCensus) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(testKey, append(f.options(), opts...)...)
	require.NoError(t, err)
	return c
}

func writeBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func writeStatus(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// countyPopulation answers block group population requests by county.
func countyPopulation(w http.ResponseWriter, r *http.Request) {
	in := strings.Join(r.URL.Query()["in"], " ")
	w.Header().Set("Content-Type", "application/json")
	switch in {
	case "state:11 county:001 tract:*":
		_, _ = io.WriteString(w, dcPopulationBody)
	case "state:51 county:013 tract:*":
		_, _ = io.WriteString(w, arlingtonPopulationBody)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
