package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sells-group/census-cli/internal/config"
)

const (
	testGeocoderBody = `{"result": {"geographies": {
		"Census Block Groups": [{"GEOID": "110010062021", "STATE": "11", "COUNTY": "001", "TRACT": "006202",
			"BLKGRP": "1", "NAME": "Block Group 1", "INTPTLAT": "+38.8973000", "INTPTLON": "-077.0366000"}],
		"Counties": [{"NAME": "District of Columbia"}],
		"States": [{"NAME": "District of Columbia"}]
	}}}`

	testTigerWebBody = `{"features": [
		{"attributes": {"GEOID": "110010062021", "STATE": "11", "COUNTY": "001", "TRACT": "006202", "BLKGRP": "1", "INTPTLAT": "+38.8973000", "INTPTLON": "-077.0366000"}},
		{"attributes": {"GEOID": "110010062022", "STATE": "11", "COUNTY": "001", "TRACT": "006202", "BLKGRP": "2", "INTPTLAT": "+38.9000000", "INTPTLON": "-077.0400000"}},
		{"attributes": {"GEOID": "110010107001", "STATE": "11", "COUNTY": "001", "TRACT": "010700", "BLKGRP": "1", "INTPTLAT": "+38.9300000", "INTPTLON": "-077.0365000"}}
	]}`

	testPopulationBody = `[["P1_001N","state","county","tract","block group"],
		["1200","11","001","006202","1"],
		["800","11","001","006202","2"],
		["2000","11","001","010700","1"]]`

	testStatesBody = `[["NAME","state"],["Pennsylvania","42"],["California","06"]]`
)

// censusStub answers geocoder, TIGERweb and Data API requests.
type censusStub struct {
	srv  *httptest.Server
	hits atomic.Int32
}

func newCensusStub(t *testing.T) *censusStub {
	t.Helper()
	s := &censusStub{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/geocoder/"):
			_, _ = io.WriteString(w, testGeocoderBody)
		case strings.HasPrefix(r.URL.Path, "/tigerweb/"):
			_, _ = io.WriteString(w, testTigerWebBody)
		case r.URL.Path == "/data/2020/dec/pl" && r.URL.Query().Get("for") == "block group:*":
			_, _ = io.WriteString(w, testPopulationBody)
		case r.URL.Path == "/data/2020/dec/pl":
			_, _ = io.WriteString(w, testStatesBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *censusStub) config(key string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			Key:                key,
			DataURL:            s.srv.URL + "/data",
			Dataset:            "2020/dec/pl",
			PopulationVariable: "P1_001N",
			GeocoderURL:        s.srv.URL + "/geocoder/geographies/coordinates",
			Benchmark:          "Public_AR_Current",
			Vintage:            "Census2020_Current",
			TigerWebURL:        s.srv.URL + "/tigerweb/MapServer",
			TigerWebLayer:      10,
			TimeoutSecs:        5,
			RateLimit:          1000,
			UserAgent:          "census-cli-test",
		},
		Log: config.LogConfig{Level: "error", Format: "json"},
	}
}
