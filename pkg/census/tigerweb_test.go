package census

import (
	"context"
	"net/http"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockGroupsNear_Success(t *testing.T) {
	fake := newFakeCensus(t)
	var path, distance, geometry string
	fake.tigerWeb = func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		distance = r.URL.Query().Get("distance")
		geometry = r.URL.Query().Get("geometry")
		writeBody(tigerWebBody)(w, r)
	}
	c := fake.client(t)

	groups, err := c.BlockGroupsNear(context.Background(), Params{X: testLon, Y: testLat, DistanceMeters: 1500})
	require.NoError(t, err)
	require.Len(t, groups, 5)

	assert.Equal(t, "/tigerweb/MapServer/10/query", path)
	assert.Equal(t, "1500", distance)
	assert.Equal(t, "-77.036500,38.897700", geometry)

	assert.Equal(t, "110010062022", groups[1].GEOID)
	assert.InDelta(t, 38.9, groups[1].Latitude, 1e-9)
	// Centroid is used when the internal point is absent.
	assert.Equal(t, "510131017001", groups[4].GEOID)
	assert.Equal(t, "51:013", groups[4].CountyKey())
	assert.InDelta(t, -77.05, groups[4].Longitude, 1e-9)
}

func TestParseTigerWebResponse_NumericAttributes(t *testing.T) {
	body := []byte(`{"features": [{"attributes": {"STATE": "11", "COUNTY": "001", "TRACT": "006202", "BLKGRP": 2, "INTPTLAT": 38.9, "INTPTLON": -77.04, "GEOID": null}}]}`)

	groups, err := parseTigerWebResponse(body)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "110010062022", groups[0].GEOID, "GEOID is assembled when absent")
	assert.Equal(t, "2", groups[0].BlockGroup)
}

func TestParseTigerWebResponse_Empty(t *testing.T) {
	groups, err := parseTigerWebResponse([]byte(`{"features": []}`))
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestParseTigerWebResponse_EmbeddedError(t *testing.T) {
	body := []byte(`{"error": {"code": 400, "message": "Unable to complete operation.", "details": ["Invalid query parameters."]}}`)

	_, err := parseTigerWebResponse(body)
	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "tigerweb", apiErr.Service)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Invalid query parameters.")
}

func TestParseTigerWebResponse_TransferLimit(t *testing.T) {
	_, err := parseTigerWebResponse([]byte(`{"features": [], "exceededTransferLimit": true}`))
	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Contains(t, apiErr.Message, "smaller radius")
}

func TestParseTigerWebResponse_Malformed(t *testing.T) {
	_, err := parseTigerWebResponse([]byte(`{"features": "nope"}`))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrParse))
}
