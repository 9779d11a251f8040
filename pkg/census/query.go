package census

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

// Radius units accepted by ParseRadius.
const (
	UnitMeters     = "m"
	UnitKilometers = "km"
	UnitMiles      = "mi"

	metersPerMile = 1609.344
)

// tigerWebOutFields are the block group attributes requested from TIGERweb.
var tigerWebOutFields = []string{"GEOID", "STATE", "COUNTY", "TRACT", "BLKGRP", "INTPTLAT", "INTPTLON", "CENTLAT", "CENTLON"}

var validate = validator.New()

// Query is a population lookup around a coordinate.
type Query struct {
	Latitude     float64 `json:"latitude" validate:"latitude"`
	Longitude    float64 `json:"longitude" validate:"longitude"`
	RadiusMeters float64 `json:"radius_meters" validate:"gt=0"`
}

// Params holds the request parameters derived from a validated Query.
type Params struct {
	X              float64 // longitude
	Y              float64 // latitude
	DistanceMeters float64
}

// Validate checks the coordinate and radius ranges.
func (q Query) Validate() error {
	// NaN compares false against every bound, so reject non-finite values up front.
	fields := []struct {
		name string
		v    float64
	}{{"latitude", q.Latitude}, {"longitude", q.Longitude}, {"radius", q.RadiusMeters}}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return eris.Wrapf(ErrValidation, "%s must be a finite number", f.name)
		}
	}

	if err := validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return eris.Wrap(ErrValidation, err.Error())
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, describeFieldError(fe))
		}
		return eris.Wrap(ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "latitude":
		return fmt.Sprintf("latitude %v is outside [-90, 90]", fe.Value())
	case "longitude":
		return fmt.Sprintf("longitude %v is outside [-180, 180]", fe.Value())
	case "gt":
		return fmt.Sprintf("radius %v must be greater than 0", fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}

// BuildParams validates q and returns the parameters for the downstream calls.
func BuildParams(q Query) (Params, error) {
	if err := q.Validate(); err != nil {
		return Params{}, err
	}
	return Params{
		X:              q.Longitude,
		Y:              q.Latitude,
		DistanceMeters: q.RadiusMeters,
	}, nil
}

// GeocoderValues returns the query string for the geocoder coordinates endpoint.
func (p Params) GeocoderValues(benchmark, vintage string) url.Values {
	return url.Values{
		"x":         {formatCoord(p.X)},
		"y":         {formatCoord(p.Y)},
		"benchmark": {benchmark},
		"vintage":   {vintage},
		"layers":    {"all"},
		"format":    {"json"},
	}
}

// TigerWebValues returns the query string for a TIGERweb layer query that
// selects features intersecting the radius circle.
func (p Params) TigerWebValues() url.Values {
	return url.Values{
		"geometry":       {formatCoord(p.X) + "," + formatCoord(p.Y)},
		"geometryType":   {"esriGeometryPoint"},
		"inSR":           {"4326"},
		"spatialRel":     {"esriSpatialRelIntersects"},
		"distance":       {strconv.FormatFloat(p.DistanceMeters, 'f', -1, 64)},
		"units":          {"esriSRUnit_Meter"},
		"outFields":      {strings.Join(tigerWebOutFields, ",")},
		"returnGeometry": {"false"},
		"f":              {"json"},
	}
}

// ParseRadius converts a radius in the given unit to meters.
func ParseRadius(value float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case UnitMeters, "meters":
		return value, nil
	case UnitKilometers, "", "kilometers":
		return value * 1000, nil
	case UnitMiles, "miles":
		return value * metersPerMile, nil
	default:
		return 0, eris.Wrapf(ErrValidation, "unknown radius unit %q (want m, km or mi)", unit)
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
