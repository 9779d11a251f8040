package census

import (
	"encoding/json"
	"strconv"
	"strings"
)

// BlockGroup is a census block group selected for a population query.
type BlockGroup struct {
	GEOID          string  `json:"geoid" yaml:"geoid"`
	State          string  `json:"state" yaml:"state"`
	County         string  `json:"county" yaml:"county"`
	Tract          string  `json:"tract" yaml:"tract"`
	BlockGroup     string  `json:"block_group" yaml:"block_group"`
	Latitude       float64 `json:"latitude" yaml:"latitude"`
	Longitude      float64 `json:"longitude" yaml:"longitude"`
	DistanceMeters float64 `json:"distance_meters" yaml:"distance_meters"`
	Population     int     `json:"population" yaml:"population"`
}

// CountyKey identifies the county a block group belongs to ("SS:CCC").
func (b BlockGroup) CountyKey() string {
	return b.State + ":" + b.County
}

// blockGroupAttrs holds the attribute names shared by the geocoder and
// TIGERweb responses. Coordinates arrive as signed strings ("+38.8977").
type blockGroupAttrs struct {
	GEOID    attrString `json:"GEOID"`
	STATE    attrString `json:"STATE"`
	COUNTY   attrString `json:"COUNTY"`
	TRACT    attrString `json:"TRACT"`
	BLKGRP   attrString `json:"BLKGRP"`
	NAME     attrString `json:"NAME"`
	INTPTLAT attrString `json:"INTPTLAT"`
	INTPTLON attrString `json:"INTPTLON"`
	CENTLAT  attrString `json:"CENTLAT"`
	CENTLON  attrString `json:"CENTLON"`
}

// attrString decodes an attribute that may be a JSON string, number or null.
type attrString string

func (s *attrString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = attrString(v)
		return nil
	}
	*s = attrString(data)
	return nil
}

func (s attrString) String() string { return strings.TrimSpace(string(s)) }

// toBlockGroup validates the identifier fields and resolves the block group's
// representative point, preferring the internal point over the centroid.
func (a blockGroupAttrs) toBlockGroup(service string) (BlockGroup, error) {
	bg := BlockGroup{
		GEOID:      a.GEOID.String(),
		State:      a.STATE.String(),
		County:     a.COUNTY.String(),
		Tract:      a.TRACT.String(),
		BlockGroup: a.BLKGRP.String(),
	}
	if bg.State == "" || bg.County == "" || bg.Tract == "" || bg.BlockGroup == "" {
		return BlockGroup{}, parseErrorf("%s: block group %q is missing identifier fields", service, a.GEOID.String())
	}
	if bg.GEOID == "" {
		bg.GEOID = bg.State + bg.County + bg.Tract + bg.BlockGroup
	}

	lat, lon := a.INTPTLAT.String(), a.INTPTLON.String()
	if lat == "" || lon == "" {
		lat, lon = a.CENTLAT.String(), a.CENTLON.String()
	}
	var err error
	if bg.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
		return BlockGroup{}, parseErrorf("%s: block group %s latitude %q", service, bg.GEOID, lat)
	}
	if bg.Longitude, err = strconv.ParseFloat(lon, 64); err != nil {
		return BlockGroup{}, parseErrorf("%s: block group %s longitude %q", service, bg.GEOID, lon)
	}
	return bg, nil
}
