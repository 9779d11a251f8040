// Package spatial holds the great-circle math used to select census
// geographies around a point and to draw the search radius.
package spatial

import (
	"math"

	"github.com/twpayne/go-geom"
)

const earthRadiusMeters = 6371008.8

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Destination returns the point reached by travelling distance meters from
// (lat, lon) on the initial bearing (degrees clockwise from north).
func Destination(lat, lon, bearing, distance float64) (float64, float64) {
	delta := distance / earthRadiusMeters
	theta := toRad(bearing)
	phi1 := toRad(lat)
	lambda1 := toRad(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	// Normalize longitude to [-180, 180).
	lon2 := math.Mod(toDeg(lambda2)+540, 360) - 180
	return toDeg(phi2), lon2
}

// Point returns a WGS84 point geometry for (lat, lon).
func Point(lat, lon float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
}

// Circle approximates the circle of radius meters around (lat, lon) as a
// closed polygon with the given number of vertices.
func Circle(lat, lon, radius float64, segments int) *geom.Polygon {
	if segments < 8 {
		segments = 8
	}
	flat := make([]float64, 0, (segments+1)*2)
	for i := 0; i < segments; i++ {
		y, x := Destination(lat, lon, 360*float64(i)/float64(segments), radius)
		flat = append(flat, x, y)
	}
	flat = append(flat, flat[0], flat[1])
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(4326)
}

// Bounds returns the bounding box of the circle of radius meters around (lat, lon).
func Bounds(lat, lon, radius float64) *geom.Bounds {
	return Circle(lat, lon, radius, 64).Bounds()
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
