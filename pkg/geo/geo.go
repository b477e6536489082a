// Package geo provides the small amount of geometry the guide needs:
// movement distances and map viewport bounds.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"hihimaps/pkg/model"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// FromLocation converts a device location to a Point.
func FromLocation(l model.Location) Point {
	return Point{Lat: l.Latitude, Lon: l.Longitude}
}

func (p Point) orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Distance returns the great-circle distance between two points in meters.
func Distance(p1, p2 Point) float64 {
	return orbgeo.DistanceHaversine(p1.orb(), p2.orb())
}

// DestinationPoint returns the point reached from start after travelling
// distMeters on the given bearing (degrees).
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	const r = 6371000 // Earth radius in meters
	lat1 := start.Lat * (math.Pi / 180.0)
	lon1 := start.Lon * (math.Pi / 180.0)
	brng := bearing * (math.Pi / 180.0)
	d := distMeters / r

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return Point{Lat: lat2 * (180.0 / math.Pi), Lon: lon2 * (180.0 / math.Pi)}
}

// Viewport is a rectangular map region centered on a point.
type Viewport struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// ViewportAround returns the bounds of a square region of the given radius in
// meters around center. The frontend uses it to frame the map after recenter.
func ViewportAround(center Point, radiusMeters float64) Viewport {
	b := orbgeo.NewBoundAroundPoint(center.orb(), radiusMeters)
	return Viewport{
		MinLat: b.Min[1],
		MinLon: b.Min[0],
		MaxLat: b.Max[1],
		MaxLon: b.Max[0],
	}
}
