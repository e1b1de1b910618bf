package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// PointFromOrb converts an orb point, which stores longitude first.
func PointFromOrb(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

// Orb returns the point in orb's [lon, lat] order.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Valid reports whether p is a finite coordinate within ±90 latitude and
// ±180 longitude.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}

	return math.Abs(p.Lat) <= 90 && math.Abs(p.Lon) <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("Point(lat=%f, long=%f)", p.Lat, p.Lon)
}
