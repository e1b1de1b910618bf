package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	// MercatorRadius is the sphere radius (a = b) of spherical Mercator.
	MercatorRadius = 6378137.0

	// MaxMercatorLat is the latitude where the square Mercator world ends.
	MaxMercatorLat = 85.05112878

	// TileSize is the edge of one slippy map tile in pixels.
	TileSize = 256
)

// yplan is the Mercator ordinate of a latitude on the unit sphere.
func yplan(lat float64) float64 {
	return math.Log(math.Tan(math.Pi/4 + radians(lat)/2))
}

// ToMercator projects the four corners of the box into spherical Mercator
// meters, in the order bottom left, bottom right, top left, top right.
func (b BoundingBox) ToMercator() [4]orb.Point {
	return [4]orb.Point{
		project.WGS84.ToMercator(orb.Point{b.long1, b.lat2}),
		project.WGS84.ToMercator(orb.Point{b.long2, b.lat2}),
		project.WGS84.ToMercator(orb.Point{b.long1, b.lat1}),
		project.WGS84.ToMercator(orb.Point{b.long2, b.lat1}),
	}
}

// MercatorBound returns the projected envelope of the box.
func (b BoundingBox) MercatorBound() orb.Bound {
	corners := b.ToMercator()
	return orb.Bound{Min: corners[0], Max: corners[3]}
}

// BoundingBoxFromMercator inverse projects a Mercator envelope.
func BoundingBoxFromMercator(bound orb.Bound) BoundingBox {
	minPt := project.Mercator.ToWGS84(bound.Min)
	maxPt := project.Mercator.ToWGS84(bound.Max)

	return NewBoundingBox(maxPt.Lat(), minPt.Lon(), minPt.Lat(), maxPt.Lon())
}

// WorldPixel returns the position of p in the pixel space of the whole
// slippy map at the given zoom level. The origin is the north-west corner.
func WorldPixel(p Point, zoom int) (x, y float64) {
	world := math.Ldexp(TileSize, zoom)
	lat := clampLat(p.Lat)

	x = (p.Lon + 180.0) / 360.0 * world
	y = (math.Pi - yplan(lat)) / (2 * math.Pi) * world

	return x, y
}

// GroundResolution returns the meters covered by one pixel at latitude lat
// on a slippy map rendered at zoom.
func GroundResolution(lat float64, zoom int) float64 {
	return math.Cos(radians(clampLat(lat))) * 2 * math.Pi * MercatorRadius / math.Ldexp(TileSize, zoom)
}

func clampLat(lat float64) float64 {
	if lat > MaxMercatorLat {
		return MaxMercatorLat
	} else if lat < -MaxMercatorLat {
		return -MaxMercatorLat
	}

	return lat
}
