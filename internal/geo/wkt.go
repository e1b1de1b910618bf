package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// WKT returns the point as POINT(long lat).
func (p Point) WKT() string {
	return wkt.MarshalString(p.Orb())
}

// ParsePointWKT parses a POINT(long lat) string.
func ParsePointWKT(s string) (Point, error) {
	p, err := wkt.UnmarshalPoint(s)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: %v", ErrMalformedWKT, s, err)
	}

	pt := PointFromOrb(p)
	if !pt.Valid() {
		return Point{}, fmt.Errorf("%w: %q: coordinates out of range", ErrMalformedWKT, s)
	}

	return pt, nil
}

// Ring returns the closed outline of the box in lon/lat order, starting
// and ending at the bottom left corner and going up the left edge first.
func (b BoundingBox) Ring() orb.Ring {
	return orb.Ring{
		{b.long1, b.lat2},
		{b.long1, b.lat1},
		{b.long2, b.lat1},
		{b.long2, b.lat2},
		{b.long1, b.lat2},
	}
}

// Bound returns the box as an orb bound (min is south-west).
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.long1, b.lat2},
		Max: orb.Point{b.long2, b.lat1},
	}
}

// BoundingBoxFromBound converts an orb bound.
func BoundingBoxFromBound(bound orb.Bound) BoundingBox {
	return NewBoundingBox(bound.Max.Lat(), bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon())
}

// WKT returns the box as a five point POLYGON.
func (b BoundingBox) WKT() string {
	return wkt.MarshalString(orb.Polygon{b.Ring()})
}

// ParseWKT parses a POLYGON and returns the box covering its outer ring.
func ParseWKT(s string) (BoundingBox, error) {
	poly, err := wkt.UnmarshalPolygon(s)
	if err != nil {
		return BoundingBox{}, fmt.Errorf("%w: %q: %v", ErrMalformedWKT, s, err)
	}

	if len(poly) == 0 || len(poly[0]) < 4 {
		return BoundingBox{}, fmt.Errorf("%w: %q: polygon ring needs at least 4 points", ErrMalformedWKT, s)
	}
	for _, p := range poly[0] {
		if !PointFromOrb(p).Valid() {
			return BoundingBox{}, fmt.Errorf("%w: %q: coordinates out of range", ErrMalformedWKT, s)
		}
	}

	return BoundingBoxFromBound(poly[0].Bound()), nil
}
