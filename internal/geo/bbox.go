// Package geo handles geographic bounding boxes and coordinate conversions
// between geodesic, metric, projected and pixel spaces.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the sphere radius used to compute metric sizes.
const EarthRadiusMeters = 6370986.0

var (
	// ErrMalformedWKT is returned when a WKT string cannot be parsed.
	ErrMalformedWKT = errors.New("malformed WKT")
	// ErrMalformedPoint is returned for an unparsable "lat,long" pair.
	ErrMalformedPoint = errors.New("malformed lat,long point")
	// ErrDegenerateBox is returned when a box has zero metric width or height.
	ErrDegenerateBox = errors.New("degenerate bounding box")
)

// BoundingBox is a geographic rectangle given by its top left and bottom
// right corners. The corners are always normalized: lat1 >= lat2 and
// long1 <= long2, whatever order they were given in.
type BoundingBox struct {
	lat1, long1 float64
	lat2, long2 float64
}

// NewBoundingBox builds a normalized box from two opposite corners.
func NewBoundingBox(lat1, long1, lat2, long2 float64) BoundingBox {
	if lat1 < lat2 {
		lat1, lat2 = lat2, lat1
	}
	if long1 > long2 {
		long1, long2 = long2, long1
	}

	return BoundingBox{lat1: lat1, long1: long1, lat2: lat2, long2: long2}
}

// BoundingBoxFromPoints builds a normalized box from two opposite corners.
func BoundingBoxFromPoints(a, b Point) BoundingBox {
	return NewBoundingBox(a.Lat, a.Lon, b.Lat, b.Lon)
}

// ParsePoint parses a "lat,long" string.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: %q", ErrMalformedPoint, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: %v", ErrMalformedPoint, s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: %v", ErrMalformedPoint, s, err)
	}

	p := Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return Point{}, fmt.Errorf("%w: %q out of range", ErrMalformedPoint, s)
	}

	return p, nil
}

// ParseLatLonPair builds a box from two "lat,long" corner strings.
func ParseLatLonPair(first, second string) (BoundingBox, error) {
	a, err := ParsePoint(first)
	if err != nil {
		return BoundingBox{}, err
	}
	b, err := ParsePoint(second)
	if err != nil {
		return BoundingBox{}, err
	}

	return BoundingBoxFromPoints(a, b), nil
}

// TopLeft returns the north-west corner.
func (b BoundingBox) TopLeft() Point { return Point{Lat: b.lat1, Lon: b.long1} }

// BottomRight returns the south-east corner.
func (b BoundingBox) BottomRight() Point { return Point{Lat: b.lat2, Lon: b.long2} }

// North returns the top latitude.
func (b BoundingBox) North() float64 { return b.lat1 }

// South returns the bottom latitude.
func (b BoundingBox) South() float64 { return b.lat2 }

// West returns the left longitude.
func (b BoundingBox) West() float64 { return b.long1 }

// East returns the right longitude.
func (b BoundingBox) East() float64 { return b.long2 }

// LatitudeSpan returns the height of the box in degrees.
func (b BoundingBox) LatitudeSpan() float64 { return b.lat1 - b.lat2 }

// LongitudeSpan returns the width of the box in degrees.
func (b BoundingBox) LongitudeSpan() float64 { return b.long2 - b.long1 }

// Center returns the middle of the box.
func (b BoundingBox) Center() Point {
	return Point{Lat: (b.lat1 + b.lat2) / 2, Lon: (b.long1 + b.long2) / 2}
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat <= b.lat1 && p.Lat >= b.lat2 && p.Lon >= b.long1 && p.Lon <= b.long2
}

// ContainsBox reports whether o lies entirely inside the box.
func (b BoundingBox) ContainsBox(o BoundingBox) bool {
	return b.Contains(o.TopLeft()) && b.Contains(o.BottomRight())
}

// Expanded returns a box grown by dlat on the top and bottom sides and by
// dlong on the left and right sides. Negative values shrink it.
func (b BoundingBox) Expanded(dlat, dlong float64) BoundingBox {
	return NewBoundingBox(b.lat1+dlat, b.long1-dlong, b.lat2-dlat, b.long2+dlong)
}

// Merged returns the smallest box covering both b and o.
func (b BoundingBox) Merged(o BoundingBox) BoundingBox {
	return NewBoundingBox(
		math.Max(b.lat1, o.lat1),
		math.Min(b.long1, o.long1),
		math.Min(b.lat2, o.lat2),
		math.Max(b.long2, o.long2),
	)
}

// SphericSizes returns the metric height and width of the box. The width is
// measured along the top latitude, which is only accurate for boxes a few
// kilometers high.
func (b BoundingBox) SphericSizes() (height, width float64) {
	radiusLat := EarthRadiusMeters * math.Cos(radians(b.lat1))

	return EarthRadiusMeters * radians(b.LatitudeSpan()),
		radiusLat * radians(b.LongitudeSpan())
}

// IsDegenerate reports whether the box has no metric height or width.
func (b BoundingBox) IsDegenerate() bool {
	height, width := b.SphericSizes()
	return !(height > 0) || !(width > 0)
}

// PixelSizeForZoom returns the size in pixels (height, width) needed to
// render the box with 256 pixel slippy map tiles at the given zoom level.
func (b BoundingBox) PixelSizeForZoom(zoom int) (height, width int) {
	world := math.Ldexp(1, zoom+8)

	pixX := b.LongitudeSpan() * world / 360

	// the rendered world spans -85..85 degrees on world pixels
	pixY := (yplan(b.lat1) - yplan(b.lat2)) * (world / 2) / yplan(85)

	return int(math.Ceil(pixY)), int(math.Ceil(pixX))
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("BoundingBox(%.4f,%.4f %.4f,%.4f)", b.lat1, b.long1, b.lat2, b.long2)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
