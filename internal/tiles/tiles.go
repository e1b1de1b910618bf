// Package tiles fetches slippy map tiles and composes sheet backgrounds.
package tiles

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/mapbook/internal/geo"
)

// ErrNoTile is returned for tiles the server does not have.
var ErrNoTile = errors.New("tile not found")

// Coordinate is the address of one tile.
type Coordinate struct {
	Z, X, Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// BuildURL fills the {z}, {x}, {y} and {tms_y} placeholders of tpl.
func BuildURL(tpl string, c Coordinate) string {
	s := strings.ReplaceAll(tpl, "{z}", strconv.Itoa(c.Z))
	s = strings.ReplaceAll(s, "{x}", strconv.Itoa(c.X))
	s = strings.ReplaceAll(s, "{y}", strconv.Itoa(c.Y))

	if strings.Contains(s, "{tms_y}") {
		maxCoord := (1 << c.Z) - 1
		s = strings.ReplaceAll(s, "{tms_y}", strconv.Itoa(maxCoord-c.Y))
	}

	return s
}

// IsTemplate reports whether s has tile placeholders.
func IsTemplate(s string) bool {
	return strings.Contains(s, "{z}") || strings.Contains(s, "{x}")
}

// window is the world pixel area of a box at a zoom level.
type window struct {
	zoom           int
	minX, minY     float64
	maxX, maxY     float64
	originX, origY int
}

func newWindow(bbox geo.BoundingBox, zoom int) window {
	minX, minY := geo.WorldPixel(bbox.TopLeft(), zoom)
	maxX, maxY := geo.WorldPixel(bbox.BottomRight(), zoom)

	return window{
		zoom: zoom,
		minX: minX, minY: minY,
		maxX: maxX, maxY: maxY,
		originX: int(math.Floor(minX)),
		origY:   int(math.Floor(minY)),
	}
}

// size returns the pixel size of the window at full tile resolution.
func (w window) size() (width, height int) {
	return int(math.Ceil(w.maxX)) - w.originX, int(math.Ceil(w.maxY)) - w.origY
}

// Covering returns the tiles needed to draw bbox at zoom, row by row.
func Covering(bbox geo.BoundingBox, zoom int) []Coordinate {
	return newWindow(bbox, zoom).tiles()
}

func (w window) tiles() []Coordinate {
	last := (1 << w.zoom) - 1
	x0 := clamp(int(math.Floor(w.minX/geo.TileSize)), 0, last)
	y0 := clamp(int(math.Floor(w.minY/geo.TileSize)), 0, last)
	x1 := clamp(int(math.Ceil(w.maxX/geo.TileSize))-1, 0, last)
	y1 := clamp(int(math.Ceil(w.maxY/geo.TileSize))-1, 0, last)

	out := make([]Coordinate, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			out = append(out, Coordinate{Z: w.zoom, X: x, Y: y})
		}
	}

	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
