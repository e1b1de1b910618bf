// Package grid partitions a bounding box into a uniform square grid and
// exposes its line coordinates and per-square labels.
package grid

import (
	"fmt"
	"math"
	"slices"

	"github.com/woozymasta/mapbook/internal/geo"

	"github.com/rs/zerolog/log"
)

// SquareSizeMeters is the nominal edge of a grid square.
const SquareSizeMeters = 500.0

// adaptiveSizes are tried, largest first, when Options.Adaptive is set.
var adaptiveSizes = []float64{500, 250, 100, 50}

// adaptiveMinSquares is the square count the shorter axis must exceed
// before a smaller adaptive size is tried.
const adaptiveMinSquares = 4

// Options tune the grid construction.
type Options struct {
	Scheme LabelScheme `yaml:"labels,omitempty" json:"labels,omitempty"`

	// SquareSize overrides SquareSizeMeters when positive.
	SquareSize float64 `yaml:"square_size,omitempty" json:"square_size,omitempty"`

	// Adaptive picks the largest of 500/250/100/50 m that gives more than
	// four squares along the shorter axis. SquareSize is ignored.
	Adaptive bool `yaml:"adaptive,omitempty" json:"adaptive,omitempty"`

	// RTL reverses the column labels for right-to-left atlases.
	RTL bool `yaml:"-" json:"-"`
}

// Descriptor is an immutable square grid laid over a bounding box.
type Descriptor struct {
	bbox       geo.BoundingBox
	squareSize float64
	rtl        bool

	widthSquareCount  float64
	heightSquareCount float64
	widthSquareAngle  float64
	heightSquareAngle float64

	verticalLines    []float64
	horizontalLines  []float64
	verticalLabels   []string
	horizontalLabels []string
}

// New computes the grid of bbox. Boxes with no metric width or height are
// rejected with geo.ErrDegenerateBox.
func New(bbox geo.BoundingBox, opts Options) (Descriptor, error) {
	columnLabeler, rowLabeler, err := opts.Scheme.Labelers()
	if err != nil {
		return Descriptor{}, err
	}

	height, width := bbox.SphericSizes()
	if !(height > 0) || !(width > 0) {
		return Descriptor{}, fmt.Errorf("%w: %s", geo.ErrDegenerateBox, bbox)
	}

	size := SquareSizeMeters
	if opts.SquareSize > 0 {
		size = opts.SquareSize
	}
	if opts.Adaptive {
		size = adaptiveSize(height, width)
	}

	d := Descriptor{
		bbox:              bbox,
		squareSize:        size,
		rtl:               opts.RTL,
		widthSquareCount:  width / size,
		heightSquareCount: height / size,
	}

	d.widthSquareAngle = bbox.LongitudeSpan() / d.widthSquareCount
	d.heightSquareAngle = bbox.LatitudeSpan() / d.heightSquareCount

	columns := int(math.Ceil(d.widthSquareCount))
	rows := int(math.Ceil(d.heightSquareCount))

	d.verticalLines = make([]float64, columns+1)
	for i := range d.verticalLines {
		d.verticalLines[i] = bbox.West() + float64(i)*d.widthSquareAngle
	}

	d.horizontalLines = make([]float64, rows+1)
	for i := range d.horizontalLines {
		d.horizontalLines[i] = bbox.North() - float64(i)*d.heightSquareAngle
	}

	d.verticalLabels = make([]string, columns)
	for i := range d.verticalLabels {
		d.verticalLabels[i] = columnLabeler(i)
	}
	if opts.RTL {
		slices.Reverse(d.verticalLabels)
	}

	d.horizontalLabels = make([]string, rows)
	for i := range d.horizontalLabels {
		d.horizontalLabels[i] = rowLabeler(i)
	}

	log.Debug().
		Str("bbox", bbox.String()).
		Float64("square_m", size).
		Int("columns", columns).
		Int("rows", rows).
		Msg("Grid computed")

	return d, nil
}

func adaptiveSize(height, width float64) float64 {
	var size float64
	for _, size = range adaptiveSizes {
		if math.Min(width, height)/size > adaptiveMinSquares {
			break
		}
	}

	return size
}

// BoundingBox returns the box the grid covers.
func (d Descriptor) BoundingBox() geo.BoundingBox { return d.bbox }

// SquareSize returns the nominal square edge in meters.
func (d Descriptor) SquareSize() float64 { return d.squareSize }

// RTL reports whether column labels run right to left.
func (d Descriptor) RTL() bool { return d.rtl }

// WidthSquareCount is the real valued number of squares across the box.
func (d Descriptor) WidthSquareCount() float64 { return d.widthSquareCount }

// HeightSquareCount is the real valued number of squares down the box.
func (d Descriptor) HeightSquareCount() float64 { return d.heightSquareCount }

// WidthSquareAngle is the longitude span of one square.
func (d Descriptor) WidthSquareAngle() float64 { return d.widthSquareAngle }

// HeightSquareAngle is the latitude span of one square.
func (d Descriptor) HeightSquareAngle() float64 { return d.heightSquareAngle }

// VerticalLines returns the line longitudes, left to right.
func (d Descriptor) VerticalLines() []float64 { return slices.Clone(d.verticalLines) }

// HorizontalLines returns the line latitudes, top to bottom.
func (d Descriptor) HorizontalLines() []float64 { return slices.Clone(d.horizontalLines) }

// VerticalLabels returns one label per column of squares.
func (d Descriptor) VerticalLabels() []string { return slices.Clone(d.verticalLabels) }

// HorizontalLabels returns one label per row of squares.
func (d Descriptor) HorizontalLabels() []string { return slices.Clone(d.horizontalLabels) }

// Columns returns the number of square columns.
func (d Descriptor) Columns() int { return len(d.verticalLabels) }

// Rows returns the number of square rows.
func (d Descriptor) Rows() int { return len(d.horizontalLabels) }
