// Package layout flows index categories into columns and pages.
package layout

import "fmt"

// Role is the font an index text is drawn with.
type Role int

const (
	// HeaderFont is used for category names.
	HeaderFont Role = iota
	// LabelFont is used for item labels.
	LabelFont
	// LocationFont is used for item locations.
	LocationFont
)

func (r Role) String() string {
	switch r {
	case HeaderFont:
		return "header"
	case LabelFont:
		return "label"
	case LocationFont:
		return "location"
	}

	return fmt.Sprintf("role(%d)", int(r))
}

// Measurer reports the drawn size of a text, in the units of the
// rendering area. It must be deterministic.
type Measurer interface {
	Measure(text string, role Role) (width, height float64)
	Ascent(role Role) float64
}

// Direction is the flow of columns on a page.
type Direction int

const (
	// LTR places columns left to right.
	LTR Direction = 1
	// RTL places columns right to left.
	RTL Direction = -1
)

func (d Direction) String() string {
	if d == RTL {
		return "rtl"
	}

	return "ltr"
}

// Rect is an area of a page. Y grows downwards.
type Rect struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Sink draws what the engine places. Positions are the top left corner of
// the line; the baseline is at y + ascent.
type Sink interface {
	NewPage(pageNumber int) error
	DrawHeader(text string, x, y, ascent, height float64) error
	DrawItem(label, location string, x, y, ascent, height, maxLocationWidth float64) error
}

// Geometry describes the columns of a layout pass.
type Geometry struct {
	Area        Rect
	Columns     int
	ColumnWidth float64
	Margin      float64
	Direction   Direction
}

// GeometrySink is implemented by sinks that need the column geometry, for
// instance to align locations on the column edge. Configure is called once,
// before the first page.
type GeometrySink interface {
	Sink
	Configure(g Geometry) error
}
