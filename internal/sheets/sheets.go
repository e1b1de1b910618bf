// Package sheets splits an atlas area into printed map pages.
package sheets

import (
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultScale is the scale denominator of a map page, 1:10000.
	DefaultScale = 10000.0
	// DefaultOverlapMM is the strip repeated on the edges of adjacent pages.
	DefaultOverlapMM = 20.0
	// MaxSheets bounds a plan to keep typos in the scale from producing
	// thousands of pages.
	MaxSheets = 1000
)

// ErrTooManySheets is returned when a plan exceeds MaxSheets.
var ErrTooManySheets = errors.New("too many sheets")

// Paper is the printable area of one page, in millimeters.
type Paper struct {
	WidthMM  float64 `yaml:"width_mm" json:"width_mm"`
	HeightMM float64 `yaml:"height_mm" json:"height_mm"`
	MarginMM float64 `yaml:"margin_mm" json:"margin_mm"`
}

// UsableMM returns the paper size without its margins.
func (p Paper) UsableMM() (width, height float64) {
	return p.WidthMM - 2*p.MarginMM, p.HeightMM - 2*p.MarginMM
}

// Options drive a plan.
type Options struct {
	Paper      Paper
	Scale      float64
	OverlapMM  float64
	PageOffset int
}

// Sheet is one map page.
type Sheet struct {
	Page   int `json:"page"`
	Row    int `json:"row"`
	Column int `json:"column"`

	// Box is the area printed on the page, overlap included.
	Box geo.BoundingBox `json:"bbox"`
	// Inner is the area owned by the page, without the overlap.
	Inner geo.BoundingBox `json:"inner"`

	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial over the Mercator inner area.
func (s *Sheet) Bounds() rtreego.Rect {
	return s.rect
}

// Grid returns the square grid drawn on the page.
func (s *Sheet) Grid(opts grid.Options) (grid.Descriptor, error) {
	return grid.New(s.Box, opts)
}

// Plan is the page split of an area.
type Plan struct {
	Sheets  []*Sheet `json:"sheets"`
	Columns int      `json:"columns"`
	Rows    int      `json:"rows"`

	// Area is the planned area, grown evenly to fill whole pages.
	Area geo.BoundingBox `json:"area"`

	tree *rtreego.Rtree
}

// NewPlan splits bbox into pages at the scale of opts. Pages are
// numbered from opts.PageOffset, top row first, left to right.
func NewPlan(bbox geo.BoundingBox, opts Options) (*Plan, error) {
	if bbox.IsDegenerate() {
		return nil, fmt.Errorf("plan sheets for %s: %w", bbox, geo.ErrDegenerateBox)
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.OverlapMM < 0 {
		return nil, fmt.Errorf("negative overlap %.1f mm", opts.OverlapMM)
	}

	usableW, usableH := opts.Paper.UsableMM()
	innerW := usableW - 2*opts.OverlapMM
	innerH := usableH - 2*opts.OverlapMM
	if innerW <= 0 || innerH <= 0 {
		return nil, fmt.Errorf("paper %.0fx%.0f mm leaves no room inside a %.0f mm overlap",
			opts.Paper.WidthMM, opts.Paper.HeightMM, opts.OverlapMM)
	}

	// Mercator meters grow with 1/cos(lat) against ground meters.
	stretch := 1 / math.Cos(bbox.Center().Lat*math.Pi/180)
	toMercator := opts.Scale / 1000 * stretch
	pageW, pageH := innerW*toMercator, innerH*toMercator
	overlap := opts.OverlapMM * toMercator

	area := bbox.MercatorBound()
	cols := int(math.Ceil((area.Max[0] - area.Min[0]) / pageW))
	rows := int(math.Ceil((area.Max[1] - area.Min[1]) / pageH))
	cols, rows = max(cols, 1), max(rows, 1)
	if cols*rows > MaxSheets {
		return nil, fmt.Errorf("%dx%d pages at 1:%.0f: %w", cols, rows, opts.Scale, ErrTooManySheets)
	}

	growX := (float64(cols)*pageW - (area.Max[0] - area.Min[0])) / 2
	growY := (float64(rows)*pageH - (area.Max[1] - area.Min[1])) / 2
	area.Min[0] -= growX
	area.Max[0] += growX
	area.Min[1] -= growY
	area.Max[1] += growY

	plan := &Plan{
		Columns: cols,
		Rows:    rows,
		Area:    geo.BoundingBoxFromMercator(area),
		tree:    rtreego.NewTree(2, 25, 50),
	}

	for row := 0; row < rows; row++ {
		top := area.Max[1] - float64(row)*pageH
		for col := 0; col < cols; col++ {
			left := area.Min[0] + float64(col)*pageW
			inner := orb.Bound{
				Min: orb.Point{left, top - pageH},
				Max: orb.Point{left + pageW, top},
			}

			rect, err := rtreego.NewRect(rtreego.Point{inner.Min[0], inner.Min[1]}, []float64{pageW, pageH})
			if err != nil {
				return nil, fmt.Errorf("sheet %d,%d: %w", row, col, err)
			}

			s := &Sheet{
				Page:   opts.PageOffset + row*cols + col,
				Row:    row,
				Column: col,
				Box:    geo.BoundingBoxFromMercator(inner.Pad(overlap)),
				Inner:  geo.BoundingBoxFromMercator(inner),
				rect:   rect,
			}
			plan.Sheets = append(plan.Sheets, s)
			plan.tree.Insert(s)
		}
	}

	log.Debug().
		Int("columns", cols).
		Int("rows", rows).
		Float64("scale", opts.Scale).
		Str("area", plan.Area.String()).
		Msg("Sheets planned")

	return plan, nil
}

// Len returns the number of pages.
func (p *Plan) Len() int {
	return len(p.Sheets)
}

// Sheet returns the sheet printed on page, if any.
func (p *Plan) Sheet(page int) (*Sheet, bool) {
	if len(p.Sheets) == 0 {
		return nil, false
	}

	i := page - p.Sheets[0].Page
	if i < 0 || i >= len(p.Sheets) {
		return nil, false
	}

	return p.Sheets[i], true
}

// Lookup returns the sheets whose inner area holds pt, lowest page first.
func (p *Plan) Lookup(pt geo.Point) []*Sheet {
	m := toMercator(pt)
	found := p.tree.SearchIntersect(rtreego.Point{m[0], m[1]}.ToRect(0.01))

	out := make([]*Sheet, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*Sheet))
	}
	sortByPage(out)

	return out
}

// PageOf returns the lowest page showing pt as its own area.
func (p *Plan) PageOf(pt geo.Point) (*Sheet, bool) {
	found := p.Lookup(pt)
	if len(found) == 0 {
		return nil, false
	}

	return found[0], true
}

// SinglePage returns a plan printing the whole of bbox on one page.
func SinglePage(bbox geo.BoundingBox, page int) (*Plan, error) {
	if bbox.IsDegenerate() {
		return nil, fmt.Errorf("plan sheet for %s: %w", bbox, geo.ErrDegenerateBox)
	}

	inner := bbox.MercatorBound()
	rect, err := rtreego.NewRect(
		rtreego.Point{inner.Min[0], inner.Min[1]},
		[]float64{inner.Max[0] - inner.Min[0], inner.Max[1] - inner.Min[1]},
	)
	if err != nil {
		return nil, err
	}

	s := &Sheet{Page: page, Box: bbox, Inner: bbox, rect: rect}
	plan := &Plan{
		Sheets:  []*Sheet{s},
		Columns: 1,
		Rows:    1,
		Area:    bbox,
		tree:    rtreego.NewTree(2, 25, 50),
	}
	plan.tree.Insert(s)

	return plan, nil
}
