package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/mapbook/internal/index"

	"github.com/rs/zerolog/log"
)

// DefaultPageNumberMargin is a 10 mm footer band expressed in points.
const DefaultPageNumberMargin = 10 * 72 / 25.4

// Config is the fixed part of a layout pass.
type Config struct {
	// Area is the usable region of every page.
	Area Rect

	// PageOffset is added to every page index, so a second index volume
	// can continue the numbering of the first one.
	PageOffset int

	Direction Direction

	// Margin is the gutter around column contents. Zero means the width
	// of "M" in the label font.
	Margin float64

	// PageNumberMargin is the height of the footer band kept free for the
	// page number at the bottom of the area.
	PageNumberMargin float64
}

// Engine places index categories on pages. An Engine is not safe for
// concurrent use: Render owns the cursor for the duration of the call.
type Engine struct {
	cfg      Config
	measurer Measurer
	cur      cursor
}

// cursor tracks the current drawing position, relative to the area.
type cursor struct {
	page   int
	column int
	y      float64
	used   bool

	baseX  float64
	deltaX float64
}

func (c cursor) x() float64 {
	return c.baseX + float64(c.column)*c.deltaX
}

// NewEngine validates the configuration.
func NewEngine(cfg Config, m Measurer) (*Engine, error) {
	if m == nil {
		return nil, errors.New("layout: nil measurer")
	}
	if !(cfg.Area.Width > 0) || !(cfg.Area.Height > 0) {
		return nil, fmt.Errorf("layout: empty rendering area %+v", cfg.Area)
	}
	if cfg.PageNumberMargin < 0 || cfg.PageNumberMargin >= cfg.Area.Height {
		return nil, fmt.Errorf("layout: page number margin %.2f does not fit area height %.2f",
			cfg.PageNumberMargin, cfg.Area.Height)
	}
	if cfg.Margin < 0 {
		return nil, fmt.Errorf("layout: negative margin %.2f", cfg.Margin)
	}

	switch cfg.Direction {
	case LTR, RTL:
	case 0:
		cfg.Direction = LTR
	default:
		return nil, fmt.Errorf("layout: invalid direction %d", int(cfg.Direction))
	}

	return &Engine{cfg: cfg, measurer: m}, nil
}

// Render lays categories out and draws them on sink. The categories are
// not modified; the Result holds the page and position of every header and
// item. Without items nothing is drawn and the Result has zero pages.
func (e *Engine) Render(categories []index.Category, sink Sink) (*Result, error) {
	res := &Result{
		FirstPage: e.cfg.PageOffset,
		LastPage:  e.cfg.PageOffset - 1,
		Headers:   make([]Placement, len(categories)),
		Items:     make([][]Placement, len(categories)),
	}
	for i, c := range categories {
		res.Items[i] = make([]Placement, len(c.Items))
	}

	if index.CountItems(categories) == 0 {
		log.Debug().Msg("Index has no items, nothing to lay out")
		return res, nil
	}

	margin := e.cfg.Margin
	if margin == 0 {
		margin, _ = e.measurer.Measure("M", LabelFont)
	}
	maxDrawingHeight := e.cfg.Area.Height - e.cfg.PageNumberMargin

	// one column width for the whole index
	for _, c := range categories {
		for _, item := range c.Items {
			lw, _ := e.measurer.Measure(item.Label, LabelFont)
			res.MaxLabelWidth = math.Max(res.MaxLabelWidth, lw)

			locw, _ := e.measurer.Measure(item.LocationText(), LocationFont)
			res.MaxLocationWidth = math.Max(res.MaxLocationWidth, locw)
		}
	}

	res.Columns = 1
	if span := res.MaxLabelWidth + res.MaxLocationWidth + 2*margin; span > 0 {
		res.Columns = max(1, int(math.Ceil(e.cfg.Area.Width/span)))
	}
	res.ColumnWidth = e.cfg.Area.Width / float64(res.Columns)

	e.cur = cursor{y: margin / 2}
	if e.cfg.Direction == RTL {
		e.cur.baseX = e.cfg.Area.Width - res.ColumnWidth + margin/2
		e.cur.deltaX = -res.ColumnWidth
	} else {
		e.cur.baseX = margin / 2
		e.cur.deltaX = res.ColumnWidth
	}

	if gs, ok := sink.(GeometrySink); ok {
		err := gs.Configure(Geometry{
			Area:        e.cfg.Area,
			Columns:     res.Columns,
			ColumnWidth: res.ColumnWidth,
			Margin:      margin,
			Direction:   e.cfg.Direction,
		})
		if err != nil {
			return nil, fmt.Errorf("configure sink: %w", err)
		}
	}

	if err := sink.NewPage(e.cfg.PageOffset); err != nil {
		return nil, fmt.Errorf("page %d: %w", e.cfg.PageOffset, err)
	}
	res.Pages = 1

	fits := func(height float64) bool {
		return e.cur.y+height+margin/2 <= maxDrawingHeight
	}

	// advance moves to the next column, or the next page once the columns
	// are exhausted. A column nothing was drawn in is never left.
	advance := func(height float64) error {
		if fits(height) || !e.cur.used {
			return nil
		}

		e.cur.y = margin / 2
		e.cur.used = false
		e.cur.column++

		if e.cur.column == res.Columns {
			e.cur.column = 0
			e.cur.page++
			res.Pages++
			if err := sink.NewPage(e.cur.page + e.cfg.PageOffset); err != nil {
				return fmt.Errorf("page %d: %w", e.cur.page+e.cfg.PageOffset, err)
			}
		}

		return nil
	}

	headerAscent := e.measurer.Ascent(HeaderFont)
	labelAscent := e.measurer.Ascent(LabelFont)

	for ci, c := range categories {
		_, headerHeight := e.measurer.Measure(c.Name, HeaderFont)

		lineHeight := 0.0
		if len(c.Items) > 0 {
			lineHeight = e.itemHeight(c.Items[0])
		}

		if err := advance(headerHeight + lineHeight); err != nil {
			return nil, err
		}
		if !fits(headerHeight + lineHeight) {
			res.Overflows++
			log.Warn().
				Str("category", c.Name).
				Float64("height", headerHeight+lineHeight).
				Float64("max_height", maxDrawingHeight).
				Msg("Category header does not fit in an empty column")
		}

		p := e.place(headerHeight)
		if err := sink.DrawHeader(c.Name, p.X, p.Y, headerAscent, headerHeight); err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}
		res.Headers[ci] = p
		e.cur.y += headerHeight
		e.cur.used = true

		for ii, item := range c.Items {
			height := e.itemHeight(item)

			// the first item stays with its header
			if ii > 0 {
				if err := advance(height); err != nil {
					return nil, err
				}
			}
			if !fits(height) {
				res.Overflows++
				log.Warn().
					Str("label", item.Label).
					Float64("height", height).
					Float64("max_height", maxDrawingHeight).
					Msg("Index item taller than a column, placed anyway")
			}

			p := e.place(height)
			err := sink.DrawItem(item.Label, item.LocationText(), p.X, p.Y, labelAscent, height, res.MaxLocationWidth)
			if err != nil {
				return nil, fmt.Errorf("item %q: %w", item.Label, err)
			}
			res.Items[ci][ii] = p
			e.cur.y += height
			e.cur.used = true
		}
	}

	res.LastPage = res.FirstPage + res.Pages - 1

	log.Debug().
		Int("pages", res.Pages).
		Int("columns", res.Columns).
		Float64("column_width", res.ColumnWidth).
		Int("overflows", res.Overflows).
		Str("direction", e.cfg.Direction.String()).
		Msg("Index laid out")

	return res, nil
}

func (e *Engine) itemHeight(item index.Item) float64 {
	_, lh := e.measurer.Measure(item.Label, LabelFont)
	_, loch := e.measurer.Measure(item.LocationText(), LocationFont)

	return math.Max(lh, loch)
}

// place returns the absolute placement of a line at the cursor.
func (e *Engine) place(height float64) Placement {
	return Placement{
		Page:   e.cur.page + e.cfg.PageOffset,
		Column: e.cur.column,
		X:      e.cfg.Area.X + e.cur.x(),
		Y:      e.cfg.Area.Y + e.cur.y,
		Height: height,
	}
}
