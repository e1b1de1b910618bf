package index

import (
	"fmt"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"
	"github.com/woozymasta/mapbook/internal/sheets"
)

// SheetLocator locates items of a multi-page atlas: the page showing the
// item, then the squares on that page's grid, as "12, B3" or "B3, 12"
// for right to left grids.
type SheetLocator struct {
	plan  *sheets.Plan
	grids map[int]grid.Descriptor
	rtl   bool
}

// NewSheetLocator builds the grid of every sheet of plan.
func NewSheetLocator(plan *sheets.Plan, opts grid.Options) (*SheetLocator, error) {
	l := &SheetLocator{
		plan:  plan,
		grids: make(map[int]grid.Descriptor, plan.Len()),
		rtl:   opts.RTL,
	}

	for _, s := range plan.Sheets {
		g, err := s.Grid(opts)
		if err != nil {
			return nil, fmt.Errorf("grid of page %d: %w", s.Page, err)
		}
		l.grids[s.Page] = g
	}

	return l, nil
}

// LocationRange implements Locator. The page is the one owning the
// center of the endpoints.
func (l *SheetLocator) LocationRange(points ...geo.Point) string {
	if len(points) == 0 {
		return grid.UnknownLocation
	}

	bbox := geo.BoundingBoxFromPoints(points[0], points[0])
	for _, p := range points[1:] {
		bbox = bbox.Merged(geo.BoundingBoxFromPoints(p, p))
	}
	center := bbox.Center()

	sheet, ok := l.plan.PageOf(center)
	if !ok {
		return grid.UnknownLocation
	}

	// endpoints of long features may fall off the page, the center never does
	squares := l.grids[sheet.Page].LocationRange(append(points[:len(points):len(points)], center)...)
	if l.rtl {
		return fmt.Sprintf("%s, %d", squares, sheet.Page)
	}

	return fmt.Sprintf("%d, %s", sheet.Page, squares)
}
