package grid

import (
	"math"

	"github.com/woozymasta/mapbook/internal/geo"
)

// UnknownLocation is the location of an item with no endpoint on the grid.
const UnknownLocation = "???"

// Cell returns the label of the square at column col and row row.
func (d Descriptor) Cell(col, row int) string {
	return d.verticalLabels[col] + d.horizontalLabels[row]
}

// CellBounds returns the area covered by a square. The last column and row
// are clipped to the grid box.
func (d Descriptor) CellBounds(col, row int) geo.BoundingBox {
	west := d.bbox.West() + float64(col)*d.widthSquareAngle
	north := d.bbox.North() - float64(row)*d.heightSquareAngle

	return geo.NewBoundingBox(
		north,
		west,
		math.Max(north-d.heightSquareAngle, d.bbox.South()),
		math.Min(west+d.widthSquareAngle, d.bbox.East()),
	)
}

// position returns the column and row of the square containing p.
func (d Descriptor) position(p geo.Point) (col, row int, ok bool) {
	if !d.bbox.Contains(p) {
		return 0, 0, false
	}

	col = int((p.Lon - d.bbox.West()) / d.widthSquareAngle)
	row = int((d.bbox.North() - p.Lat) / d.heightSquareAngle)

	// points on the east and south edges belong to the last square
	col = min(col, len(d.verticalLabels)-1)
	row = min(row, len(d.horizontalLabels)-1)

	return col, row, true
}

// LocationOf returns the label of the square containing p, such as "B3".
func (d Descriptor) LocationOf(p geo.Point) (string, bool) {
	col, row, ok := d.position(p)
	if !ok {
		return "", false
	}

	return d.Cell(col, row), true
}

// LocationRange returns the squares spanned by points: "B3" when they fall
// in one square, "B3-D5" for a range from the north-west square to the
// south-east one, or UnknownLocation when none of them is on the grid.
func (d Descriptor) LocationRange(points ...geo.Point) string {
	minCol, minRow := math.MaxInt, math.MaxInt
	maxCol, maxRow := -1, -1

	for _, p := range points {
		col, row, ok := d.position(p)
		if !ok {
			continue
		}
		minCol, maxCol = min(minCol, col), max(maxCol, col)
		minRow, maxRow = min(minRow, row), max(maxRow, row)
	}

	if maxCol < 0 {
		return UnknownLocation
	}

	// RTL grids carry reversed column labels, so the range reads from the
	// largest column label down
	first, last := d.Cell(minCol, minRow), d.Cell(maxCol, maxRow)
	if first == last {
		return first
	}

	return first + "-" + last
}
