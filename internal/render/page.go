package render

import (
	"strconv"

	"github.com/woozymasta/mapbook/internal/layout"
)

const (
	// headerGray is the fill of the category header band.
	headerGray = 0xe6

	// leaderGap separates the dotted leader from the texts.
	leaderGap = 2.0
)

// frame holds what both index sinks share: the column geometry of the
// current layout pass and the footer band.
type frame struct {
	geometry         layout.Geometry
	pageNumberMargin float64
	page             int
	open             bool
}

// content returns the left and right edges of the column content whose
// left edge is x.
func (f *frame) content(x float64) (left, right float64) {
	return x, x + f.geometry.ColumnWidth - f.geometry.Margin
}

// band returns the header band of the column at x.
func (f *frame) band(x float64) (left, width float64) {
	return x - f.geometry.Margin/2, f.geometry.ColumnWidth
}

// anchors places an item in its column: the label on the leading edge,
// the location on the trailing one and a leader in between.
func (f *frame) anchors(x, labelWidth, locationWidth float64) (labelX, locationX, leaderFrom, leaderTo float64) {
	left, right := f.content(x)

	if f.geometry.Direction == layout.RTL {
		locationX = left
		labelX = right - labelWidth
		return labelX, locationX, locationX + locationWidth + leaderGap, labelX - leaderGap
	}

	labelX = left
	locationX = right - locationWidth
	return labelX, locationX, labelX + labelWidth + leaderGap, locationX - leaderGap
}

// footer returns the center of the page number band.
func (f *frame) footer() (x, y float64) {
	area := f.geometry.Area
	return area.X + area.Width/2, area.Y + area.Height - f.pageNumberMargin/2
}

func (f *frame) pageLabel() string {
	return strconv.Itoa(f.page)
}
