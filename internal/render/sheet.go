package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"
	"github.com/woozymasta/mapbook/internal/layout"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// GridStyle is the look of the squares drawn over a sheet.
type GridStyle struct {
	LineWidth float64
	Color     color.Color
	Labels    bool
}

// DefaultGridStyle draws translucent blue lines with labels.
var DefaultGridStyle = GridStyle{
	LineWidth: 2,
	Color:     color.NRGBA{R: 0x1f, G: 0x4e, B: 0xa0, A: 0xb0},
	Labels:    true,
}

// projector maps coordinates to the pixels of an image covering a box.
type projector struct {
	ox, oy float64
	sx, sy float64
	zoom   int
}

func newProjector(bbox geo.BoundingBox, zoom int, size image.Point) projector {
	ox, oy := geo.WorldPixel(bbox.TopLeft(), zoom)
	ex, ey := geo.WorldPixel(bbox.BottomRight(), zoom)

	return projector{
		ox: ox, oy: oy,
		sx:   float64(size.X) / (ex - ox),
		sy:   float64(size.Y) / (ey - oy),
		zoom: zoom,
	}
}

func (p projector) pixel(pt geo.Point) (x, y float64) {
	wx, wy := geo.WorldPixel(pt, p.zoom)
	return (wx - p.ox) * p.sx, (wy - p.oy) * p.sy
}

// DrawGrid draws the squares of g over img, an image of the grid box
// rendered at zoom. fonts is only used for labels and may be nil.
func DrawGrid(img draw.Image, g grid.Descriptor, zoom int, style GridStyle, fonts *FontMeasurer) {
	b := img.Bounds()
	bbox := g.BoundingBox()
	p := newProjector(bbox, zoom, b.Size())

	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	half := float32(style.LineWidth / 2)

	for _, lon := range g.VerticalLines() {
		x, _ := p.pixel(geo.Point{Lat: bbox.North(), Lon: lon})
		rect(r, float32(x)-half, 0, float32(x)+half, float32(b.Dy()))
	}
	for _, lat := range g.HorizontalLines() {
		_, y := p.pixel(geo.Point{Lat: lat, Lon: bbox.West()})
		rect(r, 0, float32(y)-half, float32(b.Dx()), float32(y)+half)
	}
	r.Draw(img, b, image.NewUniform(style.Color), image.Point{})

	if !style.Labels || fonts == nil {
		return
	}

	face := fonts.Face(layout.LabelFont)
	ascent := fonts.Ascent(layout.LabelFont)
	columns, rows := g.VerticalLabels(), g.HorizontalLabels()

	for i, label := range columns {
		cell := g.CellBounds(i, 0)
		left, _ := p.pixel(cell.TopLeft())
		right, _ := p.pixel(cell.BottomRight())
		w, _ := fonts.Measure(label, layout.LabelFont)
		tag(img, face, label, b.Min.X+int((left+right-w)/2), b.Min.Y+2, w, ascent)
	}
	for i, label := range rows {
		cell := g.CellBounds(0, i)
		_, top := p.pixel(cell.TopLeft())
		_, bottom := p.pixel(cell.BottomRight())
		w, h := fonts.Measure(label, layout.LabelFont)
		tag(img, face, label, b.Min.X+2, b.Min.Y+int((top+bottom-h)/2), w, ascent)
	}
}

func rect(r *vector.Rasterizer, x0, y0, x1, y1 float32) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.ClosePath()
}

// tag draws a label on a white background with its top left corner at x, y.
func tag(img draw.Image, face font.Face, label string, x, y int, width, ascent float64) {
	height := face.Metrics().Height.Ceil()
	bg := image.Rect(x-1, y, x+int(width)+2, y+height)
	draw.Draw(img, bg, image.NewUniform(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc0}), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: toFixed(float64(y) + ascent)},
	}
	d.DrawString(label)
}

// BlankSheet returns a white image of the size of bbox at zoom, for
// sheets rendered without a tile background.
func BlankSheet(bbox geo.BoundingBox, zoom int) *image.RGBA {
	height, width := bbox.PixelSizeForZoom(zoom)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	return img
}
