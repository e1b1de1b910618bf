package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	"github.com/woozymasta/mapbook/internal/layout"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ErrClosed is returned when drawing on a closed sink.
var ErrClosed = errors.New("sink closed")

// PageWriter receives every finished page.
type PageWriter func(page int, img image.Image) error

// RasterSink draws index pages on images, in pixels. It implements
// layout.GeometrySink; pages are handed to the writer as they are
// finished, the last one on Close.
type RasterSink struct {
	frame

	fonts  *FontMeasurer
	bounds image.Rectangle
	write  PageWriter
	img    *image.RGBA
	closed bool
}

// NewRasterSink creates a sink for pages of width x height pixels.
func NewRasterSink(fonts *FontMeasurer, width, height int, pageNumberMargin float64, write PageWriter) *RasterSink {
	return &RasterSink{
		frame:  frame{pageNumberMargin: pageNumberMargin},
		fonts:  fonts,
		bounds: image.Rect(0, 0, width, height),
		write:  write,
	}
}

// Configure implements layout.GeometrySink.
func (s *RasterSink) Configure(g layout.Geometry) error {
	s.geometry = g
	return nil
}

// NewPage implements layout.Sink.
func (s *RasterSink) NewPage(pageNumber int) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.finish(); err != nil {
		return err
	}

	s.img = image.NewRGBA(s.bounds)
	draw.Draw(s.img, s.bounds, image.White, image.Point{}, draw.Src)
	s.page = pageNumber
	s.open = true

	return nil
}

// DrawHeader implements layout.Sink.
func (s *RasterSink) DrawHeader(text string, x, y, ascent, height float64) error {
	if !s.open {
		return ErrClosed
	}

	left, width := s.band(x)
	band := image.Rect(
		int(math.Round(left)), int(math.Round(y)),
		int(math.Round(left+width)), int(math.Round(y+height)),
	)
	draw.Draw(s.img, band, image.NewUniform(color.Gray{Y: headerGray}), image.Point{}, draw.Src)

	w, _ := s.fonts.Measure(text, layout.HeaderFont)
	tx := x
	if s.geometry.Direction == layout.RTL {
		_, right := s.content(x)
		tx = right - w
	}
	s.text(text, layout.HeaderFont, tx, y+ascent)

	return nil
}

// DrawItem implements layout.Sink.
func (s *RasterSink) DrawItem(label, location string, x, y, ascent, height, maxLocationWidth float64) error {
	if !s.open {
		return ErrClosed
	}

	labelWidth, _ := s.fonts.Measure(label, layout.LabelFont)
	locationWidth, _ := s.fonts.Measure(location, layout.LocationFont)
	labelX, locationX, from, to := s.anchors(x, labelWidth, locationWidth)

	baseline := y + ascent
	s.text(label, layout.LabelFont, labelX, baseline)
	s.text(location, layout.LocationFont, locationX, baseline)
	s.leader(from, to, baseline)

	return nil
}

// Close finishes the last page.
func (s *RasterSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	return s.finish()
}

func (s *RasterSink) finish() error {
	if !s.open {
		return nil
	}
	s.open = false

	label := s.pageLabel()
	w, h := s.fonts.Measure(label, layout.LabelFont)
	cx, cy := s.footer()
	s.text(label, layout.LabelFont, cx-w/2, cy-h/2+s.fonts.Ascent(layout.LabelFont))

	if err := s.write(s.page, s.img); err != nil {
		return fmt.Errorf("write page %d: %w", s.page, err)
	}

	return nil
}

func (s *RasterSink) text(text string, role layout.Role, x, baseline float64) {
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.Black,
		Face: s.fonts.Face(role),
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)},
	}
	d.DrawString(text)
}

// leader draws a dotted line on the baseline.
func (s *RasterSink) leader(from, to, baseline float64) {
	step := math.Max(2, s.fonts.DPI()/36)
	dot := color.Gray{Y: 0x60}
	y := int(math.Round(baseline))

	for x := math.Ceil(from/step) * step; x <= to; x += step {
		s.img.Set(int(x), y, dot)
	}
}

// WebPPages returns a PageWriter saving lossless WebP files named after
// pattern, a fmt verb receiving the page number such as "index-%03d.webp".
func WebPPages(dir, pattern string) PageWriter {
	return func(page int, img image.Image) error {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}

		path := filepath.Join(dir, fmt.Sprintf(pattern, page))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
			}
		}()

		if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}

		log.Debug().Str("path", path).Int("page", page).Msg("Index page written")
		return nil
	}
}
