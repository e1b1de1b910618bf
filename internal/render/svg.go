package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/woozymasta/mapbook/internal/layout"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMime = "image/svg+xml"

// SVGWriter receives every finished SVG page.
type SVGWriter func(page int, data []byte) error

// SVGSink writes index pages as minified SVG documents. Units are points,
// so the measurer must be built at 72 dpi.
type SVGSink struct {
	frame

	fonts  *FontMeasurer
	width  float64
	height float64
	write  SVGWriter
	min    *minify.M
	buf    bytes.Buffer
	closed bool
}

// NewSVGSink creates a sink for pages of width x height points.
func NewSVGSink(fonts *FontMeasurer, width, height, pageNumberMargin float64, write SVGWriter) *SVGSink {
	m := minify.New()
	m.AddFunc(svgMime, svg.Minify)

	return &SVGSink{
		frame:  frame{pageNumberMargin: pageNumberMargin},
		fonts:  fonts,
		width:  width,
		height: height,
		write:  write,
		min:    m,
	}
}

// Configure implements layout.GeometrySink.
func (s *SVGSink) Configure(g layout.Geometry) error {
	s.geometry = g
	return nil
}

// NewPage implements layout.Sink.
func (s *SVGSink) NewPage(pageNumber int) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.finish(); err != nil {
		return err
	}

	s.buf.Reset()
	fmt.Fprintf(&s.buf,
		`<?xml version="1.0" encoding="UTF-8"?>`+"\n"+
			`<svg xmlns="http://www.w3.org/2000/svg" width="%gpt" height="%gpt" viewBox="0 0 %g %g">`+"\n",
		s.width, s.height, s.width, s.height)
	fmt.Fprintf(&s.buf, `  <rect x="0" y="0" width="%g" height="%g" fill="#ffffff"/>`+"\n", s.width, s.height)

	s.page = pageNumber
	s.open = true

	return nil
}

// DrawHeader implements layout.Sink.
func (s *SVGSink) DrawHeader(text string, x, y, ascent, height float64) error {
	if !s.open {
		return ErrClosed
	}

	left, width := s.band(x)
	fmt.Fprintf(&s.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#%02x%02x%02x"/>`+"\n",
		left, y, width, height, headerGray, headerGray, headerGray)

	anchor := "start"
	tx := x
	if s.geometry.Direction == layout.RTL {
		anchor = "end"
		_, tx = s.content(x)
	}
	s.text(text, layout.HeaderFont, tx, y+ascent, anchor)

	return nil
}

// DrawItem implements layout.Sink.
func (s *SVGSink) DrawItem(label, location string, x, y, ascent, height, maxLocationWidth float64) error {
	if !s.open {
		return ErrClosed
	}

	labelWidth, _ := s.fonts.Measure(label, layout.LabelFont)
	locationWidth, _ := s.fonts.Measure(location, layout.LocationFont)
	labelX, locationX, from, to := s.anchors(x, labelWidth, locationWidth)

	baseline := y + ascent
	s.text(label, layout.LabelFont, labelX, baseline, "start")
	s.text(location, layout.LocationFont, locationX, baseline, "start")
	if to > from {
		fmt.Fprintf(&s.buf,
			`  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#606060" stroke-width="0.5" stroke-dasharray="0.5 1.5"/>`+"\n",
			from, baseline, to, baseline)
	}

	return nil
}

// Close finishes the last page.
func (s *SVGSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	return s.finish()
}

func (s *SVGSink) finish() error {
	if !s.open {
		return nil
	}
	s.open = false

	cx, cy := s.footer()
	_, h := s.fonts.Measure(s.pageLabel(), layout.LabelFont)
	s.text(s.pageLabel(), layout.LabelFont, cx, cy-h/2+s.fonts.Ascent(layout.LabelFont), "middle")
	s.buf.WriteString("</svg>\n")

	var out bytes.Buffer
	if err := s.min.Minify(svgMime, &out, bytes.NewReader(s.buf.Bytes())); err != nil {
		return fmt.Errorf("minify page %d: %w", s.page, err)
	}

	if err := s.write(s.page, out.Bytes()); err != nil {
		return fmt.Errorf("write page %d: %w", s.page, err)
	}

	return nil
}

func (s *SVGSink) text(text string, role layout.Role, x, baseline float64, anchor string) {
	weight := "normal"
	if role == layout.HeaderFont {
		weight = "bold"
	}

	fmt.Fprintf(&s.buf,
		`  <text x="%.2f" y="%.2f" font-family="Go, sans-serif" font-size="%g" font-weight="%s" text-anchor="%s">`,
		x, baseline, s.fonts.Sizes().of(role), weight, anchor)
	_ = xml.EscapeText(&s.buf, []byte(text))
	s.buf.WriteString("</text>\n")
}
