// Package render draws index pages and map sheets.
package render

import (
	"fmt"

	"github.com/woozymasta/mapbook/internal/layout"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontSizes are the text sizes of an index, in points.
type FontSizes struct {
	Header   float64 `yaml:"header" json:"header"`
	Label    float64 `yaml:"label" json:"label"`
	Location float64 `yaml:"location" json:"location"`
}

// DefaultFontSizes suit an A4 index.
var DefaultFontSizes = FontSizes{Header: 9, Label: 7, Location: 7}

func (s FontSizes) of(role layout.Role) float64 {
	switch role {
	case layout.HeaderFont:
		return s.Header
	case layout.LocationFont:
		return s.Location
	}

	return s.Label
}

// FontMeasurer measures and draws index texts with the Go fonts at a given
// resolution. Sizes are returned in pixels at that resolution, so a DPI of
// 72 measures in points. A FontMeasurer is not safe for concurrent use.
type FontMeasurer struct {
	sizes FontSizes
	dpi   float64
	faces map[layout.Role]font.Face
}

// NewFontMeasurer loads the faces of every role.
func NewFontMeasurer(sizes FontSizes, dpi float64) (*FontMeasurer, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid resolution %.1f dpi", dpi)
	}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}

	m := &FontMeasurer{sizes: sizes, dpi: dpi, faces: map[layout.Role]font.Face{}}
	for _, role := range []layout.Role{layout.HeaderFont, layout.LabelFont, layout.LocationFont} {
		size := sizes.of(role)
		if size <= 0 {
			return nil, fmt.Errorf("invalid %s font size %.1f", role, size)
		}

		f := regular
		if role == layout.HeaderFont {
			f = bold
		}

		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return nil, fmt.Errorf("%s face: %w", role, err)
		}
		m.faces[role] = face
	}

	return m, nil
}

// Measure implements layout.Measurer. The height is the line height of
// the face.
func (m *FontMeasurer) Measure(text string, role layout.Role) (float64, float64) {
	face := m.faces[role]

	return toFloat(font.MeasureString(face, text)), toFloat(face.Metrics().Height)
}

// Ascent implements layout.Measurer.
func (m *FontMeasurer) Ascent(role layout.Role) float64 {
	return toFloat(m.faces[role].Metrics().Ascent)
}

// Face returns the face of a role.
func (m *FontMeasurer) Face(role layout.Role) font.Face {
	return m.faces[role]
}

// Sizes returns the point sizes of the faces.
func (m *FontMeasurer) Sizes() FontSizes {
	return m.sizes
}

// DPI returns the resolution the faces were built for.
func (m *FontMeasurer) DPI() float64 {
	return m.dpi
}

// Close releases the faces.
func (m *FontMeasurer) Close() error {
	for _, face := range m.faces {
		if err := face.Close(); err != nil {
			return err
		}
	}

	return nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
