// Package config handles atlas project loading and the settings derived
// from it.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"
	"github.com/woozymasta/mapbook/internal/i18n"
	"github.com/woozymasta/mapbook/internal/render"
	"github.com/woozymasta/mapbook/internal/sheets"
	"github.com/woozymasta/mapbook/internal/tiles"

	"gopkg.in/yaml.v3"
)

// Index output formats.
const (
	FormatWebP = "webp"
	FormatSVG  = "svg"
)

// Project represents the root configuration file structure.
type Project struct {
	Title  string          `yaml:"title" json:"title"`
	BBox   geo.BoundingBox `yaml:"bbox" json:"bbox"`
	Locale string          `yaml:"locale,omitempty" json:"locale,omitempty"`
	Output string          `yaml:"output,omitempty" json:"output,omitempty"`

	// FirstPage is the number of the first map sheet.
	FirstPage int `yaml:"first_page,omitempty" json:"first_page,omitempty"`

	Grid   grid.Options     `yaml:"grid,omitempty" json:"grid,omitempty"`
	Paper  Paper            `yaml:"paper" json:"paper"`
	Fonts  render.FontSizes `yaml:"fonts,omitempty" json:"fonts,omitempty"`
	Index  Index            `yaml:"index,omitempty" json:"index,omitempty"`
	Sheets Sheets           `yaml:"sheets,omitempty" json:"sheets,omitempty"`

	// Tiles enables a tile background on map sheets.
	Tiles *tiles.Options `yaml:"tiles,omitempty" json:"tiles,omitempty"`
}

// Paper is the page format shared by map sheets and index pages.
type Paper struct {
	sheets.Paper `yaml:",inline"`

	DPI float64 `yaml:"dpi,omitempty" json:"dpi,omitempty"`
}

// Index configures the street index.
type Index struct {
	// Source is a GeoJSON file or URL of named features.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// PageOffset is the number of the first index page. Zero continues
	// after the last map sheet.
	PageOffset int    `yaml:"page_offset,omitempty" json:"page_offset,omitempty"`
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Sheets configures the map pages.
type Sheets struct {
	Scale     float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
	OverlapMM float64 `yaml:"overlap_mm,omitempty" json:"overlap_mm,omitempty"`
	Zoom      int     `yaml:"zoom,omitempty" json:"zoom,omitempty"`

	// Single prints the whole area on one page instead of splitting it.
	Single bool `yaml:"single,omitempty" json:"single,omitempty"`
}

// Load reads and parses the YAML project file from the specified path,
// then applies defaults and validates it.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// ApplyDefaults fills in every unset value: A4 paper at 150 dpi, 1:10000
// sheets at zoom 16 starting on page 1 and WebP index pages.
func (p *Project) ApplyDefaults() {
	if p.Locale == "" {
		p.Locale = i18n.DefaultLocale
	}
	if p.Output == "" {
		p.Output = "out"
	}
	if p.Grid.Scheme == "" {
		p.Grid.Scheme = grid.AlphaNumeric
	}

	if p.Paper.WidthMM == 0 && p.Paper.HeightMM == 0 {
		p.Paper.WidthMM, p.Paper.HeightMM = 210, 297
		if p.Paper.MarginMM == 0 {
			p.Paper.MarginMM = 10
		}
	}
	if p.Paper.DPI == 0 {
		p.Paper.DPI = 150
	}

	if p.Fonts == (render.FontSizes{}) {
		p.Fonts = render.DefaultFontSizes
	}

	if p.Index.Format == "" {
		p.Index.Format = FormatWebP
	}
	if p.FirstPage == 0 {
		p.FirstPage = 1
	}

	if p.Sheets.Scale == 0 {
		p.Sheets.Scale = sheets.DefaultScale
	}
	if p.Sheets.OverlapMM == 0 {
		p.Sheets.OverlapMM = sheets.DefaultOverlapMM
	}
	if p.Sheets.Zoom == 0 {
		p.Sheets.Zoom = 16
	}
}

// Validate reports every invalid setting.
func (p *Project) Validate() error {
	var errs []error

	if p.BBox.IsDegenerate() {
		errs = append(errs, fmt.Errorf("bbox %s: %w", p.BBox, geo.ErrDegenerateBox))
	}
	if _, err := i18n.Parse(p.Locale); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := p.Grid.Scheme.Labelers(); err != nil {
		errs = append(errs, err)
	}

	w, h := p.Paper.UsableMM()
	if w <= 0 || h <= 0 {
		errs = append(errs, fmt.Errorf("paper %.0fx%.0f mm has no room inside %.0f mm margins",
			p.Paper.WidthMM, p.Paper.HeightMM, p.Paper.MarginMM))
	}
	if p.Paper.DPI < 36 || p.Paper.DPI > 1200 {
		errs = append(errs, fmt.Errorf("paper resolution %.0f dpi out of range 36..1200", p.Paper.DPI))
	}

	switch p.Index.Format {
	case FormatWebP, FormatSVG:
	default:
		errs = append(errs, fmt.Errorf("unknown index format %q", p.Index.Format))
	}

	if p.Sheets.Scale < 0 || p.Sheets.OverlapMM < 0 {
		errs = append(errs, fmt.Errorf("negative sheet scale or overlap"))
	}
	if p.Sheets.Zoom < 0 || p.Sheets.Zoom > 22 {
		errs = append(errs, fmt.Errorf("sheet zoom %d out of range 0..22", p.Sheets.Zoom))
	}

	if p.Tiles != nil && !tiles.IsTemplate(p.Tiles.URL) {
		errs = append(errs, fmt.Errorf("tile url %q has no {z}/{x}/{y} placeholders", p.Tiles.URL))
	}

	return errors.Join(errs...)
}
