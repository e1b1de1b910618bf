package config

import (
	"github.com/woozymasta/mapbook/internal/grid"
	"github.com/woozymasta/mapbook/internal/i18n"
	"github.com/woozymasta/mapbook/internal/layout"
	"github.com/woozymasta/mapbook/internal/sheets"
)

const (
	mmPerInch  = 25.4
	ptsPerInch = 72.0
)

// Language returns the parsed locale. It must only be called on a
// validated project.
func (p *Project) Language() i18n.Locale {
	return i18n.MustParse(p.Locale)
}

// Direction returns the column flow of the locale.
func (p *Project) Direction() layout.Direction {
	if p.Language().IsRTL() {
		return layout.RTL
	}

	return layout.LTR
}

// GridOptions returns the grid options with the direction of the locale.
func (p *Project) GridOptions() grid.Options {
	opts := p.Grid
	opts.RTL = p.Language().IsRTL()

	return opts
}

// SheetOptions returns the sheet planner options.
func (p *Project) SheetOptions() sheets.Options {
	return sheets.Options{
		Paper:      p.Paper.Paper,
		Scale:      p.Sheets.Scale,
		OverlapMM:  p.Sheets.OverlapMM,
		PageOffset: p.FirstPage,
	}
}

// IndexFirstPage returns the number of the first index page of an atlas
// with the given number of map sheets.
func (p *Project) IndexFirstPage(mapPages int) int {
	if p.Index.PageOffset != 0 {
		return p.Index.PageOffset
	}

	return p.FirstPage + mapPages
}

// PageLayout returns the index layout configuration in units of dpi: pixels
// for raster pages, points when dpi is 72.
func (p *Project) PageLayout(dpi float64, firstPage int) layout.Config {
	scale := dpi / mmPerInch
	usableW, usableH := p.Paper.UsableMM()

	return layout.Config{
		Area: layout.Rect{
			X:      p.Paper.MarginMM * scale,
			Y:      p.Paper.MarginMM * scale,
			Width:  usableW * scale,
			Height: usableH * scale,
		},
		PageOffset:       firstPage,
		Direction:        p.Direction(),
		PageNumberMargin: layout.DefaultPageNumberMargin * dpi / ptsPerInch,
	}
}

// PageSize returns the paper size in units of dpi.
func (p *Project) PageSize(dpi float64) (width, height float64) {
	scale := dpi / mmPerInch
	return p.Paper.WidthMM * scale, p.Paper.HeightMM * scale
}
