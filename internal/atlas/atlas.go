// Package atlas ties a project together: map sheets, the square grid and
// the street index.
package atlas

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/woozymasta/mapbook/internal/config"
	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"
	"github.com/woozymasta/mapbook/internal/index"
	"github.com/woozymasta/mapbook/internal/layout"
	"github.com/woozymasta/mapbook/internal/render"
	"github.com/woozymasta/mapbook/internal/sheets"
	"github.com/woozymasta/mapbook/internal/tiles"

	"github.com/rs/zerolog/log"
)

// gridEnvelope is how far, in degrees, grid lines overrun the grid box in
// GeoJSON output.
const gridEnvelope = 0.001

// sheetLabelDPI sizes the grid labels drawn on map sheets.
const sheetLabelDPI = 96

// Atlas is a prepared project. It is read only once built.
type Atlas struct {
	project    *config.Project
	gridOpts   grid.Options
	overview   grid.Descriptor
	plan       *sheets.Plan
	categories []index.Category
}

// New plans the sheets of p and builds its index. Features are loaded
// with client when the index source is a URL.
func New(ctx context.Context, client *http.Client, p *config.Project) (*Atlas, error) {
	a := &Atlas{project: p, gridOpts: p.GridOptions()}

	var err error
	a.overview, err = grid.New(p.BBox, a.gridOpts)
	if err != nil {
		return nil, err
	}

	if p.Sheets.Single {
		a.plan, err = sheets.SinglePage(p.BBox, p.FirstPage)
	} else {
		a.plan, err = sheets.NewPlan(p.BBox, p.SheetOptions())
	}
	if err != nil {
		return nil, err
	}

	if p.Index.Source != "" {
		fc, err := index.LoadFeatures(ctx, client, p.Index.Source)
		if err != nil {
			return nil, err
		}

		locator, err := a.locator()
		if err != nil {
			return nil, err
		}

		b := index.NewBuilder(p.Language(), locator)
		b.AddCollection(fc)
		a.categories = b.Categories()
	}

	log.Info().
		Str("title", p.Title).
		Str("bbox", p.BBox.String()).
		Int("sheets", a.plan.Len()).
		Int("index_items", index.CountItems(a.categories)).
		Str("locale", p.Locale).
		Msg("Atlas prepared")

	return a, nil
}

// locator returns the overview grid for one page atlases and a page aware
// locator otherwise.
func (a *Atlas) locator() (index.Locator, error) {
	if a.plan.Len() == 1 {
		return a.overview, nil
	}

	return index.NewSheetLocator(a.plan, a.gridOpts)
}

// Project returns the project the atlas was built from.
func (a *Atlas) Project() *config.Project {
	return a.project
}

// Grid returns the grid over the whole area.
func (a *Atlas) Grid() grid.Descriptor {
	return a.overview
}

// Plan returns the map sheets.
func (a *Atlas) Plan() *sheets.Plan {
	return a.plan
}

// Categories returns a copy of the index.
func (a *Atlas) Categories() []index.Category {
	return index.Clone(a.categories)
}

// IndexFirstPage returns the number of the first index page.
func (a *Atlas) IndexFirstPage() int {
	return a.project.IndexFirstPage(a.plan.Len())
}

// WriteGrid writes the overview grid, lines and square labels, as GeoJSON.
func (a *Atlas) WriteGrid(w io.Writer) error {
	envelope := a.overview.BoundingBox().Expanded(gridEnvelope, gridEnvelope)
	sink := grid.NewGeoJSONSink(w, envelope)

	if err := sink.AddSquareLabels(a.overview); err != nil {
		return err
	}
	if err := a.overview.Emit(sink); err != nil {
		return err
	}

	log.Debug().Int("features", sink.Features()).Msg("Grid written")
	return nil
}

// RenderIndexRaster lays the index out on pixel pages at the project
// resolution.
func (a *Atlas) RenderIndexRaster(write render.PageWriter) (*layout.Result, error) {
	dpi := a.project.Paper.DPI
	fonts, err := render.NewFontMeasurer(a.project.Fonts, dpi)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fonts.Close() }()

	w, h := a.project.PageSize(dpi)
	cfg := a.project.PageLayout(dpi, a.IndexFirstPage())
	sink := render.NewRasterSink(fonts, int(w), int(h), cfg.PageNumberMargin, write)

	return a.renderIndex(cfg, fonts, sink)
}

// RenderIndexSVG lays the index out on SVG pages.
func (a *Atlas) RenderIndexSVG(write render.SVGWriter) (*layout.Result, error) {
	fonts, err := render.NewFontMeasurer(a.project.Fonts, 72)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fonts.Close() }()

	w, h := a.project.PageSize(72)
	cfg := a.project.PageLayout(72, a.IndexFirstPage())
	sink := render.NewSVGSink(fonts, w, h, cfg.PageNumberMargin, write)

	return a.renderIndex(cfg, fonts, sink)
}

type closingSink interface {
	layout.Sink
	Close() error
}

func (a *Atlas) renderIndex(cfg layout.Config, m layout.Measurer, sink closingSink) (*layout.Result, error) {
	e, err := layout.NewEngine(cfg, m)
	if err != nil {
		return nil, err
	}

	res, err := e.Render(a.categories, sink)
	if err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	if err := sink.Close(); err != nil {
		return nil, err
	}

	return res, nil
}

// RenderSheets draws every map sheet with its grid. Backgrounds come from
// fetcher, or are left white when fetcher is nil.
func (a *Atlas) RenderSheets(ctx context.Context, fetcher *tiles.Fetcher, write render.PageWriter) error {
	fonts, err := render.NewFontMeasurer(a.project.Fonts, sheetLabelDPI)
	if err != nil {
		return err
	}
	defer func() { _ = fonts.Close() }()

	zoom := a.project.Sheets.Zoom
	for _, s := range a.plan.Sheets {
		g, err := s.Grid(a.gridOpts)
		if err != nil {
			return fmt.Errorf("page %d: %w", s.Page, err)
		}

		var img *image.RGBA
		if fetcher != nil {
			img, err = fetcher.Compose(ctx, s.Box, zoom)
			if err != nil {
				return fmt.Errorf("page %d: %w", s.Page, err)
			}
		} else {
			img = render.BlankSheet(s.Box, zoom)
		}

		render.DrawGrid(img, g, zoom, render.DefaultGridStyle, fonts)
		if err := write(s.Page, img); err != nil {
			return fmt.Errorf("page %d: %w", s.Page, err)
		}

		log.Info().
			Int("page", s.Page).
			Int("width", img.Bounds().Dx()).
			Int("height", img.Bounds().Dy()).
			Float64("meters_per_pixel", geo.GroundResolution(s.Box.Center().Lat, zoom)).
			Msg("Map sheet rendered")
	}

	return nil
}
