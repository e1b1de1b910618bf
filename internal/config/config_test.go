package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"
	"github.com/woozymasta/mapbook/internal/layout"
	"github.com/woozymasta/mapbook/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sanguinet = `
title: Sanguinet
bbox: [[44.4883, -1.0901], [44.4778, -1.0637]]
locale: fr_FR.UTF-8
grid:
  adaptive: true
index:
  source: features.geojson
tiles:
  url: https://tile.example.org/{z}/{x}/{y}.png
  concurrency: 2
  rate: 5
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sanguinet), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Sanguinet", p.Title)
	assert.Equal(t, geo.NewBoundingBox(44.4883, -1.0901, 44.4778, -1.0637), p.BBox)
	assert.Equal(t, "out", p.Output)
	assert.Equal(t, 1, p.FirstPage)
	assert.Equal(t, grid.AlphaNumeric, p.Grid.Scheme)
	assert.True(t, p.Grid.Adaptive)
	assert.Equal(t, 210.0, p.Paper.WidthMM)
	assert.Equal(t, 297.0, p.Paper.HeightMM)
	assert.Equal(t, 10.0, p.Paper.MarginMM)
	assert.Equal(t, 150.0, p.Paper.DPI)
	assert.Equal(t, render.DefaultFontSizes, p.Fonts)
	assert.Equal(t, FormatWebP, p.Index.Format)
	assert.Equal(t, 10000.0, p.Sheets.Scale)
	assert.Equal(t, 16, p.Sheets.Zoom)
	require.NotNil(t, p.Tiles)
	assert.Equal(t, 2, p.Tiles.Concurrency)
	assert.Equal(t, 5.0, p.Tiles.Rate)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBBoxNotations(t *testing.T) {
	for i, bbox := range []string{
		`[[44.4883, -1.0901], [44.4778, -1.0637]]`,
		`["44.4778,-1.0637", "44.4883,-1.0901"]`,
		`"POLYGON((-1.0901 44.4778, -1.0901 44.4883, -1.0637 44.4883, -1.0637 44.4778, -1.0901 44.4778))"`,
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			p, err := Parse([]byte("bbox: " + bbox))
			require.NoError(t, err)
			require.InDelta(t, 44.4883, p.BBox.North(), 1e-9)
			require.InDelta(t, -1.0901, p.BBox.West(), 1e-9)
			require.InDelta(t, 44.4778, p.BBox.South(), 1e-9)
			require.InDelta(t, -1.0637, p.BBox.East(), 1e-9)
		})
	}
}

func TestValidate(t *testing.T) {
	for i, doc := range []string{
		`title: no box`,
		`bbox: [[44, 1], [44, 2]]`,
		"bbox: [[44.5, -1.1], [44.4, -1.0]]\nlocale: \"not a locale\"",
		"bbox: [[44.5, -1.1], [44.4, -1.0]]\ngrid: {labels: roman}",
		"bbox: [[44.5, -1.1], [44.4, -1.0]]\npaper: {width_mm: 20, height_mm: 20, margin_mm: 10}",
		"bbox: [[44.5, -1.1], [44.4, -1.0]]\npaper: {dpi: 5000}",
		"bbox: [[44.5, -1.1], [44.4, -1.0]]\nindex: {format: pdf}",
		"bbox: [[44.5, -1.1], [44.4, -1.0]]\nsheets: {zoom: 30}",
		"bbox: [[44.5, -1.1], [44.4, -1.0]]\ntiles: {url: https://example.org/world.png}",
		`bbox: [[44.5, -1.1], [44.4`,
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestDerived(t *testing.T) {
	p, err := Parse([]byte("bbox: [[44.5, -1.1], [44.4, -1.0]]\nlocale: ar_EG"))
	require.NoError(t, err)

	require.True(t, p.GridOptions().RTL)
	require.False(t, p.Grid.RTL)

	cfg := p.PageLayout(72, 7)
	require.Equal(t, layout.RTL, cfg.Direction)
	require.Equal(t, 7, cfg.PageOffset)
	require.InDelta(t, 10*72/25.4, cfg.Area.X, 1e-9)
	require.InDelta(t, 190*72/25.4, cfg.Area.Width, 1e-9)
	require.InDelta(t, layout.DefaultPageNumberMargin, cfg.PageNumberMargin, 1e-9)

	w, h := p.PageSize(150)
	require.InDelta(t, 1240.16, w, 0.01)
	require.InDelta(t, 1753.94, h, 0.01)

	require.Equal(t, 5, p.IndexFirstPage(4))
	p.Index.PageOffset = 20
	require.Equal(t, 20, p.IndexFirstPage(4))

	opts := p.SheetOptions()
	require.Equal(t, 1, opts.PageOffset)
	require.Equal(t, 10000.0, opts.Scale)
}
