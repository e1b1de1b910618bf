package atlas

import (
	"bytes"
	"context"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/mapbook/internal/config"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

const features = `{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"name": "Rue des Pins"},
   "geometry": {"type": "LineString", "coordinates": [[-1.0890, 44.4870], [-1.0800, 44.4820]]}},
  {"type": "Feature", "properties": {"name": "Mairie", "category": "Public"},
   "geometry": {"type": "Point", "coordinates": [-1.0820, 44.4850]}}
]}`

func testProject(t *testing.T, sheets, extra string) *config.Project {
	t.Helper()

	dir := t.TempDir()
	source := filepath.Join(dir, "features.geojson")
	require.NoError(t, os.WriteFile(source, []byte(features), 0o644))

	doc := "bbox: [[44.4883, -1.0901], [44.4778, -1.0637]]\n" +
		"index: {source: " + source + ", format: svg}\n" +
		"sheets: " + sheets + "\n" + extra

	p, err := config.Parse([]byte(doc))
	require.NoError(t, err)

	return p
}

func TestSinglePageAtlas(t *testing.T) {
	a, err := New(context.Background(), http.DefaultClient, testProject(t, "{single: true, zoom: 13}", ""))
	require.NoError(t, err)

	require.Equal(t, 1, a.Plan().Len())
	require.Equal(t, 2, a.IndexFirstPage())

	categories := a.Categories()
	require.Len(t, categories, 2)
	require.Equal(t, "A1-B2", categories[0].Items[0].Location)
	require.Equal(t, "B1", categories[1].Items[0].Location)

	pages := map[int]string{}
	res, err := a.RenderIndexSVG(func(page int, data []byte) error {
		pages[page] = string(data)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Pages)
	require.Contains(t, pages[2], "Rue des Pins")

	var sheets []int
	err = a.RenderSheets(context.Background(), nil, func(page int, img image.Image) error {
		sheets = append(sheets, page)
		require.False(t, img.Bounds().Empty())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1}, sheets)
}

func TestMultiPageAtlas(t *testing.T) {
	a, err := New(context.Background(), http.DefaultClient, testProject(t, "{zoom: 13}", "paper: {width_mm: 100, height_mm: 100, margin_mm: 5}\nfirst_page: 3\n"))
	require.NoError(t, err)
	require.Greater(t, a.Plan().Len(), 1)
	require.Equal(t, 3+a.Plan().Len(), a.IndexFirstPage())

	for _, c := range a.Categories() {
		for _, item := range c.Items {
			page, _, ok := strings.Cut(item.Location, ", ")
			require.True(t, ok, item.Location)
			require.NotEmpty(t, page)
		}
	}

	var pages []int
	res, err := a.RenderIndexRaster(func(page int, img image.Image) error {
		pages = append(pages, page)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{a.IndexFirstPage()}, pages)
	require.Equal(t, a.IndexFirstPage(), res.FirstPage)
}

func TestAtlasWithoutIndex(t *testing.T) {
	p, err := config.Parse([]byte("bbox: [[44.4883, -1.0901], [44.4778, -1.0637]]\nsheets: {single: true}"))
	require.NoError(t, err)

	a, err := New(context.Background(), http.DefaultClient, p)
	require.NoError(t, err)
	require.Empty(t, a.Categories())

	res, err := a.RenderIndexSVG(func(int, []byte) error {
		t.Fatal("no page expected")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 0, res.Pages)
}

func TestWriteGrid(t *testing.T) {
	a, err := New(context.Background(), http.DefaultClient, testProject(t, "{zoom: 13}", ""))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.WriteGrid(&buf))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)

	g := a.Grid()
	lines := len(g.VerticalLines()) + len(g.HorizontalLines())
	require.Len(t, fc.Features, lines+g.Columns()*g.Rows())

	north := a.Project().BBox.North() + gridEnvelope
	first := fc.Features[len(fc.Features)-lines]
	require.InDelta(t, north, first.Geometry.Bound().Max.Lat(), 1e-9)
}
