package layout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/woozymasta/mapbook/internal/index"

	"github.com/stretchr/testify/require"
)

// fixedMeasurer gives every rune the same width and every role a fixed
// line height.
type fixedMeasurer struct {
	charWidth float64
	heights   map[Role]float64
}

func newFixedMeasurer() fixedMeasurer {
	return fixedMeasurer{
		charWidth: 5,
		heights:   map[Role]float64{HeaderFont: 12, LabelFont: 10, LocationFont: 10},
	}
}

func (m fixedMeasurer) Measure(text string, role Role) (float64, float64) {
	return float64(len([]rune(text))) * m.charWidth, m.heights[role]
}

func (m fixedMeasurer) Ascent(role Role) float64 {
	return m.heights[role] * 0.8
}

type drawCall struct {
	kind     string
	text     string
	page     int
	x, y     float64
	height   float64
	location string
}

type recordingSink struct {
	page     int
	pages    []int
	calls    []drawCall
	geometry Geometry
	failAt   int
}

func (s *recordingSink) Configure(g Geometry) error {
	s.geometry = g
	return nil
}

func (s *recordingSink) NewPage(pageNumber int) error {
	s.page = pageNumber
	s.pages = append(s.pages, pageNumber)
	return nil
}

func (s *recordingSink) DrawHeader(text string, x, y, ascent, height float64) error {
	s.calls = append(s.calls, drawCall{kind: "header", text: text, page: s.page, x: x, y: y, height: height})
	return nil
}

func (s *recordingSink) DrawItem(label, location string, x, y, ascent, height, maxLocationWidth float64) error {
	s.calls = append(s.calls, drawCall{kind: "item", text: label, location: location, page: s.page, x: x, y: y, height: height})
	if s.failAt > 0 && len(s.calls) == s.failAt {
		return errors.New("out of paper")
	}
	return nil
}

func (s *recordingSink) items() []drawCall {
	var out []drawCall
	for _, c := range s.calls {
		if c.kind == "item" {
			out = append(out, c)
		}
	}
	return out
}

func category(name string, n int) index.Category {
	c := index.Category{Name: name}
	for i := 0; i < n; i++ {
		c.Items = append(c.Items, index.Item{Label: "abc", Location: "A1"})
	}
	return c
}

func testConfig() Config {
	return Config{
		Area:             Rect{X: 0, Y: 0, Width: 100, Height: 100},
		PageOffset:       1,
		Margin:           4,
		PageNumberMargin: 10,
	}
}

func TestNewEngineValidation(t *testing.T) {
	m := newFixedMeasurer()

	_, err := NewEngine(testConfig(), nil)
	require.Error(t, err)

	for i, cfg := range []Config{
		{Area: Rect{Width: 0, Height: 100}},
		{Area: Rect{Width: 100, Height: 100}, PageNumberMargin: 100},
		{Area: Rect{Width: 100, Height: 100}, Margin: -1},
		{Area: Rect{Width: 100, Height: 100}, Direction: 3},
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := NewEngine(cfg, m)
			require.Error(t, err)
		})
	}

	e, err := NewEngine(Config{Area: Rect{Width: 10, Height: 10}}, m)
	require.NoError(t, err)
	require.Equal(t, LTR, e.cfg.Direction)
}

func TestRenderEmpty(t *testing.T) {
	e, err := NewEngine(testConfig(), newFixedMeasurer())
	require.NoError(t, err)

	for _, categories := range [][]index.Category{nil, {{Name: "A"}, {Name: "B"}}} {
		sink := &recordingSink{}
		res, err := e.Render(categories, sink)
		require.NoError(t, err)
		require.Equal(t, 0, res.Pages)
		require.Empty(t, sink.pages)
		require.Empty(t, sink.calls)
		require.Equal(t, 0, res.Placed())
	}
}

func TestRenderPagination(t *testing.T) {
	e, err := NewEngine(testConfig(), newFixedMeasurer())
	require.NoError(t, err)

	categories := []index.Category{category("A", 40)}
	sink := &recordingSink{}
	res, err := e.Render(categories, sink)
	require.NoError(t, err)

	// width needed 15 + 10 + 2*4 = 33, so ceil(100/33) = 4 columns
	require.Equal(t, 4, res.Columns)
	require.Equal(t, 25.0, res.ColumnWidth)
	require.Equal(t, 15.0, res.MaxLabelWidth)
	require.Equal(t, 10.0, res.MaxLocationWidth)
	require.Equal(t, Geometry{Area: testConfig().Area, Columns: 4, ColumnWidth: 25, Margin: 4, Direction: LTR}, sink.geometry)

	// first column holds the header and 7 items, the others 8 items each
	require.Equal(t, 2, res.Pages)
	require.Equal(t, []int{1, 2}, sink.pages)
	require.Equal(t, 1, res.FirstPage)
	require.Equal(t, 2, res.LastPage)

	items := sink.items()
	require.Len(t, items, 40)
	for i, c := range items {
		expectedPage := 1
		if i >= 31 {
			expectedPage = 2
		}
		require.Equal(t, expectedPage, c.page, "item %d", i)
		require.Equal(t, expectedPage, res.PageOf(0, i), "item %d", i)
	}

	// the header is drawn once, at the top of the first column
	require.Equal(t, "header", sink.calls[0].kind)
	require.Equal(t, Placement{Page: 1, Column: 0, X: 2, Y: 2, Height: 12}, res.Headers[0])

	require.Equal(t, Placement{Page: 1, Column: 0, X: 2, Y: 14, Height: 10}, res.Items[0][0])
	require.Equal(t, Placement{Page: 1, Column: 1, X: 27, Y: 2, Height: 10}, res.Items[0][7])
	require.Equal(t, Placement{Page: 2, Column: 0, X: 2, Y: 2, Height: 10}, res.Items[0][31])
	require.Equal(t, Placement{Page: 2, Column: 1, X: 27, Y: 2, Height: 10}, res.Items[0][39])
}

func TestRenderGuarantees(t *testing.T) {
	cfg := testConfig()
	cfg.Area = Rect{X: 20, Y: 30, Width: 300, Height: 200}
	cfg.PageOffset = 7

	categories := []index.Category{
		category("A", 13),
		category("Bb", 1),
		{Name: "Empty"},
		category("Schools", 55),
		category("Z", 21),
	}
	categories[1].Items[0] = index.Item{Label: "a much longer street label"}

	e, err := NewEngine(cfg, newFixedMeasurer())
	require.NoError(t, err)

	sink := &recordingSink{}
	res, err := e.Render(categories, sink)
	require.NoError(t, err)

	require.Equal(t, index.CountItems(categories), len(sink.items()))
	require.Equal(t, index.CountItems(categories), res.Placed())

	maxY := cfg.Area.Y + cfg.Area.Height - cfg.PageNumberMargin
	lastPage := cfg.PageOffset
	for ci, c := range categories {
		for ii := range c.Items {
			p := res.Items[ci][ii]
			require.GreaterOrEqual(t, p.Page, cfg.PageOffset)
			require.GreaterOrEqual(t, p.Page, lastPage)
			lastPage = p.Page

			require.GreaterOrEqual(t, p.X, cfg.Area.X)
			require.Less(t, p.X, cfg.Area.X+cfg.Area.Width)
			require.GreaterOrEqual(t, p.Y, cfg.Area.Y)
			require.LessOrEqual(t, p.Y+p.Height, maxY)
		}
	}

	// missing locations are printed as unknown
	require.Equal(t, "???", sink.items()[13].location)

	// input order is kept
	var labels []string
	for _, c := range sink.items() {
		labels = append(labels, c.text)
	}
	var expected []string
	for _, c := range categories {
		for _, item := range c.Items {
			expected = append(expected, item.Label)
		}
	}
	require.Equal(t, expected, labels)

	// the same input gives the same layout
	again := &recordingSink{}
	res2, err := e.Render(categories, again)
	require.NoError(t, err)
	require.Equal(t, res, res2)
	require.Equal(t, sink.calls, again.calls)
}

func TestRenderRTLMirrorsColumns(t *testing.T) {
	categories := []index.Category{category("A", 30), category("B", 30)}

	ltrEngine, err := NewEngine(testConfig(), newFixedMeasurer())
	require.NoError(t, err)
	ltr, err := ltrEngine.Render(categories, &recordingSink{})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Direction = RTL
	rtlEngine, err := NewEngine(cfg, newFixedMeasurer())
	require.NoError(t, err)
	rtlSink := &recordingSink{}
	rtl, err := rtlEngine.Render(categories, rtlSink)
	require.NoError(t, err)
	require.Equal(t, RTL, rtlSink.geometry.Direction)

	require.Equal(t, ltr.Pages, rtl.Pages)
	w := cfg.Area.Width
	for ci := range categories {
		for ii := range categories[ci].Items {
			l, r := ltr.Items[ci][ii], rtl.Items[ci][ii]
			require.Equal(t, l.Page, r.Page)
			require.Equal(t, l.Column, r.Column)
			require.Equal(t, l.Y, r.Y)
			require.InDelta(t, w-ltr.ColumnWidth-l.X+cfg.Margin, r.X, 1e-9)
		}
	}
}

func TestRenderOverTallItem(t *testing.T) {
	m := newFixedMeasurer()
	m.heights[LabelFont] = 150

	e, err := NewEngine(testConfig(), m)
	require.NoError(t, err)

	categories := []index.Category{category("A", 3)}
	sink := &recordingSink{}
	res, err := e.Render(categories, sink)
	require.NoError(t, err)

	// every item is still drawn: the first one under its header, the
	// others at the top of their own column
	require.Len(t, sink.items(), 3)
	require.Equal(t, 4, res.Overflows)
	require.Equal(t, 0, res.Headers[0].Column)
	require.Equal(t, 2.0, res.Headers[0].Y)
	require.Equal(t, 0, res.Items[0][0].Column)
	require.Equal(t, 14.0, res.Items[0][0].Y)
	for i := 1; i < 3; i++ {
		require.Equal(t, i, res.Items[0][i].Column)
		require.Equal(t, 2.0, res.Items[0][i].Y)
	}
	for i := 0; i < 3; i++ {
		require.Equal(t, 1, res.Items[0][i].Page)
	}
}

func TestRenderZeroWidthTexts(t *testing.T) {
	m := newFixedMeasurer()
	m.charWidth = 0

	cfg := testConfig()
	cfg.Margin = 0
	e, err := NewEngine(cfg, m)
	require.NoError(t, err)

	res, err := e.Render([]index.Category{category("A", 3)}, &recordingSink{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Columns)
	require.Equal(t, 100.0, res.ColumnWidth)
	require.Equal(t, 3, res.Placed())
}

func TestRenderSinkError(t *testing.T) {
	e, err := NewEngine(testConfig(), newFixedMeasurer())
	require.NoError(t, err)

	_, err = e.Render([]index.Category{category("A", 5)}, &recordingSink{failAt: 3})
	require.ErrorContains(t, err, "out of paper")
}

func TestResultApply(t *testing.T) {
	e, err := NewEngine(testConfig(), newFixedMeasurer())
	require.NoError(t, err)

	categories := []index.Category{category("A", 40)}
	res, err := e.Render(categories, &recordingSink{})
	require.NoError(t, err)

	annotated := res.Apply(categories)
	require.Equal(t, 1, annotated[0].Items[0].Page)
	require.Equal(t, 2, annotated[0].Items[39].Page)
	require.Equal(t, 0, categories[0].Items[39].Page)
}
