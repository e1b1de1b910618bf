package grid

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/woozymasta/mapbook/internal/geo"

	"github.com/stretchr/testify/require"
)

var sanguinet = geo.NewBoundingBox(44.4883, -1.0901, 44.4778, -1.0637)

func TestLabelers(t *testing.T) {
	for i, d := range []struct {
		index int
		alpha string
	}{
		{0, "A"}, {1, "B"}, {25, "Z"}, {26, "AA"}, {27, "AB"}, {51, "AZ"}, {52, "BA"}, {701, "ZZ"}, {702, "AAA"},
	} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			require.Equal(t, d.alpha, Alphabetic(d.index))
			require.Equal(t, fmt.Sprint(d.index+1), Numeric(d.index))
		})
	}

	cols, rows, err := NumericAlpha.Labelers()
	require.NoError(t, err)
	require.Equal(t, "3", cols(2))
	require.Equal(t, "C", rows(2))

	_, _, err = LabelScheme("roman").Labelers()
	require.Error(t, err)
}

func TestGridInvariants(t *testing.T) {
	for _, bbox := range []geo.BoundingBox{
		sanguinet,
		geo.NewBoundingBox(1.0, 0.0, 0.0, 1.0),
		geo.NewBoundingBox(48.87, 2.33, 48.85, 2.36),
		geo.NewBoundingBox(-33.85, 151.20, -33.88, 151.25),
	} {
		t.Run(bbox.String(), func(t *testing.T) {
			d, err := New(bbox, Options{})
			require.NoError(t, err)

			require.Greater(t, d.WidthSquareCount(), 0.0)
			require.Greater(t, d.HeightSquareCount(), 0.0)

			vertical := d.VerticalLines()
			horizontal := d.HorizontalLines()
			require.Len(t, vertical, int(math.Ceil(d.WidthSquareCount()))+1)
			require.Len(t, horizontal, int(math.Ceil(d.HeightSquareCount()))+1)
			require.Len(t, d.VerticalLabels(), len(vertical)-1)
			require.Len(t, d.HorizontalLabels(), len(horizontal)-1)

			require.Equal(t, bbox.West(), vertical[0])
			require.Equal(t, bbox.North(), horizontal[0])
			require.GreaterOrEqual(t, vertical[len(vertical)-1], bbox.East()-1e-12)
			require.LessOrEqual(t, horizontal[len(horizontal)-1], bbox.South()+1e-12)

			for i := 1; i < len(vertical); i++ {
				require.InDelta(t, d.WidthSquareAngle(), vertical[i]-vertical[i-1], 1e-12)
			}
			for i := 1; i < len(horizontal); i++ {
				require.InDelta(t, d.HeightSquareAngle(), horizontal[i-1]-horizontal[i], 1e-12)
			}
		})
	}
}

func TestGridSanguinet(t *testing.T) {
	d, err := New(sanguinet, Options{})
	require.NoError(t, err)

	height, width := sanguinet.SphericSizes()
	require.InDelta(t, width/500, d.WidthSquareCount(), 1e-12)
	require.InDelta(t, height/500, d.HeightSquareCount(), 1e-12)
	require.InDelta(t, sanguinet.LongitudeSpan()/d.WidthSquareCount(), d.WidthSquareAngle(), 1e-15)

	require.Equal(t, []string{"A", "B", "C", "D", "E"}, d.VerticalLabels())
	require.Equal(t, []string{"1", "2", "3"}, d.HorizontalLabels())

	// accessors hand out copies
	labels := d.VerticalLabels()
	labels[0] = "X"
	require.Equal(t, "A", d.VerticalLabels()[0])
}

func TestGridOptions(t *testing.T) {
	adaptive, err := New(sanguinet, Options{Adaptive: true})
	require.NoError(t, err)
	require.Equal(t, 250.0, adaptive.SquareSize())

	custom, err := New(sanguinet, Options{SquareSize: 100})
	require.NoError(t, err)
	require.Equal(t, 100.0, custom.SquareSize())
	require.Greater(t, custom.Columns(), 20)

	rtl, err := New(sanguinet, Options{RTL: true})
	require.NoError(t, err)
	require.Equal(t, []string{"E", "D", "C", "B", "A"}, rtl.VerticalLabels())
	require.True(t, rtl.Summary().RTL)
	require.False(t, custom.Summary().RTL)

	swapped, err := New(sanguinet, Options{Scheme: NumericAlpha})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, swapped.VerticalLabels())
	require.Equal(t, []string{"A", "B", "C"}, swapped.HorizontalLabels())
}

func TestGridDegenerate(t *testing.T) {
	for _, bbox := range []geo.BoundingBox{
		geo.NewBoundingBox(44.48, -1.09, 44.48, -1.06),
		geo.NewBoundingBox(44.48, -1.09, 44.47, -1.09),
		{},
	} {
		_, err := New(bbox, Options{})
		require.ErrorIs(t, err, geo.ErrDegenerateBox)
	}
}

func TestLocation(t *testing.T) {
	d, err := New(sanguinet, Options{})
	require.NoError(t, err)

	loc, ok := d.LocationOf(sanguinet.TopLeft())
	require.True(t, ok)
	require.Equal(t, "A1", loc)

	loc, ok = d.LocationOf(sanguinet.BottomRight())
	require.True(t, ok)
	require.Equal(t, "E3", loc)

	_, ok = d.LocationOf(geo.Point{Lat: 0, Lon: 0})
	require.False(t, ok)

	inB2 := d.CellBounds(1, 1).Center()
	loc, ok = d.LocationOf(inB2)
	require.True(t, ok)
	require.Equal(t, "B2", loc)

	require.Equal(t, "B2", d.LocationRange(inB2, inB2))
	require.Equal(t, "A1-B2", d.LocationRange(inB2, sanguinet.TopLeft()))
	require.Equal(t, "B2", d.LocationRange(inB2, geo.Point{}))
	require.Equal(t, UnknownLocation, d.LocationRange())
	require.Equal(t, UnknownLocation, d.LocationRange(geo.Point{}))

	rtl, err := New(sanguinet, Options{RTL: true})
	require.NoError(t, err)
	require.Equal(t, "E1-D2", rtl.LocationRange(inB2, sanguinet.TopLeft()))
}

type recordingSink struct {
	calls   []string
	failOn  int
	flushed bool
}

func (s *recordingSink) AddVerticalLine(longitude float64) error {
	s.calls = append(s.calls, fmt.Sprintf("v%.6f", longitude))
	if s.failOn > 0 && len(s.calls) == s.failOn {
		return errors.New("disk full")
	}
	return nil
}

func (s *recordingSink) AddHorizontalLine(latitude float64) error {
	s.calls = append(s.calls, fmt.Sprintf("h%.6f", latitude))
	return nil
}

func (s *recordingSink) Flush() error {
	s.flushed = true
	return nil
}

func TestEmit(t *testing.T) {
	d, err := New(sanguinet, Options{})
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, d.Emit(sink))
	require.True(t, sink.flushed)

	var expected []string
	for _, lon := range d.VerticalLines() {
		expected = append(expected, fmt.Sprintf("v%.6f", lon))
	}
	for _, lat := range d.HorizontalLines() {
		expected = append(expected, fmt.Sprintf("h%.6f", lat))
	}
	require.Equal(t, expected, sink.calls)

	failing := &recordingSink{failOn: 2}
	err = d.Emit(failing)
	require.ErrorContains(t, err, "disk full")
	require.False(t, failing.flushed)
}

func TestGeoJSONSink(t *testing.T) {
	d, err := New(sanguinet, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := NewGeoJSONSink(&buf, sanguinet.Expanded(0.001, 0.001))
	require.NoError(t, sink.AddSquareLabels(d))
	require.NoError(t, d.Emit(sink))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	require.Equal(t, "FeatureCollection", fc.Type)

	squares := d.Columns() * d.Rows()
	lines := len(d.VerticalLines()) + len(d.HorizontalLines())
	require.Len(t, fc.Features, squares+lines)
	require.Equal(t, squares+lines, sink.Features())
	require.Equal(t, "Point", fc.Features[0].Geometry.Type)
	require.Equal(t, "A1", fc.Features[0].Properties["label"])
	require.Equal(t, "LineString", fc.Features[squares].Geometry.Type)
	require.Equal(t, "vertical", fc.Features[squares].Properties["kind"])

	require.ErrorIs(t, sink.AddVerticalLine(0), ErrFlushed)
	require.ErrorIs(t, sink.Flush(), ErrFlushed)
}
