package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/woozymasta/mapbook/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrFlushed is returned when lines are added to a flushed sink.
var ErrFlushed = errors.New("grid sink already flushed")

// LineSink receives the grid lines of a Descriptor.
type LineSink interface {
	AddVerticalLine(longitude float64) error
	AddHorizontalLine(latitude float64) error
	Flush() error
}

// Emit sends every vertical line, then every horizontal line, in order, and
// flushes the sink.
func (d Descriptor) Emit(sink LineSink) error {
	for _, lon := range d.verticalLines {
		if err := sink.AddVerticalLine(lon); err != nil {
			return fmt.Errorf("vertical line %f: %w", lon, err)
		}
	}

	for _, lat := range d.horizontalLines {
		if err := sink.AddHorizontalLine(lat); err != nil {
			return fmt.Errorf("horizontal line %f: %w", lat, err)
		}
	}

	return sink.Flush()
}

// GeoJSONSink writes the grid as a GeoJSON FeatureCollection of
// LineStrings spanning an envelope. Nothing is written before Flush.
type GeoJSONSink struct {
	w        io.Writer
	fc       *geojson.FeatureCollection
	envelope geo.BoundingBox
	flushed  bool
}

// NewGeoJSONSink creates a sink whose lines span envelope. The envelope is
// usually the grid box slightly expanded so reprojection does not leave
// gaps at the corners.
func NewGeoJSONSink(w io.Writer, envelope geo.BoundingBox) *GeoJSONSink {
	return &GeoJSONSink{
		w:        w,
		fc:       geojson.NewFeatureCollection(),
		envelope: envelope,
	}
}

// AddVerticalLine adds a line at the given longitude.
func (s *GeoJSONSink) AddVerticalLine(longitude float64) error {
	if s.flushed {
		return ErrFlushed
	}

	f := geojson.NewFeature(orb.LineString{
		{longitude, s.envelope.North()},
		{longitude, s.envelope.South()},
	})
	f.Properties["kind"] = "vertical"
	f.Properties["longitude"] = longitude
	s.fc.Append(f)

	return nil
}

// AddHorizontalLine adds a line at the given latitude.
func (s *GeoJSONSink) AddHorizontalLine(latitude float64) error {
	if s.flushed {
		return ErrFlushed
	}

	f := geojson.NewFeature(orb.LineString{
		{s.envelope.West(), latitude},
		{s.envelope.East(), latitude},
	})
	f.Properties["kind"] = "horizontal"
	f.Properties["latitude"] = latitude
	s.fc.Append(f)

	return nil
}

// AddSquareLabels adds one Point feature per square, at its center,
// carrying the square label.
func (s *GeoJSONSink) AddSquareLabels(d Descriptor) error {
	if s.flushed {
		return ErrFlushed
	}

	for col := 0; col < d.Columns(); col++ {
		for row := 0; row < d.Rows(); row++ {
			f := geojson.NewFeature(d.CellBounds(col, row).Center().Orb())
			f.Properties["kind"] = "label"
			f.Properties["label"] = d.Cell(col, row)
			s.fc.Append(f)
		}
	}

	return nil
}

// Features returns the number of features collected so far.
func (s *GeoJSONSink) Features() int {
	return len(s.fc.Features)
}

// Flush writes the collection. Further additions fail with ErrFlushed.
func (s *GeoJSONSink) Flush() error {
	if s.flushed {
		return ErrFlushed
	}
	s.flushed = true

	return json.NewEncoder(s.w).Encode(s.fc)
}
