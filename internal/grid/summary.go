package grid

import "github.com/woozymasta/mapbook/internal/geo"

// Summary is a serializable snapshot of a Descriptor.
type Summary struct {
	BBox              geo.BoundingBox `json:"bbox" yaml:"bbox"`
	SquareSize        float64         `json:"square_size" yaml:"square_size"`
	WidthSquareCount  float64         `json:"width_square_count" yaml:"width_square_count"`
	HeightSquareCount float64         `json:"height_square_count" yaml:"height_square_count"`
	WidthSquareAngle  float64         `json:"width_square_angle" yaml:"width_square_angle"`
	HeightSquareAngle float64         `json:"height_square_angle" yaml:"height_square_angle"`
	VerticalLines     []float64       `json:"vertical_lines" yaml:"vertical_lines"`
	HorizontalLines   []float64       `json:"horizontal_lines" yaml:"horizontal_lines"`
	VerticalLabels    []string        `json:"vertical_labels" yaml:"vertical_labels"`
	HorizontalLabels  []string        `json:"horizontal_labels" yaml:"horizontal_labels"`
	RTL               bool            `json:"rtl" yaml:"rtl"`
}

// Summary returns a copy of the grid geometry suitable for encoding.
func (d Descriptor) Summary() Summary {
	return Summary{
		BBox:              d.bbox,
		SquareSize:        d.squareSize,
		WidthSquareCount:  d.widthSquareCount,
		HeightSquareCount: d.heightSquareCount,
		WidthSquareAngle:  d.widthSquareAngle,
		HeightSquareAngle: d.heightSquareAngle,
		VerticalLines:     d.VerticalLines(),
		HorizontalLines:   d.HorizontalLines(),
		VerticalLabels:    d.VerticalLabels(),
		HorizontalLabels:  d.HorizontalLabels(),
		RTL:               d.RTL(),
	}
}
