package geo

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Bounds returns the box as [[lat1, long1], [lat2, long2]].
func (b BoundingBox) Bounds() [2][2]float64 {
	return [2][2]float64{{b.lat1, b.long1}, {b.lat2, b.long2}}
}

// MarshalJSON encodes the box as a nested [[lat1, long1], [lat2, long2]] array.
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Bounds())
}

// UnmarshalJSON decodes a nested [[lat1, long1], [lat2, long2]] array.
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var bounds [2][2]float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}

	*b = NewBoundingBox(bounds[0][0], bounds[0][1], bounds[1][0], bounds[1][1])
	return nil
}

// MarshalYAML encodes the box like MarshalJSON does.
func (b BoundingBox) MarshalYAML() (interface{}, error) {
	return b.Bounds(), nil
}

// UnmarshalYAML accepts a nested [[lat1, long1], [lat2, long2]] array,
// a ["lat1,long1", "lat2,long2"] pair or a WKT POLYGON string.
func (b *BoundingBox) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		box, err := ParseWKT(value.Value)
		if err != nil {
			return err
		}
		*b = box
		return nil

	case yaml.SequenceNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("%w: line %d: expected two corners", ErrMalformedPoint, value.Line)
		}

		if value.Content[0].Kind == yaml.ScalarNode {
			var pair [2]string
			if err := value.Decode(&pair); err != nil {
				return err
			}
			box, err := ParseLatLonPair(pair[0], pair[1])
			if err != nil {
				return err
			}
			*b = box
			return nil
		}

		var bounds [2][2]float64
		if err := value.Decode(&bounds); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformedPoint, value.Line, err)
		}
		*b = NewBoundingBox(bounds[0][0], bounds[0][1], bounds[1][0], bounds[1][1])
		return nil
	}

	return fmt.Errorf("%w: line %d: unsupported bounding box notation", ErrMalformedPoint, value.Line)
}
