package geo

import (
	"fmt"
	"math"
)

// Axis selects the hemisphere letters used for a coordinate.
type Axis int

const (
	// Latitude uses N/S.
	Latitude Axis = iota
	// Longitude uses E/W.
	Longitude
)

// DMS is a coordinate split into degrees, minutes and seconds of arc.
// Degrees is always positive, the sign lives in Hemisphere.
type DMS struct {
	Degrees    int
	Minutes    int
	Seconds    float64
	Hemisphere byte
}

// DegreesMinutesSeconds splits a signed decimal coordinate.
func DegreesMinutesSeconds(value float64, axis Axis) DMS {
	hemisphere := byte('N')
	if axis == Longitude {
		hemisphere = 'E'
	}
	if value < 0 {
		value = -value
		hemisphere = 'S'
		if axis == Longitude {
			hemisphere = 'W'
		}
	}

	deg := math.Floor(value)
	frac := value - deg

	return DMS{
		Degrees:    int(deg),
		Minutes:    int(math.Floor(frac * 60)),
		Seconds:    math.Mod(frac*3600, 60),
		Hemisphere: hemisphere,
	}
}

// String formats the value with seconds rounded to hundredths; a rounding
// up to 60 seconds carries into the minutes and degrees.
func (d DMS) String() string {
	deg, minutes := d.Degrees, d.Minutes
	hundredths := int(math.Round(d.Seconds * 100))
	if hundredths >= 6000 {
		hundredths -= 6000
		minutes++
	}
	if minutes >= 60 {
		minutes -= 60
		deg++
	}

	return fmt.Sprintf("%d°%02d'%02d.%02d\"%c", deg, minutes, hundredths/100, hundredths%100, d.Hemisphere)
}

// DMSString returns the box corners in degrees, minutes and seconds,
// top left first.
func (b BoundingBox) DMSString() string {
	return fmt.Sprintf("%s %s - %s %s",
		DegreesMinutesSeconds(b.lat1, Latitude),
		DegreesMinutesSeconds(b.long1, Longitude),
		DegreesMinutesSeconds(b.lat2, Latitude),
		DegreesMinutesSeconds(b.long2, Longitude),
	)
}
