package store

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const coordinateSeparator = "_"

// Coordinate is a point in stereotactic space.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// ParseCoordinate parses an underscore delimited triple such as "10_-5_3".
func ParseCoordinate(raw string) (Coordinate, error) {
	parts := strings.Split(raw, coordinateSeparator)
	if len(parts) != 3 {
		return Coordinate{}, &ValidationError{
			Field: "coordinate",
			Value: raw,
			Err:   errors.New("expected three components separated by '_'"),
		}
	}

	var values [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Coordinate{}, &ValidationError{Field: "coordinate", Value: raw, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Coordinate{}, &ValidationError{
				Field: "coordinate",
				Value: raw,
				Err:   errors.New("components must be finite"),
			}
		}
		values[i] = v
	}
	return Coordinate{X: values[0], Y: values[1], Z: values[2]}, nil
}

// Triple returns the components in x, y, z order.
func (c Coordinate) Triple() [3]float64 {
	return [3]float64{c.X, c.Y, c.Z}
}

// String formats the coordinate back into its path form.
func (c Coordinate) String() string {
	return strings.Join([]string{
		strconv.FormatFloat(c.X, 'f', -1, 64),
		strconv.FormatFloat(c.Y, 'f', -1, 64),
		strconv.FormatFloat(c.Z, 'f', -1, 64),
	}, coordinateSeparator)
}
