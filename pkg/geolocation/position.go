package geolocation

import (
	"fmt"
	"time"

	"github.com/go-drift/gpslocation/pkg/errors"
)

// Coordinates holds a single fix. Optional readings are nil when the device
// did not report them.
type Coordinates struct {
	// Latitude is the latitude in degrees.
	Latitude float64 `json:"latitude" yaml:"latitude"`
	// Longitude is the longitude in degrees.
	Longitude float64 `json:"longitude" yaml:"longitude"`
	// Altitude is the altitude in meters.
	Altitude *float64 `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	// Accuracy is the estimated horizontal accuracy in meters.
	Accuracy *float64 `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	// AltitudeAccuracy is the estimated vertical accuracy in meters.
	AltitudeAccuracy *float64 `json:"altitudeAccuracy,omitempty" yaml:"altitudeAccuracy,omitempty"`
	// Heading is the direction of travel in degrees.
	Heading *float64 `json:"heading,omitempty" yaml:"heading,omitempty"`
	// Velocity is the speed in meters per second.
	Velocity *float64 `json:"velocity,omitempty" yaml:"velocity,omitempty"`
}

// Position is an immutable location reading with its capture time.
type Position struct {
	Coords    Coordinates `json:"coords" yaml:"coords"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
}

// NewPosition builds a Position. Optional readings are copied so later
// changes to the caller's values do not leak into the position.
func NewPosition(coords Coordinates, timestamp time.Time) Position {
	coords.Altitude = copyFloat(coords.Altitude)
	coords.Accuracy = copyFloat(coords.Accuracy)
	coords.AltitudeAccuracy = copyFloat(coords.AltitudeAccuracy)
	coords.Heading = copyFloat(coords.Heading)
	coords.Velocity = copyFloat(coords.Velocity)
	return Position{Coords: coords, Timestamp: timestamp}
}

// Age returns how old the position is at now.
func (p Position) Age(now time.Time) time.Duration {
	return now.Sub(p.Timestamp)
}

func (p Position) String() string {
	return fmt.Sprintf("%.6f,%.6f @ %s", p.Coords.Latitude, p.Coords.Longitude, p.Timestamp.Format(time.RFC3339))
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// RawPosition holds the fields of a native location payload:
// latitude, longitude, altitude, accuracy, altitudeAccuracy, heading,
// velocity and timestamp.
type RawPosition map[string]any

// parsePosition builds a Position from native fields. A missing timestamp
// means the fix was taken now.
func parsePosition(raw RawPosition, now time.Time) (Position, error) {
	if raw == nil {
		return Position{}, &errors.ParseError{Channel: PluginChannel, DataType: "Position", Got: nil}
	}
	lat, _ := toFloat64(raw["latitude"])
	lon, _ := toFloat64(raw["longitude"])
	return NewPosition(Coordinates{
		Latitude:         lat,
		Longitude:        lon,
		Altitude:         optionalFloat(raw["altitude"]),
		Accuracy:         optionalFloat(raw["accuracy"]),
		AltitudeAccuracy: optionalFloat(raw["altitudeAccuracy"]),
		Heading:          optionalFloat(raw["heading"]),
		Velocity:         optionalFloat(raw["velocity"]),
	}, parseTimestamp(raw["timestamp"], now)), nil
}
