// Package advisory holds the types shared by the location-aware advisory pipeline:
// coordinates, permission results and the error taxonomy every stage reports with.
package advisory

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when the user refused microphone access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoLocationAvailable means neither a stored profile nor the device produced coordinates.
	ErrNoLocationAvailable = errors.New("no location available")

	// ErrInferenceUnavailable wraps every transport or status failure of a model call.
	ErrInferenceUnavailable = errors.New("inference unavailable")

	// ErrProcessingTimeout is returned when voice processing exceeds its deadline.
	ErrProcessingTimeout = errors.New("processing timeout")

	// ErrMalformedModelOutput marks model text that could not be parsed into the expected shape.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrEmptyRecording is returned when a recording stopped without any captured audio.
	ErrEmptyRecording = errors.New("empty recording")
)

// Permission is the outcome of a runtime permission prompt.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func (p Permission) Granted() bool {
	return p == PermissionGranted
}

// PermissionFromBool maps a client-reported flag onto a Permission.
func PermissionFromBool(granted bool) Permission {
	if granted {
		return PermissionGranted
	}
	return PermissionDenied
}

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Validate returns a descriptive error for out-of-range coordinates.
func (c Coordinates) Validate() error {
	if c.Valid() {
		return nil
	}
	return fmt.Errorf("coordinates out of range: lat=%f lng=%f", c.Latitude, c.Longitude)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}
