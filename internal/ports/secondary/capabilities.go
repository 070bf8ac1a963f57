package secondary

import (
	"context"
	"errors"
)

// Photo is an image chosen by the vendor, ready for upload.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// PhotoSelector defines the secondary port for choosing photos.
type PhotoSelector interface {
	// Select loads the photos at the given paths.
	Select(paths []string) ([]Photo, error)
}

// Coordinates is a single geolocation fix.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

var (
	ErrGeolocationUnsupported = errors.New("geolocation is not supported")
	ErrPositionUnavailable    = errors.New("unable to get current position")
)

// Geolocator defines the secondary port for acquiring a position fix.
type Geolocator interface {
	// CurrentPosition returns a single fix or one of the sentinel errors.
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// Notifier defines the secondary port for user-visible messages.
type Notifier interface {
	// Notify shows message at level (info, success, error).
	Notify(level, message string)
}
