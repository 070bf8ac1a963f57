// Package geo provides geolocation adapters for a terminal client, which has
// no positioning hardware of its own.
package geo

import (
	"context"
	"fmt"

	"github.com/example/dayof/internal/ports/secondary"
)

// StaticLocator reports a fixed position supplied by flags or environment.
type StaticLocator struct {
	lat, lng *float64
}

// NewStaticLocator creates a locator. With neither coordinate set the
// locator reports ErrGeolocationUnsupported.
func NewStaticLocator(lat, lng *float64) *StaticLocator {
	return &StaticLocator{lat: lat, lng: lng}
}

var _ secondary.Geolocator = (*StaticLocator)(nil)

// CurrentPosition returns the configured coordinates.
func (l *StaticLocator) CurrentPosition(ctx context.Context) (secondary.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return secondary.Coordinates{}, fmt.Errorf("%w: %v", secondary.ErrPositionUnavailable, err)
	}
	if l.lat == nil && l.lng == nil {
		return secondary.Coordinates{}, secondary.ErrGeolocationUnsupported
	}
	if l.lat == nil || l.lng == nil {
		return secondary.Coordinates{}, fmt.Errorf("%w: both latitude and longitude are required", secondary.ErrPositionUnavailable)
	}

	lat, lng := *l.lat, *l.lng
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return secondary.Coordinates{}, fmt.Errorf("%w: %g,%g is out of range", secondary.ErrPositionUnavailable, lat, lng)
	}
	return secondary.Coordinates{Latitude: lat, Longitude: lng}, nil
}
