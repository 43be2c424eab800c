// Package static provides a location platform with fixed coordinates.
package static

import (
	"context"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/location"
)

// Platform always reports the same position.
type Platform struct {
	Lat float64
	Lon float64
}

var _ location.Platform = (*Platform)(nil)

// NewPlatform creates a platform that always returns lat, lon.
func NewPlatform(lat, lon float64) *Platform {
	return &Platform{Lat: lat, Lon: lon}
}

func (p *Platform) Name() string { return "static" }

func (p *Platform) GetCurrentPosition(_ context.Context, onSuccess location.SuccessFunc, _ location.ErrorFunc, _ domain.AcquisitionOptions) {
	pos := domain.Position{
		Latitude:  p.Lat,
		Longitude: p.Lon,
		Timestamp: domain.Clock().Now(),
	}
	go onSuccess(pos)
}
