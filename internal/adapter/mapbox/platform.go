package mapbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/location"
)

// AddressPlatform locates the user at a configured street address by
// forward-geocoding it. Wrap the geocoder in a CachedGeocoder so repeated
// acquisitions do not hit the API.
type AddressPlatform struct {
	geocoder domain.Geocoder
	address  string
	logger   *slog.Logger
}

var _ location.Platform = (*AddressPlatform)(nil)

// NewAddressPlatform creates a platform for address.
func NewAddressPlatform(geocoder domain.Geocoder, address string, logger *slog.Logger) *AddressPlatform {
	return &AddressPlatform{geocoder: geocoder, address: address, logger: logger}
}

func (p *AddressPlatform) Name() string { return "address" }

func (p *AddressPlatform) GetCurrentPosition(ctx context.Context, onSuccess location.SuccessFunc, onError location.ErrorFunc, opts domain.AcquisitionOptions) {
	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		result, err := p.geocoder.ForwardGeocode(reqCtx, p.address)
		switch {
		case err != nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded):
			onError(&domain.PositionError{Code: domain.Timeout, Message: "timeout expired"})
		case err != nil:
			onError(&domain.PositionError{Code: domain.PositionUnavailable, Message: fmt.Sprintf("geocode address: %v", err)})
		case !result.Found():
			onError(&domain.PositionError{Code: domain.PositionUnavailable, Message: fmt.Sprintf("no match for address %q", p.address)})
		default:
			p.logger.Debug("address geocoded", "address", p.address, "match", result.FormattedAddress, "relevance", result.Confidence)
			onSuccess(domain.Position{
				Latitude:  result.Lat,
				Longitude: result.Lon,
				Timestamp: domain.Clock().Now(),
			})
		}
	}()
}
