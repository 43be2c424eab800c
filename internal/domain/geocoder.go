package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned a match.
func (r GeocodingResult) Found() bool {
	return r.FormattedAddress != ""
}

// Geocoder resolves free-form addresses and coordinates.
type Geocoder interface {
	// ForwardGeocode converts a free-form address to coordinates.
	ForwardGeocode(ctx context.Context, address string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
