package location

import (
	"context"

	"github.com/couchcryptid/event-finder/internal/domain"
)

// SuccessFunc receives a successful fix from a Platform.
type SuccessFunc func(domain.Position)

// ErrorFunc receives a failed acquisition from a Platform.
type ErrorFunc func(*domain.PositionError)

// Platform is the host location service. GetCurrentPosition must return
// promptly and invoke exactly one of onSuccess or onError later, from any
// goroutine. ctx is cancelled when the owning Provider is closed.
type Platform interface {
	Name() string
	GetCurrentPosition(ctx context.Context, onSuccess SuccessFunc, onError ErrorFunc, opts domain.AcquisitionOptions)
}

// Sink receives acquisition failure reports.
type Sink interface {
	Report(ctx context.Context, failure domain.AcquisitionFailure)
}

// MultiSink fans a report out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Report(ctx context.Context, failure domain.AcquisitionFailure) {
	for _, s := range m {
		if s != nil {
			s.Report(ctx, failure)
		}
	}
}

// Unavailable is the Platform used when the host exposes no location
// capability. Every acquisition fails with PositionUnavailable.
type Unavailable struct{}

func (Unavailable) Name() string { return "none" }

func (Unavailable) GetCurrentPosition(_ context.Context, _ SuccessFunc, onError ErrorFunc, _ domain.AcquisitionOptions) {
	onError(&domain.PositionError{
		Code:    domain.PositionUnavailable,
		Message: "geolocation is not supported on this host",
	})
}
