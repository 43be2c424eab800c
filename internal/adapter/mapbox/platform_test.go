package mapbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowGeocoder struct{}

func (slowGeocoder) ForwardGeocode(ctx context.Context, _ string) (domain.GeocodingResult, error) {
	<-ctx.Done()
	return domain.GeocodingResult{}, ctx.Err()
}

func (slowGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{}, nil
}

type result struct {
	pos domain.Position
	err *domain.PositionError
}

func acquireAddress(t *testing.T, g domain.Geocoder, opts domain.AcquisitionOptions) result {
	t.Helper()
	p := NewAddressPlatform(g, "1437 Bannock St, Denver", observability.DiscardLogger())
	ch := make(chan result, 1)
	p.GetCurrentPosition(context.Background(),
		func(pos domain.Position) { ch <- result{pos: pos} },
		func(err *domain.PositionError) { ch <- result{err: err} },
		opts,
	)
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("platform never called back")
		return result{}
	}
}

func TestAddressPlatform_Success(t *testing.T) {
	r := acquireAddress(t, &countingGeocoder{result: denver}, domain.DefaultOptions())
	require.Nil(t, r.err)
	assert.Equal(t, domain.NewReading(39.7392, -104.9903), r.pos.Reading())
}

func TestAddressPlatform_NoMatch(t *testing.T) {
	r := acquireAddress(t, &countingGeocoder{}, domain.DefaultOptions())
	require.NotNil(t, r.err)
	assert.Equal(t, domain.PositionUnavailable, r.err.Code)
}

func TestAddressPlatform_GeocoderError(t *testing.T) {
	r := acquireAddress(t, &countingGeocoder{err: errors.New("status 401")}, domain.DefaultOptions())
	require.NotNil(t, r.err)
	assert.Equal(t, domain.PositionUnavailable, r.err.Code)
	assert.Contains(t, r.err.Message, "401")
}

func TestAddressPlatform_Timeout(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.Timeout = 20 * time.Millisecond
	r := acquireAddress(t, slowGeocoder{}, opts)
	require.NotNil(t, r.err)
	assert.Equal(t, domain.Timeout, r.err.Code)
}
