package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReading_ZeroValueIsAbsent(t *testing.T) {
	var r Reading
	assert.True(t, r.Absent())

	lat, lon := r.Coordinates()
	assert.Nil(t, lat)
	assert.Nil(t, lon)
	assert.Equal(t, "absent", r.String())
}

func TestReading_CoordinatesTravelTogether(t *testing.T) {
	r := NewReading(40, 80)

	lat, lon := r.Coordinates()
	if assert.NotNil(t, lat) && assert.NotNil(t, lon) {
		assert.Equal(t, 40.0, *lat)
		assert.Equal(t, 80.0, *lon)
	}
}

func TestReading_EqualityIsByValue(t *testing.T) {
	assert.Equal(t, NewReading(40, 80), NewReading(40, 80))
	assert.NotEqual(t, NewReading(40, 80), NewReading(40, 81))
	assert.NotEqual(t, Reading{}, NewReading(0, 0), "origin is not the absent reading")
}

func TestPositionError_CodeName(t *testing.T) {
	assert.Equal(t, "permission_denied", (&PositionError{Code: PermissionDenied}).CodeName())
	assert.Equal(t, "position_unavailable", (&PositionError{Code: PositionUnavailable}).CodeName())
	assert.Equal(t, "timeout", (&PositionError{Code: Timeout}).CodeName())
	assert.Equal(t, "unknown", (&PositionError{Code: 9}).CodeName())
	assert.EqualError(t, &PositionError{Code: 1, Message: "denied"}, "geolocation error 1: denied")
}

func TestParseReading(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Reading
		wantErr bool
	}{
		{name: "plain", in: "40,80", want: NewReading(40, 80)},
		{name: "spaces", in: " 39.7392 , -104.9903 ", want: NewReading(39.7392, -104.9903)},
		{name: "missing lon", in: "40", wantErr: true},
		{name: "too many parts", in: "1,2,3", wantErr: true},
		{name: "not a number", in: "north,80", wantErr: true},
		{name: "lat out of range", in: "91,0", wantErr: true},
		{name: "lon out of range", in: "0,-181", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReading(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
