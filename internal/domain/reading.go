package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reading is a latitude/longitude pair for the most recent known device
// location. The zero value is the absent reading.
type Reading struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Valid     bool    `json:"-"`
}

// NewReading returns a present reading for the given coordinates.
func NewReading(lat, lon float64) Reading {
	return Reading{Latitude: lat, Longitude: lon, Valid: true}
}

// Absent reports whether no coordinates are known.
func (r Reading) Absent() bool { return !r.Valid }

// Coordinates returns pointers suitable for nullable query variables.
// Both are nil when the reading is absent.
func (r Reading) Coordinates() (lat, lon *float64) {
	if !r.Valid {
		return nil, nil
	}
	la, lo := r.Latitude, r.Longitude
	return &la, &lo
}

func (r Reading) String() string {
	if !r.Valid {
		return "absent"
	}
	return fmt.Sprintf("%.6f,%.6f", r.Latitude, r.Longitude)
}

// Position is a successful fix reported by a location platform.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters, 0 when unknown
	Timestamp time.Time
}

// Reading converts the fix into a present Reading.
func (p Position) Reading() Reading {
	return NewReading(p.Latitude, p.Longitude)
}

// Position error codes, matching the W3C Geolocation API.
const (
	PermissionDenied    = 1
	PositionUnavailable = 2
	Timeout             = 3
)

// PositionError is a failed acquisition reported by a location platform.
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("geolocation error %d: %s", e.Code, e.Message)
}

// CodeName returns a machine-readable name for the error code.
func (e *PositionError) CodeName() string {
	switch e.Code {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// AcquisitionFailure is the report handed to an observability sink when an
// acquisition attempt fails.
type AcquisitionFailure struct {
	Code       int       `json:"code"`
	CodeName   string    `json:"code_name"`
	Message    string    `json:"message"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ParseReading parses "lat,lon" into a present reading, checking both
// values are in range.
func ParseReading(s string) (Reading, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Reading{}, fmt.Errorf("coordinates must be \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}
	if lat < -90 || lat > 90 {
		return Reading{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return Reading{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return NewReading(lat, lon), nil
}
