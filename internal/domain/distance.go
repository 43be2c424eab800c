package domain

import (
	"fmt"
	"math"
)

// DistanceUnit is the unit of a distance annotation.
type DistanceUnit string

const (
	Miles      DistanceUnit = "miles"
	Kilometers DistanceUnit = "kilometers"
)

// ParseDistanceUnit accepts "miles"/"mi" and "kilometers"/"km".
func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch s {
	case "miles", "mi":
		return Miles, nil
	case "kilometers", "km":
		return Kilometers, nil
	default:
		return "", fmt.Errorf("unknown distance unit %q", s)
	}
}

// Abbrev returns the short label used when printing distances.
func (u DistanceUnit) Abbrev() string {
	if u == Miles {
		return "mi"
	}
	return "km"
}

const (
	earthRadiusKm = 6371.0088
	kmPerMile     = 1.609344
)

// DistanceAnnotation is the distance between the user and a venue.
type DistanceAnnotation struct {
	Distance float64      `json:"distance"`
	Unit     DistanceUnit `json:"unit"`
}

// Label formats the annotation with the given precision, e.g. "3.2 mi".
func (d DistanceAnnotation) Label(precision int) string {
	return fmt.Sprintf("%.*f %s", precision, d.Distance, d.Unit.Abbrev())
}

// HaversineKm returns the great-circle distance in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dLat := rlat2 - rlat1
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DistanceBetween returns the distance from the reading to the venue in the
// requested unit. ok is false unless both positions are known.
func DistanceBetween(r Reading, loc EventLocation, unit DistanceUnit) (DistanceAnnotation, bool) {
	if r.Absent() || !loc.HasPosition() {
		return DistanceAnnotation{}, false
	}
	km := HaversineKm(r.Latitude, r.Longitude, *loc.Latitude, *loc.Longitude)
	if unit == Miles {
		return DistanceAnnotation{Distance: km / kmPerMile, Unit: Miles}, true
	}
	return DistanceAnnotation{Distance: km, Unit: Kilometers}, true
}

// AnnotateDistances enforces the annotation invariant on every venue of the
// event: annotations are dropped unless both the reading and the venue
// position are known, and, when computeMissing is set, filled in locally for
// venues the server left unannotated.
func AnnotateDistances(e Event, r Reading, unit DistanceUnit, computeMissing bool) Event {
	if len(e.Locations) == 0 {
		return e
	}
	locs := make([]EventLocation, len(e.Locations))
	copy(locs, e.Locations)
	for i := range locs {
		if r.Absent() || !locs[i].HasPosition() {
			locs[i].Distance = nil
			continue
		}
		if locs[i].Distance != nil || !computeMissing {
			continue
		}
		if d, ok := DistanceBetween(r, locs[i], unit); ok {
			locs[i].Distance = &d
		}
	}
	e.Locations = locs
	return e
}
