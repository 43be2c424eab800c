// Package domain models the event-finder client: the user's coordinate
// reading, the options used to acquire it, and the events fetched from the
// events API together with their distance annotations.
//
// # Coordinate readings
//
// A [Reading] is either absent or carries both latitude and longitude. It is
// replaced wholesale on every successful acquisition and compared by value
// when deciding whether an event query must be re-issued.
//
// # Acquisition options
//
// Options follow the W3C Geolocation API (enableHighAccuracy, timeout,
// maximumAge). Callers pass [OptionOverrides] with nil for unset fields;
// [ResolveOptions] merges each field independently so an explicit
// EnableHighAccuracy=false survives:
//
//	enableHighAccuracy  true
//	timeout             5s
//	maximumAge          0 (always fetch fresh)
//
// # Position error codes
//
//	1  permission denied
//	2  position unavailable (also used when no platform is available)
//	3  timeout
//
// # Distance annotations
//
// The events API computes distanceFromUser/distanceUnit when coordinates are
// supplied and the venue is geolocated. [AnnotateDistances] drops annotations
// when the reading is absent and can fill missing ones with a haversine
// distance computed on the client.
package domain
