package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrEventNotFound is returned when the API has no event for an id.
	ErrEventNotFound = errors.New("event not found")
	// ErrNotEventCreator is returned when the viewer tries to edit an event
	// they did not create.
	ErrNotEventCreator = errors.New("viewer is not the event creator")
	// ErrUnauthenticated is returned when an operation needs an access token.
	ErrUnauthenticated = errors.New("access token required")
)

// EventLocation is a venue attached to an event.
type EventLocation struct {
	Name           string   `json:"name"`
	StreetAddress  string   `json:"street_address"`
	StreetAddress2 string   `json:"street_address_2,omitempty"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Zipcode        string   `json:"zipcode"`
	Neighborhood   string   `json:"neighborhood,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`

	Distance *DistanceAnnotation `json:"distance,omitempty"`
}

// HasPosition reports whether the venue has known coordinates.
func (l EventLocation) HasPosition() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Address formats the street address on one line, skipping the second
// street line when empty.
func (l EventLocation) Address() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{l.StreetAddress, l.StreetAddress2, l.City, l.State, l.Zipcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Event is an event as returned by the events API.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	CreatorID   string          `json:"creator_id"`
	Locations   []EventLocation `json:"locations"`
	ImageURLs   []string        `json:"image_urls,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// PrimaryLocation returns the first venue, if any.
func (e Event) PrimaryLocation() (EventLocation, bool) {
	if len(e.Locations) == 0 {
		return EventLocation{}, false
	}
	return e.Locations[0], true
}

// Neighborhood returns the first venue's neighborhood, or fallback when
// none is set.
func (e Event) Neighborhood(fallback string) string {
	if loc, ok := e.PrimaryLocation(); ok && loc.Neighborhood != "" {
		return loc.Neighborhood
	}
	return fallback
}

// EventQuery identifies a location-dependent event lookup.
type EventQuery struct {
	ID      string
	Reading Reading
}
