package graphql

import (
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
)

// Wire types mirror the events API response shape.

type eventsResponse struct {
	Events []wireEvent `json:"events"`
}

type addEventResponse struct {
	AddEvent wireEvent `json:"addEvent"`
}

type updateEventResponse struct {
	UpdateEvent wireEvent `json:"updateEvent"`
}

type wireEvent struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Creator     *wireCreator   `json:"creator"`
	Locations   []wireLocation `json:"locations"`
	Images      []wireImage    `json:"event_images"`
	Tags        []wireTag      `json:"tags"`
}

type wireCreator struct {
	ID string `json:"id"`
}

type wireImage struct {
	URL string `json:"url"`
}

type wireTag struct {
	Title string `json:"title"`
}

type wireLocation struct {
	Name             string   `json:"name"`
	StreetAddress    string   `json:"street_address"`
	StreetAddress2   string   `json:"street_address_2"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	Zipcode          string   `json:"zipcode"`
	Neighborhood     string   `json:"neighborhood"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	DistanceFromUser *float64 `json:"distanceFromUser"`
	DistanceUnit     string   `json:"distanceUnit"`
}

func (w wireEvent) toDomain() domain.Event {
	e := domain.Event{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Start:       w.Start,
		End:         w.End,
	}
	if w.Creator != nil {
		e.CreatorID = w.Creator.ID
	}
	for _, img := range w.Images {
		e.ImageURLs = append(e.ImageURLs, img.URL)
	}
	for _, tag := range w.Tags {
		e.Tags = append(e.Tags, tag.Title)
	}
	for _, l := range w.Locations {
		e.Locations = append(e.Locations, l.toDomain())
	}
	return e
}

func (w wireLocation) toDomain() domain.EventLocation {
	loc := domain.EventLocation{
		Name:           w.Name,
		StreetAddress:  w.StreetAddress,
		StreetAddress2: w.StreetAddress2,
		City:           w.City,
		State:          w.State,
		Zipcode:        w.Zipcode,
		Neighborhood:   w.Neighborhood,
		Latitude:       w.Latitude,
		Longitude:      w.Longitude,
	}
	// The value, a recognised unit and the venue position are all needed to
	// annotate.
	if w.DistanceFromUser != nil && w.DistanceUnit != "" && loc.HasPosition() {
		if unit, err := domain.ParseDistanceUnit(w.DistanceUnit); err == nil {
			loc.Distance = &domain.DistanceAnnotation{Distance: *w.DistanceFromUser, Unit: unit}
		}
	}
	return loc
}

// Input types sent with mutations.

type wireEventInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Start       string              `json:"start"`
	End         string              `json:"end"`
	Locations   []wireLocationInput `json:"locations"`
	Images      []wireImage         `json:"event_images,omitempty"`
	Tags        []wireTag           `json:"tags,omitempty"`
}

type wireLocationInput struct {
	Name           string `json:"name"`
	StreetAddress  string `json:"street_address"`
	StreetAddress2 string `json:"street_address_2,omitempty"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zipcode        string `json:"zipcode"`
}

func inputToWire(in domain.EventInput) wireEventInput {
	w := wireEventInput{
		Title:       in.Title,
		Description: in.Description,
		Start:       in.Start.UTC().Format(time.RFC3339),
		End:         in.End.UTC().Format(time.RFC3339),
	}
	for _, l := range in.Locations {
		w.Locations = append(w.Locations, wireLocationInput(l))
	}
	for _, u := range in.ImageURLs {
		w.Images = append(w.Images, wireImage{URL: u})
	}
	for _, t := range in.Tags {
		w.Tags = append(w.Tags, wireTag{Title: t})
	}
	return w
}
