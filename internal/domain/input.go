package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LocationInput is a venue in an event create or update request.
type LocationInput struct {
	Name           string `json:"name" validate:"required"`
	StreetAddress  string `json:"street_address" validate:"required"`
	StreetAddress2 string `json:"street_address_2,omitempty"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state" validate:"required,len=2"`
	Zipcode        string `json:"zipcode" validate:"required,numeric,len=5"`
}

// EventInput carries the editable fields of an event.
type EventInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Start       time.Time       `json:"start" validate:"required"`
	End         time.Time       `json:"end" validate:"required,gtfield=Start"`
	Locations   []LocationInput `json:"locations" validate:"required,min=1,dive"`
	ImageURLs   []string        `json:"image_urls,omitempty" validate:"dive,url"`
	Tags        []string        `json:"tags,omitempty" validate:"dive,required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the input and returns a single error listing every
// failing field.
func (in EventInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate event input: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid event input: %s", strings.Join(msgs, "; "))
}

// InputFromEvent seeds an update request with an event's current values.
func InputFromEvent(e Event) EventInput {
	in := EventInput{
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		ImageURLs:   append([]string(nil), e.ImageURLs...),
		Tags:        append([]string(nil), e.Tags...),
	}
	for _, l := range e.Locations {
		in.Locations = append(in.Locations, LocationInput{
			Name:           l.Name,
			StreetAddress:  l.StreetAddress,
			StreetAddress2: l.StreetAddress2,
			City:           l.City,
			State:          l.State,
			Zipcode:        l.Zipcode,
		})
	}
	return in
}
