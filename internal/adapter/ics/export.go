// Package ics exports events as iCalendar documents.
package ics

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/event-finder/internal/domain"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//couchcryptid//event-finder//EN"

// Options tweaks the exported calendar.
type Options struct {
	// EventURL, when set, is formatted with the event id to build each
	// event's URL property, e.g. "https://events.example.com/events/%s".
	EventURL string
}

// Calendar builds a PUBLISH calendar holding events.
func Calendar(opts Options, events ...domain.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if len(events) == 1 {
		cal.SetName(events[0].Title)
	}

	stamp := domain.Clock().Now().UTC()
	for _, e := range events {
		ve := cal.AddEvent(uid(e.ID))
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Title)
		if desc := description(e); desc != "" {
			ve.SetDescription(desc)
		}
		if loc, ok := e.PrimaryLocation(); ok {
			ve.SetLocation(locationLine(loc))
			if loc.HasPosition() {
				ve.SetGeo(*loc.Latitude, *loc.Longitude)
			}
		}
		for _, tag := range e.Tags {
			ve.AddCategory(tag)
		}
		if opts.EventURL != "" {
			ve.SetURL(fmt.Sprintf(opts.EventURL, e.ID))
		}
	}
	return cal
}

// Write serializes events to w.
func Write(w io.Writer, opts Options, events ...domain.Event) error {
	if err := Calendar(opts, events...).SerializeTo(w); err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}
	return nil
}

func uid(id string) string {
	return id + "@event-finder"
}

func locationLine(loc domain.EventLocation) string {
	addr := loc.Address()
	switch {
	case loc.Name == "":
		return addr
	case addr == "":
		return loc.Name
	default:
		return loc.Name + ", " + addr
	}
}

func description(e domain.Event) string {
	var b strings.Builder
	b.WriteString(e.Description)
	if loc, ok := e.PrimaryLocation(); ok && loc.Distance != nil {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s away", loc.Distance.Label(1))
	}
	return b.String()
}
