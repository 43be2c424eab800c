package httpadapter

import (
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/query"
)

// snapshotView is the JSON shape of a controller snapshot.
type snapshotView struct {
	State         query.State   `json:"state"`
	EventID       string        `json:"event_id"`
	UserLatitude  *float64      `json:"user_latitude"`
	UserLongitude *float64      `json:"user_longitude"`
	Event         *domain.Event `json:"event,omitempty"`
	Error         string        `json:"error,omitempty"`
	RequestID     string        `json:"request_id,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func newSnapshotView(s query.Snapshot) snapshotView {
	lat, lon := s.Query.Reading.Coordinates()
	v := snapshotView{
		State:         s.State,
		EventID:       s.Query.ID,
		UserLatitude:  lat,
		UserLongitude: lon,
		Event:         s.Event,
		RequestID:     s.RequestID,
		UpdatedAt:     s.UpdatedAt,
	}
	// The error detail stays in the logs.
	if s.State == query.StateError {
		v.Error = "event could not be loaded"
	}
	return v
}

// streamMessage is one websocket frame.
type streamMessage struct {
	Type    string       `json:"type"`
	Payload snapshotView `json:"payload"`
}
