package query

import (
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
)

// State is the lifecycle state of a Controller.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets snapshots serialize the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is an immutable view of the controller at one point in time.
// Event is set only in StateReady and Err only in StateError.
type Snapshot struct {
	State     State
	Query     domain.EventQuery
	Event     *domain.Event
	Err       error
	RequestID string
	UpdatedAt time.Time
}

// ErrorMessage returns the failure text, or "" outside StateError.
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
