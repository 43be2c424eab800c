// Package graphql is the events API client. It issues the event queries and
// mutations over GraphQL and attaches the viewer's bearer token when one is
// configured.
package graphql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/machinebox/graphql"
)

// Client talks to the events GraphQL API.
type Client struct {
	gql    *graphql.Client
	token  string
	logger *slog.Logger
}

// NewClient creates an events API client. An empty token sends requests
// without an Authorization header.
func NewClient(endpoint, token string, timeout time.Duration, logger *slog.Logger) *Client {
	gql := graphql.NewClient(endpoint, graphql.WithHTTPClient(&http.Client{Timeout: timeout}))
	gql.Log = func(s string) { logger.Debug(s, "component", "graphql") }
	return &Client{
		gql:    gql,
		token:  token,
		logger: logger,
	}
}

// FetchEvent loads one event. Absent reading coordinates are sent as null so
// the API omits distance annotations.
func (c *Client) FetchEvent(ctx context.Context, q domain.EventQuery) (domain.Event, error) {
	lat, lon := q.Reading.Coordinates()

	req := graphql.NewRequest(eventByIDWithDistanceQuery)
	req.Var("id", q.ID)
	req.Var("userLatitude", lat)
	req.Var("userLongitude", lon)

	var resp eventsResponse
	if err := c.run(ctx, req, &resp); err != nil {
		return domain.Event{}, fmt.Errorf("fetch event %s: %w", q.ID, err)
	}
	if len(resp.Events) == 0 {
		return domain.Event{}, fmt.Errorf("fetch event %s: %w", q.ID, domain.ErrEventNotFound)
	}
	return resp.Events[0].toDomain(), nil
}

// ListEvents loads every event, annotated with the distance from r when r is
// present.
func (c *Client) ListEvents(ctx context.Context, r domain.Reading) ([]domain.Event, error) {
	lat, lon := r.Coordinates()

	req := graphql.NewRequest(eventsWithDistanceQuery)
	req.Var("userLatitude", lat)
	req.Var("userLongitude", lon)

	var resp eventsResponse
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]domain.Event, 0, len(resp.Events))
	for _, w := range resp.Events {
		events = append(events, w.toDomain())
	}
	return events, nil
}

// CreateEvent validates in and creates the event as the viewer.
func (c *Client) CreateEvent(ctx context.Context, in domain.EventInput) (domain.Event, error) {
	if c.token == "" {
		return domain.Event{}, fmt.Errorf("create event: %w", domain.ErrUnauthenticated)
	}
	if err := in.Validate(); err != nil {
		return domain.Event{}, err
	}

	req := graphql.NewRequest(createEventMutation)
	req.Var("data", inputToWire(in))

	var resp addEventResponse
	if err := c.run(ctx, req, &resp); err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	c.logger.Info("event created", "event_id", resp.AddEvent.ID)
	return resp.AddEvent.toDomain(), nil
}

// UpdateEvent replaces the editable fields of event id. Only the event's
// creator may update it; anyone else gets domain.ErrNotEventCreator.
func (c *Client) UpdateEvent(ctx context.Context, id string, in domain.EventInput) (domain.Event, error) {
	if err := c.CheckCreator(ctx, id); err != nil {
		return domain.Event{}, err
	}
	if err := in.Validate(); err != nil {
		return domain.Event{}, err
	}

	req := graphql.NewRequest(updateEventMutation)
	req.Var("id", id)
	req.Var("data", inputToWire(in))

	var resp updateEventResponse
	if err := c.run(ctx, req, &resp); err != nil {
		return domain.Event{}, fmt.Errorf("update event %s: %w", id, err)
	}
	c.logger.Info("event updated", "event_id", id)
	return resp.UpdateEvent.toDomain(), nil
}

// GetEvent loads one event without distance annotations.
func (c *Client) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	req := graphql.NewRequest(eventByIDQuery)
	req.Var("id", id)

	var resp eventsResponse
	if err := c.run(ctx, req, &resp); err != nil {
		return domain.Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	if len(resp.Events) == 0 {
		return domain.Event{}, fmt.Errorf("get event %s: %w", id, domain.ErrEventNotFound)
	}
	return resp.Events[0].toDomain(), nil
}

// CheckCreator returns nil when the viewer created event id.
func (c *Client) CheckCreator(ctx context.Context, id string) error {
	viewer, err := c.ViewerID()
	if err != nil {
		return err
	}
	event, err := c.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatorID != viewer {
		c.logger.Warn("viewer is not the event creator", "event_id", id, "viewer", viewer, "creator", event.CreatorID)
		return fmt.Errorf("update event %s: %w", id, domain.ErrNotEventCreator)
	}
	return nil
}

// ViewerID returns the subject of the configured access token. The token is
// not verified here; the API verifies it on every request.
func (c *Client) ViewerID() (string, error) {
	if c.token == "" {
		return "", domain.ErrUnauthenticated
	}
	token, _, err := jwt.NewParser().ParseUnverified(c.token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("read token subject: %w", err)
	}
	if sub == "" {
		return "", errors.New("access token has no subject")
	}
	return sub, nil
}

func (c *Client) run(ctx context.Context, req *graphql.Request, resp any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.gql.Run(ctx, req, resp)
}
