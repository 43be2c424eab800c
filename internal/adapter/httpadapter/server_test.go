package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/event-finder/internal/adapter/httpadapter"
	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/observability"
	"github.com/couchcryptid/event-finder/internal/query"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeView struct {
	mu   sync.Mutex
	snap query.Snapshot
	subs []chan query.Snapshot
}

func (f *fakeView) Snapshot() query.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeView) Subscribe() (<-chan query.Snapshot, func()) {
	ch := make(chan query.Snapshot, 4)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()
	return ch, func() {}
}

func (f *fakeView) CheckReadiness(context.Context) error {
	if f.Snapshot().State != query.StateReady {
		return errors.New("event view is loading")
	}
	return nil
}

func (f *fakeView) publish(s query.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = s
	for _, ch := range f.subs {
		ch <- s
	}
}

func (f *fakeView) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type countingReacquirer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingReacquirer) Reacquire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func readySnapshot() query.Snapshot {
	return query.Snapshot{
		State:     query.StateReady,
		Query:     domain.EventQuery{ID: "abc", Reading: domain.NewReading(40, 80)},
		Event:     &domain.Event{ID: "abc", Title: "Block Party"},
		RequestID: "req-1",
	}
}

func newTestServer(view *fakeView, loc httpadapter.Reacquirer) *httpadapter.Server {
	return httpadapter.NewServer(":0", view, loc, observability.DiscardLogger())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&fakeView{}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzFollowsControllerState(t *testing.T) {
	view := &fakeView{snap: query.Snapshot{State: query.StateLoading}}
	srv := newTestServer(view, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	view.publish(readySnapshot())
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeView{}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestEventReturnsSnapshot(t *testing.T) {
	srv := newTestServer(&fakeView{snap: readySnapshot()}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/event", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["state"])
	assert.Equal(t, "abc", body["event_id"])
	assert.InDelta(t, 40.0, body["user_latitude"], 0)
	assert.InDelta(t, 80.0, body["user_longitude"], 0)
	event, ok := body["event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Block Party", event["title"])
}

func TestEventAbsentReadingAndError(t *testing.T) {
	view := &fakeView{snap: query.Snapshot{
		State: query.StateError,
		Query: domain.EventQuery{ID: "abc"},
		Err:   errors.New("dial tcp: connection refused"),
	}}
	srv := newTestServer(view, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/event", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["state"])
	assert.Nil(t, body["user_latitude"])
	assert.NotContains(t, body["error"], "connection refused")
	assert.NotContains(t, body, "event")
}

func TestLocationTriggersReacquire(t *testing.T) {
	loc := &countingReacquirer{}
	srv := newTestServer(&fakeView{}, loc)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/location", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, loc.calls)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/location", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLocationWithoutProvider(t *testing.T) {
	srv := newTestServer(&fakeView{}, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/location", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type frame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func TestEventStreamPushesSnapshots(t *testing.T) {
	view := &fakeView{snap: query.Snapshot{State: query.StateLoading, Query: domain.EventQuery{ID: "abc"}}}
	srv := newTestServer(view, nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/event/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first frame
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, "loading", first.Payload["state"])

	require.Eventually(t, func() bool { return view.subscribers() == 1 }, time.Second, 5*time.Millisecond)
	view.publish(readySnapshot())

	var second frame
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "ready", second.Payload["state"])
	assert.Equal(t, "req-1", second.Payload["request_id"])
}

func TestShutdownClosesStreams(t *testing.T) {
	view := &fakeView{snap: readySnapshot()}
	srv := newTestServer(view, nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/event/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first frame
	require.NoError(t, conn.ReadJSON(&first))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}
