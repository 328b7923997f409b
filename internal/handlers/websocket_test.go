package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"hotel_ops/internal/models"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseTopics unit tests ---

func TestParseTopics(t *testing.T) {
	cases := []struct {
		name string
		u    string
		want []string
	}{
		{"default_when_missing", "/ws", defaultTopics},
		{"single", "/ws?topics=rooms", []string{"rooms"}},
		{"case_and_spaces", "/ws?topics=%20Sessions%20,REPORTS", []string{"sessions", "reports"}},
		{"duplicates_dropped", "/ws?topics=rooms,rooms", []string{"rooms"}},
		{"unknown_ignored", "/ws?topics=boiler,notifications", []string{"notifications"}},
		{"only_unknown_falls_back", "/ws?topics=bogus", defaultTopics},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
			got := parseTopics(c)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	pathOnly, query, _ := strings.Cut(path, "?")
	u.Path = pathOnly
	u.RawQuery = query

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial failed: %v (resp=%v)", err, resp)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env wsEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func TestWebSocket_RoomsSnapshotThenEvents(t *testing.T) {
	rooms := &mockRooms{rooms: []models.Room{
		{ID: "r1", Number: "101", State: models.RoomStateDirty},
		{ID: "r2", Number: "102", State: models.RoomStateClean},
	}}
	hub := realtime.NewHub()
	srv := httptest.NewServer(newTestRouterWithHub(&service.Service{Rooms: rooms}, hub))
	defer srv.Close()

	conn := dialWS(t, srv, "/ws?topics=rooms,sessions")
	defer conn.Close()

	first := readEnvelope(t, conn)
	if first.Type != "rooms.snapshot" {
		t.Fatalf("expected rooms.snapshot, got %q", first.Type)
	}
	list, ok := first.Data.([]interface{})
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2 rooms in snapshot, got %#v", first.Data)
	}

	hub.Publish(realtime.Event{Topic: realtime.TopicSessions, Type: models.SessionRunning, Key: "r1"})
	got := readEnvelope(t, conn)
	if got.Type != "sessions.running" || got.Key != "r1" {
		t.Fatalf("unexpected event envelope %+v", got)
	}

	// reports were not requested
	hub.Publish(realtime.Event{Topic: realtime.TopicReports, Type: "created", Key: "p1"})
	hub.Publish(realtime.Event{Topic: realtime.TopicRooms, Type: "updated", Key: "r2"})
	got = readEnvelope(t, conn)
	if got.Type != "rooms.updated" || got.Key != "r2" {
		t.Fatalf("unexpected event envelope %+v", got)
	}
}

func TestWebSocket_SnapshotErrorClosesStream(t *testing.T) {
	rooms := &mockRooms{err: errors.New("boom")}
	srv := httptest.NewServer(newTestRouter(&service.Service{Rooms: rooms}))
	defer srv.Close()

	conn := dialWS(t, srv, "/ws?topics=rooms")
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env.Type != "error" || env.Error != "failed to load rooms" {
		t.Fatalf("expected error envelope, got %+v", env)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to be closed after error")
	}
}

func TestWebSocket_DeviceStream(t *testing.T) {
	sent := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	devices := &mockDevices{
		available: []bool{true},
		message:   &models.CustomMessage{Text: "Go to room 204", SentAt: sent},
	}
	srv := httptest.NewServer(newTestRouter(&service.Service{Devices: devices}))
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/devices/dev-1")
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env.Type != "availability" || env.Key != "dev-1" {
		t.Fatalf("expected availability envelope, got %+v", env)
	}
	data, _ := env.Data.(map[string]interface{})
	if data["available"] != true {
		t.Fatalf("expected available=true, got %#v", env.Data)
	}

	env = readEnvelope(t, conn)
	if env.Type != "message" {
		t.Fatalf("expected message envelope, got %+v", env)
	}
	data, _ = env.Data.(map[string]interface{})
	if data["text"] != "Go to room 204" {
		t.Fatalf("unexpected message payload %#v", env.Data)
	}
}

func TestWebSocket_UnknownDeviceGetsError(t *testing.T) {
	devices := &mockDevices{err: service.ErrDeviceNotFound}
	srv := httptest.NewServer(newTestRouter(&service.Service{Devices: devices}))
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/devices/ghost")
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env.Type != "error" || env.Error != service.ErrDeviceNotFound.Error() {
		t.Fatalf("expected not-found error envelope, got %+v", env)
	}
}
