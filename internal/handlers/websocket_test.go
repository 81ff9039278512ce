package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"printer_monitor/internal/models"
	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func wsServer(t *testing.T, s *service.Service) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, params url.Values) string {
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = params.Encode()
	return u.String()
}

func TestWebSocket_TrackerStream_InitialAndPeriodic(t *testing.T) {
	mon := &mockMonitoring{trackers: []models.HeaterTracker{
		{ID: 1, PrinterID: 4, Name: "bed", Target: 60, Reached: true},
	}}
	srv := wsServer(t, &service.Service{Authorization: &mockAuth{parseID: 4}, Monitoring: mon})

	params := url.Values{"printer_id": {"4"}, "token": {"tok"}, "interval_ms": {"20"}}
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(wsURL(srv, params), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != wsTypeTrackers || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var trackers []models.HeaterTracker
	if err := json.Unmarshal(env.Data, &trackers); err != nil {
		t.Fatalf("unmarshal trackers: %v", err)
	}
	if len(trackers) != 1 || trackers[0].Name != "bed" || !trackers[0].Reached {
		t.Fatalf("unexpected trackers: %+v", trackers)
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != wsTypeTrackers {
		t.Fatalf("expected type=trackers, got %+v", env)
	}
}

func TestWebSocket_RejectsBeforeUpgrade(t *testing.T) {
	cases := []struct {
		name     string
		params   url.Values
		parseErr error
		want     int
	}{
		{"missing printer", url.Values{"token": {"tok"}}, nil, http.StatusBadRequest},
		{"missing token", url.Values{"printer_id": {"4"}}, nil, http.StatusUnauthorized},
		{"bad token", url.Values{"printer_id": {"4"}, "token": {"x"}}, errors.New("expired"), http.StatusUnauthorized},
		{"other printer", url.Values{"printer_id": {"5"}, "token": {"tok"}}, nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{parseID: 4, parseErr: tc.parseErr}
			srv := wsServer(t, &service.Service{Authorization: auth, Monitoring: &mockMonitoring{}})

			dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
			_, resp, err := dialer.Dial(wsURL(srv, tc.params), nil)
			if err == nil {
				t.Fatal("expected handshake failure")
			}
			if resp == nil || resp.StatusCode != tc.want {
				t.Fatalf("expected status %d, got %+v", tc.want, resp)
			}
		})
	}
}

func TestWebSocket_InitialListError_SendsErrorAndCloses(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("boom")}
	srv := wsServer(t, &service.Service{Authorization: &mockAuth{parseID: 4}, Monitoring: mon})

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	header := http.Header{"Authorization": {"Bearer tok"}}
	conn, _, err := dialer.Dial(wsURL(srv, url.Values{"printer_id": {"4"}}), header)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read error envelope: %v", err)
	}
	if env.Type != "error" || env.Error != errListTrackers {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
