package handlers

import (
	"context"
	"net/http"
	"sync"

	"printer_monitor/internal/models"
	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	issueToken  string
	issueErr    error
	parseID     int64
	parseErr    error
	adminKeyErr error

	lastIssuePrinter int64
	lastParseToken   string
	lastAdminKey     string
}

func (m *mockAuth) IssueToken(printerID int64) (string, error) {
	m.lastIssuePrinter = printerID
	return m.issueToken, m.issueErr
}
func (m *mockAuth) ParseToken(token string) (int64, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) CheckAdminKey(key string) error {
	m.lastAdminKey = key
	return m.adminKeyErr
}

type mockTracker struct {
	err         error
	calls       int
	lastPrinter int64
	lastSnap    models.Snapshot
}

func (m *mockTracker) Update(ctx context.Context, printerID int64, snap models.Snapshot) error {
	m.calls++
	m.lastPrinter = printerID
	m.lastSnap = snap
	return m.err
}
func (m *mockTracker) Close(ctx context.Context) error {
	return nil
}

type mockMonitoring struct {
	mu          sync.Mutex
	trackers    []models.HeaterTracker
	err         error
	lastPrinter int64
}

func (m *mockMonitoring) ListTrackers(ctx context.Context, printerID int64) ([]models.HeaterTracker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPrinter = printerID
	return m.trackers, m.err
}

type mockEventLog struct {
	resp       []models.HeaterEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.HeaterEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
