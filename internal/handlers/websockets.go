package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms

	wsTypeTrackers = "trackers"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	// printer agents and dashboards connect cross-origin; the token gates access
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream tracker state
// @Description  Upgrades to WebSocket and pushes {"type":"trackers","data":[...]} every interval.
// @Tags         heaters
// @Param        printer_id   query  int     true   "Printer id"
// @Param        token        query  string  false  "Printer token (or Authorization: Bearer)"
// @Param        interval     query  string  false  "Push interval, e.g. 2s (max 10s)"
// @Param        interval_ms  query  int     false  "Push interval in ms (max 10000)"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	printerID, ok := h.authorizeStream(c)
	if !ok {
		return
	}
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err, "printer_id", printerID)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	if err := h.sendTrackers(ctx, conn, printerID); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err, "printer_id", printerID)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendTrackers(ctx, conn, printerID); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "printer_id", printerID)
				}
				return
			}
		}
	}
}

// authorizeStream checks the token against ?printer_id before the upgrade.
// Browsers cannot set headers on WebSocket handshakes, hence ?token=.
func (h *Handler) authorizeStream(c *gin.Context) (int64, bool) {
	printerID, err := strconv.ParseInt(c.Query("printer_id"), 10, 64)
	if err != nil || printerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid printer_id"})
		return 0, false
	}

	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return 0, false
	}

	tokenPrinter, err := h.services.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return 0, false
	}
	if tokenPrinter != printerID {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrPrinterMismatch.Error()})
		return 0, false
	}
	return printerID, true
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) sendTrackers(ctx context.Context, conn *websocket.Conn, printerID int64) error {
	trackers, err := h.services.Monitoring.ListTrackers(ctx, printerID)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_list_trackers_failed", "err", err, "printer_id", printerID)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: errListTrackers})
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: wsTypeTrackers, Data: trackers})
}
