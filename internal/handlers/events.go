package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errListEvents  = "failed to load events"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List heater events
// @Description  Filter fired events by heater, kind and date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is end of day inclusive.
// @Tags         events
// @Produce      json
// @Param        id      path    int     true   "Printer id"
// @Param        from    query   string  false  "Start of range"  example(2025-08-01)
// @Param        to      query   string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        kind    query   string  false  "Event kind"  Enums(target reached,cooled down)
// @Param        heater  query   string  false  "Heater name"  example(tool0)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/printers/{id}/events [get]
// @Security     BearerAuth
func (h *Handler) listEvents(c *gin.Context) {
	ctx := c.Request.Context()
	filter := service.LogFilter{
		PrinterID: c.GetInt64(ctxPathID),
		Heater:    c.Query("heater"),
		Kind:      c.Query("kind"),
	}
	var err error
	if qs := c.Query("from"); qs != "" {
		filter.From, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		filter.To, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			filter.To = filter.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	events, err := h.services.EventLog.List(ctx, filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errListEvents, "events_list_failed", err,
			"printer_id", filter.PrinterID, "from", filter.From, "to", filter.To, "kind", filter.Kind)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q, expected RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}
