package handlers

import (
	"errors"
	"net/http"

	"printer_monitor/internal/models"
	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errUpdateHeaters   = "failed to update heaters"
	errListTrackers    = "failed to load trackers"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// HeaterReadingRequest is an exported model for Swagger docs of one heater in the snapshot.
type HeaterReadingRequest struct {
	// Current temperature in Celsius
	Actual float64 `json:"actual" example:"201.3"`
	// Target temperature in Celsius; null when the heater is idle
	Target *float64 `json:"target" example:"210"`
	// Firmware temperature offset added to target
	Offset float64 `json:"offset,omitempty" example:"0"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Push heater snapshot
// @Description  Reconciles one telemetry poll: creates, updates or deletes trackers and fires events on reach.
// @Tags         heaters
// @Accept       json
// @Produce      json
// @Param        id    path   int                              true  "Printer id"
// @Param        body  body   map[string]HeaterReadingRequest  true  "Heater name to reading"
// @Success      200   {object}  map[string]interface{}  "status, trackers"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/printers/{id}/heaters [post]
// @Security     BearerAuth
func (h *Handler) updateHeaters(c *gin.Context) {
	printerID := c.GetInt64(ctxPathID)

	var snap models.Snapshot
	if ok := h.bindJSONOrBadRequest(c, &snap); !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.services.HeaterTracker.Update(ctx, printerID, snap); err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errUpdateHeaters, "tracker_update_failed", err,
			"printer_id", printerID)
		return
	}

	resp := gin.H{"status": statusOK}
	// best-effort echo of the reconciled state
	if trackers, err := h.services.Monitoring.ListTrackers(ctx, printerID); err == nil {
		resp["trackers"] = trackers
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      List trackers
// @Tags         heaters
// @Produce      json
// @Param        id   path  int  true  "Printer id"
// @Success      200  {object}  map[string]interface{}  "count, trackers"
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/printers/{id}/trackers [get]
// @Security     BearerAuth
func (h *Handler) listTrackers(c *gin.Context) {
	printerID := c.GetInt64(ctxPathID)
	trackers, err := h.services.Monitoring.ListTrackers(c.Request.Context(), printerID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListTrackers, "tracker_list_failed", err,
			"printer_id", printerID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(trackers),
		"trackers": trackers,
	})
}
