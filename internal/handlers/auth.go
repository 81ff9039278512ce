package handlers

import (
	"errors"
	"net/http"

	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const adminKeyHeader = "X-Admin-Key"

type printerTokenRequest struct {
	PrinterID int64 `json:"printer_id" binding:"required,gt=0"`
}

// PrinterTokenRequest is an exported model for Swagger docs of the token payload.
type PrinterTokenRequest struct {
	// Printer the agent reports telemetry for
	PrinterID int64 `json:"printer_id" example:"1"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// @Summary      Issue printer token
// @Description  Mints a JWT a printer agent uses to push telemetry. Requires the admin key.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key  header  string               true  "Admin key"
// @Param        body         body    PrinterTokenRequest  true  "Printer"
// @Success      200  {object}  map[string]string  "token"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /auth/printer-token [post]
func (h *Handler) issuePrinterToken(c *gin.Context) {
	if err := h.services.CheckAdminKey(c.GetHeader(adminKeyHeader)); err != nil {
		if errors.Is(err, service.ErrAdminDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if h.log != nil {
			h.log.Infow("auth_admin_key_rejected", "client_ip", c.ClientIP())
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
		return
	}

	var input printerTokenRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.IssueToken(input.PrinterID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to issue token", "auth_issue_token_failed", err,
			"printer_id", input.PrinterID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
