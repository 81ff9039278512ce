package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxPrinterID = "printerId"
	ctxPathID    = "pathPrinterId"
)

// printerTokenMiddleware resolves the bearer token to the printer it was issued for.
func (h *Handler) printerTokenMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	printerID, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(ctxPrinterID, printerID)
	c.Next()
}

// printerScopeMiddleware rejects requests for a printer other than the token's.
func (h *Handler) printerScopeMiddleware(c *gin.Context) {
	pathID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || pathID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid printer id"})
		return
	}
	if c.GetInt64(ctxPrinterID) != pathID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": service.ErrPrinterMismatch.Error()})
		return
	}
	c.Set(ctxPathID, pathID)
	c.Next()
}
