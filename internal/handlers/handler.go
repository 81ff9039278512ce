package handlers

import (
	"printer_monitor/internal/logger"
	"printer_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// live tracker stream, authenticated by ?token=
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/printer-token", h.issuePrinterToken)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.printerTokenMiddleware)
	{
		h.registerPrinterRoutes(api)
	}
}

func (h *Handler) registerPrinterRoutes(api *gin.RouterGroup) {
	printer := api.Group("/printers/:id", h.printerScopeMiddleware)
	{
		// Body example: {"tool0":{"actual":201.3,"target":210,"offset":0},"bed":{"actual":24.8,"target":null}}
		printer.POST("/heaters", h.updateHeaters)
		printer.GET("/trackers", h.listTrackers)
		printer.GET("/events", h.listEvents)
	}
}
