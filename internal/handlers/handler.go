package handlers

import (
	"hotel_ops/internal/logger"
	"hotel_ops/internal/realtime"
	"hotel_ops/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *realtime.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub *realtime.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metricsMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", h.health)

	h.registerAPIRoutes(router)

	// Listener streams: hub topics and a single device's record.
	router.GET("/ws", h.wsConnect)
	router.GET("/ws/devices/:id", h.deviceIDMiddleware, h.wsDevice)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.deviceIDMiddleware)
	{
		h.registerRoomRoutes(api)
		h.registerDeviceRoutes(api)
		h.registerReportRoutes(api)
		h.registerMaintenanceRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerRoomRoutes(api *gin.RouterGroup) {
	rooms := api.Group("/rooms")
	{
		rooms.GET("", h.listRooms)
		rooms.GET("/:id", h.getRoom)

		rooms.GET("/:id/session", h.getSession)
		rooms.POST("/:id/session/start", h.startSession)
		rooms.POST("/:id/session/pause", h.pauseSession)
		// Body: {"confirm": true}. Without an explicit accept nothing changes.
		rooms.POST("/:id/session/stop", h.stopSession)
		rooms.POST("/:id/session/cancel", h.cancelSession)
		rooms.POST("/:id/session/background", h.backgroundSession)

		rooms.GET("/:id/maintenance", h.maintenanceHistory)
		rooms.POST("/:id/maintenance", h.logMaintenance)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		devices.POST("", h.registerDevice)
		devices.GET("/:id", h.getDevice)
		devices.POST("/:id/availability", h.toggleAvailability)
		devices.POST("/:id/message", h.setDeviceMessage)
	}
	api.POST("/notifications/cleaning-started", h.notifyCleaningStarted)
}

func (h *Handler) registerReportRoutes(api *gin.RouterGroup) {
	reports := api.Group("/reports")
	{
		reports.GET("", h.listReports)
		reports.POST("", h.createReport)
		reports.POST("/:id/resolve", h.resolveReport)
	}
}

func (h *Handler) registerMaintenanceRoutes(api *gin.RouterGroup) {
	m := api.Group("/maintenance")
	{
		m.GET("", h.maintenanceStatus)
		m.POST("/check", h.checkMaintenance)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	api.GET("/cleaning-logs", h.getCleaningLogs)
}
