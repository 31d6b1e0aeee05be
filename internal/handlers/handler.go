package handlers

import (
	"github.com/vz415/BridgeVentilator/internal/logger"
	"github.com/vz415/BridgeVentilator/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler exposes the control API over gin. Everything past /health and
// /auth requires a bearer token.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes registers the full route tree on a fresh engine.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	auth := router.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}

	api := router.Group("/api/v1", h.userIdMiddleware)
	{
		vent := api.Group("/ventilator")
		{
			vent.POST("/start", h.startVentilation)
			vent.POST("/stop", h.stopVentilation)
			// Body example: {"rate":18,"inspiratory_s":1.2,"tidal_volume_cc":550}
			vent.PUT("/parameters", h.updateParameters)
			vent.GET("/state", h.getState)
		}

		// Body example: {"point":"inhale_end","pulse_us":1150}
		api.Group("/calibration").POST("/", h.calibrate)

		api.Group("/actuator").POST("/pulse", h.setPulse)
		api.Group("/telemetry").GET("/last", h.getLastTelemetry)
		api.Group("/logs").GET("/", h.getLogs)
	}

	// The live state feed shares the HTTP port; /ws upgrades in place.
	router.GET("/ws", h.wsConnect)

	return router
}
