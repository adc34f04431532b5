package handlers

import (
	"github.com/Scharxi/tasmo-admin-sub001/internal/logger"
	"github.com/Scharxi/tasmo-admin-sub001/internal/service"

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

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket push channel on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerDeviceRoutes(api)
		h.registerCategoryRoutes(api)
		h.registerWorkflowRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		devices.GET("", h.listDevices)
		devices.POST("", h.createDevice)
		devices.GET("/:id", h.getDevice)
		devices.PUT("/:id", h.updateDevice)
		devices.DELETE("/:id", h.deleteDevice)

		devices.POST("/:id/toggle", h.toggleDevice)
		// Body example: {"state":"ON"}
		devices.POST("/:id/power", h.setDevicePower)

		devices.GET("/:id/metrics", h.deviceMetrics)
		devices.GET("/:id/history", h.deviceHistory)
	}
}

func (h *Handler) registerCategoryRoutes(api *gin.RouterGroup) {
	categories := api.Group("/categories")
	{
		categories.GET("", h.listCategories)
		categories.POST("", h.createCategory)
		categories.PUT("/:id", h.updateCategory)
		categories.DELETE("/:id", h.deleteCategory)
	}
}

func (h *Handler) registerWorkflowRoutes(api *gin.RouterGroup) {
	workflows := api.Group("/workflows")
	{
		workflows.GET("", h.listWorkflows)
		workflows.POST("", h.createWorkflow)
		workflows.GET("/:id", h.getWorkflow)
		workflows.PUT("/:id", h.updateWorkflow)
		workflows.DELETE("/:id", h.deleteWorkflow)

		workflows.POST("/:id/execute", h.executeWorkflow)
		workflows.GET("/:id/executions", h.listExecutions)
	}
}
