package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all scheduling routes
func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	// Production management routes
	productionAPI := router.Group("/api/v1/productions")
	{
		productionAPI.POST("", handlers.StartProduction())
		productionAPI.POST("/batch", handlers.CreateBatch())
		productionAPI.GET("", handlers.ListProductions())
		productionAPI.GET("/:productionId", handlers.GetProduction())
		productionAPI.GET("/batch/:batchNumber", handlers.GetProductionByBatch())
		productionAPI.GET("/order/:orderId", handlers.GetProductionByOrder())
		productionAPI.PATCH("/:productionId/stage", handlers.AdvanceStage())
		productionAPI.PATCH("/:productionId/priority", handlers.ChangePriority())
		productionAPI.POST("/:productionId/cancel", handlers.CancelProduction())
	}

	// Order intake routes
	orderAPI := router.Group("/api/v1/orders")
	{
		orderAPI.GET("/ready", handlers.ListReadyOrders())
	}

	// Workload and capacity analytics routes
	analyticsAPI := router.Group("/api/v1/analytics")
	{
		analyticsAPI.GET("/workload", handlers.GetWorkload())
		analyticsAPI.GET("/suggestions", handlers.GetSuggestions())
		analyticsAPI.GET("/capacity", handlers.GetCapacityReport())
		analyticsAPI.GET("/forecast", handlers.GetForecast())
	}
}
