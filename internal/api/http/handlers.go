package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/furniture-mes/scheduling-service/internal/application"
	"github.com/furniture-mes/scheduling-service/pkg/api"
	"github.com/furniture-mes/scheduling-service/pkg/logging"
	"github.com/furniture-mes/scheduling-service/pkg/middleware"
)

// Handlers contains HTTP handlers for scheduling endpoints
type Handlers struct {
	scheduler  *application.SchedulingApplicationService
	intake     *application.IntakeApplicationService
	analyzer   *application.AnalyzerApplicationService
	forecaster *application.ForecasterApplicationService
	logger     *logging.Logger
}

// NewHandlers creates new HTTP handlers
func NewHandlers(
	scheduler *application.SchedulingApplicationService,
	intake *application.IntakeApplicationService,
	analyzer *application.AnalyzerApplicationService,
	forecaster *application.ForecasterApplicationService,
	logger *logging.Logger,
) *Handlers {
	return &Handlers{
		scheduler:  scheduler,
		intake:     intake,
		analyzer:   analyzer,
		forecaster: forecaster,
		logger:     logger,
	}
}

// StartProduction handles POST /api/v1/productions
func (h *Handlers) StartProduction() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		var req application.StartProductionRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		result, err := h.scheduler.StartProduction(c.Request.Context(), application.StartProductionCommand{
			OrderID:   req.OrderID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Priority:  req.Priority,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

// CreateBatch handles POST /api/v1/productions/batch
func (h *Handlers) CreateBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		var req application.CreateBatchRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		orders := make([]application.BatchOrderInput, 0, len(req.Orders))
		for _, order := range req.Orders {
			orders = append(orders, application.BatchOrderInput{
				OrderID:  order.OrderID,
				Quantity: order.Quantity,
			})
		}

		result, err := h.scheduler.CreateBatch(c.Request.Context(), application.CreateBatchCommand{
			ProductID: req.ProductID,
			Orders:    orders,
			Priority:  req.Priority,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

// GetProduction handles GET /api/v1/productions/:productionId
func (h *Handlers) GetProduction() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		result, err := h.scheduler.GetProduction(c.Request.Context(), application.GetProductionQuery{
			ProductionID: c.Param("productionId"),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// GetProductionByBatch handles GET /api/v1/productions/batch/:batchNumber
func (h *Handlers) GetProductionByBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		result, err := h.scheduler.GetProductionByBatch(c.Request.Context(), application.GetProductionByBatchQuery{
			BatchNumber: c.Param("batchNumber"),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// GetProductionByOrder handles GET /api/v1/productions/order/:orderId
func (h *Handlers) GetProductionByOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		result, err := h.scheduler.GetProductionByOrder(c.Request.Context(), application.GetProductionByOrderQuery{
			OrderID: c.Param("orderId"),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// ListProductions handles GET /api/v1/productions
func (h *Handlers) ListProductions() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		listReq := api.ParseListRequest(c, "createdAt")
		query := application.ListProductionsQuery{
			Status: listReq.Status,
			Page:   listReq.Pagination.Page,
			Limit:  listReq.Pagination.PageSize,
			SortBy: listReq.Sort.Field,
		}
		if listReq.Sort.Order == api.SortAsc {
			query.Order = "asc"
		}

		items, total, err := h.scheduler.ListProductions(c.Request.Context(), query)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, api.NewPageResponse(items, listReq.Pagination.Page, listReq.Pagination.PageSize, total))
	}
}

// AdvanceStage handles PATCH /api/v1/productions/:productionId/stage
func (h *Handlers) AdvanceStage() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		result, err := h.scheduler.AdvanceStage(c.Request.Context(), application.AdvanceStageCommand{
			ProductionID: c.Param("productionId"),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// ChangePriority handles PATCH /api/v1/productions/:productionId/priority
func (h *Handlers) ChangePriority() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		var req application.ChangePriorityRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		result, err := h.scheduler.ChangePriority(c.Request.Context(), application.ChangePriorityCommand{
			ProductionID: c.Param("productionId"),
			Priority:     req.Priority,
			Note:         req.Note,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// CancelProduction handles POST /api/v1/productions/:productionId/cancel
func (h *Handlers) CancelProduction() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		var req application.CancelProductionRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := h.scheduler.CancelProduction(c.Request.Context(), application.CancelProductionCommand{
			ProductionID: c.Param("productionId"),
			Reason:       req.Reason,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// ListReadyOrders handles GET /api/v1/orders/ready
func (h *Handlers) ListReadyOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		limit := 0
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
				limit = l
			}
		}

		result, err := h.intake.ListReadyOrders(c.Request.Context(), limit)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": result, "count": len(result)})
	}
}

// GetWorkload handles GET /api/v1/analytics/workload
func (h *Handlers) GetWorkload() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		result, err := h.analyzer.GetWorkloadReport(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// GetSuggestions handles GET /api/v1/analytics/suggestions
func (h *Handlers) GetSuggestions() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		result, err := h.analyzer.GetSuggestions(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"suggestions": result})
	}
}

// GetCapacityReport handles GET /api/v1/analytics/capacity
func (h *Handlers) GetCapacityReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		result, err := h.analyzer.GetCapacityReport(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// GetForecast handles GET /api/v1/analytics/forecast
func (h *Handlers) GetForecast() gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, h.logger.Logger)

		lookaheadDays, _ := strconv.Atoi(c.DefaultQuery("lookaheadDays", "0"))

		result, err := h.forecaster.GetForecast(c.Request.Context(), lookaheadDays)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
