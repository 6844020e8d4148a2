package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/statistics/store-summary",
		middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff), h.GetStoreSummary)
}

// GetStoreSummary returns the store dashboard aggregates
// @Summary      Get store summary
// @Description  Returns item counts, total quantity and value, pending adjustments, and breakdowns by quality, source and order status
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.StoreSummaryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/statistics/store-summary [get]
func (h *StatisticsHandler) GetStoreSummary(c *gin.Context) {
	summary, err := h.statisticsService.GetStoreSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
