package handler

import (
	"github.com/gin-gonic/gin"

	"docanalyzer/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats handles GET /api/v1/stats
// @Summary Get dashboard statistics
// @Description Order, spend and analysis totals for the current user
// @Tags stats
// @Produce json
// @Success 200 {object} Response{data=domain.Stats} "Aggregate statistics"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), caller.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}
