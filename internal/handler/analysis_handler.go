package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docanalyzer/internal/export"
	"docanalyzer/internal/service"
)

// AnalysisHandler handles analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Request handles POST /api/v1/orders/:id/analysis
// @Summary Start analysis
// @Description Queue one analysis per uploaded document. Processing happens in the background.
// @Tags analyses
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 202 {object} Response{data=[]domain.Analysis} "Analyses accepted"
// @Failure 400 {object} ErrorResponseBody "Order has no documents"
// @Failure 402 {object} ErrorResponseBody "Order not paid"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Failure 409 {object} ErrorResponseBody "Analysis already in progress"
// @Failure 503 {object} ErrorResponseBody "No analysis provider configured"
// @Security BearerAuth
// @Router /orders/{id}/analysis [post]
func (h *AnalysisHandler) Request(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	analyses, err := h.analysisService.RequestAnalysis(c.Request.Context(), caller, orderID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, analyses)
}

// ListByOrder handles GET /api/v1/orders/:id/analysis
// @Summary List order analyses
// @Tags analyses
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} Response{data=[]domain.Analysis} "Analyses"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Security BearerAuth
// @Router /orders/{id}/analysis [get]
func (h *AnalysisHandler) ListByOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	analyses, err := h.analysisService.ListByOrder(c.Request.Context(), caller, orderID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, analyses)
}

// GetByID handles GET /api/v1/analyses/:id
// @Summary Get an analysis
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID (UUID)"
// @Success 200 {object} Response{data=domain.Analysis} "Analysis"
// @Failure 404 {object} ErrorResponseBody "Analysis not found"
// @Security BearerAuth
// @Router /analyses/{id} [get]
func (h *AnalysisHandler) GetByID(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	analysisID, ok := parseID(c, "id")
	if !ok {
		return
	}

	analysis, err := h.analysisService.GetByID(c.Request.Context(), caller, analysisID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, analysis)
}

// Retry handles POST /api/v1/analyses/:id/retry
// @Summary Retry a failed analysis
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID (UUID)"
// @Success 202 {object} Response{data=domain.Analysis} "Retry accepted"
// @Failure 404 {object} ErrorResponseBody "Analysis not found"
// @Failure 409 {object} ErrorResponseBody "Analysis is not failed"
// @Security BearerAuth
// @Router /analyses/{id}/retry [post]
func (h *AnalysisHandler) Retry(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	analysisID, ok := parseID(c, "id")
	if !ok {
		return
	}

	analysis, err := h.analysisService.Retry(c.Request.Context(), caller, analysisID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, analysis)
}

// Export handles GET /api/v1/orders/:id/analysis/export?format=csv|xlsx
// @Summary Export analyses
// @Description Download the order's completed analyses as CSV or XLSX
// @Tags analyses
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Order ID (UUID)"
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Security BearerAuth
// @Router /orders/{id}/analysis/export [get]
func (h *AnalysisHandler) Export(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	file, err := h.analysisService.Export(c.Request.Context(), caller, orderID, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
