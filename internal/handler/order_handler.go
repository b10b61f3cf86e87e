package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/middleware"
	"docanalyzer/internal/service"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /api/v1/orders
// @Summary Create an order
// @Description Create an order. The price is computed from the analysis type and priority. The analysis language defaults to the profile language, then Accept-Language.
// @Tags orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order details"
// @Param Accept-Language header string false "Fallback analysis language"
// @Success 201 {object} Response{data=domain.Order} "Order created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Email not verified"
// @Security BearerAuth
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), caller, input, middleware.GetLanguage(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, order)
}

// List handles GET /api/v1/orders
// @Summary List own orders
// @Tags orders
// @Produce json
// @Param status query string false "Filter by status"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Order,meta=PagMeta} "Orders"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	orders, total, err := h.orderService.List(c.Request.Context(), caller, domain.OrderStatus(c.Query("status")), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, orders, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/orders/:id
// @Summary Get an order
// @Description Order details including its documents
// @Tags orders
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} Response{data=domain.OrderDetail} "Order"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), caller, orderID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, order)
}

// Update handles PUT /api/v1/orders/:id
// @Summary Update an order
// @Description Only pending, unpaid orders can be edited. The price is recomputed.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Param request body UpdateOrderRequest true "Fields to change"
// @Success 200 {object} Response{data=domain.Order} "Updated order"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Failure 409 {object} ErrorResponseBody "Order not editable"
// @Security BearerAuth
// @Router /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input service.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), caller, orderID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, order)
}

// Cancel handles DELETE /api/v1/orders/:id
// @Summary Cancel an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} Response{data=domain.Order} "Cancelled order"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Failure 409 {object} ErrorResponseBody "Order can no longer be cancelled"
// @Security BearerAuth
// @Router /orders/{id} [delete]
func (h *OrderHandler) Cancel(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), caller, orderID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, order)
}

// History handles GET /api/v1/orders/:id/history
// @Summary Order audit trail
// @Tags orders
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.OrderAudit,meta=PagMeta} "Audit entries"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Security BearerAuth
// @Router /orders/{id}/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	entries, total, err := h.orderService.History(c.Request.Context(), caller, orderID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Pricing handles GET /api/v1/pricing
// @Summary Price list
// @Tags orders
// @Produce json
// @Success 200 {object} Response{data=service.PriceList} "Prices in minor units"
// @Router /pricing [get]
func (h *OrderHandler) Pricing(c *gin.Context) {
	RespondOK(c, h.orderService.Pricing())
}
