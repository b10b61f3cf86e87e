package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/service"
)

// maxWebhookBody caps the webhook payload read into memory.
const maxWebhookBody = 64 << 10

// PaymentHandler handles payment and payment webhook endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateIntent handles POST /api/v1/orders/:id/payment-intent
// @Summary Start payment
// @Description Create a card payment intent for the order price
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Param request body CreatePaymentRequest false "Optional amount check"
// @Success 200 {object} Response{data=service.PaymentIntentResult} "Client secret"
// @Failure 400 {object} ErrorResponseBody "Amount mismatch"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Failure 409 {object} ErrorResponseBody "Order already paid or cancelled"
// @Failure 503 {object} ErrorResponseBody "Payments not configured"
// @Security BearerAuth
// @Router /orders/{id}/payment-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input service.CreatePaymentInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	result, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), caller, orderID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// StripeWebhook handles POST /api/v1/webhooks/stripe
// @Summary Stripe webhook
// @Description Signed payment events. Replayed events are acknowledged without effect.
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} Response "Event processed"
// @Failure 400 {object} ErrorResponseBody "Invalid signature or payload"
// @Failure 503 {object} ErrorResponseBody "Payments not configured"
// @Router /webhooks/stripe [post]
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "failed to read request body")
		return
	}

	err = h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		RespondOK(c, gin.H{"received": true})
	case errors.Is(err, domain.ErrInvalidSignature), errors.Is(err, domain.ErrPaymentUnavailable):
		HandleError(c, err)
	default:
		// A 5xx makes the processor redeliver the event later.
		log.Error().Err(err).Msg("handler.PaymentHandler.StripeWebhook: processing failed")
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "webhook processing failed")
	}
}
