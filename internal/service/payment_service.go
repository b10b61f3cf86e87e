package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

// CreatePaymentInput is the DTO for starting a payment. Amount is optional;
// when given it must equal the order price.
type CreatePaymentInput struct {
	AmountCents *int64 `json:"amount"`
}

// PaymentIntentResult is returned to the client to confirm the payment.
type PaymentIntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	AmountCents     int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// PaymentService defines the payment contract.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, caller Caller, orderID uuid.UUID, input CreatePaymentInput) (*PaymentIntentResult, error)
	// HandleWebhook verifies and applies a payment processor event. Replayed
	// events are acknowledged without side effects.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	gateway   port.PaymentGateway
	orderRepo port.OrderRepository
	userRepo  port.UserRepository
	eventRepo port.PaymentEventRepository
	auditRepo port.OrderAuditRepository
}

// NewPaymentService creates a new PaymentService. gateway may be nil when
// payments are not configured.
func NewPaymentService(
	gateway port.PaymentGateway,
	orderRepo port.OrderRepository,
	userRepo port.UserRepository,
	eventRepo port.PaymentEventRepository,
	auditRepo port.OrderAuditRepository,
) PaymentService {
	return &paymentService{
		gateway:   gateway,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		auditRepo: auditRepo,
	}
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, caller Caller, orderID uuid.UUID, input CreatePaymentInput) (*PaymentIntentResult, error) {
	if s.gateway == nil {
		return nil, domain.ErrPaymentUnavailable
	}
	order, err := loadOrder(ctx, s.orderRepo, caller, orderID, false)
	if err != nil {
		return nil, err
	}
	switch {
	case order.Status == domain.OrderStatusCancelled:
		return nil, domain.ErrOrderCancelled
	case order.IsPaid():
		return nil, domain.ErrOrderAlreadyPaid
	case input.AmountCents != nil && *input.AmountCents != order.PriceCents:
		return nil, domain.ErrAmountMismatch
	}

	email := caller.Email
	if email == "" {
		if user, err := s.userRepo.GetByID(ctx, caller.UserID); err == nil {
			email = user.Email
		}
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, port.PaymentIntentInput{
		OrderID:     order.ID.String(),
		AmountCents: order.PriceCents,
		Currency:    order.Currency,
		Description: order.Title,
		Email:       email,
	})
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}

	if err := s.orderRepo.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, fmt.Errorf("saving payment intent: %w", err)
	}
	recordAudit(ctx, s.auditRepo, order.ID, &caller.UserID, domain.AuditPaymentIntent, map[string]interface{}{
		"payment_intent_id": intent.ID, "amount_cents": intent.AmountCents,
	})
	log.Info().Str("order_id", order.ID.String()).Str("payment_intent_id", intent.ID).
		Int64("amount_cents", intent.AmountCents).Msg("service.paymentService.CreatePaymentIntent: intent created")

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		AmountCents:     intent.AmountCents,
		Currency:        intent.Currency,
	}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return domain.ErrPaymentUnavailable
	}
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.Type == port.PaymentIgnored {
		log.Debug().Str("event_id", event.ID).Str("type", event.RawType).
			Msg("service.paymentService.HandleWebhook: ignoring event")
		return nil
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		log.Warn().Str("event_id", event.ID).Str("order_id", event.OrderID).
			Msg("service.paymentService.HandleWebhook: event references an invalid order id")
		return nil
	}

	isNew, err := s.eventRepo.Record(ctx, &domain.PaymentEvent{
		ID:          event.ID,
		Type:        event.RawType,
		OrderID:     &orderID,
		ProcessedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("recording payment event: %w", err)
	}
	if !isNew {
		log.Info().Str("event_id", event.ID).Msg("service.paymentService.HandleWebhook: duplicate event skipped")
		return nil
	}

	if err := s.apply(ctx, orderID, event); err != nil {
		if fErr := s.eventRepo.Forget(ctx, event.ID); fErr != nil {
			log.Error().Err(fErr).Str("event_id", event.ID).
				Msg("service.paymentService.HandleWebhook: failed to release event after error")
		}
		return err
	}
	return nil
}

func (s *paymentService) apply(ctx context.Context, orderID uuid.UUID, event *port.WebhookEvent) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("event_id", event.ID).Str("order_id", orderID.String()).
				Msg("service.paymentService.apply: order not found")
			return nil
		}
		return fmt.Errorf("loading order: %w", err)
	}

	switch event.Type {
	case port.PaymentFailed:
		recordAudit(ctx, s.auditRepo, order.ID, nil, domain.AuditPaymentFailed, map[string]interface{}{
			"event_id": event.ID, "payment_intent_id": event.PaymentIntentID, "message": event.FailureMessage,
		})
		log.Warn().Str("order_id", order.ID.String()).Str("reason", event.FailureMessage).
			Msg("service.paymentService.apply: payment failed")
		return nil

	case port.PaymentSucceeded:
		if event.AmountCents != order.PriceCents {
			recordAudit(ctx, s.auditRepo, order.ID, nil, domain.AuditPaymentFailed, map[string]interface{}{
				"event_id": event.ID, "payment_intent_id": event.PaymentIntentID,
				"amount_cents": event.AmountCents, "expected_cents": order.PriceCents,
				"message": domain.ErrAmountMismatch.Error(),
			})
			log.Error().Str("order_id", order.ID.String()).Int64("amount_cents", event.AmountCents).
				Int64("expected_cents", order.PriceCents).Msg("service.paymentService.apply: amount mismatch, order not marked paid")
			return nil
		}

		paid, err := s.orderRepo.MarkPaid(ctx, order.ID, event.PaymentIntentID, time.Now().UTC())
		switch {
		case errors.Is(err, domain.ErrOrderAlreadyPaid), errors.Is(err, domain.ErrOrderCancelled):
			log.Warn().Err(err).Str("order_id", order.ID.String()).
				Msg("service.paymentService.apply: payment not applied")
			return nil
		case err != nil:
			return fmt.Errorf("marking order paid: %w", err)
		}

		recordAudit(ctx, s.auditRepo, paid.ID, nil, domain.AuditPaymentSucceeded, map[string]interface{}{
			"event_id": event.ID, "payment_intent_id": event.PaymentIntentID,
			"amount_cents": event.AmountCents, "status": paid.Status,
		})
		log.Info().Str("order_id", paid.ID.String()).Str("status", string(paid.Status)).
			Msg("service.paymentService.apply: order paid")
		return nil
	}
	return nil
}
