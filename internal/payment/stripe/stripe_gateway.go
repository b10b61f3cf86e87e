package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	"docanalyzer/internal/port"
)

// Webhook event types the application acts on.
const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
	eventCheckoutComplete = "checkout.session.completed"
)

const orderIDMetadataKey = "orderId"

// legacyOrderIDMetadataKey is used by checkout sessions created outside the API.
const legacyOrderIDMetadataKey = "order_id"

func orderIDFromMetadata(md map[string]string) string {
	if id := md[orderIDMetadataKey]; id != "" {
		return id
	}
	return md[legacyOrderIDMetadataKey]
}

type gateway struct {
	api           *client.API
	webhookSecret string
	currency      string
}

// NewGateway creates a Stripe-backed PaymentGateway.
func NewGateway(cfg config.StripeConfig) port.PaymentGateway {
	return NewGatewayWithBackends(cfg, nil)
}

// NewGatewayWithBackends creates a gateway with custom Stripe backends (for testing).
func NewGatewayWithBackends(cfg config.StripeConfig, backends *stripe.Backends) port.PaymentGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	return &gateway{api: api, webhookSecret: cfg.WebhookSecret, currency: currency}
}

func (g *gateway) CreatePaymentIntent(ctx context.Context, input port.PaymentIntentInput) (*port.PaymentIntent, error) {
	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = g.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(input.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if input.Description != "" {
		params.Description = stripe.String(input.Description)
	}
	if input.Email != "" {
		params.ReceiptEmail = stripe.String(input.Email)
	}
	params.AddMetadata(orderIDMetadataKey, input.OrderID)
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}

	return &port.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps the event onto
// a WebhookEvent. Events the application does not handle come back as
// PaymentIgnored.
func (g *gateway) ParseWebhook(payload []byte, signatureHeader string) (*port.WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, domain.ErrPaymentUnavailable
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := &port.WebhookEvent{
		ID:      event.ID,
		RawType: string(event.Type),
		Type:    port.PaymentIgnored,
	}
	if event.Data == nil {
		return out, nil
	}

	switch string(event.Type) {
	case eventPaymentSucceeded, eventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decoding payment intent: %w", err)
		}
		out.PaymentIntentID = pi.ID
		out.OrderID = orderIDFromMetadata(pi.Metadata)
		out.AmountCents = pi.Amount
		if string(event.Type) == eventPaymentSucceeded {
			out.Type = port.PaymentSucceeded
		} else {
			out.Type = port.PaymentFailed
			if pi.LastPaymentError != nil {
				out.FailureMessage = pi.LastPaymentError.Msg
			}
		}

	case eventCheckoutComplete:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decoding checkout session: %w", err)
		}
		if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			return out, nil
		}
		out.Type = port.PaymentSucceeded
		out.OrderID = orderIDFromMetadata(cs.Metadata)
		if out.OrderID == "" {
			out.OrderID = cs.ClientReferenceID
		}
		out.AmountCents = cs.AmountTotal
		if cs.PaymentIntent != nil {
			out.PaymentIntentID = cs.PaymentIntent.ID
		}
		if out.PaymentIntentID == "" {
			out.PaymentIntentID = cs.ID
		}
	}

	// Payments this API did not start (subscriptions, dashboard charges) carry no order.
	if out.Type != port.PaymentIgnored && out.OrderID == "" {
		log.Info().Str("event_id", out.ID).Str("type", out.RawType).
			Msg("stripe.gateway.ParseWebhook: event has no order id, ignoring")
		out.Type = port.PaymentIgnored
	}
	return out, nil
}
