package port

import "context"

// PaymentIntentInput describes a payment to create.
type PaymentIntentInput struct {
	OrderID     string
	AmountCents int64
	Currency    string
	Description string
	Email       string
}

// PaymentIntent is the processor's handle for a payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
}

// PaymentEventType is a normalized webhook event kind.
type PaymentEventType string

const (
	PaymentSucceeded PaymentEventType = "payment_succeeded"
	PaymentFailed    PaymentEventType = "payment_failed"
	PaymentIgnored   PaymentEventType = "ignored"
)

// WebhookEvent is a verified, normalized webhook payload.
type WebhookEvent struct {
	ID              string
	RawType         string
	Type            PaymentEventType
	OrderID         string
	PaymentIntentID string
	AmountCents     int64
	FailureMessage  string
}

// PaymentGateway abstracts the payment processor.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, input PaymentIntentInput) (*PaymentIntent, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
