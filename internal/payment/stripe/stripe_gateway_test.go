package stripe_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"docanalyzer/internal/config"
	"docanalyzer/internal/domain"
	stripegw "docanalyzer/internal/payment/stripe"
	"docanalyzer/internal/port"
)

const testWebhookSecret = "whsec_test_secret"

func signedPayload(t *testing.T, event map[string]interface{}) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func newGateway() port.PaymentGateway {
	return stripegw.NewGateway(config.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		Currency:      "usd",
	})
}

func TestParseWebhook_PaymentSucceeded(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":     "evt_1",
		"object": "event",
		"type":   "payment_intent.succeeded",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       "pi_123",
				"object":   "payment_intent",
				"amount":   2999,
				"metadata": map[string]string{"orderId": "order-1"},
			},
		},
	})

	ev, err := newGateway().ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, port.PaymentSucceeded, ev.Type)
	assert.Equal(t, "order-1", ev.OrderID)
	assert.Equal(t, "pi_123", ev.PaymentIntentID)
	assert.Equal(t, int64(2999), ev.AmountCents)
}

func TestParseWebhook_PaymentFailed(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":   "evt_2",
		"type": "payment_intent.payment_failed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":                 "pi_9",
				"metadata":           map[string]string{"orderId": "order-2"},
				"last_payment_error": map[string]interface{}{"message": "Your card was declined."},
			},
		},
	})

	ev, err := newGateway().ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, port.PaymentFailed, ev.Type)
	assert.Equal(t, "order-2", ev.OrderID)
	assert.Equal(t, "Your card was declined.", ev.FailureMessage)
}

func TestParseWebhook_CheckoutSessionPaid(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":   "evt_3",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "cs_1",
				"payment_status": "paid",
				"amount_total":   1999,
				"payment_intent": "pi_777",
				"metadata":       map[string]string{"orderId": "order-3"},
			},
		},
	})

	ev, err := newGateway().ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, port.PaymentSucceeded, ev.Type)
	assert.Equal(t, "order-3", ev.OrderID)
	assert.Equal(t, "pi_777", ev.PaymentIntentID)
}

func TestParseWebhook_CheckoutSessionUnpaidIgnored(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":   "evt_4",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{"id": "cs_2", "payment_status": "unpaid"},
		},
	})

	ev, err := newGateway().ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, port.PaymentIgnored, ev.Type)
}

func TestParseWebhook_OtherEventIgnored(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":   "evt_5",
		"type": "customer.created",
		"data": map[string]interface{}{"object": map[string]interface{}{"id": "cus_1"}},
	})

	ev, err := newGateway().ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, port.PaymentIgnored, ev.Type)
	assert.Equal(t, "customer.created", ev.RawType)
}

func TestParseWebhook_InvalidSignature(t *testing.T) {
	payload, _ := signedPayload(t, map[string]interface{}{"id": "evt_6", "type": "payment_intent.succeeded"})

	_, err := newGateway().ParseWebhook(payload, "t=1,v1=deadbeef")

	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestParseWebhook_NoSecretConfigured(t *testing.T) {
	gw := stripegw.NewGateway(config.StripeConfig{SecretKey: "sk_test_123"})

	_, err := gw.ParseWebhook([]byte(`{}`), "t=1,v1=x")

	assert.ErrorIs(t, err, domain.ErrPaymentUnavailable)
}

func TestParseWebhook_SucceededWithoutOrderIDIgnored(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":   "evt_7",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{"object": map[string]interface{}{"id": "pi_1", "amount": 500}},
	})

	ev, err := newGateway().ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, port.PaymentIgnored, ev.Type)
	assert.Equal(t, "evt_7", ev.ID)
}

func TestParseWebhook_CheckoutSessionSnakeCaseOrderID(t *testing.T) {
	payload, header := signedPayload(t, map[string]interface{}{
		"id":   "evt_8",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "cs_3",
				"payment_status": "paid",
				"amount_total":   2500,
				"metadata":       map[string]string{"order_id": "order-8"},
			},
		},
	})

	ev, err := newGateway().ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, port.PaymentSucceeded, ev.Type)
	assert.Equal(t, "order-8", ev.OrderID)
	assert.Equal(t, int64(2500), ev.AmountCents)
	assert.Equal(t, "cs_3", ev.PaymentIntentID)
}

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2999", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "order-1", r.PostForm.Get("metadata[orderId]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":2999,"currency":"usd","client_secret":"pi_123_secret_abc","status":"requires_payment_method"}`))
	}))
	defer server.Close()

	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		URL:               stripego.String(server.URL),
		MaxNetworkRetries: stripego.Int64(0),
	})
	gw := stripegw.NewGatewayWithBackends(config.StripeConfig{SecretKey: "sk_test_123", Currency: "usd"},
		&stripego.Backends{API: backend, Connect: backend, Uploads: backend})

	pi, err := gw.CreatePaymentIntent(context.Background(), port.PaymentIntentInput{
		OrderID:     "order-1",
		AmountCents: 2999,
		Description: "Order order-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", pi.ID)
	assert.Equal(t, "pi_123_secret_abc", pi.ClientSecret)
	assert.Equal(t, int64(2999), pi.AmountCents)
	assert.Equal(t, "usd", pi.Currency)
	assert.Equal(t, "requires_payment_method", pi.Status)
}
