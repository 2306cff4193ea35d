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
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/checkout"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/stripe"
	"github.com/jhoicas/restaurante-api/pkg/config"
)

const whsec = "whsec_test"

func newGateway(t *testing.T, handler http.HandlerFunc) *stripe.Gateway {
	t.Helper()
	cfg := config.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: whsec,
		SuccessURL:    "http://localhost/ok?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "http://localhost/cart",
	}
	if handler == nil {
		return stripe.NewGateway(cfg, nil)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		URL:               stripego.String(srv.URL),
		MaxNetworkRetries: stripego.Int64(0),
	})
	return stripe.NewGateway(cfg, &stripego.Backends{API: backend, Connect: backend, Uploads: backend})
}

func signed(t *testing.T, evt map[string]any) (payload []byte, header string) {
	t.Helper()
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   raw,
		Secret:    whsec,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}

func TestParseWebhook_SesionCompletada(t *testing.T) {
	g := newGateway(t, nil)
	payload, header := signed(t, map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   ports.WebhookSessionCompleted,
		"data": map[string]any{"object": map[string]any{
			"id":             "cs_test_1",
			"object":         "checkout.session",
			"status":         "complete",
			"payment_status": "paid",
			"payment_intent": "pi_1",
		}},
	})

	evt, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	require.NotNil(t, evt.Session)
	assert.Equal(t, "cs_test_1", evt.Session.ID)
	assert.Equal(t, checkout.SessionComplete, evt.Session.Status)
	assert.Equal(t, checkout.PaymentPaid, evt.Session.PaymentStatus)
	assert.Equal(t, "pi_1", evt.Session.PaymentIntentID)
	assert.False(t, evt.Session.AsyncFailed)
}

func TestParseWebhook_PagoAsincronoFallido(t *testing.T) {
	g := newGateway(t, nil)
	payload, header := signed(t, map[string]any{
		"id":   "evt_2",
		"type": ports.WebhookAsyncPaymentFailed,
		"data": map[string]any{"object": map[string]any{
			"id": "cs_test_2", "status": "complete", "payment_status": "unpaid",
		}},
	})

	evt, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.True(t, evt.Session.AsyncFailed)
	assert.NotEmpty(t, evt.Session.FailureReason)
}

func TestParseWebhook_OtroEventoSinSesion(t *testing.T) {
	g := newGateway(t, nil)
	payload, header := signed(t, map[string]any{
		"id": "evt_3", "type": "charge.refunded", "data": map[string]any{"object": map[string]any{}},
	})

	evt, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", evt.Type)
	assert.Nil(t, evt.Session)
}

func TestParseWebhook_FirmaInvalida(t *testing.T) {
	g := newGateway(t, nil)
	payload, _ := signed(t, map[string]any{"id": "evt_4", "type": ports.WebhookSessionCompleted})

	_, err := g.ParseWebhook(payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSession_ErrorDelProveedor(t *testing.T) {
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid currency: xyz"}}`))
	})

	_, err := g.CreateSession(context.Background(), ports.CheckoutRequest{
		OrderID:  "ord-1",
		Currency: "xyz",
		Lines:    []ports.CheckoutLine{{Name: "Pizza", UnitAmount: 500, Quantity: 2}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Invalid currency: xyz", ue.Message)
}

func TestCreateSession_EnviaLineasEIdempotencia(t *testing.T) {
	var got *http.Request
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_9","object":"checkout.session","status":"open","payment_status":"unpaid","url":"https://checkout.stripe.com/c/pay/cs_test_9"}`))
	})

	s, err := g.CreateSession(context.Background(), ports.CheckoutRequest{
		OrderID:     "ord-9",
		OrderNumber: 1009,
		Currency:    "usd",
		Lines:       []ports.CheckoutLine{{Name: "Pizza", UnitAmount: 500, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", s.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_9", s.URL)

	require.NotNil(t, got)
	assert.Equal(t, "ord-9", got.Header.Get("Idempotency-Key"))
	assert.Equal(t, "500", got.PostForm.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", got.PostForm.Get("line_items[0][quantity]"))
	assert.Equal(t, "ord-9", got.PostForm.Get("metadata[order_id]"))
}
