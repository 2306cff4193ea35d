// Package stripe adaptador de PaymentGateway sobre Stripe Checkout.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/checkout"
	"github.com/jhoicas/restaurante-api/pkg/config"
)

const providerName = "stripe"

var _ ports.PaymentGateway = (*Gateway)(nil)

// Gateway implementa ports.PaymentGateway con Checkout Sessions.
type Gateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewGateway construye el adaptador. backends nil usa los de producción.
func NewGateway(cfg config.StripeConfig, backends *stripe.Backends) *Gateway {
	return &Gateway{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateSession abre una sesión de pago con una línea por producto.
func (g *Gateway) CreateSession(ctx context.Context, req ports.CheckoutRequest) (*checkout.ProviderSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for _, l := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(req.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
				UnitAmount: stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("order_number", fmt.Sprint(req.OrderNumber))
	params.SetIdempotencyKey(req.OrderID)
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, upstream(err)
	}
	return toProviderSession(s), nil
}

// GetSession consulta la sesión expandiendo el payment intent para detectar rechazos.
func (g *Gateway) GetSession(ctx context.Context, sessionID string) (*checkout.ProviderSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("payment_intent")
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == 404 {
			return nil, domain.ErrNotFound
		}
		return nil, upstream(err)
	}
	return toProviderSession(s), nil
}

// ParseWebhook verifica Stripe-Signature y decodifica la sesión del evento.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*ports.WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: STRIPE_WEBHOOK_SECRET vacío", domain.ErrConfig)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: firma de webhook inválida", domain.ErrInvalidInput)
	}

	out := &ports.WebhookEvent{ID: event.ID, Type: string(event.Type)}
	switch out.Type {
	case ports.WebhookSessionCompleted, ports.WebhookSessionExpired,
		ports.WebhookAsyncPaymentSuccess, ports.WebhookAsyncPaymentFailed:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: sesión de webhook ilegible", domain.ErrInvalidInput)
		}
		out.Session = toProviderSession(&s)
		if out.Type == ports.WebhookAsyncPaymentFailed {
			out.Session.AsyncFailed = true
			if out.Session.FailureReason == "" {
				out.Session.FailureReason = "el pago asíncrono fue rechazado"
			}
		}
	}
	return out, nil
}

func toProviderSession(s *stripe.CheckoutSession) *checkout.ProviderSession {
	ps := &checkout.ProviderSession{
		ID:            s.ID,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		URL:           s.URL,
	}
	if pi := s.PaymentIntent; pi != nil {
		ps.PaymentIntentID = pi.ID
		if pi.Status == stripe.PaymentIntentStatusRequiresPaymentMethod && pi.LastPaymentError != nil {
			ps.AsyncFailed = true
			ps.FailureReason = pi.LastPaymentError.Msg
		}
	}
	return ps
}

// upstream traduce el error del SDK conservando el mensaje del proveedor.
func upstream(err error) error {
	msg := err.Error()
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		msg = se.Msg
	}
	return &domain.UpstreamError{Provider: providerName, Message: msg, Err: err}
}
