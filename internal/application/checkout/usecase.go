// Package checkout crea sesiones de pago y concilia su resultado con los pedidos.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/cart"
	domcheckout "github.com/jhoicas/restaurante-api/internal/domain/checkout"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// Origen de una conciliación (etiqueta de métricas y logs).
const (
	SourceWebhook = "webhook"
	SourcePoll    = "poll"
)

// TxRunner ejecuta fn en una transacción con repos atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(orders repository.OrderRepository, products repository.ProductRepository) error) error
}

// Config parámetros del checkout.
type Config struct {
	Currency string
	// StatusTTL cache de session-status mientras el pedido no es terminal.
	StatusTTL time.Duration
	// TerminalStatusTTL cache de session-status para pedidos terminales.
	TerminalStatusTTL time.Duration
}

// Deps dependencias del caso de uso.
type Deps struct {
	Orders    repository.OrderRepository
	Products  repository.ProductRepository
	Customers repository.CustomerRepository
	Tx        TxRunner
	Gateway   ports.PaymentGateway
	Events    ports.EventPublisher
	Metrics   ports.Metrics
	Log       *logger.Logger
}

// UseCase checkout, conciliación por webhook o consulta, y revalidación del carrito.
type UseCase struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	tx        TxRunner
	gateway   ports.PaymentGateway
	events    ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger

	currency    string
	statusTTL   time.Duration
	terminalTTL time.Duration
	statusCache *gocache.Cache
}

// NewUseCase construye el caso de uso. Metrics y Log nil se sustituyen por no-ops.
func NewUseCase(cfg Config, d Deps) *UseCase {
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = 3 * time.Second
	}
	if cfg.TerminalStatusTTL <= 0 {
		cfg.TerminalStatusTTL = 10 * time.Minute
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if d.Metrics == nil {
		d.Metrics = ports.NopMetrics{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &UseCase{
		orders:      d.Orders,
		products:    d.Products,
		customers:   d.Customers,
		tx:          d.Tx,
		gateway:     d.Gateway,
		events:      d.Events,
		metrics:     d.Metrics,
		log:         d.Log.WithComponent("checkout"),
		currency:    strings.ToLower(cfg.Currency),
		statusTTL:   cfg.StatusTTL,
		terminalTTL: cfg.TerminalStatusTTL,
		statusCache: gocache.New(cfg.StatusTTL, time.Minute),
	}
}

// ValidateCart revalúa el carrito contra el catálogo vigente.
func (uc *UseCase) ValidateCart(ctx context.Context, in dto.CartValidateRequest) (*dto.CartResponse, error) {
	priced, err := uc.price(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	return toCartResponse(priced), nil
}

func (uc *UseCase) price(ctx context.Context, items []dto.CartLineRequest) (*cart.Priced, error) {
	lines, err := cart.Normalize(toCartLines(items))
	if err != nil {
		return nil, err
	}
	catalog, err := uc.products.GetByIDs(ctx, cart.ProductIDs(lines))
	if err != nil {
		return nil, err
	}
	return cart.Price(lines, catalog)
}

// CreateCheckoutSession valida y revalúa el carrito, crea el pedido y abre la sesión de pago.
// principal es nil para invitados.
func (uc *UseCase) CreateCheckoutSession(ctx context.Context, in dto.CheckoutRequest, principal *auth.Principal) (*dto.CheckoutResponse, error) {
	key := scopedIdempotencyKey(in, principal)
	if key != "" {
		existing, err := uc.orders.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return uc.replay(ctx, existing)
		}
	}

	if !entity.IsValidOrderType(in.OrderType) {
		uc.metrics.CheckoutResult("rejected")
		return nil, fmt.Errorf("%w: order_type", domain.ErrInvalidInput)
	}
	customerID, snapshot, err := uc.resolveCustomer(ctx, in, principal)
	if err != nil {
		uc.metrics.CheckoutResult("rejected")
		return nil, err
	}
	var delivery entity.DeliveryInfo
	if in.Delivery != nil {
		delivery = entity.DeliveryInfo{
			Street:     strings.TrimSpace(in.Delivery.Street),
			City:       strings.TrimSpace(in.Delivery.City),
			PostalCode: strings.TrimSpace(in.Delivery.PostalCode),
			Notes:      strings.TrimSpace(in.Delivery.Notes),
		}
	}
	if in.OrderType == entity.OrderTypeDelivery && !delivery.Complete() {
		uc.metrics.CheckoutResult("rejected")
		return nil, domain.ErrInvalidDeliveryAddress
	}

	priced, err := uc.price(ctx, in.Items)
	if err != nil {
		uc.metrics.CheckoutResult("rejected")
		return nil, err
	}
	if priced.Empty() {
		uc.metrics.CheckoutResult("rejected")
		return nil, domain.ErrEmptyCart
	}

	now := time.Now()
	order := &entity.Order{
		ID:             uuid.New().String(),
		CustomerID:     customerID,
		Customer:       snapshot,
		Delivery:       delivery,
		Items:          priced.ToOrderItems(),
		TotalPrice:     priced.Total,
		Currency:       uc.currency,
		OrderType:      in.OrderType,
		Status:         entity.OrderStatusNew,
		IdempotencyKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.tx.Run(ctx, func(orders repository.OrderRepository, _ repository.ProductRepository) error {
		return orders.Create(ctx, order)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) && key != "" {
			// otra petición con la misma clave ganó la carrera
			existing, gerr := uc.orders.GetByIdempotencyKey(ctx, key)
			if gerr == nil && existing != nil {
				return uc.replay(ctx, existing)
			}
		}
		return nil, err
	}

	session, err := uc.gateway.CreateSession(ctx, ports.CheckoutRequest{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Currency:      order.Currency,
		CustomerEmail: order.Customer.Email,
		Lines:         checkoutLines(order.Items),
	})
	if err != nil {
		return nil, uc.failCheckout(ctx, order, err)
	}
	if err := uc.orders.AttachSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}

	uc.metrics.CheckoutResult("created")
	uc.log.Info().
		Str("order_id", order.ID).
		Int64("order_number", order.OrderNumber).
		Str("session_id", session.ID).
		Str("total", order.TotalPrice.StringFixed(2)).
		Msg("sesión de pago creada")

	return &dto.CheckoutResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		SessionID:   session.ID,
		URL:         session.URL,
		Total:       order.TotalPrice.StringFixed(2),
	}, nil
}

// failCheckout marca el pedido como fallido con el mensaje del proveedor. No se reintenta.
func (uc *UseCase) failCheckout(ctx context.Context, order *entity.Order, cause error) error {
	var ue *domain.UpstreamError
	if !errors.As(cause, &ue) {
		ue = &domain.UpstreamError{Provider: "payment", Message: cause.Error(), Err: cause}
	}
	if _, err := uc.orders.ApplyStatus(ctx, order.ID, entity.StatusChange{
		Status:        entity.OrderStatusFailed,
		FailureReason: ue.Message,
	}); err != nil {
		uc.log.Error().Err(err).Str("order_id", order.ID).Msg("no se pudo marcar el pedido como fallido")
	}
	uc.metrics.CheckoutResult("upstream_error")
	uc.log.Warn().Err(cause).Str("order_id", order.ID).Msg("la pasarela rechazó la sesión")
	return ue
}

// replay devuelve la sesión del pedido ya creado con la misma clave de idempotencia.
func (uc *UseCase) replay(ctx context.Context, o *entity.Order) (*dto.CheckoutResponse, error) {
	uc.metrics.CheckoutResult("deduplicated")
	if o.PaymentSessionID == "" {
		if o.Status == entity.OrderStatusFailed {
			return nil, &domain.UpstreamError{Provider: "payment", Message: o.PaymentFailureReason}
		}
		// la primera petición sigue en curso
		return nil, fmt.Errorf("%w: el pedido aún no tiene sesión de pago", domain.ErrConflict)
	}
	out := &dto.CheckoutResponse{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		SessionID:   o.PaymentSessionID,
		Total:       o.TotalPrice.StringFixed(2),
	}
	if !entity.IsTerminalStatus(o.Status) {
		s, err := uc.gateway.GetSession(ctx, o.PaymentSessionID)
		if err != nil {
			return nil, err
		}
		out.URL = s.URL
	}
	return out, nil
}

func (uc *UseCase) resolveCustomer(ctx context.Context, in dto.CheckoutRequest, p *auth.Principal) (string, entity.CustomerSnapshot, error) {
	snap := entity.CustomerSnapshot{
		Name:    strings.TrimSpace(in.Customer.Name),
		Surname: strings.TrimSpace(in.Customer.Surname),
		Email:   auth.NormalizeEmail(in.Customer.Email),
		Phone:   strings.TrimSpace(in.Customer.Phone),
	}
	var customerID string
	if p != nil && p.Kind == entity.IdentityCustomer && !in.IsGuest {
		customerID = p.ID
		if uc.customers != nil {
			c, err := uc.customers.GetByID(ctx, p.ID)
			if err != nil {
				return "", snap, err
			}
			if c != nil {
				snap.Name = firstNonEmpty(snap.Name, c.Name)
				snap.Surname = firstNonEmpty(snap.Surname, c.Surname)
				snap.Email = firstNonEmpty(snap.Email, c.Email)
				snap.Phone = firstNonEmpty(snap.Phone, c.Phone)
			}
		}
	}
	if snap.Name == "" || snap.Surname == "" || snap.Email == "" {
		return "", snap, domain.ErrMissingFields
	}
	if !strings.Contains(snap.Email, "@") {
		return "", snap, fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	return customerID, snap, nil
}

// ── Conciliación ──────────────────────────────────────────────────────────────

// SessionStatus consulta barata para el polling del storefront: resultados cacheados unos segundos,
// los terminales más tiempo.
func (uc *UseCase) SessionStatus(ctx context.Context, sessionID string) (*dto.SessionStatusResponse, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingFields
	}
	if v, ok := uc.statusCache.Get(sessionID); ok {
		cached := *v.(*dto.SessionStatusResponse)
		return &cached, nil
	}
	out, err := uc.Reconcile(ctx, sessionID, SourcePoll)
	if err != nil {
		return nil, err
	}
	ttl := uc.statusTTL
	if entity.IsTerminalStatus(out.Status) {
		ttl = uc.terminalTTL
	}
	cached := *out
	uc.statusCache.Set(sessionID, &cached, ttl)
	return out, nil
}

// Reconcile consulta la sesión al proveedor y aplica el estado resultante al pedido.
// Un pedido terminal no se consulta ni cambia.
func (uc *UseCase) Reconcile(ctx context.Context, sessionID, source string) (*dto.SessionStatusResponse, error) {
	order, err := uc.orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if entity.IsTerminalStatus(order.Status) {
		return toStatusResponse(order, ""), nil
	}
	session, err := uc.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, order, session, source)
}

// HandleWebhook verifica y procesa un evento del proveedor. Eventos ajenos o de sesiones
// desconocidas se aceptan sin efecto.
func (uc *UseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := uc.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if evt.Session == nil {
		uc.log.Debug().Str("event", evt.Type).Msg("evento de webhook ignorado")
		return nil
	}
	order, err := uc.orders.GetBySessionID(ctx, evt.Session.ID)
	if err != nil {
		return err
	}
	if order == nil {
		uc.log.Warn().Str("event", evt.Type).Str("session_id", evt.Session.ID).Msg("webhook de sesión desconocida")
		return nil
	}
	if _, err := uc.apply(ctx, order, evt.Session, SourceWebhook); err != nil {
		return err
	}
	uc.statusCache.Delete(evt.Session.ID)
	return nil
}

// apply escribe el cambio con UPDATE condicional. Solo una transición aplicada produce
// efectos: descuento de stock (una vez), evento y métricas.
func (uc *UseCase) apply(ctx context.Context, order *entity.Order, s *domcheckout.ProviderSession, source string) (*dto.SessionStatusResponse, error) {
	change := domcheckout.MapSession(*s)
	if change == nil {
		return toStatusResponse(order, s.PaymentStatus), nil
	}

	applied := false
	err := uc.tx.Run(ctx, func(orders repository.OrderRepository, products repository.ProductRepository) error {
		ok, err := orders.ApplyStatus(ctx, order.ID, *change)
		if err != nil || !ok {
			return err
		}
		applied = true
		if change.Status != entity.OrderStatusCompleted {
			return nil
		}
		marked, err := orders.MarkStockApplied(ctx, order.ID)
		if err != nil || !marked {
			return err
		}
		for _, it := range order.Items {
			if err := products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	current, err := uc.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if applied {
		uc.afterTransition(ctx, current, source)
	}
	return toStatusResponse(current, s.PaymentStatus), nil
}

func (uc *UseCase) afterTransition(ctx context.Context, o *entity.Order, source string) {
	uc.metrics.OrderTransition(source, o.Status)
	uc.log.Info().
		Str("order_id", o.ID).
		Str("status", o.Status).
		Bool("is_paid", o.IsPaid).
		Str("source", source).
		Msg("estado de pedido actualizado")

	var eventType string
	switch o.Status {
	case entity.OrderStatusCompleted:
		eventType = ports.EventOrderCompleted
	case entity.OrderStatusFailed:
		eventType = ports.EventOrderFailed
	default:
		return
	}
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, ports.Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: orderEvent(o)}); err != nil {
		uc.log.Warn().Err(err).Str("order_id", o.ID).Msg("no se pudo publicar el evento")
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// checkoutLines importes en unidades mínimas (centavos).
func checkoutLines(items []entity.OrderItem) []ports.CheckoutLine {
	out := make([]ports.CheckoutLine, 0, len(items))
	for _, it := range items {
		out = append(out, ports.CheckoutLine{
			Name:       it.Name,
			UnitAmount: it.UnitPrice.Shift(2).Round(0).IntPart(),
			Quantity:   int64(it.Quantity),
		})
	}
	return out
}

// scopedIdempotencyKey acota la clave del cliente a su dueño (cliente autenticado o
// email del invitado): la misma clave enviada por otro comprador crea su propio pedido.
func scopedIdempotencyKey(in dto.CheckoutRequest, p *auth.Principal) string {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		return ""
	}
	if p != nil && p.Kind == entity.IdentityCustomer && !in.IsGuest {
		return "customer:" + p.ID + ":" + key
	}
	email := auth.NormalizeEmail(in.Customer.Email)
	if email == "" {
		return ""
	}
	return "guest:" + email + ":" + key
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
