package checkout

import (
	"context"
	"fmt"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// OrderUseCase lectura y edición de pedidos para el back office y el área del cliente.
type OrderUseCase struct {
	orders   repository.OrderRepository
	receipts ports.ReceiptRenderer
	metrics  ports.Metrics
	log      *logger.Logger
}

// NewOrderUseCase construye el caso de uso. receipts puede ser nil (sin recibos PDF).
func NewOrderUseCase(orders repository.OrderRepository, receipts ports.ReceiptRenderer, metrics ports.Metrics, log *logger.Logger) *OrderUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{orders: orders, receipts: receipts, metrics: metrics, log: log.WithComponent("orders")}
}

// List listado del staff, filtrable por estado.
func (uc *OrderUseCase) List(ctx context.Context, in dto.OrderListRequest) (*dto.OrderListResponse, error) {
	if in.Status != "" && !entity.IsValidOrderStatus(in.Status) {
		return nil, fmt.Errorf("%w: status", domain.ErrInvalidInput)
	}
	in.DefaultPage()
	return uc.list(ctx, repository.OrderFilter{Status: in.Status, Limit: in.Limit, Offset: in.Offset})
}

// ListMine pedidos del cliente autenticado.
func (uc *OrderUseCase) ListMine(ctx context.Context, customerID string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	return uc.list(ctx, repository.OrderFilter{CustomerID: customerID, Limit: page.Limit, Offset: page.Offset})
}

func (uc *OrderUseCase) list(ctx context.Context, f repository.OrderFilter) (*dto.OrderListResponse, error) {
	list, total, err := uc.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, ToOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// Get pedido por ID.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToOrderResponse(o)
	return &out, nil
}

// GetMine pedido del cliente; un pedido ajeno se reporta como inexistente.
func (uc *OrderUseCase) GetMine(ctx context.Context, customerID, id string) (*dto.OrderResponse, error) {
	o, err := uc.loadMine(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	out := ToOrderResponse(o)
	return &out, nil
}

// Override edición manual del staff: único camino fuera de la conciliación que toca is_paid.
func (uc *OrderUseCase) Override(ctx context.Context, id string, in dto.OrderOverrideRequest) (*dto.OrderResponse, error) {
	if in.Status == nil && in.IsPaid == nil {
		return nil, domain.ErrMissingFields
	}
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	status, isPaid := o.Status, o.IsPaid
	if in.Status != nil {
		if !entity.IsValidOrderStatus(*in.Status) {
			return nil, fmt.Errorf("%w: status", domain.ErrInvalidInput)
		}
		status = *in.Status
	}
	if in.IsPaid != nil {
		isPaid = *in.IsPaid
	}
	if err := uc.orders.Override(ctx, id, status, isPaid); err != nil {
		return nil, err
	}
	uc.metrics.OrderTransition("staff", status)
	uc.log.Info().
		Str("order_id", id).
		Str("from", o.Status).
		Str("status", status).
		Bool("is_paid", isPaid).
		Msg("pedido editado por staff")
	return uc.Get(ctx, id)
}

// Cancel pasa a canceled un pedido que aún no terminó.
func (uc *OrderUseCase) Cancel(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := uc.orders.ApplyStatus(ctx, id, entity.StatusChange{Status: entity.OrderStatusCanceled})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, entity.OrderStatusCanceled)
	}
	uc.metrics.OrderTransition("staff", entity.OrderStatusCanceled)
	uc.log.Info().Str("order_id", id).Str("from", o.Status).Msg("pedido cancelado")
	return uc.Get(ctx, id)
}

// Delete elimina el pedido.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.orders.Delete(ctx, id)
}

// Receipt PDF del pedido (staff).
func (uc *OrderUseCase) Receipt(ctx context.Context, id string) ([]byte, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.render(o)
}

// ReceiptMine PDF de un pedido propio del cliente.
func (uc *OrderUseCase) ReceiptMine(ctx context.Context, customerID, id string) ([]byte, error) {
	o, err := uc.loadMine(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	return uc.render(o)
}

func (uc *OrderUseCase) render(o *entity.Order) ([]byte, error) {
	if uc.receipts == nil {
		return nil, fmt.Errorf("%w: recibos no configurados", domain.ErrConfig)
	}
	return uc.receipts.Render(o)
}

func (uc *OrderUseCase) load(ctx context.Context, id string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (uc *OrderUseCase) loadMine(ctx context.Context, customerID, id string) (*entity.Order, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if customerID == "" || o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}
