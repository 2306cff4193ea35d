package checkout

import (
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain/cart"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
)

func toDietaryDTO(d entity.DietaryFlags) dto.DietaryDTO {
	return dto.DietaryDTO{Vegetarian: d.Vegetarian, Vegan: d.Vegan, GlutenFree: d.GlutenFree, Spicy: d.Spicy}
}

func toCartLines(items []dto.CartLineRequest) []cart.Line {
	lines := make([]cart.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, cart.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

func toCartResponse(p *cart.Priced) *dto.CartResponse {
	out := &dto.CartResponse{
		Items:   make([]dto.CartLineResponse, 0, len(p.Lines)),
		Total:   p.Total.StringFixed(2),
		Dropped: p.Dropped,
	}
	if out.Dropped == nil {
		out.Dropped = []string{}
	}
	for _, l := range p.Lines {
		out.Items = append(out.Items, dto.CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal.StringFixed(2),
			Dietary:   toDietaryDTO(l.Dietary),
		})
	}
	return out
}

// ToOrderResponse convierte el pedido en su representación HTTP.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Customer: dto.CustomerInfoDTO{
			Name: o.Customer.Name, Surname: o.Customer.Surname, Email: o.Customer.Email, Phone: o.Customer.Phone,
		},
		Delivery: dto.DeliveryInfoDTO{
			Street: o.Delivery.Street, City: o.Delivery.City, PostalCode: o.Delivery.PostalCode, Notes: o.Delivery.Notes,
		},
		Items:                make([]dto.OrderItemResponse, 0, len(o.Items)),
		TotalPrice:           o.TotalPrice.StringFixed(2),
		Currency:             o.Currency,
		OrderType:            o.OrderType,
		Status:               o.Status,
		IsPaid:               o.IsPaid,
		PaymentSessionID:     o.PaymentSessionID,
		PaymentFailureReason: o.PaymentFailureReason,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal.StringFixed(2),
			Dietary:   toDietaryDTO(it.Dietary),
		})
	}
	return out
}

func toStatusResponse(o *entity.Order, paymentStatus string) *dto.SessionStatusResponse {
	return &dto.SessionStatusResponse{
		SessionID:     o.PaymentSessionID,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		IsPaid:        o.IsPaid,
		PaymentStatus: paymentStatus,
		FailureReason: o.PaymentFailureReason,
	}
}

func orderEvent(o *entity.Order) ports.OrderEventPayload {
	return ports.OrderEventPayload{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		Total:         o.TotalPrice.StringFixed(2),
		Currency:      o.Currency,
		Reason:        o.PaymentFailureReason,
	}
}
