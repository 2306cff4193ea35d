package dto

// CartLineRequest línea del carrito enviada por el cliente. Cualquier precio que envíe se ignora.
type CartLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartValidateRequest cuerpo de POST /api/cart/validate.
type CartValidateRequest struct {
	Items []CartLineRequest `json:"items"`
}

// DietaryDTO marcas dietéticas.
type DietaryDTO struct {
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
	GlutenFree bool `json:"gluten_free"`
	Spicy      bool `json:"spicy"`
}

// CartLineResponse línea valorada con el precio vigente del catálogo.
type CartLineResponse struct {
	ProductID string     `json:"product_id"`
	Name      string     `json:"name"`
	UnitPrice string     `json:"unit_price"`
	Quantity  int        `json:"quantity"`
	LineTotal string     `json:"line_total"`
	Dietary   DietaryDTO `json:"dietary"`
}

// CartResponse carrito revalidado.
type CartResponse struct {
	Items   []CartLineResponse `json:"items"`
	Total   string             `json:"total"`
	Dropped []string           `json:"dropped"`
}

// CustomerInfoDTO datos de contacto del comprador.
type CustomerInfoDTO struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// DeliveryInfoDTO dirección de entrega.
type DeliveryInfoDTO struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Notes      string `json:"notes"`
}

// CheckoutRequest cuerpo de POST /api/stripe/create-checkout-session.
type CheckoutRequest struct {
	Items          []CartLineRequest `json:"items"`
	Customer       CustomerInfoDTO   `json:"customer"`
	Delivery       *DeliveryInfoDTO  `json:"delivery,omitempty"`
	OrderType      string            `json:"order_type"`
	IsGuest        bool              `json:"is_guest"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// CheckoutResponse sesión de pago creada (o recuperada por idempotencia).
type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber int64  `json:"order_number"`
	SessionID   string `json:"session_id"`
	URL         string `json:"url"`
	Total       string `json:"total"`
}

// SessionStatusResponse estado conciliado de una sesión de pago.
type SessionStatusResponse struct {
	SessionID     string `json:"session_id"`
	OrderID       string `json:"order_id"`
	OrderNumber   int64  `json:"order_number"`
	Status        string `json:"status"`
	IsPaid        bool   `json:"is_paid"`
	PaymentStatus string `json:"payment_status,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}
