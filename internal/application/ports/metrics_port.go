package ports

// Metrics contadores de negocio que registran los casos de uso.
type Metrics interface {
	// AuthEvent event: login|refresh|logout|oauth; result: ok|denied|error.
	AuthEvent(event, result string)
	// CheckoutResult result: created|deduplicated|upstream_error|rejected.
	CheckoutResult(result string)
	// OrderTransition source: webhook|poll|staff.
	OrderTransition(source, status string)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) AuthEvent(string, string)       {}
func (NopMetrics) CheckoutResult(string)          {}
func (NopMetrics) OrderTransition(string, string) {}
