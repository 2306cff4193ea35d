package notifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/restaurante-api/internal/application/notifier"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

type sentMail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, htmlBody, textBody})
	return nil
}

func body(t *testing.T, evt ports.Event) []byte {
	t.Helper()
	b, err := json.Marshal(evt)
	require.NoError(t, err)
	return b
}

func TestHandle_PedidoCompletadoEnviaConfirmacion(t *testing.T) {
	m := &fakeMailer{}
	n := notifier.New(m, "staff@r.local", "La Trattoria", logger.Nop())

	err := n.Handle(context.Background(), body(t, ports.Event{
		Type: ports.EventOrderCompleted,
		Payload: ports.OrderEventPayload{
			OrderID: "o1", OrderNumber: 1001, CustomerName: "Ana", CustomerEmail: "ana@example.com",
			Total: "10.00", Currency: "usd",
		},
	}))
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "ana@example.com", m.sent[0].to)
	assert.Contains(t, m.sent[0].subject, "#1001")
	assert.Contains(t, m.sent[0].text, "10.00")
}

func TestHandle_PedidoSinEmailNoEnvia(t *testing.T) {
	m := &fakeMailer{}
	n := notifier.New(m, "staff@r.local", "R", logger.Nop())

	err := n.Handle(context.Background(), body(t, ports.Event{
		Type:    ports.EventOrderCompleted,
		Payload: ports.OrderEventPayload{OrderID: "o1"},
	}))
	require.NoError(t, err)
	assert.Empty(t, m.sent)
}

func TestHandle_ContactoVaAlBuzonDelStaff(t *testing.T) {
	m := &fakeMailer{}
	n := notifier.New(m, "staff@r.local", "R", logger.Nop())

	err := n.Handle(context.Background(), body(t, ports.Event{
		Type:    ports.EventContactReceived,
		Payload: ports.ContactEventPayload{Name: "Luis", Email: "luis@example.com", Subject: "Alergias", Message: "¿Tienen menú sin gluten?"},
	}))
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "staff@r.local", m.sent[0].to)
	assert.Equal(t, "Nuevo mensaje de contacto: Alergias", m.sent[0].subject)
	assert.Contains(t, m.sent[0].text, "sin gluten")
}

func TestHandle_TipoDesconocidoSeIgnora(t *testing.T) {
	m := &fakeMailer{}
	n := notifier.New(m, "staff@r.local", "R", logger.Nop())

	require.NoError(t, n.Handle(context.Background(), body(t, ports.Event{Type: "order.failed"})))
	assert.Empty(t, m.sent)
}

func TestHandle_CuerpoInvalido(t *testing.T) {
	n := notifier.New(&fakeMailer{}, "s", "R", logger.Nop())
	assert.Error(t, n.Handle(context.Background(), []byte("{no-json")))
}

func TestHandle_ErrorDelMailerSePropaga(t *testing.T) {
	m := &fakeMailer{err: errors.New("smtp caído")}
	n := notifier.New(m, "staff@r.local", "R", logger.Nop())

	err := n.Handle(context.Background(), body(t, ports.Event{
		Type:    ports.EventContactReceived,
		Payload: ports.ContactEventPayload{Name: "x", Email: "x@y.z", Message: "hola"},
	}))
	assert.Error(t, err)
}
