// Package messaging publica y consume eventos de dominio sobre RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

var (
	_ ports.EventPublisher = (*AMQPPublisher)(nil)
	_ ports.EventPublisher = (*NopPublisher)(nil)
)

// AMQPPublisher publica eventos en una cola durable. La conexión se abre en el primer
// Publish y se reabre si el broker la cerró.
type AMQPPublisher struct {
	url   string
	queue string
	log   *logger.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher construye el publicador; no conecta todavía.
func NewAMQPPublisher(url, queue string, log *logger.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, log: log.WithComponent("amqp-publisher")}
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("amqp dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// Publish serializa el evento y lo publica como mensaje persistente.
func (p *AMQPPublisher) Publish(ctx context.Context, evt ports.Event) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.Warn().Err(err).Str("event", evt.Type).Msg("broker no disponible")
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.OccurredAt,
		Type:         evt.Type,
		Body:         body,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("event", evt.Type).Msg("publish falló")
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close cierra canal y conexión.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher descarta los eventos (AMQP_URL vacío).
type NopPublisher struct {
	log *logger.Logger
}

// NewNopPublisher construye el publicador vacío.
func NewNopPublisher(log *logger.Logger) *NopPublisher {
	return &NopPublisher{log: log}
}

// Publish solo registra el evento a nivel debug.
func (p *NopPublisher) Publish(_ context.Context, evt ports.Event) error {
	p.log.Debug().Str("event", evt.Type).Msg("evento descartado (sin broker)")
	return nil
}
