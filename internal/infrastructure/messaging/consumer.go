package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// Handler procesa el cuerpo de un mensaje. Un error rechaza el mensaje sin reencolarlo.
type Handler func(ctx context.Context, body []byte) error

// Consumer consume una cola durable con reconexión y backoff exponencial.
type Consumer struct {
	url      string
	queue    string
	prefetch int
	handler  Handler
	log      *logger.Logger
}

// NewConsumer construye el consumidor.
func NewConsumer(url, queue string, handler Handler, log *logger.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, prefetch: 20, handler: handler, log: log.WithComponent("amqp-consumer")}
}

// Run bloquea hasta que ctx se cancela.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("no se pudo conectar al broker")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consumo interrumpido, reconectando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("qos")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info().Str("queue", c.queue).Msg("consumiendo")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handler(ctx, d.Body); err != nil {
				c.log.Error().Err(err).Str("type", d.Type).Msg("mensaje rechazado")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
