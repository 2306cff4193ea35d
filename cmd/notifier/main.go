package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/restaurante-api/internal/application/notifier"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/mail"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/messaging"
	"github.com/jhoicas/restaurante-api/pkg/config"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	if cfg.AMQP.URL == "" {
		log.Fatal().Msg("AMQP_URL es obligatorio para el notificador")
	}
	if cfg.SMTP.Host == "" {
		log.Fatal().Msg("SMTP_HOST es obligatorio para el notificador")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := notifier.New(mail.NewSMTPSender(cfg.SMTP), cfg.SMTP.StaffInbox, cfg.App.Name, log)
	consumer := messaging.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, n.Handle, log)

	log.Info().Str("queue", cfg.AMQP.Queue).Msg("notificador escuchando eventos")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumidor detenido")
	}
	log.Info().Msg("notificador detenido")
}
