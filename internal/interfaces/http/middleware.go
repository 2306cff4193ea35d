package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	infraredis "github.com/jhoicas/restaurante-api/internal/infrastructure/redis"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// LocalLogger key del logger de la petición.
const LocalLogger = "logger"

var nopLogger = logger.Nop()

// RequestLogger registra método, ruta, estado, latencia y request id de cada petición,
// y deja en c.Locals un sublogger con el request id.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID, _ := c.Locals("requestid").(string)
		reqLog := log.WithComponent("http").WithStr("request_id", reqID)
		c.Locals(LocalLogger, reqLog)

		err := c.Next()
		if err != nil {
			// el ErrorHandler todavía no escribió la respuesta
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		evt := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			evt = reqLog.Error()
		}
		evt.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}

func logFrom(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(LocalLogger).(*logger.Logger); ok && l != nil {
		return l
	}
	return nopLogger
}

// HTTPObserver recibe la duración de cada petición (lo implementa *metrics.Metrics).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// MetricsMiddleware etiqueta por la ruta registrada, no por el path, para acotar la cardinalidad.
func MetricsMiddleware(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if status == fiber.StatusNotFound && route == "/" {
			route = "unmatched"
		}
		obs.ObserveHTTP(c.Method(), route, status, time.Since(start))
		return err
	}
}

// RateLimiter token bucket por clave (lo implementa *redis.LoginRateLimiter).
type RateLimiter interface {
	Allow(ctx context.Context, key string) (infraredis.Decision, error)
	Capacity() int
}

// LoginRateLimit limita los intentos de login por IP. Si Redis falla la petición pasa.
func LoginRateLimit(limiter RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := limiter.Allow(c.UserContext(), c.IP()+":"+c.Path())
		if err != nil {
			logFrom(c).Warn().Err(err).Msg("rate limiter no disponible")
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Capacity()))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.RetryAfter.Seconds()+0.5)))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: "demasiados intentos, espere antes de reintentar",
				Code:  CodeTooManyRequests,
			})
		}
		return c.Next()
	}
}
