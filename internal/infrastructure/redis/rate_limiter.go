package redis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/restaurante-api/pkg/config"
)

// token bucket atómico: HMGET + recarga por intervalos + HMSET en un solo script
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// Decision resultado de una consulta al limitador.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// LoginRateLimiter limita intentos de login por clave (IP + ruta).
type LoginRateLimiter struct {
	client   redis.UniversalClient
	capacity int
	interval time.Duration
	prefix   string
	now      func() time.Time
}

// NewLoginRateLimiter construye el limitador. RefillPerSec <= 0 desactiva la recarga.
func NewLoginRateLimiter(client redis.UniversalClient, cfg config.RateLimitConfig) *LoginRateLimiter {
	var interval time.Duration
	if cfg.RefillPerSec > 0 {
		interval = time.Duration(float64(time.Second) / cfg.RefillPerSec)
	}
	return &LoginRateLimiter{client: client, capacity: cfg.Capacity, interval: interval, prefix: "ratelimit:login:", now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *LoginRateLimiter) WithClock(now func() time.Time) *LoginRateLimiter {
	l.now = now
	return l
}

// Capacity tamaño del bucket.
func (l *LoginRateLimiter) Capacity() int { return l.capacity }

// Allow consume un token del bucket de key.
func (l *LoginRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	ttl := int64(math.Ceil(float64(l.interval*time.Duration(l.capacity)) / float64(time.Second)))
	if ttl < 60 {
		ttl = 60
	}
	vals, err := tokenBucket.Run(ctx, l.client, []string{l.prefix + key},
		l.now().UnixMilli(), l.capacity, l.interval.Milliseconds(), ttl,
	).Int64Slice()
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{Allowed: true}, fmt.Errorf("rate limit script: respuesta inesperada (%d valores)", len(vals))
	}
	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}
