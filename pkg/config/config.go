package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App         AppConfig
	Log         LogConfig
	DB          DBConfig
	JWT         JWTConfig
	Auth        AuthConfig
	HTTP        HTTPConfig
	Stripe      StripeConfig
	OAuth       OAuthConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	AMQP        AMQPConfig
	SMTP        SMTPConfig
	Permissions string // ruta a un permissions.yaml alternativo (vacío = tabla embebida)
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	Currency string // moneda ISO en minúsculas para la pasarela (ej. "usd")
}

// LogConfig nivel y formato del logger.
type LogConfig struct {
	Level string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig secretos y duraciones de los tokens. Access y refresh usan secretos distintos.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// AuthConfig parámetros de credenciales y cookie de sesión.
type AuthConfig struct {
	BcryptCost   int
	CookieSecure bool
	CookieDomain string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StripeConfig credenciales de la pasarela de pago.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string // debe contener {CHECKOUT_SESSION_ID}
	CancelURL     string
}

// OAuthProvider credenciales de un proveedor OAuth2.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled indica si el proveedor está configurado.
func (p OAuthProvider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// OAuthConfig proveedores de login federado.
type OAuthConfig struct {
	Google          OAuthProvider
	Facebook        OAuthProvider
	SuccessRedirect string
	FailureRedirect string
}

// RedisConfig conexión a Redis. Addr vacío = lista de invalidación en PostgreSQL y sin rate limit.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig token bucket para los endpoints de login.
type RateLimitConfig struct {
	Capacity     int
	RefillPerSec float64
}

// AMQPConfig broker de eventos. URL vacío = eventos descartados.
type AMQPConfig struct {
	URL   string
	Queue string
}

// SMTPConfig servidor de correo para el notificador.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	StaffInbox string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_ACCESS_SECRET, etc.
func Load() (*Config, error) {
	// .env opcional; no pisa variables ya definidas
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("leer config.yaml: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "restaurante-api"),
			Currency: strings.ToLower(getString(v, "APP_CURRENCY", "usd")),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "restaurante"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			AccessSecret:  getString(v, "JWT_ACCESS_SECRET", ""),
			RefreshSecret: getString(v, "JWT_REFRESH_SECRET", ""),
			AccessTTL:     time.Duration(getInt(v, "JWT_ACCESS_MINUTES", 15)) * time.Minute,
			RefreshTTL:    time.Duration(getInt(v, "JWT_REFRESH_HOURS", 24*7)) * time.Hour,
			Issuer:        getString(v, "JWT_ISSUER", "restaurante-api"),
		},
		Auth: AuthConfig{
			BcryptCost:   getInt(v, "BCRYPT_COST", 10),
			CookieSecure: getBool(v, "COOKIE_SECURE", false),
			CookieDomain: getString(v, "COOKIE_DOMAIN", ""),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "CORS_ORIGINS", "http://localhost:5173"),
		},
		Stripe: StripeConfig{
			SecretKey:     getString(v, "STRIPE_SECRET_KEY", ""),
			WebhookSecret: getString(v, "STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getString(v, "STRIPE_SUCCESS_URL", "http://localhost:5173/checkout/return?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:     getString(v, "STRIPE_CANCEL_URL", "http://localhost:5173/cart"),
		},
		OAuth: OAuthConfig{
			Google: OAuthProvider{
				ClientID:     getString(v, "GOOGLE_CLIENT_ID", ""),
				ClientSecret: getString(v, "GOOGLE_CLIENT_SECRET", ""),
				RedirectURL:  getString(v, "GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
			},
			Facebook: OAuthProvider{
				ClientID:     getString(v, "FACEBOOK_CLIENT_ID", ""),
				ClientSecret: getString(v, "FACEBOOK_CLIENT_SECRET", ""),
				RedirectURL:  getString(v, "FACEBOOK_REDIRECT_URL", "http://localhost:8080/api/auth/facebook/callback"),
			},
			SuccessRedirect: getString(v, "OAUTH_SUCCESS_REDIRECT", "http://localhost:5173/"),
			FailureRedirect: getString(v, "OAUTH_FAILURE_REDIRECT", "http://localhost:5173/login?error=oauth"),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Capacity:     getInt(v, "LOGIN_RATE_CAPACITY", 10),
			RefillPerSec: getFloat(v, "LOGIN_RATE_REFILL", 0.2),
		},
		AMQP: AMQPConfig{
			URL:   getString(v, "AMQP_URL", ""),
			Queue: getString(v, "AMQP_QUEUE", "restaurante.events"),
		},
		SMTP: SMTPConfig{
			Host:       getString(v, "SMTP_HOST", "localhost"),
			Port:       getInt(v, "SMTP_PORT", 1025),
			User:       getString(v, "SMTP_USER", ""),
			Password:   getString(v, "SMTP_PASSWORD", ""),
			From:       getString(v, "SMTP_FROM", "no-reply@restaurante.local"),
			StaffInbox: getString(v, "SMTP_STAFF_INBOX", "staff@restaurante.local"),
		},
		Permissions: getString(v, "PERMISSIONS_FILE", ""),
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		return v.GetFloat64(key)
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
