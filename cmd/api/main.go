package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	_ "github.com/jhoicas/restaurante-api/docs"
	appanalytics "github.com/jhoicas/restaurante-api/internal/application/analytics"
	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/checkout"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/messaging"
	inframetrics "github.com/jhoicas/restaurante-api/internal/infrastructure/metrics"
	infraoauth "github.com/jhoicas/restaurante-api/internal/infrastructure/oauth"
	infrapdf "github.com/jhoicas/restaurante-api/internal/infrastructure/pdf"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/restaurante-api/internal/infrastructure/redis"
	infrastripe "github.com/jhoicas/restaurante-api/internal/infrastructure/stripe"
	httpRouter "github.com/jhoicas/restaurante-api/internal/interfaces/http"
	"github.com/jhoicas/restaurante-api/pkg/config"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// @title        Restaurante API
// @version      1.0
// @description  Pedidos, pagos y back office del restaurante.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	contactRepo := postgres.NewContactMessageRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Redis opcional: lista de invalidación con TTL y rate limit de login
	var invalidRepo repository.InvalidatedTokenRepository = postgres.NewInvalidatedTokenRepository(pool)
	var loginLimiter httpRouter.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		invalidRepo = infraredis.NewInvalidatedTokenStore(rdb)
		loginLimiter = infraredis.NewLoginRateLimiter(rdb, cfg.RateLimit)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis habilitado")
	}

	identities := auth.NewIdentityDirectory(userRepo, customerRepo)
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	}, postgres.NewRefreshTokenRepository(pool), invalidRepo, identities)
	if err := tokens.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración de tokens")
	}
	capabilities, err := auth.LoadCapabilities(cfg.Permissions)
	if err != nil {
		log.Fatal().Err(err).Msg("tabla de permisos")
	}

	metrics := inframetrics.New()

	var events ports.EventPublisher
	if cfg.AMQP.URL != "" {
		pub := messaging.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, log)
		defer pub.Close()
		events = pub
	} else {
		events = messaging.NewNopPublisher(log)
	}

	var oauthProviders []ports.OAuthProvider
	if cfg.OAuth.Google.Enabled() {
		g, err := infraoauth.NewGoogle(ctx, cfg.OAuth.Google)
		if err != nil {
			log.Warn().Err(err).Msg("oauth google deshabilitado")
		} else {
			oauthProviders = append(oauthProviders, g)
		}
	}
	if cfg.OAuth.Facebook.Enabled() {
		f, err := infraoauth.NewFacebook(cfg.OAuth.Facebook)
		if err != nil {
			log.Warn().Err(err).Msg("oauth facebook deshabilitado")
		} else {
			oauthProviders = append(oauthProviders, f)
		}
	}

	sessionUC := auth.NewSessionUseCase(userRepo, customerRepo, tokens, cfg.Auth.BcryptCost)
	catalogUC := usecase.NewCatalogUseCase(productRepo, categoryRepo, time.Minute)
	customerUC := usecase.NewCustomerUseCase(customerRepo, tokens, cfg.Auth.BcryptCost)
	staffUC := usecase.NewStaffUseCase(userRepo, tokens, cfg.Auth.BcryptCost)
	storefrontUC := usecase.NewStorefrontUseCase(reservationRepo, contactRepo, events, log)
	checkoutUC := checkout.NewUseCase(checkout.Config{Currency: cfg.App.Currency}, checkout.Deps{
		Orders:    orderRepo,
		Products:  productRepo,
		Customers: customerRepo,
		Tx:        txRunner,
		Gateway:   infrastripe.NewGateway(cfg.Stripe, nil),
		Events:    events,
		Metrics:   metrics,
		Log:       log,
	})
	receipts := infrapdf.NewReceiptGenerator(cfg.App.Name, language.Spanish)
	orderUC := checkout.NewOrderUseCase(orderRepo, receipts, metrics, log)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, cfg.App.Currency)

	tokens.StartPruner(ctx, time.Hour, log.WithComponent("tokens"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Restaurante API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SessionUC:      sessionUC,
		Tokens:         tokens,
		Identities:     identities,
		Capabilities:   capabilities,
		CatalogUC:      catalogUC,
		CustomerUC:     customerUC,
		StaffUC:        staffUC,
		StorefrontUC:   storefrontUC,
		CheckoutUC:     checkoutUC,
		OrderUC:        orderUC,
		DashboardUC:    dashboardUC,
		OAuthProviders: oauthProviders,
		OAuthState:     infraoauth.NewState,
		OAuthRedirects: httpRouter.OAuthRedirects{
			Success: cfg.OAuth.SuccessRedirect,
			Failure: cfg.OAuth.FailureRedirect,
		},
		Cookie: httpRouter.CookieConfig{
			Secure: cfg.Auth.CookieSecure,
			Domain: cfg.Auth.CookieDomain,
			MaxAge: tokens.AccessTTL(),
		},
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		Logger:         log,
		LoginLimiter:   loginLimiter,
		Metrics:        metrics,
		HTTPObserver:   metrics,
		MetricsHandler: metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
