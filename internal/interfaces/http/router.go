package http

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	appanalytics "github.com/jhoicas/restaurante-api/internal/application/analytics"
	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/checkout"
	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SessionUC    *auth.SessionUseCase
	Tokens       TokenVerifier
	Identities   auth.IdentityResolver
	Capabilities *auth.CapabilityTable
	CatalogUC    *usecase.CatalogUseCase
	CustomerUC   *usecase.CustomerUseCase
	StaffUC      *usecase.StaffUseCase
	StorefrontUC *usecase.StorefrontUseCase
	CheckoutUC   *checkout.UseCase
	OrderUC      *checkout.OrderUseCase
	DashboardUC  *appanalytics.DashboardUseCase

	OAuthProviders []ports.OAuthProvider
	OAuthState     StateGenerator
	OAuthRedirects OAuthRedirects

	Cookie      CookieConfig
	CORSOrigins string

	// opcionales
	Logger         *logger.Logger
	LoginLimiter   RateLimiter
	Metrics        ports.Metrics
	HTTPObserver   HTTPObserver
	MetricsHandler http.Handler
}

// Router registra middleware global y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	app.Use(requestid.New())
	app.Use(RequestLogger(log))
	if deps.HTTPObserver != nil {
		app.Use(MetricsMiddleware(deps.HTTPObserver))
	}
	if deps.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.ReplaceAll(deps.CORSOrigins, " ", ""),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
			AllowCredentials: true,
		}))
	}
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.Tokens)
	can := func(action string) fiber.Handler {
		return RequireCapability(deps.Identities, deps.Capabilities, action)
	}
	limited := func(c *fiber.Ctx) error { return c.Next() }
	if deps.LoginLimiter != nil {
		limited = LoginRateLimit(deps.LoginLimiter)
	}

	// Auth de clientes (público)
	authHandler := NewAuthHandler(deps.SessionUC, deps.Cookie, deps.Metrics)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", limited, authHandler.Login(entity.IdentityCustomer))
	authGroup.Post("/refresh-token", authHandler.Refresh)
	authGroup.Post("/logout", requireAuth, authHandler.Logout)

	oauthHandler := NewOAuthHandler(deps.OAuthProviders, deps.SessionUC, deps.OAuthState,
		deps.Cookie, deps.OAuthRedirects, deps.Metrics)
	authGroup.Get("/:provider", OptionalAuth(deps.Tokens), oauthHandler.Start)
	authGroup.Get("/:provider/callback", oauthHandler.Callback)

	// Auth del staff
	adminAuth := api.Group("/admin/auth")
	adminAuth.Post("/login", limited, authHandler.Login(entity.IdentityUser))
	adminAuth.Post("/refresh-token", authHandler.Refresh)
	adminAuth.Post("/logout", requireAuth, authHandler.Logout)

	staffHandler := NewStaffHandler(deps.StaffUC, deps.Capabilities)
	staffRoles := Authorize(deps.Identities, entity.RoleAdmin, entity.RoleModerator, entity.RoleMember)
	adminAuth.Get("/me", requireAuth, staffRoles, staffHandler.Me)

	// Autoservicio del cliente
	meHandler := NewMeHandler(deps.CustomerUC, deps.OrderUC)
	// sin Group: el prefijo /api/me también cubriría /api/menu
	customerOnly := []fiber.Handler{requireAuth, RequireCustomer(), can("profile:read")}
	api.Get("/me", append(customerOnly, meHandler.Get)...)
	api.Put("/me", append(customerOnly, can("profile:update"), meHandler.Update)...)
	api.Get("/me/orders", append(customerOnly, meHandler.Orders)...)
	api.Get("/me/orders/:id", append(customerOnly, meHandler.Order)...)
	api.Get("/me/orders/:id/receipt", append(customerOnly, meHandler.Receipt)...)

	// Carrito y pago
	checkoutHandler := NewCheckoutHandler(deps.CheckoutUC)
	api.Post("/cart/validate", checkoutHandler.ValidateCart)
	stripeGroup := api.Group("/stripe")
	stripeGroup.Post("/create-checkout-session", OptionalAuth(deps.Tokens), checkoutHandler.CreateSession)
	stripeGroup.Get("/session-status", checkoutHandler.SessionStatus)
	stripeGroup.Post("/webhook", checkoutHandler.Webhook)

	// Catálogo
	productHandler := NewProductHandler(deps.CatalogUC)
	api.Get("/menu", productHandler.Menu)
	api.Get("/categories", productHandler.ListCategories)

	products := api.Group("/products", requireAuth)
	products.Get("/", can("products:read"), productHandler.List)
	products.Post("/", can("products:create"), productHandler.Create)
	products.Get("/:id", can("products:read"), productHandler.GetByID)
	products.Put("/:id", can("products:update"), productHandler.Update)
	products.Delete("/:id", can("products:delete"), productHandler.Delete)

	categories := api.Group("/product-categories", requireAuth)
	categories.Get("/", can("categories:read"), productHandler.ListCategories)
	categories.Post("/", can("categories:create"), productHandler.CreateCategory)
	categories.Get("/:id", can("categories:read"), productHandler.GetCategory)
	categories.Put("/:id", can("categories:update"), productHandler.UpdateCategory)
	categories.Delete("/:id", can("categories:delete"), productHandler.DeleteCategory)

	// Clientes
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := api.Group("/customers", requireAuth)
	customers.Get("/", can("customers:read"), customerHandler.List)
	customers.Get("/:id", can("customers:read"), customerHandler.GetByID)
	customers.Put("/:id", can("customers:update"), customerHandler.Update)
	customers.Delete("/:id", can("customers:delete"), customerHandler.Delete)

	// Staff: lectura por capacidad, escritura solo admins
	adminOnly := Authorize(deps.Identities, entity.RoleAdmin)
	staff := api.Group("/staff", requireAuth)
	staff.Get("/", can("staff:read"), staffHandler.List)
	staff.Get("/:id", can("staff:read"), staffHandler.GetByID)
	staff.Post("/", adminOnly, staffHandler.Create)
	staff.Put("/:id", adminOnly, staffHandler.Update)
	staff.Delete("/:id", adminOnly, staffHandler.Delete)

	// Pedidos
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders := api.Group("/orders", requireAuth)
	orders.Get("/", can("orders:read"), orderHandler.List)
	orders.Get("/:id", can("orders:read"), orderHandler.GetByID)
	orders.Get("/:id/receipt", can("orders:read"), orderHandler.Receipt)
	orders.Put("/:id", can("orders:update"), orderHandler.Update)
	orders.Post("/:id/cancel", can("orders:update"), orderHandler.Cancel)
	orders.Delete("/:id", can("orders:delete"), orderHandler.Delete)

	// Reservas y contacto: alta pública, gestión del staff
	storefrontHandler := NewStorefrontHandler(deps.StorefrontUC)
	api.Post("/reservations", storefrontHandler.CreateReservation)
	api.Post("/contact", storefrontHandler.SubmitContact)
	api.Get("/reservations", requireAuth, can("reservations:read"), storefrontHandler.ListReservations)
	api.Put("/reservations/:id", requireAuth, can("reservations:update"), storefrontHandler.UpdateReservationStatus)
	contact := api.Group("/contact-messages", requireAuth)
	contact.Get("/", can("contact:read"), storefrontHandler.ListContactMessages)
	contact.Post("/:id/read", can("contact:update"), storefrontHandler.MarkContactRead)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard/summary", requireAuth, can("dashboard:read"), dashboardHandler.GetSummary)
}
