package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/restaurante-api/internal/application/analytics"
	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/checkout"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	infraredis "github.com/jhoicas/restaurante-api/internal/infrastructure/redis"
	apphttp "github.com/jhoicas/restaurante-api/internal/interfaces/http"
	"github.com/jhoicas/restaurante-api/internal/mocks"
	"github.com/jhoicas/restaurante-api/internal/testutil"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

const (
	pizzaID = "11111111-1111-1111-1111-111111111111"
	adminID = "00000000-0000-0000-0000-0000000000a1"
	modID   = "00000000-0000-0000-0000-0000000000b2"
	staffPw = "staff-secret"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeLimiter deniega a partir de la petición número allow+1.
type fakeLimiter struct {
	mu    sync.Mutex
	allow int
	seen  int
}

func (l *fakeLimiter) Allow(context.Context, string) (infraredis.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen++
	if l.seen > l.allow {
		return infraredis.Decision{Allowed: false, RetryAfter: 5 * time.Second}, nil
	}
	return infraredis.Decision{Allowed: true, Remaining: int64(l.allow - l.seen)}, nil
}

func (l *fakeLimiter) Capacity() int { return l.allow }

type testServer struct {
	app       *fiber.App
	clock     *clock
	users     *testutil.Users
	customers *testutil.Customers
	orders    *testutil.Orders
	products  *testutil.Products
	gateway   *mocks.MockPaymentGateway
}

type serverOption func(*apphttp.RouterDeps)

func withLimiter(l apphttp.RateLimiter) serverOption {
	return func(d *apphttp.RouterDeps) { d.LoginLimiter = l }
}

// newTestServer levanta el router completo sobre repositorios en memoria.
func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	ctx := context.Background()
	s := &testServer{
		clock:     &clock{now: time.Now()},
		users:     testutil.NewUsers(),
		customers: testutil.NewCustomers(),
		orders:    testutil.NewOrders(),
		products: testutil.NewProducts(&entity.Product{
			ID: pizzaID, Name: "Pizza Margarita", Price: testutil.Price("5.00"), Available: true,
		}),
		gateway: mocks.NewMockPaymentGateway(gomock.NewController(t)),
	}

	hash, err := auth.HashPassword(staffPw, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.users.Create(ctx, &entity.User{ID: adminID, Name: "Ada", Surname: "Admin",
		Email: "admin@resto.test", PasswordHash: hash, Role: entity.RoleAdmin}))
	require.NoError(t, s.users.Create(ctx, &entity.User{ID: modID, Name: "Mo", Surname: "Derador",
		Email: "mod@resto.test", PasswordHash: hash, Role: entity.RoleModerator}))

	identities := auth.NewIdentityDirectory(s.users, s.customers)
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "restaurante-test",
	}, testutil.NewRefreshTokens(), testutil.NewInvalidatedTokens(), identities).WithClock(s.clock.Now)
	caps, err := auth.LoadCapabilities("")
	require.NoError(t, err)

	events := &testutil.Events{}
	deps := apphttp.RouterDeps{
		SessionUC:    auth.NewSessionUseCase(s.users, s.customers, tokens, bcrypt.MinCost),
		Tokens:       tokens,
		Identities:   identities,
		Capabilities: caps,
		CatalogUC:    usecase.NewCatalogUseCase(s.products, testutil.NewCategories(), time.Minute),
		CustomerUC:   usecase.NewCustomerUseCase(s.customers, tokens, bcrypt.MinCost),
		StaffUC:      usecase.NewStaffUseCase(s.users, tokens, bcrypt.MinCost),
		StorefrontUC: usecase.NewStorefrontUseCase(testutil.NewReservations(), testutil.NewContactMessages(), events, nil),
		CheckoutUC: checkout.NewUseCase(checkout.Config{Currency: "usd"}, checkout.Deps{
			Orders:    s.orders,
			Products:  s.products,
			Customers: s.customers,
			Tx:        &testutil.TxRunner{Orders: s.orders, Products: s.products},
			Gateway:   s.gateway,
			Events:    events,
		}),
		OrderUC:     checkout.NewOrderUseCase(s.orders, nil, nil, nil),
		DashboardUC: appanalytics.NewDashboardUseCase(&testutil.Analytics{Orders: s.orders}, "usd"),
		OAuthState:  func() (string, error) { return "state-fijo", nil },
		OAuthRedirects: apphttp.OAuthRedirects{
			Success: "http://front.test/",
			Failure: "http://front.test/login",
		},
		Cookie: apphttp.CookieConfig{MaxAge: 15 * time.Minute},
		Logger: logger.Nop(),
	}
	for _, o := range opts {
		o(&deps)
	}

	s.app = fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(s.app, deps)
	return s
}

// do lanza una petición JSON. token vacío = sin Authorization.
func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, resp).Code
}

// staffLogin inicia sesión en /api/admin/auth/login y devuelve el par de tokens.
func (s *testServer) staffLogin(t *testing.T, email string) dto.LoginResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/admin/auth/login", "", dto.LoginRequest{Email: email, Password: staffPw})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.LoginResponse](t, resp)
}

// registerCustomer registra un cliente y devuelve su login.
func (s *testServer) registerCustomer(t *testing.T, email string) dto.LoginResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name: "Bea", Surname: "Gil", Email: email, Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.LoginResponse](t, resp)
}
