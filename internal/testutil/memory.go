// Package testutil contiene adaptadores en memoria de los puertos de
// repositorio para los tests de casos de uso y de HTTP.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurante-api/internal/application/ports"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

var (
	_ repository.UserRepository             = (*Users)(nil)
	_ repository.CustomerRepository         = (*Customers)(nil)
	_ repository.RefreshTokenRepository     = (*RefreshTokens)(nil)
	_ repository.InvalidatedTokenRepository = (*InvalidatedTokens)(nil)
	_ repository.ProductRepository          = (*Products)(nil)
	_ repository.OrderRepository            = (*Orders)(nil)
	_ repository.CategoryRepository         = (*Categories)(nil)
	_ repository.ReservationRepository      = (*Reservations)(nil)
	_ repository.ContactMessageRepository   = (*ContactMessages)(nil)
	_ repository.AnalyticsRepository        = (*Analytics)(nil)
)

// ── Staff ─────────────────────────────────────────────────────────────────────

// Users repositorio de staff en memoria.
type Users struct {
	mu   sync.Mutex
	byID map[string]entity.User
}

// NewUsers construye el repositorio vacío.
func NewUsers() *Users { return &Users{byID: map[string]entity.User{}} }

func (r *Users) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *Users) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = *u
	return nil
}

func (r *Users) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.User
	for _, u := range r.byID {
		u := u
		list = append(list, &u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return page(list, limit, offset), nil
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

// Customers repositorio de clientes en memoria.
type Customers struct {
	mu   sync.Mutex
	byID map[string]entity.Customer
}

// NewCustomers construye el repositorio vacío.
func NewCustomers() *Customers { return &Customers{byID: map[string]entity.Customer{}} }

func cloneCustomer(c entity.Customer) *entity.Customer {
	ext := make(map[string]string, len(c.ExternalIDs))
	for k, v := range c.ExternalIDs {
		ext[k] = v
	}
	c.ExternalIDs = ext
	return &c
}

func (r *Customers) Create(_ context.Context, c *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if c.Email != "" && x.Email == c.Email {
			return domain.ErrEmailAlreadyExists
		}
		for p, s := range c.ExternalIDs {
			if x.ExternalIDs[p] == s {
				return domain.ErrConflict
			}
		}
	}
	r.byID[c.ID] = *cloneCustomer(*c)
	return nil
}

func (r *Customers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneCustomer(c), nil
}

func (r *Customers) GetByEmail(_ context.Context, email string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if email != "" && c.Email == email {
			return cloneCustomer(c), nil
		}
	}
	return nil, nil
}

func (r *Customers) GetByExternalID(_ context.Context, provider, subject string) (*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if s, ok := c.ExternalIDs[provider]; ok && s == subject {
			return cloneCustomer(c), nil
		}
	}
	return nil, nil
}

func (r *Customers) LinkExternalID(_ context.Context, customerID, provider, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if id != customerID && c.ExternalIDs[provider] == subject {
			return domain.ErrConflict
		}
	}
	c, ok := r.byID[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	c = *cloneCustomer(c)
	c.ExternalIDs[provider] = subject
	r.byID[customerID] = c
	return nil
}

func (r *Customers) Update(_ context.Context, c *entity.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = *cloneCustomer(*c)
	return nil
}

func (r *Customers) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Customer
	for _, c := range r.byID {
		list = append(list, cloneCustomer(c))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, limit, offset), nil
}

func (r *Customers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// Count número de clientes guardados.
func (r *Customers) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ── Tokens ────────────────────────────────────────────────────────────────────

// RefreshTokens sesiones en memoria; Rotate es un compare-and-swap bajo mutex.
type RefreshTokens struct {
	mu      sync.Mutex
	byOwner map[string]entity.RefreshToken
}

// NewRefreshTokens construye el repositorio vacío.
func NewRefreshTokens() *RefreshTokens {
	return &RefreshTokens{byOwner: map[string]entity.RefreshToken{}}
}

func (r *RefreshTokens) Upsert(_ context.Context, rt *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOwner[rt.OwnerID] = *rt
	return nil
}

func (r *RefreshTokens) Rotate(_ context.Context, ownerID, presentedHash string, next *entity.RefreshToken) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byOwner[ownerID]
	if !ok || cur.RefreshTokenHash != presentedHash {
		return false, nil
	}
	r.byOwner[ownerID] = *next
	return true, nil
}

func (r *RefreshTokens) DeleteByOwner(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byOwner, ownerID)
	return nil
}

// InvalidatedTokens lista de invalidación en memoria.
type InvalidatedTokens struct {
	mu     sync.Mutex
	byHash map[string]entity.InvalidatedToken
}

// NewInvalidatedTokens construye la lista vacía.
func NewInvalidatedTokens() *InvalidatedTokens {
	return &InvalidatedTokens{byHash: map[string]entity.InvalidatedToken{}}
}

func (r *InvalidatedTokens) Add(_ context.Context, t *entity.InvalidatedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[t.TokenHash]; !ok {
		r.byHash[t.TokenHash] = *t
	}
	return nil
}

func (r *InvalidatedTokens) Exists(_ context.Context, tokenHash, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byHash[tokenHash]
	return ok && t.OwnerID == ownerID, nil
}

func (r *InvalidatedTokens) PruneExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for h, t := range r.byHash {
		if !t.ExpiresAt.After(now) {
			delete(r.byHash, h)
			n++
		}
	}
	return n, nil
}

// Len tamaño de la lista.
func (r *InvalidatedTokens) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHash)
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

// Products catálogo en memoria.
type Products struct {
	mu   sync.Mutex
	byID map[string]entity.Product
}

// NewProducts construye el catálogo con los productos dados.
func NewProducts(ps ...*entity.Product) *Products {
	r := &Products{byID: map[string]entity.Product{}}
	for _, p := range ps {
		r.byID[p.ID] = *p
	}
	return r
}

func (r *Products) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = *p
	return nil
}

func (r *Products) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Products) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			p := p
			out[id] = &p
		}
	}
	return out, nil
}

func (r *Products) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = *p
	return nil
}

func (r *Products) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Product
	for _, p := range r.byID {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.OnlyAvailable && !p.Available {
			continue
		}
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, f.Limit, f.Offset), nil
}

func (r *Products) DecrementStock(_ context.Context, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[productID]
	if !ok || !p.TrackStock {
		return nil
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	r.byID[productID] = p
	return nil
}

func (r *Products) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// ── Pedidos ───────────────────────────────────────────────────────────────────

// Orders pedidos en memoria con el mismo guard de estados que el repositorio SQL.
type Orders struct {
	mu     sync.Mutex
	byID   map[string]entity.Order
	serial int64
}

// NewOrders construye el repositorio vacío.
func NewOrders() *Orders { return &Orders{byID: map[string]entity.Order{}, serial: 1000} }

func cloneOrder(o entity.Order) *entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	return &o
}

func (r *Orders) Create(_ context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.IdempotencyKey != "" {
		for _, x := range r.byID {
			if x.IdempotencyKey == o.IdempotencyKey {
				return domain.ErrConflict
			}
		}
	}
	r.serial++
	o.OrderNumber = r.serial
	r.byID[o.ID] = *cloneOrder(*o)
	return nil
}

func (r *Orders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *Orders) GetBySessionID(_ context.Context, sessionID string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byID {
		if o.PaymentSessionID == sessionID {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *Orders) GetByIdempotencyKey(_ context.Context, key string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byID {
		if key != "" && o.IdempotencyKey == key {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *Orders) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Order
	for _, o := range r.byID {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		list = append(list, cloneOrder(o))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OrderNumber > list[j].OrderNumber })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func (r *Orders) AttachSession(_ context.Context, orderID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaymentSessionID = sessionID
	if o.Status == entity.OrderStatusNew {
		o.Status = entity.OrderStatusCreated
	}
	r.byID[orderID] = o
	return nil
}

func (r *Orders) ApplyStatus(_ context.Context, orderID string, ch entity.StatusChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok || !entity.CanTransition(o.Status, ch.Status) {
		return false, nil
	}
	o.Status = ch.Status
	o.IsPaid = o.IsPaid || ch.IsPaid
	if ch.PaymentIntentID != "" {
		o.PaymentIntentID = ch.PaymentIntentID
	}
	if ch.FailureReason != "" {
		o.PaymentFailureReason = ch.FailureReason
	}
	r.byID[orderID] = o
	return true, nil
}

func (r *Orders) MarkStockApplied(_ context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok || o.StockApplied {
		return false, nil
	}
	o.StockApplied = true
	r.byID[orderID] = o
	return true, nil
}

func (r *Orders) Override(_ context.Context, orderID, status string, isPaid bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.IsPaid = isPaid
	r.byID[orderID] = o
	return nil
}

func (r *Orders) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// Count número de pedidos guardados.
func (r *Orders) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Price atajo para construir decimales en tests.
func Price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func page[T any](list []T, limit, offset int) []T {
	if offset > len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Transacciones ─────────────────────────────────────────────────────────────

// TxRunner ejecuta fn sobre los repos en memoria (sin rollback).
type TxRunner struct {
	Orders   *Orders
	Products *Products
}

// Run llama fn con los repos.
func (r *TxRunner) Run(_ context.Context, fn func(orders repository.OrderRepository, products repository.ProductRepository) error) error {
	return fn(r.Orders, r.Products)
}

// Events publicador en memoria.
type Events struct {
	mu     sync.Mutex
	events []ports.Event
}

// Publish guarda el evento.
func (e *Events) Publish(_ context.Context, evt ports.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
	return nil
}

// Types tipos publicados en orden.
func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, evt := range e.events {
		out = append(out, evt.Type)
	}
	return out
}
