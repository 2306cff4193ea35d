package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

// Categories categorías en memoria con slug único.
type Categories struct {
	mu   sync.Mutex
	byID map[string]entity.Category
}

// NewCategories construye el repositorio con las categorías dadas.
func NewCategories(cs ...*entity.Category) *Categories {
	r := &Categories{byID: map[string]entity.Category{}}
	for _, c := range cs {
		r.byID[c.ID] = *c
	}
	return r
}

func (r *Categories) Create(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Slug == c.Slug {
			return domain.ErrConflict
		}
	}
	r.byID[c.ID] = *c
	return nil
}

func (r *Categories) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *Categories) GetBySlug(_ context.Context, slug string) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *Categories) Update(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, x := range r.byID {
		if id != c.ID && x.Slug == c.Slug {
			return domain.ErrConflict
		}
	}
	r.byID[c.ID] = *c
	return nil
}

func (r *Categories) List(_ context.Context) ([]*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Category
	for _, c := range r.byID {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (r *Categories) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// Reservations reservas en memoria.
type Reservations struct {
	mu   sync.Mutex
	byID map[string]entity.Reservation
}

// NewReservations construye el repositorio vacío.
func NewReservations() *Reservations {
	return &Reservations{byID: map[string]entity.Reservation{}}
}

func (r *Reservations) Create(_ context.Context, res *entity.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[res.ID] = *res
	return nil
}

func (r *Reservations) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *Reservations) List(_ context.Context, status string, limit, offset int) ([]*entity.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.Reservation
	for _, res := range r.byID {
		if status != "" && res.Status != status {
			continue
		}
		res := res
		list = append(list, &res)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ReservedFor.Before(list[j].ReservedFor) })
	return page(list, limit, offset), nil
}

func (r *Reservations) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	res.Status = status
	r.byID[id] = res
	return nil
}

// ContactMessages mensajes de contacto en memoria.
type ContactMessages struct {
	mu   sync.Mutex
	byID map[string]entity.ContactMessage
}

// NewContactMessages construye el repositorio vacío.
func NewContactMessages() *ContactMessages {
	return &ContactMessages{byID: map[string]entity.ContactMessage{}}
}

func (r *ContactMessages) Create(_ context.Context, m *entity.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = *m
	return nil
}

func (r *ContactMessages) List(_ context.Context, onlyUnread bool, limit, offset int) ([]*entity.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*entity.ContactMessage
	for _, m := range r.byID {
		if onlyUnread && m.Read {
			continue
		}
		m := m
		list = append(list, &m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *ContactMessages) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Read = true
	r.byID[id] = m
	return nil
}

// Analytics calcula las métricas del dashboard sobre los pedidos en memoria.
type Analytics struct {
	Orders *Orders
}

func (a *Analytics) inRange(start, end time.Time) []entity.Order {
	a.Orders.mu.Lock()
	defer a.Orders.mu.Unlock()
	var out []entity.Order
	for _, o := range a.Orders.byID {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			out = append(out, *cloneOrder(o))
		}
	}
	return out
}

func (a *Analytics) GetRevenue(_ context.Context, start, end time.Time) (decimal.Decimal, int, error) {
	total := decimal.Zero
	n := 0
	for _, o := range a.inRange(start, end) {
		if o.IsPaid {
			total = total.Add(o.TotalPrice)
			n++
		}
	}
	return total, n, nil
}

func (a *Analytics) CountByStatus(_ context.Context, start, end time.Time) (map[string]int, error) {
	out := map[string]int{}
	for _, o := range a.inRange(start, end) {
		out[o.Status]++
	}
	return out, nil
}

func (a *Analytics) GetTopProducts(_ context.Context, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	byID := map[string]*repository.TopProductResult{}
	for _, o := range a.inRange(start, end) {
		if !o.IsPaid {
			continue
		}
		for _, it := range o.Items {
			row, ok := byID[it.ProductID]
			if !ok {
				row = &repository.TopProductResult{ProductID: it.ProductID, Name: it.Name, Revenue: decimal.Zero}
				byID[it.ProductID] = row
			}
			row.Units += it.Quantity
			row.Revenue = row.Revenue.Add(it.LineTotal)
		}
	}
	list := make([]repository.TopProductResult, 0, len(byID))
	for _, r := range byID {
		list = append(list, *r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Units != list[j].Units {
			return list[i].Units > list[j].Units
		}
		return list[i].ProductID < list[j].ProductID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
