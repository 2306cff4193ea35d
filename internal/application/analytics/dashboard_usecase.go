// Package analytics contiene el resumen del dashboard del back office.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget del dashboard

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	currency      string
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, currency string) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, currency: currency, now: time.Now}
}

// WithClock reloj fijo para tests.
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary lanza las cuatro consultas en paralelo; la primera que falla cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// ── Rangos de fecha [inicio, fin) ─────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		todayRevenue, monthRevenue decimal.Decimal
		todayOrders, monthOrders   int
		byStatus                   map[string]int
		top                        []repository.TopProductResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		todayRevenue, todayOrders, err = uc.analyticsRepo.GetRevenue(gctx, todayStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: ingresos de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		monthRevenue, monthOrders, err = uc.analyticsRepo.GetRevenue(gctx, monthStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: ingresos del mes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		byStatus, err = uc.analyticsRepo.CountByStatus(gctx, monthStart, todayEnd)
		if err != nil {
			return fmt.Errorf("dashboard: pedidos por estado: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		top, err = uc.analyticsRepo.GetTopProducts(gctx, monthStart, todayEnd, dashboardTopProducts)
		if err != nil {
			return fmt.Errorf("dashboard: top productos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if monthOrders > 0 {
		avg = monthRevenue.Div(decimal.NewFromInt(int64(monthOrders)))
	}
	if byStatus == nil {
		byStatus = map[string]int{}
	}
	topDTO := make([]dto.TopProductDTO, 0, len(top))
	for _, p := range top {
		topDTO = append(topDTO, dto.TopProductDTO{
			ProductID: p.ProductID,
			Name:      p.Name,
			Units:     p.Units,
			Revenue:   p.Revenue.StringFixed(2),
		})
	}

	return &dto.DashboardSummaryDTO{
		TodayRevenue:      todayRevenue.StringFixed(2),
		TodayOrders:       todayOrders,
		MonthRevenue:      monthRevenue.StringFixed(2),
		MonthOrders:       monthOrders,
		AverageOrderValue: avg.StringFixed(2),
		OrdersByStatus:    byStatus,
		TopProducts:       topDTO,
		Currency:          uc.currency,
		DateLabel:         monthLabel(now),
		GeneratedAt:       now,
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "octubre 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
