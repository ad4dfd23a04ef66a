package service

import (
	"context"
	"time"

	"beautypos/internal/dto"
	"beautypos/internal/report"
	"beautypos/internal/repository"
)

const dateLayout = "2006-01-02"

type ReportService interface {
	Sales(ctx context.Context, filter dto.ReportFilter) (*report.SalesSummary, error)
	TopProducts(ctx context.Context, filter dto.ReportFilter) ([]report.ProductStat, error)
	TopCustomers(ctx context.Context, filter dto.ReportFilter) ([]report.CustomerStat, error)
	Cashiers(ctx context.Context, filter dto.ReportFilter) ([]report.CashierStat, error)
	// StockAlerts lists low stock and products expiring within filter.Days.
	StockAlerts(ctx context.Context, filter dto.ReportFilter) ([]report.StockAlert, error)
}

type reportService struct {
	orders   repository.OrderRepository
	cashiers repository.CashierRepository
	products repository.ProductRepository
	loc      *time.Location
	now      func() time.Time
}

func NewReportService(orders repository.OrderRepository, cashiers repository.CashierRepository, products repository.ProductRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{orders: orders, cashiers: cashiers, products: products, loc: loc, now: time.Now}
}

func (s *reportService) Sales(ctx context.Context, filter dto.ReportFilter) (*report.SalesSummary, error) {
	from, to, err := s.period(filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := report.Sales(orders, from, to, s.loc)
	return &summary, nil
}

func (s *reportService) TopProducts(ctx context.Context, filter dto.ReportFilter) ([]report.ProductStat, error) {
	from, to, err := s.period(filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return report.TopProducts(orders, filter.Limit), nil
}

func (s *reportService) TopCustomers(ctx context.Context, filter dto.ReportFilter) ([]report.CustomerStat, error) {
	from, to, err := s.period(filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return report.TopCustomers(orders, filter.Limit), nil
}

// Cashiers counts sessions and discrepancies over the whole log so that a
// session crossing the period boundary still pairs its open and close.
// Sales are limited to the period.
func (s *reportService) Cashiers(ctx context.Context, filter dto.ReportFilter) ([]report.CashierStat, error) {
	from, to, err := s.period(filter)
	if err != nil {
		return nil, err
	}
	cashiers, err := s.cashiers.List(ctx)
	if err != nil {
		return nil, err
	}
	ops, err := s.cashiers.ListAllOperations(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return report.Cashiers(cashiers, ops, orders), nil
}

func (s *reportService) StockAlerts(ctx context.Context, filter dto.ReportFilter) ([]report.StockAlert, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	within := time.Duration(filter.Days) * 24 * time.Hour
	return report.StockAlerts(products, s.now(), within), nil
}

// period turns the inclusive YYYY-MM-DD filter into [from, to) in the store
// timezone. It defaults to the last 30 days including today.
func (s *reportService) period(filter dto.ReportFilter) (time.Time, time.Time, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	to := today.AddDate(0, 0, 1)
	if filter.To != "" {
		d, err := time.ParseInLocation(dateLayout, filter.To, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, validationf("to must be YYYY-MM-DD")
		}
		to = d.AddDate(0, 0, 1)
	}
	from := to.AddDate(0, 0, -30)
	if filter.From != "" {
		d, err := time.ParseInLocation(dateLayout, filter.From, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, validationf("from must be YYYY-MM-DD")
		}
		from = d
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, validationf("from must not be after to")
	}
	return from, to, nil
}
