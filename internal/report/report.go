// Package report derives sales, product, customer, cashier and stock
// statistics from orders and cashier operations. All functions are pure.
package report

import (
	"sort"
	"time"

	"beautypos/internal/model"
	"beautypos/internal/reconciliation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Sales ─────────────────────────────────────────────────────────────────────

type DaySales struct {
	Day      time.Time       `json:"day"`
	Orders   int             `json:"orders"`
	Net      decimal.Decimal `json:"net"`
	Discount decimal.Decimal `json:"discount"`
}

type MethodSales struct {
	PaymentMethod string          `json:"payment_method"`
	Orders        int             `json:"orders"`
	Net           decimal.Decimal `json:"net"`
}

type SalesSummary struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	Orders          int             `json:"orders"`
	Gross           decimal.Decimal `json:"gross"`
	Discounts       decimal.Decimal `json:"discounts"`
	Net             decimal.Decimal `json:"net"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	ByDay           []DaySales      `json:"by_day"`
	ByPaymentMethod []MethodSales   `json:"by_payment_method"`
}

// Sales summarises completed orders created in [from, to). Days are
// bucketed in loc and listed oldest first.
func Sales(orders []model.Order, from, to time.Time, loc *time.Location) SalesSummary {
	if loc == nil {
		loc = time.UTC
	}
	s := SalesSummary{
		From: from, To: to,
		Gross: decimal.Zero, Discounts: decimal.Zero, Net: decimal.Zero, AverageTicket: decimal.Zero,
		ByDay: []DaySales{}, ByPaymentMethod: []MethodSales{},
	}
	days := map[time.Time]*DaySales{}
	methods := map[string]*MethodSales{}
	for _, o := range completed(orders) {
		if o.CreatedAt.Before(from) || !o.CreatedAt.Before(to) {
			continue
		}
		s.Orders++
		s.Gross = s.Gross.Add(o.Subtotal)
		s.Discounts = s.Discounts.Add(o.TotalDiscount)
		s.Net = s.Net.Add(o.Total)

		t := o.CreatedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		d, ok := days[day]
		if !ok {
			d = &DaySales{Day: day, Net: decimal.Zero, Discount: decimal.Zero}
			days[day] = d
		}
		d.Orders++
		d.Net = d.Net.Add(o.Total)
		d.Discount = d.Discount.Add(o.TotalDiscount)

		m, ok := methods[o.PaymentMethod]
		if !ok {
			m = &MethodSales{PaymentMethod: o.PaymentMethod, Net: decimal.Zero}
			methods[o.PaymentMethod] = m
		}
		m.Orders++
		m.Net = m.Net.Add(o.Total)
	}
	if s.Orders > 0 {
		s.AverageTicket = s.Net.Div(decimal.NewFromInt(int64(s.Orders))).Round(2)
	}
	for _, d := range days {
		s.ByDay = append(s.ByDay, *d)
	}
	sort.Slice(s.ByDay, func(i, j int) bool { return s.ByDay[i].Day.Before(s.ByDay[j].Day) })
	for _, m := range methods {
		s.ByPaymentMethod = append(s.ByPaymentMethod, *m)
	}
	sort.Slice(s.ByPaymentMethod, func(i, j int) bool {
		a, b := s.ByPaymentMethod[i], s.ByPaymentMethod[j]
		if !a.Net.Equal(b.Net) {
			return a.Net.GreaterThan(b.Net)
		}
		return a.PaymentMethod < b.PaymentMethod
	})
	return s
}

// ── Products ──────────────────────────────────────────────────────────────────

type ProductStat struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TopProducts ranks products by units sold, then by revenue. limit <= 0
// returns every product.
func TopProducts(orders []model.Order, limit int) []ProductStat {
	stats := map[uuid.UUID]*ProductStat{}
	for _, o := range completed(orders) {
		for _, it := range o.Items {
			s, ok := stats[it.ProductID]
			if !ok {
				s = &ProductStat{ProductID: it.ProductID, Name: it.ProductName, Revenue: decimal.Zero}
				stats[it.ProductID] = s
			}
			s.Quantity += it.Quantity
			s.Revenue = s.Revenue.Add(it.Subtotal)
		}
	}
	out := make([]ProductStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	return truncate(out, limit)
}

// ── Customers ─────────────────────────────────────────────────────────────────

type CustomerStat struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	Name         string          `json:"name"`
	Orders       int             `json:"orders"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	LastPurchase time.Time       `json:"last_purchase"`
}

// TopCustomers ranks identified customers by amount spent. Anonymous sales
// are skipped.
func TopCustomers(orders []model.Order, limit int) []CustomerStat {
	stats := map[uuid.UUID]*CustomerStat{}
	for _, o := range completed(orders) {
		if o.CustomerID == nil {
			continue
		}
		s, ok := stats[*o.CustomerID]
		if !ok {
			s = &CustomerStat{CustomerID: *o.CustomerID, TotalSpent: decimal.Zero}
			stats[*o.CustomerID] = s
		}
		if o.CustomerName != nil {
			s.Name = *o.CustomerName
		}
		s.Orders++
		s.TotalSpent = s.TotalSpent.Add(o.Total)
		if o.CreatedAt.After(s.LastPurchase) {
			s.LastPurchase = o.CreatedAt
		}
	}
	out := make([]CustomerStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalSpent.GreaterThan(out[j].TotalSpent) })
	return truncate(out, limit)
}

// ── Cashiers ──────────────────────────────────────────────────────────────────

type CashierStat struct {
	CashierID     uuid.UUID             `json:"cashier_id"`
	Name          string                `json:"name"`
	Status        reconciliation.Status `json:"status"`
	Sessions      int                   `json:"sessions"`
	Deposits      decimal.Decimal       `json:"deposits"`
	Withdrawals   decimal.Decimal       `json:"withdrawals"`
	Sales         decimal.Decimal       `json:"sales"`
	Shortages     int                   `json:"shortages"`
	ShortageTotal decimal.Decimal       `json:"shortage_total"`
	Overages      int                   `json:"overages"`
	OverageTotal  decimal.Decimal       `json:"overage_total"`
}

// Cashiers reports per till activity. Discrepancies come from the balances
// recorded on each close.
func Cashiers(cashiers []model.Cashier, ops []model.CashierOperation, orders []model.Order) []CashierStat {
	out := make([]CashierStat, 0, len(cashiers))
	for _, c := range cashiers {
		s := CashierStat{
			CashierID: c.ID, Name: c.Name,
			Status:   reconciliation.StatusOf(ops, c.ID),
			Deposits: decimal.Zero, Withdrawals: decimal.Zero, Sales: decimal.Zero,
			ShortageTotal: decimal.Zero, OverageTotal: decimal.Zero,
		}
		for _, op := range reconciliation.Sorted(ops, c.ID) {
			switch op.OperationType {
			case model.OperationOpen:
				s.Sessions++
			case model.OperationDeposit:
				s.Deposits = s.Deposits.Add(op.Amount)
			case model.OperationWithdrawal:
				s.Withdrawals = s.Withdrawals.Add(op.Amount)
			case model.OperationClose:
				d, err := reconciliation.Recorded(op, ops)
				if err != nil {
					continue
				}
				switch d.Kind {
				case reconciliation.KindShortage:
					s.Shortages++
					s.ShortageTotal = s.ShortageTotal.Add(d.Amount)
				case reconciliation.KindOverage:
					s.Overages++
					s.OverageTotal = s.OverageTotal.Add(d.Amount)
				}
			}
		}
		for _, o := range completed(orders) {
			if o.CashierID != nil && *o.CashierID == c.ID {
				s.Sales = s.Sales.Add(o.Total)
			}
		}
		out = append(out, s)
	}
	return out
}

// ── Stock ─────────────────────────────────────────────────────────────────────

type StockAlert struct {
	ProductID    uuid.UUID  `json:"product_id"`
	Name         string     `json:"name"`
	Stock        int        `json:"stock"`
	MinimumStock *int       `json:"minimum_stock"`
	LowStock     bool       `json:"low_stock"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Expired      bool       `json:"expired"`
	ExpiringSoon bool       `json:"expiring_soon"`
}

// StockAlerts lists active products at or under their minimum stock, or
// expiring within the given window.
func StockAlerts(products []model.Product, now time.Time, within time.Duration) []StockAlert {
	var out []StockAlert
	for _, p := range products {
		if !p.Active {
			continue
		}
		a := StockAlert{ProductID: p.ID, Name: p.Name, Stock: p.Stock, MinimumStock: p.MinimumStock, ExpiresAt: p.ExpirationDate}
		a.LowStock = p.MinimumStock != nil && p.Stock <= *p.MinimumStock
		if p.ExpirationDate != nil {
			a.Expired = !p.ExpirationDate.After(now)
			a.ExpiringSoon = !a.Expired && p.ExpirationDate.Before(now.Add(within))
		}
		if a.LowStock || a.Expired || a.ExpiringSoon {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func completed(orders []model.Order) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != model.OrderCancelled {
			out = append(out, o)
		}
	}
	return out
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
