package report_test

import (
	"testing"
	"time"

	"beautypos/internal/model"
	"beautypos/internal/report"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func order(at time.Time, subtotal, discount, method string) model.Order {
	sub, disc := dec(subtotal), dec(discount)
	return model.Order{
		ID: uuid.New(), Subtotal: sub, TotalDiscount: disc, Total: sub.Sub(disc),
		PaymentMethod: method, Status: model.OrderCompleted, CreatedAt: at,
	}
}

func TestSalesSummary(t *testing.T) {
	cancelled := order(base, "500", "0", model.PaymentCash)
	cancelled.Status = model.OrderCancelled
	orders := []model.Order{
		order(base, "100", "10", model.PaymentCash),
		order(base.Add(2*time.Hour), "50", "0", model.PaymentDebit),
		order(base.Add(24*time.Hour), "30", "0", model.PaymentCash),
		order(base.Add(72*time.Hour), "999", "0", model.PaymentCash),
		cancelled,
	}

	s := report.Sales(orders, base, base.Add(48*time.Hour), time.UTC)

	assert.Equal(t, 3, s.Orders)
	assert.True(t, dec("180").Equal(s.Gross))
	assert.True(t, dec("10").Equal(s.Discounts))
	assert.True(t, dec("170").Equal(s.Net))
	assert.True(t, dec("56.67").Equal(s.AverageTicket), s.AverageTicket.String())
	require.Len(t, s.ByDay, 2)
	assert.True(t, s.ByDay[0].Day.Before(s.ByDay[1].Day))
	assert.Equal(t, 2, s.ByDay[0].Orders)
	require.Len(t, s.ByPaymentMethod, 2)
	assert.Equal(t, model.PaymentCash, s.ByPaymentMethod[0].PaymentMethod)
	assert.True(t, dec("120").Equal(s.ByPaymentMethod[0].Net))
}

func TestPaymentMethodTiesOrderByName(t *testing.T) {
	orders := []model.Order{
		order(base, "40", "0", model.PaymentTransfer),
		order(base, "40", "0", model.PaymentCash),
		order(base, "40", "0", model.PaymentDebit),
	}

	for i := 0; i < 20; i++ {
		s := report.Sales(orders, base, base.Add(time.Hour), time.UTC)
		require.Len(t, s.ByPaymentMethod, 3)
		got := []string{s.ByPaymentMethod[0].PaymentMethod, s.ByPaymentMethod[1].PaymentMethod, s.ByPaymentMethod[2].PaymentMethod}
		assert.Equal(t, []string{model.PaymentCash, model.PaymentDebit, model.PaymentTransfer}, got)
	}
}

func TestSalesSummaryEmpty(t *testing.T) {
	s := report.Sales(nil, base, base.Add(time.Hour), nil)
	assert.Zero(t, s.Orders)
	assert.True(t, s.AverageTicket.IsZero())
	assert.Empty(t, s.ByDay)
}

func TestTopProductsAndCustomers(t *testing.T) {
	shampoo, mask := uuid.New(), uuid.New()
	ana, bob := uuid.New(), uuid.New()
	anaName, bobName := "Ana", "Bob"

	o1 := order(base, "40", "0", model.PaymentCash)
	o1.CustomerID, o1.CustomerName = &ana, &anaName
	o1.Items = []model.OrderItem{
		{ProductID: shampoo, ProductName: "shampoo", Quantity: 2, Subtotal: dec("20")},
		{ProductID: mask, ProductName: "mask", Quantity: 1, Subtotal: dec("20")},
	}
	o2 := order(base.Add(time.Hour), "30", "0", model.PaymentCash)
	o2.CustomerID, o2.CustomerName = &bob, &bobName
	o2.Items = []model.OrderItem{{ProductID: shampoo, ProductName: "shampoo", Quantity: 3, Subtotal: dec("30")}}
	o3 := order(base.Add(2*time.Hour), "25", "0", model.PaymentCash)
	o3.CustomerID, o3.CustomerName = &ana, &anaName
	anonymous := order(base, "1000", "0", model.PaymentCash)

	products := report.TopProducts([]model.Order{o1, o2, o3}, 1)
	require.Len(t, products, 1)
	assert.Equal(t, shampoo, products[0].ProductID)
	assert.Equal(t, 5, products[0].Quantity)

	customers := report.TopCustomers([]model.Order{o1, o2, o3, anonymous}, 0)
	require.Len(t, customers, 2)
	assert.Equal(t, ana, customers[0].CustomerID)
	assert.Equal(t, 2, customers[0].Orders)
	assert.True(t, dec("65").Equal(customers[0].TotalSpent))
	assert.Equal(t, o3.CreatedAt, customers[0].LastPurchase)
}

func TestCashierStats(t *testing.T) {
	till := model.Cashier{ID: uuid.New(), Name: "Front"}
	op := func(typ model.OperationType, amount string, at time.Time) model.CashierOperation {
		return model.CashierOperation{ID: uuid.New(), CashierID: till.ID, OperationType: typ, Amount: dec(amount), Timestamp: at}
	}
	short := op(model.OperationClose, "180", base.Add(time.Hour))
	short.ExpectedBalance = decPtr("200")
	over := op(model.OperationClose, "110", base.Add(26*time.Hour))
	over.ExpectedBalance = decPtr("100")
	ops := []model.CashierOperation{
		op(model.OperationOpen, "200", base),
		op(model.OperationDeposit, "15", base.Add(time.Minute)),
		short,
		op(model.OperationOpen, "100", base.Add(24*time.Hour)),
		op(model.OperationWithdrawal, "5", base.Add(25*time.Hour)),
		over,
	}
	sale := order(base, "40", "0", model.PaymentCash)
	sale.CashierID = &till.ID

	stats := report.Cashiers([]model.Cashier{till}, ops, []model.Order{sale})

	require.Len(t, stats, 1)
	s := stats[0]
	assert.Equal(t, 2, s.Sessions)
	assert.True(t, dec("15").Equal(s.Deposits))
	assert.True(t, dec("5").Equal(s.Withdrawals))
	assert.Equal(t, 1, s.Shortages)
	assert.True(t, dec("20").Equal(s.ShortageTotal))
	assert.Equal(t, 1, s.Overages)
	assert.True(t, dec("10").Equal(s.OverageTotal))
	assert.True(t, dec("40").Equal(s.Sales))
}

func TestStockAlerts(t *testing.T) {
	minimum := 5
	soon := base.Add(5 * 24 * time.Hour)
	past := base.Add(-time.Hour)
	later := base.Add(90 * 24 * time.Hour)
	products := []model.Product{
		{ID: uuid.New(), Name: "low", Stock: 3, MinimumStock: &minimum, Active: true},
		{ID: uuid.New(), Name: "fine", Stock: 30, MinimumStock: &minimum, ExpirationDate: &later, Active: true},
		{ID: uuid.New(), Name: "soon", Stock: 20, ExpirationDate: &soon, Active: true},
		{ID: uuid.New(), Name: "expired", Stock: 10, ExpirationDate: &past, Active: true},
		{ID: uuid.New(), Name: "inactive", Stock: 0, MinimumStock: &minimum, Active: false},
	}

	alerts := report.StockAlerts(products, base, 30*24*time.Hour)

	require.Len(t, alerts, 3)
	assert.Equal(t, "low", alerts[0].Name)
	assert.True(t, alerts[0].LowStock)
	assert.Equal(t, "expired", alerts[1].Name)
	assert.True(t, alerts[1].Expired)
	assert.Equal(t, "soon", alerts[2].Name)
	assert.True(t, alerts[2].ExpiringSoon)
}
