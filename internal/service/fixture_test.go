package service_test

import (
	"context"
	"testing"
	"time"

	"beautypos/internal/config"
	"beautypos/internal/dto"
	"beautypos/internal/model"
	"beautypos/internal/pricing"
	"beautypos/internal/promotion"
	"beautypos/internal/reconciliation"
	"beautypos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const managerPassword = "manager-pass"

type fixture struct {
	users      *stubUserRepo
	products   *stubProductRepo
	promotions *stubPromotionRepo
	cashierDB  *stubCashierRepo
	orders     *stubOrderRepo
	carts      *stubCartStore
	journal    *recordingJournal
	queue      *recordingQueue

	authz    service.AuthorizationService
	auth     service.AuthService
	cart     service.CartService
	cashier  service.CashierService
	promo    service.PromotionService
	reports  service.ReportService
	catalog  service.CatalogService
	employee *model.User
	manager  *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:      newStubUserRepo(),
		products:   newStubProductRepo(),
		promotions: &stubPromotionRepo{},
		cashierDB:  newStubCashierRepo(),
		orders:     &stubOrderRepo{},
		carts:      newStubCartStore(),
		journal:    &recordingJournal{},
		queue:      &recordingQueue{},
	}
	f.employee = f.users.add("ana", model.RoleEmployee, "employee-pass")
	f.manager = f.users.add("marta", model.RoleManager, managerPassword)

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1, JWTRefreshHours: 24}
	calc := pricing.NewCalculator(promotion.NewEngine())

	f.authz = service.NewAuthorizationService(f.users)
	f.cashier = service.NewCashierService(f.cashierDB, f.users, f.orders, f.authz, f.journal, f.queue, time.UTC)
	f.cart = service.NewCartService(f.carts, f.products, f.promotions, f.orders, f.cashier, calc, f.authz, f.queue)
	f.auth = service.NewAuthService(f.users, f.cashier, f.authz, cfg)
	f.promo = service.NewPromotionService(f.promotions, f.products, calc)
	f.reports = service.NewReportService(f.orders, f.cashierDB, f.products, time.UTC)
	f.catalog = service.NewCatalogService(f.products, &stubCategoryRepo{cats: make(map[uuid.UUID]*model.Category)})
	service.RegisterApprovals(f.authz, f.cart, f.cashier, f.auth)
	return f
}

func (f *fixture) actor() reconciliation.Actor {
	return reconciliation.Actor{UserID: f.employee.ID, UserName: f.employee.Name}
}

// approve confirms the employee's pending request with the manager's
// credentials and requires it to succeed.
func (f *fixture) approve(t *testing.T) any {
	t.Helper()
	out, err := f.authz.Confirm(context.Background(), f.employee.ID, dto.ConfirmAuthorizationRequest{
		Identifier: f.manager.Username, Password: managerPassword,
	})
	require.NoError(t, err)
	require.True(t, out.Authorized, out.Message)
	return out.Result
}

// openTill creates a till and opens it with the given float.
func (f *fixture) openTill(t *testing.T, float int64) *model.Cashier {
	t.Helper()
	c := f.cashierDB.add("Front desk", "01")
	_, err := f.cashier.Open(context.Background(), c.ID, f.actor(), dto.OpenCashierRequest{Amount: decimal.NewFromInt(float)})
	require.NoError(t, err)
	return c
}

func (f *fixture) addPromotion(p model.Promotion) model.Promotion {
	p.ID = uuid.New()
	p.IsActive = true
	p.StartDate = time.Now().Add(-24 * time.Hour)
	p.EndDate = time.Now().Add(24 * time.Hour)
	f.promotions.promos = append(f.promotions.promos, p)
	return p
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func intPtr(n int) *int { return &n }
