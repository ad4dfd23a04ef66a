package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"beautypos/internal/dto"
	"beautypos/internal/infra"
	"beautypos/internal/model"
	"beautypos/internal/repository"
	"beautypos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── In-memory UserRepository ─────────────────────────────────────────────────

type stubUserRepo struct{ users map[uuid.UUID]*model.User }

func newStubUserRepo() *stubUserRepo { return &stubUserRepo{users: make(map[uuid.UUID]*model.User)} }

func (r *stubUserRepo) add(username string, role model.Role, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{ID: uuid.New(), Username: username, Name: strings.ToUpper(username[:1]) + username[1:], PasswordHash: string(hash), Role: role, Active: true}
	r.users[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return r.FindByID(ctx, id)
	}
	for _, u := range r.users {
		if u.Username == identifier {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = true
	return nil
}

// ── In-memory ProductRepository ──────────────────────────────────────────────

type stubProductRepo struct{ products map[uuid.UUID]*model.Product }

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(code string, price int64, stock int, categoryID *uuid.UUID) model.Product {
	p := &model.Product{
		ID: uuid.New(), Code: code, Name: "Product " + code, CategoryID: categoryID,
		SalePrice: decimal.NewFromInt(price), CostPrice: decimal.NewFromInt(price / 2),
		Stock: stock, Active: true,
	}
	r.products[p.ID] = p
	return *p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	all, _ := r.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── In-memory CategoryRepository ─────────────────────────────────────────────

type stubCategoryRepo struct{ cats map[uuid.UUID]*model.Category }

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cats[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.cats {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	if c, ok := r.cats[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── In-memory PromotionRepository ────────────────────────────────────────────

type stubPromotionRepo struct{ promos []model.Promotion }

func (r *stubPromotionRepo) Create(_ context.Context, p *model.Promotion) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.promos = append(r.promos, *p)
	return nil
}

func (r *stubPromotionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promotion, error) {
	for i := range r.promos {
		if r.promos[i].ID == id {
			p := r.promos[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPromotionRepo) List(_ context.Context) ([]model.Promotion, error) {
	return append([]model.Promotion(nil), r.promos...), nil
}

func (r *stubPromotionRepo) Update(_ context.Context, p *model.Promotion) error {
	for i := range r.promos {
		if r.promos[i].ID == p.ID {
			r.promos[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPromotionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.promos {
		if r.promos[i].ID == id {
			r.promos = append(r.promos[:i], r.promos[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── In-memory CashierRepository ──────────────────────────────────────────────

type stubCashierRepo struct {
	cashiers map[uuid.UUID]*model.Cashier
	ops      []model.CashierOperation
}

func newStubCashierRepo() *stubCashierRepo {
	return &stubCashierRepo{cashiers: make(map[uuid.UUID]*model.Cashier)}
}

func (r *stubCashierRepo) add(name, register string) *model.Cashier {
	c := &model.Cashier{ID: uuid.New(), Name: name, RegisterNumber: register, IsActive: true}
	r.cashiers[c.ID] = c
	return c
}

func (r *stubCashierRepo) Create(_ context.Context, c *model.Cashier) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cashiers[c.ID] = c
	return nil
}

func (r *stubCashierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cashier, error) {
	if c, ok := r.cashiers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCashierRepo) List(_ context.Context) ([]model.Cashier, error) {
	out := make([]model.Cashier, 0, len(r.cashiers))
	for _, c := range r.cashiers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisterNumber < out[j].RegisterNumber })
	return out, nil
}

func (r *stubCashierRepo) Update(_ context.Context, c *model.Cashier) error {
	r.cashiers[c.ID] = c
	return nil
}

func (r *stubCashierRepo) AppendOperation(_ context.Context, op *model.CashierOperation) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	r.ops = append(r.ops, *op)
	return nil
}

func (r *stubCashierRepo) FindOperationByID(_ context.Context, id uuid.UUID) (*model.CashierOperation, error) {
	for i := range r.ops {
		if r.ops[i].ID == id {
			op := r.ops[i]
			return &op, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCashierRepo) ListOperations(_ context.Context, cashierID uuid.UUID) ([]model.CashierOperation, error) {
	var out []model.CashierOperation
	for _, op := range r.ops {
		if op.CashierID == cashierID {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *stubCashierRepo) ListAllOperations(_ context.Context) ([]model.CashierOperation, error) {
	return append([]model.CashierOperation(nil), r.ops...), nil
}

func (r *stubCashierRepo) ListOperationsBetween(_ context.Context, from, to time.Time) ([]model.CashierOperation, error) {
	var out []model.CashierOperation
	for _, op := range r.ops {
		if !op.Timestamp.Before(from) && op.Timestamp.Before(to) {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *stubCashierRepo) ImportOperation(ctx context.Context, op *model.CashierOperation) error {
	if _, err := r.FindOperationByID(ctx, op.ID); err == nil {
		return nil
	}
	return r.AppendOperation(ctx, op)
}

// ── In-memory OrderRepository ────────────────────────────────────────────────

type stubOrderRepo struct {
	orders []model.Order
	ticket int
}

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	r.orders = append(r.orders, *o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	for i := range r.orders {
		if r.orders[i].ID == id {
			o := r.orders[i]
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.ticket++
	return r.ticket, nil
}

func (r *stubOrderRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) SumCashSales(_ context.Context, cashierID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.orders {
		if o.CashierID != nil && *o.CashierID == cashierID && o.PaymentMethod == model.PaymentCash &&
			o.Status == model.OrderCompleted && !o.CreatedAt.Before(since) {
			sum = sum.Add(o.Total)
		}
	}
	return sum, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

// ── In-memory CartStore ──────────────────────────────────────────────────────

type stubCartStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]model.Cart
}

func newStubCartStore() *stubCartStore { return &stubCartStore{carts: make(map[uuid.UUID]model.Cart)} }

func (s *stubCartStore) Get(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return &model.Cart{UserID: userID}, nil
	}
	c.Items = append([]model.CartItem(nil), c.Items...)
	return &c, nil
}

func (s *stubCartStore) Save(_ context.Context, c *model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.UserID] = *c
	return nil
}

func (s *stubCartStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

// ── Side-effect recorders ────────────────────────────────────────────────────

type recordingJournal struct {
	ops    []model.CashierOperation
	synced map[string]bool
}

func (j *recordingJournal) Record(_ context.Context, op model.CashierOperation) error {
	j.ops = append(j.ops, op)
	return nil
}

func (j *recordingJournal) MarkSynced(_ context.Context, ids []string) error {
	if j.synced == nil {
		j.synced = make(map[string]bool)
	}
	for _, id := range ids {
		j.synced[id] = true
	}
	return nil
}

func (j *recordingJournal) unsynced() []model.CashierOperation {
	var out []model.CashierOperation
	for _, op := range j.ops {
		if !j.synced[op.ID.String()] {
			out = append(out, op)
		}
	}
	return out
}

// unreachableCashierRepo fails every append as if the database were down.
type unreachableCashierRepo struct {
	*stubCashierRepo
}

func (r unreachableCashierRepo) AppendOperation(context.Context, *model.CashierOperation) error {
	return errors.New("database unreachable")
}

type recordingQueue struct {
	receipts []worker.ReceiptJobPayload
	closings []infra.ClosingReport
}

func (q *recordingQueue) EnqueueReceipt(_ context.Context, p worker.ReceiptJobPayload) error {
	q.receipts = append(q.receipts, p)
	return nil
}

func (q *recordingQueue) EnqueueClosingReport(_ context.Context, r infra.ClosingReport) error {
	q.closings = append(q.closings, r)
	return nil
}
