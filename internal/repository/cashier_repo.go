package repository

import (
	"context"
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CashierRepository stores tills and their append-only operation log.
// There is no update or delete for operations.
type CashierRepository interface {
	Create(ctx context.Context, c *model.Cashier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cashier, error)
	List(ctx context.Context) ([]model.Cashier, error)
	Update(ctx context.Context, c *model.Cashier) error

	AppendOperation(ctx context.Context, op *model.CashierOperation) error
	FindOperationByID(ctx context.Context, id uuid.UUID) (*model.CashierOperation, error)
	ListOperations(ctx context.Context, cashierID uuid.UUID) ([]model.CashierOperation, error)
	ListAllOperations(ctx context.Context) ([]model.CashierOperation, error)
	ListOperationsBetween(ctx context.Context, from, to time.Time) ([]model.CashierOperation, error)
	// ImportOperation inserts an operation recorded elsewhere, keeping its id
	// and timestamp. Importing the same id twice is a no-op.
	ImportOperation(ctx context.Context, op *model.CashierOperation) error
}

type cashierRepo struct{ db *gorm.DB }

func NewCashierRepository(db *gorm.DB) CashierRepository { return &cashierRepo{db: db} }

func (r *cashierRepo) Create(ctx context.Context, c *model.Cashier) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cashierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cashier, error) {
	var c model.Cashier
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cashierRepo) List(ctx context.Context) ([]model.Cashier, error) {
	var list []model.Cashier
	err := r.db.WithContext(ctx).Order("register_number ASC").Find(&list).Error
	return list, err
}

func (r *cashierRepo) Update(ctx context.Context, c *model.Cashier) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *cashierRepo) AppendOperation(ctx context.Context, op *model.CashierOperation) error {
	return r.db.WithContext(ctx).Create(op).Error
}

func (r *cashierRepo) FindOperationByID(ctx context.Context, id uuid.UUID) (*model.CashierOperation, error) {
	var op model.CashierOperation
	err := r.db.WithContext(ctx).First(&op, "id = ?", id).Error
	return &op, err
}

func (r *cashierRepo) ListOperations(ctx context.Context, cashierID uuid.UUID) ([]model.CashierOperation, error) {
	var ops []model.CashierOperation
	err := r.db.WithContext(ctx).Where("cashier_id = ?", cashierID).Order("occurred_at ASC").Find(&ops).Error
	return ops, err
}

func (r *cashierRepo) ListAllOperations(ctx context.Context) ([]model.CashierOperation, error) {
	var ops []model.CashierOperation
	err := r.db.WithContext(ctx).Order("occurred_at ASC").Find(&ops).Error
	return ops, err
}

func (r *cashierRepo) ListOperationsBetween(ctx context.Context, from, to time.Time) ([]model.CashierOperation, error) {
	var ops []model.CashierOperation
	err := r.db.WithContext(ctx).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at ASC").Find(&ops).Error
	return ops, err
}

func (r *cashierRepo) ImportOperation(ctx context.Context, op *model.CashierOperation) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(op).Error
}
