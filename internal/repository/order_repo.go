package repository

import (
	"context"
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Order, error)
	// SumCashSales totals completed cash orders taken on a till since the
	// given instant.
	SumCashSales(ctx context.Context, cashierID uuid.UUID, since time.Time) (decimal.Decimal, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

// NextTicketNumber reads MAX+1 under a row lock so that it works the same on
// PostgreSQL and MySQL; the unique index on ticket_number backs it up.
func (r *orderRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	var last struct{ TicketNumber int }
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("ticket_number").
		Order("ticket_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last.TicketNumber + 1, nil
}

func (r *orderRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) SumCashSales(ctx context.Context, cashierID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("SUM(total)").
		Where("cashier_id = ? AND payment_method = ? AND status = ? AND created_at >= ?",
			cashierID, model.PaymentCash, model.OrderCompleted, since).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
