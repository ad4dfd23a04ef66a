package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentCash     = "cash"
	PaymentDebit    = "debit"
	PaymentCredit   = "credit"
	PaymentTransfer = "transfer"

	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order is a completed sale. Discount figures are frozen at checkout so that
// reports never recompute promotions against a catalog that has since changed.
type Order struct {
	ID            uuid.UUID  `gorm:"type:char(36);primaryKey"`
	TicketNumber  int        `gorm:"uniqueIndex;not null"`
	CashierID     *uuid.UUID `gorm:"type:char(36);index"`
	UserID        uuid.UUID  `gorm:"type:char(36);not null;index"`
	UserName      string     `gorm:"type:varchar(100)"`
	CustomerID    *uuid.UUID `gorm:"type:char(36);index"`
	CustomerName  *string    `gorm:"type:varchar(150)"`
	CustomerEmail *string    `gorm:"type:varchar(255)"`

	Subtotal             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ManualDiscountType   *string         `gorm:"type:varchar(20)"`
	ManualDiscountValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ManualDiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PromotionID          *uuid.UUID      `gorm:"type:char(36)"`
	PromotionName        *string         `gorm:"type:varchar(150)"`
	PromotionDiscount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalDiscount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total                decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PaymentMethod string     `gorm:"type:varchar(20);not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'completed'"`
	ManagerID     *uuid.UUID `gorm:"type:char(36)"`
	ManagerName   *string    `gorm:"type:varchar(100)"`
	CreatedAt     time.Time  `gorm:"index"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	assignID(&o.ID)
	return nil
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:char(36);not null;index"`
	ProductID   uuid.UUID       `gorm:"type:char(36);not null;index"`
	ProductName string          `gorm:"type:varchar(200)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
