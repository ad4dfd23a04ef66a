package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cashier is a till. Whether it is open is never stored; it is derived from
// its operation log.
type Cashier struct {
	ID               uuid.UUID  `gorm:"type:char(36);primaryKey"`
	Name             string     `gorm:"type:varchar(100);not null"`
	RegisterNumber   string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	Location         string     `gorm:"type:varchar(150)"`
	IsActive         bool       `gorm:"not null;default:true"`
	AssignedUserID   *uuid.UUID `gorm:"type:char(36);index"`
	AssignedUserName *string    `gorm:"type:varchar(100)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (c *Cashier) BeforeCreate(_ *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type OperationType string

const (
	OperationOpen       OperationType = "open"
	OperationClose      OperationType = "close"
	OperationDeposit    OperationType = "deposit"
	OperationWithdrawal OperationType = "withdrawal"
)

// CashierOperation is an immutable entry in a till's log. Operations are
// only ever appended; a correction is a new operation.
type CashierOperation struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	CashierID     uuid.UUID       `gorm:"type:char(36);not null;index" json:"cashier_id"`
	UserID        uuid.UUID       `gorm:"type:char(36);not null" json:"user_id"`
	UserName      string          `gorm:"type:varchar(100)" json:"user_name"`
	OperationType OperationType   `gorm:"type:varchar(20);not null" json:"operation_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Timestamp     time.Time       `gorm:"column:occurred_at;not null;index" json:"timestamp"`

	// Set on close
	OpeningBalance  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"opening_balance,omitempty"`
	ClosingBalance  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_balance,omitempty"`
	ExpectedBalance *decimal.Decimal `gorm:"type:decimal(12,2)" json:"expected_balance,omitempty"`

	Reason            *string    `gorm:"type:text" json:"reason,omitempty"`
	DiscrepancyReason *string    `gorm:"type:text" json:"discrepancy_reason,omitempty"`
	ManagerID         *uuid.UUID `gorm:"type:char(36)" json:"manager_id,omitempty"`
	ManagerName       *string    `gorm:"type:varchar(100)" json:"manager_name,omitempty"`
}

func (o *CashierOperation) BeforeCreate(_ *gorm.DB) error {
	assignID(&o.ID)
	return nil
}
