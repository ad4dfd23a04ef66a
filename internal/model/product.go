package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (c *Category) BeforeCreate(_ *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Product is a catalog entry. Once a cart line references it only Stock
// changes, and only when a sale completes.
type Product struct {
	ID             uuid.UUID       `gorm:"type:char(36);primaryKey"`
	Name           string          `gorm:"type:varchar(200);index;not null"`
	Code           string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	CategoryID     *uuid.UUID      `gorm:"type:char(36);index"`
	SalePrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock          int             `gorm:"not null;default:0"`
	MinimumStock   *int
	ExpirationDate *time.Time
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// CategoryName returns the category label or "" when uncategorised.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
