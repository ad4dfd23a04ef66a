package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PromotionType string

const (
	PromotionPercentage PromotionType = "discount_percentage"
	PromotionValue      PromotionType = "discount_value"
	PromotionBuyXGetY   PromotionType = "buy_x_get_y"
	PromotionFixedPrice PromotionType = "fixed_price"
	PromotionBundle     PromotionType = "bundle"
)

// Promotion is a time-bounded discount rule. Which optional fields matter
// depends on Type; a promotion missing the fields its type needs yields no
// discount rather than an error.
type Promotion struct {
	ID          uuid.UUID     `gorm:"type:char(36);primaryKey"`
	Name        string        `gorm:"type:varchar(150);not null"`
	Description *string       `gorm:"type:text"`
	Type        PromotionType `gorm:"type:varchar(32);not null;index"`
	StartDate   time.Time     `gorm:"not null"`
	EndDate     time.Time     `gorm:"not null"`
	IsActive    bool          `gorm:"not null;default:true"`

	// Targets for percentage / value promotions
	ProductID  *uuid.UUID  `gorm:"type:char(36);index"`
	CategoryID *uuid.UUID  `gorm:"type:char(36);index"`
	ProductIDs []uuid.UUID `gorm:"type:text;serializer:json"`

	DiscountPercent *decimal.Decimal `gorm:"type:decimal(5,2)"`
	DiscountValue   *decimal.Decimal `gorm:"type:decimal(12,2)"`

	// buy_x_get_y
	BuyQuantity              *int
	GetQuantity              *int
	SecondaryProductID       *uuid.UUID       `gorm:"type:char(36)"`
	SecondaryProductDiscount *decimal.Decimal `gorm:"type:decimal(5,2)"`

	FixedPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`

	BundleProducts []uuid.UUID      `gorm:"type:text;serializer:json"`
	BundlePrice    *decimal.Decimal `gorm:"type:decimal(12,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Promotion) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ActiveAt reports whether the promotion is switched on and now falls inside
// its validity window, both ends inclusive.
func (p Promotion) ActiveAt(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}
