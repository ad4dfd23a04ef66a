package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PromotionRequest is used for both create and full update. Only the fields
// relevant to Type are read by the discount engine.
type PromotionRequest struct {
	Name        string    `json:"name"        validate:"required,min=2,max=150"`
	Description *string   `json:"description"`
	Type        string    `json:"type"        validate:"required,oneof=discount_percentage discount_value buy_x_get_y fixed_price bundle"`
	StartDate   time.Time `json:"start_date"  validate:"required"`
	EndDate     time.Time `json:"end_date"    validate:"required"`
	IsActive    *bool     `json:"is_active"`

	ProductID  *string  `json:"product_id"  validate:"omitempty,uuid"`
	CategoryID *string  `json:"category_id" validate:"omitempty,uuid"`
	ProductIDs []string `json:"product_ids" validate:"omitempty,dive,uuid"`

	DiscountPercent *decimal.Decimal `json:"discount_percent" validate:"omitempty,min=0,max=100"`
	DiscountValue   *decimal.Decimal `json:"discount_value"   validate:"omitempty,min=0"`

	BuyQuantity              *int             `json:"buy_quantity"               validate:"omitempty,min=1"`
	GetQuantity              *int             `json:"get_quantity"               validate:"omitempty,min=1"`
	SecondaryProductID       *string          `json:"secondary_product_id"       validate:"omitempty,uuid"`
	SecondaryProductDiscount *decimal.Decimal `json:"secondary_product_discount" validate:"omitempty,min=0,max=100"`

	FixedPrice *decimal.Decimal `json:"fixed_price" validate:"omitempty,min=0"`

	BundleProducts []string         `json:"bundle_products" validate:"omitempty,dive,uuid"`
	BundlePrice    *decimal.Decimal `json:"bundle_price"    validate:"omitempty,min=0"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CartLineRequest describes a cart line for the stateless promotion
// endpoints. Price defaults to the product's current sale price.
type CartLineRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  int              `json:"quantity"   validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price"      validate:"omitempty,min=0"`
}

type ManualDiscountRequest struct {
	Type  string          `json:"type"  validate:"required,oneof=percentage fixed"`
	Value decimal.Decimal `json:"value" validate:"min=0"`
}

type AvailablePromotionsRequest struct {
	Items []CartLineRequest `json:"items" validate:"required,min=1,dive"`
}

type QuoteRequest struct {
	Items          []CartLineRequest      `json:"items"           validate:"required,min=1,dive"`
	ManualDiscount *ManualDiscountRequest `json:"manual_discount"`
	PromotionID    *string                `json:"promotion_id"    validate:"omitempty,uuid"`
	PromotionsOff  bool                   `json:"promotions_off"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PromotionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Type        string    `json:"type"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active"`

	ProductID  *string  `json:"product_id,omitempty"`
	CategoryID *string  `json:"category_id,omitempty"`
	ProductIDs []string `json:"product_ids,omitempty"`

	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountValue   *decimal.Decimal `json:"discount_value,omitempty"`

	BuyQuantity              *int             `json:"buy_quantity,omitempty"`
	GetQuantity              *int             `json:"get_quantity,omitempty"`
	SecondaryProductID       *string          `json:"secondary_product_id,omitempty"`
	SecondaryProductDiscount *decimal.Decimal `json:"secondary_product_discount,omitempty"`

	FixedPrice *decimal.Decimal `json:"fixed_price,omitempty"`

	BundleProducts []string         `json:"bundle_products,omitempty"`
	BundlePrice    *decimal.Decimal `json:"bundle_price,omitempty"`
}

// AvailablePromotionResponse pairs an available promotion with what it
// would be worth on the posted cart.
type AvailablePromotionResponse struct {
	Promotion      PromotionResponse `json:"promotion"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	Best           bool              `json:"best"`
}
