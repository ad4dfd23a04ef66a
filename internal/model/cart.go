package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one cart line. Price is the product's sale price captured
// when the line was added.
type CartItem struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ManualDiscountType string

const (
	ManualPercentage ManualDiscountType = "percentage"
	ManualFixed      ManualDiscountType = "fixed"
)

// ManualDiscount is a one-off staff discount, independent of promotions.
type ManualDiscount struct {
	Type  ManualDiscountType `json:"type"`
	Value decimal.Decimal    `json:"value"`
}

// Cart is the in-progress sale of one logged-in user. It is not a database
// table; the cart store keeps it in Redis.
type Cart struct {
	UserID         uuid.UUID       `json:"user_id"`
	Items          []CartItem      `json:"items"`
	ManualDiscount *ManualDiscount `json:"manual_discount,omitempty"`
	// PromotionID pins an explicitly chosen promotion. When nil the best
	// available promotion is applied unless PromotionsOff is set.
	PromotionID   *uuid.UUID `json:"promotion_id,omitempty"`
	PromotionsOff bool       `json:"promotions_off,omitempty"`
	// Last manager approval granted on this cart; copied to the order.
	ManagerID   *uuid.UUID `json:"manager_id,omitempty"`
	ManagerName *string    `json:"manager_name,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Find returns the index of the line holding productID, or -1.
func (c *Cart) Find(productID uuid.UUID) int {
	for i, it := range c.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}
