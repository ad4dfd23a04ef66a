// Package pricing combines the manual discount and the promotion discount of
// a cart into its final totals.
package pricing

import (
	"errors"
	"fmt"

	"beautypos/internal/model"
	"beautypos/internal/promotion"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrPromotionInactive = errors.New("promotion is not active")
)

var hundred = decimal.NewFromInt(100)

// Totals is the priced view of a cart. Both discounts may apply at once.
type Totals struct {
	Subtotal          decimal.Decimal    `json:"subtotal"`
	ManualDiscount    decimal.Decimal    `json:"manual_discount"`
	PromotionDiscount decimal.Decimal    `json:"promotion_discount"`
	TotalDiscount     decimal.Decimal    `json:"total_discount"`
	Total             decimal.Decimal    `json:"total"`
	Promotion         *promotion.Applied `json:"promotion"`
}

func Subtotal(items []model.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// ManualDiscountAmount caps a percentage at 100 and a fixed amount at the
// subtotal. Negative values and unknown types are worth nothing.
func ManualDiscountAmount(subtotal decimal.Decimal, md *model.ManualDiscount) decimal.Decimal {
	if md == nil || !md.Value.IsPositive() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	switch md.Type {
	case model.ManualPercentage:
		return subtotal.Mul(decimal.Min(md.Value, hundred)).Div(hundred)
	case model.ManualFixed:
		return decimal.Min(md.Value, subtotal)
	default:
		return decimal.Zero
	}
}

// Compute sums both discounts. The total never drops below zero.
func Compute(subtotal decimal.Decimal, md *model.ManualDiscount, applied *promotion.Applied) Totals {
	manual := ManualDiscountAmount(subtotal, md)
	promo := decimal.Zero
	if applied != nil && applied.DiscountAmount.IsPositive() {
		promo = applied.DiscountAmount
	}
	discount := manual.Add(promo)
	return Totals{
		Subtotal:          subtotal,
		ManualDiscount:    manual,
		PromotionDiscount: promo,
		TotalDiscount:     discount,
		Total:             decimal.Max(decimal.Zero, subtotal.Sub(discount)),
		Promotion:         applied,
	}
}

// ── Selection ─────────────────────────────────────────────────────────────────

// Selection is what the cashier chose for a cart. A nil PromotionID means
// "pick the best" unless promotions were switched off.
type Selection struct {
	Manual        *model.ManualDiscount
	PromotionID   *uuid.UUID
	PromotionsOff bool
}

// SelectionOf reads the selection stored on a cart.
func SelectionOf(c model.Cart) Selection {
	return Selection{Manual: c.ManualDiscount, PromotionID: c.PromotionID, PromotionsOff: c.PromotionsOff}
}

// WithoutManual drops the manual discount and keeps the promotion choice.
func (s Selection) WithoutManual() Selection {
	s.Manual = nil
	return s
}

// WithoutPromotion drops the promotion and keeps the manual discount.
func (s Selection) WithoutPromotion() Selection {
	s.PromotionID = nil
	s.PromotionsOff = true
	return s
}

// ── Calculator ────────────────────────────────────────────────────────────────

type Calculator struct {
	engine *promotion.Engine
}

func NewCalculator(engine *promotion.Engine) *Calculator {
	return &Calculator{engine: engine}
}

func (c *Calculator) Engine() *promotion.Engine { return c.engine }

// Resolve returns the promotion to apply. An explicitly chosen promotion is
// used even when another one would be worth more; otherwise the best
// available promotion is picked, or nil when none applies.
func (c *Calculator) Resolve(items []model.CartItem, catalog []model.Promotion, products []model.Product, sel Selection) (*promotion.Applied, error) {
	if sel.PromotionID != nil {
		for _, p := range catalog {
			if p.ID != *sel.PromotionID {
				continue
			}
			if !p.ActiveAt(c.engine.Now()) {
				return nil, fmt.Errorf("%w: %s", ErrPromotionInactive, p.Name)
			}
			a := c.engine.Calculate(items, p, products)
			return &a, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrPromotionNotFound, *sel.PromotionID)
	}
	if sel.PromotionsOff {
		return nil, nil
	}
	return c.engine.Best(items, c.engine.Available(items, catalog), products), nil
}

// Quote prices a cart for the given selection.
func (c *Calculator) Quote(items []model.CartItem, catalog []model.Promotion, products []model.Product, sel Selection) (Totals, error) {
	applied, err := c.Resolve(items, catalog, products, sel)
	if err != nil {
		return Totals{}, err
	}
	return Compute(Subtotal(items), sel.Manual, applied), nil
}
