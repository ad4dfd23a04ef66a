package promotion

import (
	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculate computes what promotion p is worth for the cart. It never fails:
// a promotion that does not match, or lacks the fields its type needs, is
// worth zero with no applied items. products is the catalog used to price a
// product that has no cart line.
func (e *Engine) Calculate(items []model.CartItem, p model.Promotion, products []model.Product) Applied {
	var (
		amount  decimal.Decimal
		applied []uuid.UUID
	)
	switch p.Type {
	case model.PromotionPercentage:
		amount, applied = percentageDiscount(items, p)
	case model.PromotionValue:
		amount, applied = valueDiscount(items, p)
	case model.PromotionFixedPrice:
		amount, applied = fixedPriceDiscount(items, p)
	case model.PromotionBuyXGetY:
		amount, applied = buyXGetYDiscount(items, p, products)
	case model.PromotionBundle:
		amount, applied = e.bundleDiscount(items, p, products)
	}

	result := Applied{
		PromotionID:    p.ID,
		PromotionName:  p.Name,
		Type:           p.Type,
		DiscountAmount: decimal.Zero,
		AppliedItems:   []uuid.UUID{},
	}
	if amount.IsPositive() {
		result.DiscountAmount = amount
		result.AppliedItems = applied
	}
	return result
}

// ── Per-type rules ────────────────────────────────────────────────────────────

func percentageDiscount(items []model.CartItem, p model.Promotion) (decimal.Decimal, []uuid.UUID) {
	pct := clampPercent(valueOr(p.DiscountPercent, decimal.Zero))
	total := decimal.Zero
	var applied []uuid.UUID
	for _, it := range items {
		if !matchesTarget(it, p) {
			continue
		}
		total = total.Add(it.Subtotal().Mul(pct).Div(hundred))
		applied = appendUnique(applied, it.Product.ID)
	}
	return total, applied
}

// valueDiscount spreads the fixed value over every line of the same product
// in proportion to the line's quantity, never exceeding the line's value.
func valueDiscount(items []model.CartItem, p model.Promotion) (decimal.Decimal, []uuid.UUID) {
	value := valueOr(p.DiscountValue, decimal.Zero)
	if !value.IsPositive() {
		return decimal.Zero, nil
	}
	total := decimal.Zero
	var applied []uuid.UUID
	for _, it := range items {
		if !matchesTarget(it, p) || it.Quantity <= 0 {
			continue
		}
		productQty := quantityOf(items, it.Product.ID)
		share := value.Mul(decimal.NewFromInt(int64(it.Quantity))).Div(decimal.NewFromInt(int64(productQty)))
		total = total.Add(decimal.Min(it.Subtotal(), share))
		applied = appendUnique(applied, it.Product.ID)
	}
	return total, applied
}

// fixedPriceDiscount only supports a product target.
func fixedPriceDiscount(items []model.CartItem, p model.Promotion) (decimal.Decimal, []uuid.UUID) {
	if p.ProductID == nil || p.FixedPrice == nil {
		return decimal.Zero, nil
	}
	total := decimal.Zero
	var applied []uuid.UUID
	for _, it := range items {
		if it.Product.ID != *p.ProductID {
			continue
		}
		diff := it.Price.Sub(*p.FixedPrice)
		if !diff.IsPositive() {
			continue
		}
		total = total.Add(diff.Mul(decimal.NewFromInt(int64(it.Quantity))))
		applied = appendUnique(applied, it.Product.ID)
	}
	return total, applied
}

func buyXGetYDiscount(items []model.CartItem, p model.Promotion, products []model.Product) (decimal.Decimal, []uuid.UUID) {
	if p.ProductID == nil {
		return decimal.Zero, nil
	}
	buy, get := intOr(p.BuyQuantity, 0), intOr(p.GetQuantity, 0)
	if buy <= 0 || get <= 0 {
		return decimal.Zero, nil
	}
	primary := *p.ProductID
	secondary := primary
	if p.SecondaryProductID != nil {
		secondary = *p.SecondaryProductID
	}
	pct := clampPercent(valueOr(p.SecondaryProductDiscount, hundred))

	primaryQty := quantityOf(items, primary)
	var sets int
	if secondary == primary {
		sets = primaryQty / (buy + get)
	} else {
		sets = min(primaryQty/buy, quantityOf(items, secondary)/get)
	}
	if sets <= 0 {
		return decimal.Zero, nil
	}

	price, ok := unitPrice(items, products, secondary)
	if !ok {
		return decimal.Zero, nil
	}
	free := decimal.NewFromInt(int64(get * sets))
	amount := price.Mul(pct).Div(hundred).Mul(free)

	applied := []uuid.UUID{primary}
	if secondary != primary {
		applied = append(applied, secondary)
	}
	return amount, applied
}

// bundleDiscount needs every bundle product in the cart. The saving is the
// sum of one unit of each product minus the bundle price, paid once or per
// complete set depending on the engine's bundle mode.
func (e *Engine) bundleDiscount(items []model.CartItem, p model.Promotion, products []model.Product) (decimal.Decimal, []uuid.UUID) {
	if len(p.BundleProducts) == 0 || p.BundlePrice == nil {
		return decimal.Zero, nil
	}
	sum := decimal.Zero
	sets := -1
	for _, id := range p.BundleProducts {
		qty := quantityOf(items, id)
		if qty == 0 {
			return decimal.Zero, nil
		}
		price, ok := unitPrice(items, products, id)
		if !ok {
			return decimal.Zero, nil
		}
		sum = sum.Add(price)
		if sets < 0 || qty < sets {
			sets = qty
		}
	}
	saving := sum.Sub(*p.BundlePrice)
	if !saving.IsPositive() {
		return decimal.Zero, nil
	}
	if e.bundleMode == BundleMultiSet {
		saving = saving.Mul(decimal.NewFromInt(int64(sets)))
	}
	applied := make([]uuid.UUID, 0, len(p.BundleProducts))
	for _, id := range p.BundleProducts {
		applied = appendUnique(applied, id)
	}
	return saving, applied
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// matchesTarget is used by the percentage and value rules, which accept a
// product, a category or a product list as target.
func matchesTarget(it model.CartItem, p model.Promotion) bool {
	if p.ProductID != nil && it.Product.ID == *p.ProductID {
		return true
	}
	if p.CategoryID != nil && it.Product.CategoryID != nil && *it.Product.CategoryID == *p.CategoryID {
		return true
	}
	for _, id := range p.ProductIDs {
		if it.Product.ID == id {
			return true
		}
	}
	return false
}

func quantityOf(items []model.CartItem, productID uuid.UUID) int {
	n := 0
	for _, it := range items {
		if it.Product.ID == productID && it.Quantity > 0 {
			n += it.Quantity
		}
	}
	return n
}

// unitPrice prefers the price captured on the cart line and falls back to
// the catalog sale price.
func unitPrice(items []model.CartItem, products []model.Product, productID uuid.UUID) (decimal.Decimal, bool) {
	for _, it := range items {
		if it.Product.ID == productID {
			return it.Price, true
		}
	}
	for _, p := range products {
		if p.ID == productID {
			return p.SalePrice, true
		}
	}
	return decimal.Zero, false
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

func valueOr(d *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if d == nil {
		return def
	}
	return *d
}

func intOr(n *int, def int) int {
	if n == nil {
		return def
	}
	return *n
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}
