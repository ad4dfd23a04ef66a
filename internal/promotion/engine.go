// Package promotion decides which promotions apply to a cart and how much
// each one is worth. Everything here is a pure computation over the values
// passed in: the catalog, the cart and the clock are explicit inputs.
package promotion

import (
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Applied is the result of evaluating one promotion against a cart. It is
// derived on demand and never persisted.
type Applied struct {
	PromotionID    uuid.UUID           `json:"promotion_id"`
	PromotionName  string              `json:"promotion_name"`
	Type           model.PromotionType `json:"type"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	AppliedItems   []uuid.UUID         `json:"applied_items"`
}

// BundleMode controls how many bundle sets a bundle promotion pays out for.
type BundleMode string

const (
	// BundleSingleSet discounts one bundle regardless of how many complete
	// sets the cart holds.
	BundleSingleSet BundleMode = "single"
	// BundleMultiSet multiplies the bundle discount by the number of
	// complete sets in the cart.
	BundleMultiSet BundleMode = "multi"
)

// ParseBundleMode maps a config value to a mode, defaulting to single set.
func ParseBundleMode(s string) BundleMode {
	if BundleMode(s) == BundleMultiSet {
		return BundleMultiSet
	}
	return BundleSingleSet
}

type Engine struct {
	bundleMode BundleMode
	now        func() time.Time
}

type Option func(*Engine)

func WithBundleMode(m BundleMode) Option {
	return func(e *Engine) { e.bundleMode = m }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{bundleMode: BundleSingleSet, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Now() time.Time { return e.now() }

func (e *Engine) BundleMode() BundleMode { return e.bundleMode }

// ── Available ─────────────────────────────────────────────────────────────────

// Available keeps the promotions that are active now and whose target meets
// the cart. Targets are checked in order: product, then category, then
// bundle (every bundle product must be in the cart). A promotion with none
// of those targets is never offered automatically.
func (e *Engine) Available(items []model.CartItem, promotions []model.Promotion) []model.Promotion {
	now := e.now()
	out := make([]model.Promotion, 0, len(promotions))
	for _, p := range promotions {
		if !p.ActiveAt(now) {
			continue
		}
		if targetsCart(p, items) {
			out = append(out, p)
		}
	}
	return out
}

func targetsCart(p model.Promotion, items []model.CartItem) bool {
	switch {
	case p.ProductID != nil:
		return quantityOf(items, *p.ProductID) > 0
	case p.CategoryID != nil:
		for _, it := range items {
			if it.Product.CategoryID != nil && *it.Product.CategoryID == *p.CategoryID {
				return true
			}
		}
		return false
	case len(p.BundleProducts) > 0:
		for _, id := range p.BundleProducts {
			if quantityOf(items, id) == 0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ── Best ──────────────────────────────────────────────────────────────────────

// Best evaluates every promotion and returns the largest discount. On a tie
// the earlier promotion wins. It returns nil only for an empty list.
func (e *Engine) Best(items []model.CartItem, available []model.Promotion, products []model.Product) *Applied {
	var best *Applied
	for _, p := range available {
		a := e.Calculate(items, p, products)
		if best == nil || a.DiscountAmount.GreaterThan(best.DiscountAmount) {
			best = &a
		}
	}
	return best
}
