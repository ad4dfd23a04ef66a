package pricing_test

import (
	"errors"
	"testing"
	"time"

	"beautypos/internal/model"
	"beautypos/internal/pricing"
	"beautypos/internal/promotion"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func calculator() *pricing.Calculator {
	return pricing.NewCalculator(promotion.NewEngine(promotion.WithClock(func() time.Time { return testNow })))
}

func cart() ([]model.CartItem, model.Product) {
	p := model.Product{ID: uuid.New(), Name: "serum", SalePrice: dec("25")}
	return []model.CartItem{{Product: p, Quantity: 2, Price: p.SalePrice}}, p
}

func percentOff(p model.Product, pct string) model.Promotion {
	id := p.ID
	return model.Promotion{
		ID: uuid.New(), Name: "promo " + pct, Type: model.PromotionPercentage,
		StartDate: testNow.Add(-time.Hour), EndDate: testNow.Add(time.Hour), IsActive: true,
		ProductID: &id, DiscountPercent: decPtr(pct),
	}
}

// ── Manual discount ───────────────────────────────────────────────────────────

func TestManualDiscountAmount(t *testing.T) {
	sub := dec("50")
	cases := []struct {
		name string
		md   *model.ManualDiscount
		want string
	}{
		{"none", nil, "0"},
		{"percentage", &model.ManualDiscount{Type: model.ManualPercentage, Value: dec("10")}, "5"},
		{"percentage capped", &model.ManualDiscount{Type: model.ManualPercentage, Value: dec("250")}, "50"},
		{"fixed", &model.ManualDiscount{Type: model.ManualFixed, Value: dec("12.5")}, "12.5"},
		{"fixed capped at subtotal", &model.ManualDiscount{Type: model.ManualFixed, Value: dec("100")}, "50"},
		{"negative", &model.ManualDiscount{Type: model.ManualFixed, Value: dec("-3")}, "0"},
		{"unknown type", &model.ManualDiscount{Type: "coupon", Value: dec("3")}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pricing.ManualDiscountAmount(sub, tc.md)
			assert.True(t, dec(tc.want).Equal(got), got.String())
		})
	}
}

// ── Compute ───────────────────────────────────────────────────────────────────

func TestComputeNeverGoesNegative(t *testing.T) {
	applied := &promotion.Applied{DiscountAmount: dec("30")}
	md := &model.ManualDiscount{Type: model.ManualFixed, Value: dec("100")}

	got := pricing.Compute(dec("50"), md, applied)

	assert.True(t, dec("50").Equal(got.ManualDiscount))
	assert.True(t, dec("30").Equal(got.PromotionDiscount))
	assert.True(t, dec("80").Equal(got.TotalDiscount))
	assert.True(t, got.Total.IsZero())
}

func TestComputeSumsBothDiscounts(t *testing.T) {
	applied := &promotion.Applied{DiscountAmount: dec("5")}
	md := &model.ManualDiscount{Type: model.ManualPercentage, Value: dec("10")}

	got := pricing.Compute(dec("100"), md, applied)

	assert.True(t, dec("15").Equal(got.TotalDiscount))
	assert.True(t, dec("85").Equal(got.Total))
	assert.Same(t, applied, got.Promotion)
}

// ── Selection ─────────────────────────────────────────────────────────────────

func TestRemovingOneDiscountKeepsTheOther(t *testing.T) {
	items, p := cart()
	catalog := []model.Promotion{percentOff(p, "10")}
	md := &model.ManualDiscount{Type: model.ManualFixed, Value: dec("4")}
	sel := pricing.Selection{Manual: md}
	calc := calculator()

	both, err := calc.Quote(items, catalog, nil, sel)
	require.NoError(t, err)
	assert.True(t, dec("9").Equal(both.TotalDiscount), both.TotalDiscount.String())

	noManual, err := calc.Quote(items, catalog, nil, sel.WithoutManual())
	require.NoError(t, err)
	assert.True(t, noManual.ManualDiscount.IsZero())
	assert.True(t, dec("5").Equal(noManual.PromotionDiscount))

	noPromo, err := calc.Quote(items, catalog, nil, sel.WithoutPromotion())
	require.NoError(t, err)
	assert.True(t, noPromo.PromotionDiscount.IsZero())
	assert.Nil(t, noPromo.Promotion)
	assert.True(t, dec("4").Equal(noPromo.ManualDiscount))
}

func TestExplicitPromotionWinsEvenIfSmaller(t *testing.T) {
	items, p := cart()
	small := percentOff(p, "10")
	large := percentOff(p, "40")
	calc := calculator()

	auto, err := calc.Resolve(items, []model.Promotion{small, large}, nil, pricing.Selection{})
	require.NoError(t, err)
	require.NotNil(t, auto)
	assert.Equal(t, large.ID, auto.PromotionID)

	chosen, err := calc.Resolve(items, []model.Promotion{small, large}, nil, pricing.Selection{PromotionID: &small.ID})
	require.NoError(t, err)
	require.NotNil(t, chosen)
	assert.Equal(t, small.ID, chosen.PromotionID)
	assert.True(t, dec("5").Equal(chosen.DiscountAmount))
}

func TestExplicitPromotionErrors(t *testing.T) {
	items, p := cart()
	expired := percentOff(p, "10")
	expired.EndDate = testNow.Add(-time.Minute)
	calc := calculator()

	missing := uuid.New()
	_, err := calc.Resolve(items, []model.Promotion{expired}, nil, pricing.Selection{PromotionID: &missing})
	assert.True(t, errors.Is(err, pricing.ErrPromotionNotFound))

	_, err = calc.Resolve(items, []model.Promotion{expired}, nil, pricing.Selection{PromotionID: &expired.ID})
	assert.True(t, errors.Is(err, pricing.ErrPromotionInactive))
}

func TestNoAvailablePromotionResolvesToNil(t *testing.T) {
	items, _ := cart()
	got, err := calculator().Resolve(items, nil, nil, pricing.Selection{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSubtotal(t *testing.T) {
	items, _ := cart()
	assert.True(t, dec("50").Equal(pricing.Subtotal(items)))
	assert.True(t, pricing.Subtotal(nil).IsZero())
}
