package service_test

import (
	"context"
	"testing"

	"beautypos/internal/authgate"
	"beautypos/internal/dto"
	"beautypos/internal/model"
	"beautypos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addToCart(t *testing.T, f *fixture, p model.Product, qty int) *dto.CartResponse {
	t.Helper()
	resp, err := f.cart.AddItem(context.Background(), f.employee.ID, dto.AddCartItemRequest{ProductID: p.ID.String(), Quantity: qty})
	require.NoError(t, err)
	return resp
}

func requireAuthorization(t *testing.T, err error, action authgate.Action) {
	t.Helper()
	var authErr *service.AuthorizationRequiredError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, service.ErrAuthorizationRequired)
	assert.Equal(t, action, authErr.Request.Action)
}

func TestCartAppliesBestPromotionAndManualDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.products.add("SH", 20, 10, nil)
	f.addPromotion(model.Promotion{Name: "Ten off", Type: model.PromotionPercentage, ProductID: &shampoo.ID, DiscountPercent: decPtr("10")})
	f.addPromotion(model.Promotion{Name: "Quarter off", Type: model.PromotionPercentage, ProductID: &shampoo.ID, DiscountPercent: decPtr("25")})

	cart := addToCart(t, f, shampoo, 1)
	cart = addToCart(t, f, shampoo, 1)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, dec("40").Equal(cart.Totals.Subtotal))
	assert.True(t, dec("10").Equal(cart.Totals.PromotionDiscount))
	require.NotNil(t, cart.Totals.Promotion)
	assert.Equal(t, "Quarter off", cart.Totals.Promotion.PromotionName)

	cart, err := f.cart.SetManualDiscount(ctx, f.employee.ID, dto.ManualDiscountRequest{Type: "fixed", Value: dec("5")})
	require.NoError(t, err)
	assert.True(t, dec("5").Equal(cart.Totals.ManualDiscount))
	assert.True(t, dec("15").Equal(cart.Totals.TotalDiscount))
	assert.True(t, dec("25").Equal(cart.Totals.Total))
}

func TestAddItemRejectsMoreThanStock(t *testing.T) {
	f := newFixture(t)
	serum := f.products.add("SE", 50, 1, nil)

	_, err := f.cart.AddItem(context.Background(), f.employee.ID, dto.AddCartItemRequest{ProductID: serum.ID.String(), Quantity: 2})

	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestManualDiscountRemovalNeedsManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.products.add("SH", 20, 10, nil)
	addToCart(t, f, shampoo, 2)
	_, err := f.cart.SetManualDiscount(ctx, f.employee.ID, dto.ManualDiscountRequest{Type: "percentage", Value: dec("10")})
	require.NoError(t, err)

	_, err = f.cart.RemoveManualDiscount(ctx, f.employee.ID, nil)
	requireAuthorization(t, err, authgate.ActionRemoveManualDiscount)
	assert.Equal(t, authgate.StateAwaitingCredentials, f.authz.Pending(f.employee.ID).State)

	unchanged, err := f.cart.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	require.NotNil(t, unchanged.ManualDiscount)

	result := f.approve(t)
	cart, ok := result.(*dto.CartResponse)
	require.True(t, ok)
	assert.Nil(t, cart.ManualDiscount)
	assert.True(t, dec("40").Equal(cart.Totals.Total))
	assert.Equal(t, authgate.StateIdle, f.authz.Pending(f.employee.ID).State)

	stored, err := f.carts.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ManagerName)
	assert.Equal(t, f.manager.Name, *stored.ManagerName)
}

func TestRejectedCredentialsLeaveCartUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.products.add("SH", 20, 10, nil)
	addToCart(t, f, shampoo, 1)

	_, err := f.cart.RemoveItem(ctx, f.employee.ID, shampoo.ID, nil)
	requireAuthorization(t, err, authgate.ActionRemoveCartItem)

	out, err := f.authz.Confirm(ctx, f.employee.ID, dto.ConfirmAuthorizationRequest{Identifier: f.manager.Username, Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, out.Authorized)
	assert.Equal(t, authgate.StateIdle, f.authz.Pending(f.employee.ID).State)

	_, err = f.cart.RemoveItem(ctx, f.employee.ID, shampoo.ID, nil)
	requireAuthorization(t, err, authgate.ActionRemoveCartItem)
	out, err = f.authz.Confirm(ctx, f.employee.ID, dto.ConfirmAuthorizationRequest{Identifier: f.employee.Username, Password: "employee-pass"})
	require.NoError(t, err)
	assert.False(t, out.Authorized)
	assert.Contains(t, out.Message, "not allowed")

	cart, err := f.cart.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestRemoveItemMissingLine(t *testing.T) {
	f := newFixture(t)

	_, err := f.cart.RemoveItem(context.Background(), f.employee.ID, uuid.New(), nil)

	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, authgate.StateIdle, f.authz.Pending(f.employee.ID).State)
}

func TestRemovePromotionKeepsManualDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.products.add("SH", 20, 10, nil)
	f.addPromotion(model.Promotion{Name: "Quarter off", Type: model.PromotionPercentage, ProductID: &shampoo.ID, DiscountPercent: decPtr("25")})
	addToCart(t, f, shampoo, 2)
	_, err := f.cart.SetManualDiscount(ctx, f.employee.ID, dto.ManualDiscountRequest{Type: "fixed", Value: dec("5")})
	require.NoError(t, err)

	_, err = f.cart.RemovePromotion(ctx, f.employee.ID, nil)
	requireAuthorization(t, err, authgate.ActionRemovePromotion)
	cart := f.approve(t).(*dto.CartResponse)

	assert.True(t, cart.PromotionsOff)
	assert.Nil(t, cart.Totals.Promotion)
	assert.True(t, cart.Totals.PromotionDiscount.IsZero())
	assert.True(t, dec("5").Equal(cart.Totals.ManualDiscount))
	assert.True(t, dec("35").Equal(cart.Totals.Total))
}

func TestSelectedPromotionWinsUntilItLapses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.products.add("SH", 20, 10, nil)
	small := f.addPromotion(model.Promotion{Name: "Ten off", Type: model.PromotionPercentage, ProductID: &shampoo.ID, DiscountPercent: decPtr("10")})
	f.addPromotion(model.Promotion{Name: "Quarter off", Type: model.PromotionPercentage, ProductID: &shampoo.ID, DiscountPercent: decPtr("25")})
	addToCart(t, f, shampoo, 2)

	cart, err := f.cart.SelectPromotion(ctx, f.employee.ID, small.ID)
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(cart.Totals.PromotionDiscount))
	assert.Empty(t, cart.Warning)

	f.promotions.promos[0].IsActive = false
	cart, err = f.cart.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, cart.Warning)
	assert.True(t, dec("10").Equal(cart.Totals.PromotionDiscount))

	_, err = f.cart.SelectPromotion(ctx, f.employee.ID, small.ID)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCheckoutRequiresOpenCashier(t *testing.T) {
	f := newFixture(t)
	shampoo := f.products.add("SH", 20, 10, nil)
	addToCart(t, f, shampoo, 1)

	_, err := f.cart.Checkout(context.Background(), f.actor(), dto.CheckoutRequest{PaymentMethod: model.PaymentCash})

	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Empty(t, f.orders.orders)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.openTill(t, 100)

	_, err := f.cart.Checkout(context.Background(), f.actor(), dto.CheckoutRequest{PaymentMethod: model.PaymentCash})

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCheckoutCreatesOrderAndFeedsTill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	till := f.openTill(t, 100)
	shampoo := f.products.add("SH", 20, 10, nil)
	mask := f.products.add("MK", 15, 5, nil)
	f.addPromotion(model.Promotion{Name: "Quarter off", Type: model.PromotionPercentage, ProductID: &shampoo.ID, DiscountPercent: decPtr("25")})
	addToCart(t, f, shampoo, 3)
	addToCart(t, f, mask, 1)
	_, err := f.cart.RemoveItem(ctx, f.employee.ID, mask.ID, nil)
	requireAuthorization(t, err, authgate.ActionRemoveCartItem)
	f.approve(t)

	email := "client@example.com"
	order, err := f.cart.Checkout(ctx, f.actor(), dto.CheckoutRequest{PaymentMethod: model.PaymentCash, CustomerEmail: &email})
	require.NoError(t, err)

	assert.Equal(t, 1, order.TicketNumber)
	require.NotNil(t, order.CashierID)
	assert.Equal(t, till.ID.String(), *order.CashierID)
	assert.True(t, dec("60").Equal(order.Subtotal))
	assert.True(t, dec("15").Equal(order.PromotionDiscount))
	assert.True(t, dec("45").Equal(order.Total))
	require.NotNil(t, order.PromotionName)
	assert.Equal(t, "Quarter off", *order.PromotionName)
	require.NotNil(t, order.ManagerName)
	assert.Equal(t, f.manager.Name, *order.ManagerName)
	require.Len(t, order.Items, 1)

	assert.Equal(t, 7, f.products.products[shampoo.ID].Stock)
	assert.Equal(t, 5, f.products.products[mask.ID].Stock)
	require.Len(t, f.queue.receipts, 1)
	assert.Equal(t, order.ID, f.queue.receipts[0].OrderID)

	cart, err := f.cart.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	bal, err := f.cashier.Balance(ctx, till.ID)
	require.NoError(t, err)
	assert.True(t, dec("45").Equal(bal.Sales))
	assert.True(t, dec("145").Equal(bal.Expected))
}

func TestClearCartNeedsManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.products.add("SH", 20, 10, nil)
	addToCart(t, f, shampoo, 2)

	_, err := f.cart.Clear(ctx, f.employee.ID, nil)
	requireAuthorization(t, err, authgate.ActionClearCart)
	cart := f.approve(t).(*dto.CartResponse)

	assert.Empty(t, cart.Items)
	assert.True(t, cart.Totals.Total.IsZero())
}

func TestClearResetsPromotionSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shampoo := f.products.add("SH", 20, 10, nil)
	promo := f.addPromotion(model.Promotion{Name: "Ten off", Type: model.PromotionPercentage, ProductID: &shampoo.ID, DiscountPercent: decPtr("10")})

	pinned, err := f.cart.SelectPromotion(ctx, f.employee.ID, promo.ID)
	require.NoError(t, err)
	require.NotNil(t, pinned.PromotionID)

	cleared, err := f.cart.Clear(ctx, f.employee.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.PromotionID)
	assert.False(t, cleared.PromotionsOff)

	addToCart(t, f, shampoo, 1)
	cart, err := f.cart.Get(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Nil(t, cart.PromotionID)
	require.NotNil(t, cart.Totals.Promotion)
	assert.Equal(t, "Ten off", cart.Totals.Promotion.PromotionName)
}
