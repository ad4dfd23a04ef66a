package handler

import (
	"net/http"

	"beautypos/internal/dto"
	"beautypos/internal/middleware"
	"beautypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler serves the caller's own cart. Removals answer 202 until a
// manager confirms them on /v1/authorizations/confirm.
type CartHandler struct{ svc service.CartService }

func NewCartHandler(svc service.CartService) *CartHandler { return &CartHandler{svc: svc} }

func (h *CartHandler) reply(c *gin.Context, resp any, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Current cart with totals
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartResponse
// @Router /v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetClaims(c).UID())
	h.reply(c, resp, err)
}

// AddItem godoc
// @Summary Add a product to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AddCartItemRequest true "Item"
// @Success 200 {object} dto.CartResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), middleware.GetClaims(c).UID(), req)
	h.reply(c, resp, err)
}

// UpdateItem godoc
// @Summary Change a line quantity
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "Product ID"
// @Param body body dto.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} dto.CartResponse
// @Router /v1/cart/items/{product_id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateQuantity(c.Request.Context(), middleware.GetClaims(c).UID(), productID, req.Quantity)
	h.reply(c, resp, err)
}

// RemoveItem godoc
// @Summary Remove a line (manager authorization)
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param product_id path string true "Product ID"
// @Success 200 {object} dto.CartResponse
// @Success 202 {object} dto.AuthorizationRequiredResponse
// @Router /v1/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	resp, err := h.svc.RemoveItem(c.Request.Context(), middleware.GetClaims(c).UID(), productID, nil)
	h.reply(c, resp, err)
}

// Clear godoc
// @Summary Empty the cart (manager authorization)
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartResponse
// @Success 202 {object} dto.AuthorizationRequiredResponse
// @Router /v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	resp, err := h.svc.Clear(c.Request.Context(), middleware.GetClaims(c).UID(), nil)
	h.reply(c, resp, err)
}

// SetDiscount godoc
// @Summary Apply a manual discount
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ManualDiscountRequest true "Discount"
// @Success 200 {object} dto.CartResponse
// @Router /v1/cart/discount [put]
func (h *CartHandler) SetDiscount(c *gin.Context) {
	var req dto.ManualDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetManualDiscount(c.Request.Context(), middleware.GetClaims(c).UID(), req)
	h.reply(c, resp, err)
}

// RemoveDiscount godoc
// @Summary Drop the manual discount (manager authorization)
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartResponse
// @Success 202 {object} dto.AuthorizationRequiredResponse
// @Router /v1/cart/discount [delete]
func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	resp, err := h.svc.RemoveManualDiscount(c.Request.Context(), middleware.GetClaims(c).UID(), nil)
	h.reply(c, resp, err)
}

// SelectPromotion godoc
// @Summary Pin a promotion instead of the automatic best one
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SelectPromotionRequest true "Promotion"
// @Success 200 {object} dto.CartResponse
// @Router /v1/cart/promotion [put]
func (h *CartHandler) SelectPromotion(c *gin.Context) {
	var req dto.SelectPromotionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SelectPromotion(c.Request.Context(), middleware.GetClaims(c).UID(), uuid.MustParse(req.PromotionID))
	h.reply(c, resp, err)
}

// RemovePromotion godoc
// @Summary Turn promotions off for this cart (manager authorization)
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CartResponse
// @Success 202 {object} dto.AuthorizationRequiredResponse
// @Router /v1/cart/promotion [delete]
func (h *CartHandler) RemovePromotion(c *gin.Context) {
	resp, err := h.svc.RemovePromotion(c.Request.Context(), middleware.GetClaims(c).UID(), nil)
	h.reply(c, resp, err)
}

// Checkout godoc
// @Summary Complete the sale on the caller's open till
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CheckoutRequest true "Payment"
// @Success 201 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), middleware.GetClaims(c).Actor(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
