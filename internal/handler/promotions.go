package handler

import (
	"net/http"

	"beautypos/internal/dto"
	"beautypos/internal/service"

	"github.com/gin-gonic/gin"
)

type PromotionsHandler struct{ svc service.PromotionService }

func NewPromotionsHandler(svc service.PromotionService) *PromotionsHandler {
	return &PromotionsHandler{svc: svc}
}

// List godoc
// @Summary List promotions
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PromotionResponse
// @Router /v1/promotions [get]
func (h *PromotionsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a promotion
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promotion ID"
// @Success 200 {object} dto.PromotionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/promotions/{id} [get]
func (h *PromotionsHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create a promotion
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PromotionRequest true "Promotion"
// @Success 201 {object} dto.PromotionResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/promotions [post]
func (h *PromotionsHandler) Create(c *gin.Context) {
	var req dto.PromotionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Replace a promotion
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promotion ID"
// @Param body body dto.PromotionRequest true "Promotion"
// @Success 200 {object} dto.PromotionResponse
// @Router /v1/promotions/{id} [put]
func (h *PromotionsHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.PromotionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetActive godoc
// @Summary Enable or disable a promotion
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promotion ID"
// @Param body body dto.SetActiveRequest true "Active flag"
// @Success 200 {object} dto.PromotionResponse
// @Router /v1/promotions/{id}/active [patch]
func (h *PromotionsHandler) SetActive(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a promotion
// @Tags promotions
// @Security BearerAuth
// @Param id path string true "Promotion ID"
// @Success 204
// @Router /v1/promotions/{id} [delete]
func (h *PromotionsHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Available godoc
// @Summary Promotions a cart qualifies for, best one flagged
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AvailablePromotionsRequest true "Cart lines"
// @Success 200 {array} dto.AvailablePromotionResponse
// @Router /v1/promotions/available [post]
func (h *PromotionsHandler) Available(c *gin.Context) {
	var req dto.AvailablePromotionsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Available(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Quote godoc
// @Summary Price a cart with a manual discount and promotion choice
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.QuoteRequest true "Cart and discounts"
// @Success 200 {object} pricing.Totals
// @Router /v1/promotions/quote [post]
func (h *PromotionsHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
