package handler

import (
	"net/http"

	"beautypos/internal/dto"
	"beautypos/internal/middleware"
	"beautypos/internal/service"

	"github.com/gin-gonic/gin"
)

type CashiersHandler struct{ svc service.CashierService }

func NewCashiersHandler(svc service.CashierService) *CashiersHandler {
	return &CashiersHandler{svc: svc}
}

// List godoc
// @Summary List cash registers
// @Tags cashiers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.CashierResponse
// @Router /v1/cashiers [get]
func (h *CashiersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a cash register with its current state
// @Tags cashiers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Success 200 {object} dto.CashierResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cashiers/{id} [get]
func (h *CashiersHandler) Get(c *gin.Context) {
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
// @Summary Register a cash register
// @Tags cashiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCashierRequest true "Cashier"
// @Success 201 {object} dto.CashierResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashiers [post]
func (h *CashiersHandler) Create(c *gin.Context) {
	var req dto.CreateCashierRequest
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
// @Summary Update a cash register
// @Tags cashiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Param body body dto.UpdateCashierRequest true "Fields to change"
// @Success 200 {object} dto.CashierResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashiers/{id} [put]
func (h *CashiersHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCashierRequest
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

// Open godoc
// @Summary Open the till with a float
// @Tags cashiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Param body body dto.OpenCashierRequest true "Opening amount"
// @Success 201 {object} model.CashierOperation
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashiers/{id}/open [post]
func (h *CashiersHandler) Open(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.OpenCashierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, err := h.svc.Open(c.Request.Context(), id, middleware.GetClaims(c).Actor(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// Deposit godoc
// @Summary Put cash into an open till
// @Tags cashiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Param body body dto.MovementRequest true "Amount"
// @Success 201 {object} model.CashierOperation
// @Router /v1/cashiers/{id}/deposit [post]
func (h *CashiersHandler) Deposit(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, err := h.svc.Deposit(c.Request.Context(), id, middleware.GetClaims(c).Actor(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// Withdrawal godoc
// @Summary Take cash out of an open till
// @Tags cashiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Param body body dto.MovementRequest true "Amount"
// @Success 201 {object} model.CashierOperation
// @Router /v1/cashiers/{id}/withdrawal [post]
func (h *CashiersHandler) Withdrawal(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	op, err := h.svc.Withdrawal(c.Request.Context(), id, middleware.GetClaims(c).Actor(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// Close godoc
// @Summary Count and close the till
// @Description A shortage needs a reason and answers 202 until a manager confirms it.
// @Tags cashiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Param body body dto.CloseCashierRequest true "Counted cash"
// @Success 200 {object} dto.CloseCashierResponse
// @Success 202 {object} dto.AuthorizationRequiredResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cashiers/{id}/close [post]
func (h *CashiersHandler) Close(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CloseCashierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), id, middleware.GetClaims(c).Actor(), req, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Balance godoc
// @Summary Replay the operation log into the current balance
// @Tags cashiers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Success 200 {object} reconciliation.Balance
// @Router /v1/cashiers/{id}/balance [get]
func (h *CashiersHandler) Balance(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Balance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Operation history grouped by day
// @Tags cashiers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Success 200 {object} dto.CashierHistoryResponse
// @Router /v1/cashiers/{id}/history [get]
func (h *CashiersHandler) History(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Shortage godoc
// @Summary Difference and shortage of a close operation
// @Tags cashiers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cashier ID"
// @Param op_id path string true "Close operation ID"
// @Success 200 {object} dto.ShortageResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cashiers/{id}/operations/{op_id}/shortage [get]
func (h *CashiersHandler) Shortage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	opID, ok := uuidParam(c, "op_id")
	if !ok {
		return
	}
	resp, err := h.svc.Shortage(c.Request.Context(), id, opID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
