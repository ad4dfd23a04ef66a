package handler

import (
	"errors"
	"net/http"

	"beautypos/internal/apierror"
	"beautypos/internal/authgate"
	"beautypos/internal/dto"
	"beautypos/internal/middleware"
	"beautypos/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthorizationsHandler drives the caller's authorization gate. The
// confirming manager types their credentials on the requester's terminal,
// so every route acts on the caller's own gate.
type AuthorizationsHandler struct{ svc service.AuthorizationService }

func NewAuthorizationsHandler(svc service.AuthorizationService) *AuthorizationsHandler {
	return &AuthorizationsHandler{svc: svc}
}

// Pending godoc
// @Summary Gate state and the request waiting for credentials
// @Tags authorizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PendingAuthorizationResponse
// @Router /v1/authorizations [get]
func (h *AuthorizationsHandler) Pending(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Pending(middleware.GetClaims(c).UID()))
}

// Begin godoc
// @Summary Park an action until a manager confirms it
// @Tags authorizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.BeginAuthorizationRequest true "Action and payload"
// @Success 202 {object} dto.AuthorizationRequiredResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/authorizations [post]
func (h *AuthorizationsHandler) Begin(c *gin.Context) {
	var req dto.BeginAuthorizationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var payload any
	if len(req.Payload) > 0 {
		payload = req.Payload
	}
	parked, err := h.svc.Begin(c.Request.Context(), middleware.GetClaims(c).UID(), authgate.Action(req.Action), payload)
	if err != nil {
		if errors.Is(err, authgate.ErrUnknownAction) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.AuthorizationRequiredResponse{
		Detail:  "Manager authorization required",
		Request: parked,
	})
}

// Confirm godoc
// @Summary Submit manager credentials for the pending request
// @Description On success the parked action runs and its result is returned.
// @Tags authorizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ConfirmAuthorizationRequest true "Manager credentials"
// @Success 200 {object} authgate.Outcome
// @Failure 401 {object} authgate.Outcome
// @Failure 409 {object} apierror.APIError
// @Router /v1/authorizations/confirm [post]
func (h *AuthorizationsHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmAuthorizationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	out, err := h.svc.Confirm(c.Request.Context(), middleware.GetClaims(c).UID(), req)
	switch {
	case errors.Is(err, authgate.ErrNoPendingRequest):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case err != nil:
		respondError(c, err)
	case !out.Authorized:
		c.JSON(http.StatusUnauthorized, out)
	default:
		c.JSON(http.StatusOK, out)
	}
}

// Cancel godoc
// @Summary Drop the pending request
// @Tags authorizations
// @Security BearerAuth
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/authorizations [delete]
func (h *AuthorizationsHandler) Cancel(c *gin.Context) {
	if !h.svc.Cancel(middleware.GetClaims(c).UID()) {
		c.JSON(http.StatusConflict, apierror.New(authgate.ErrNoPendingRequest.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
