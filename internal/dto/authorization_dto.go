package dto

import (
	"encoding/json"

	"beautypos/internal/authgate"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BeginAuthorizationRequest struct {
	Action  string          `json:"action"  validate:"required,oneof=remove_manual_discount remove_promotion remove_cart_item clear_cart close_cashier_shortage logout_open_cashier"`
	Payload json.RawMessage `json:"payload"`
}

// ConfirmAuthorizationRequest carries the approving manager's credentials.
// Identifier is a username or a user id.
type ConfirmAuthorizationRequest struct {
	Identifier string `json:"identifier" validate:"required,min=1"`
	Password   string `json:"password"   validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// AuthorizationRequiredResponse is returned with 202 when an action has been
// parked until a manager confirms it.
type AuthorizationRequiredResponse struct {
	Detail  string           `json:"detail"`
	Request authgate.Request `json:"request"`
}

type PendingAuthorizationResponse struct {
	State   authgate.State    `json:"state"`
	Request *authgate.Request `json:"request"`
}
