package dto

import (
	"beautypos/internal/model"
	"beautypos/internal/reconciliation"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCashierRequest struct {
	Name           string  `json:"name"             validate:"required,min=2,max=100"`
	RegisterNumber string  `json:"register_number"  validate:"required,min=1,max=32"`
	Location       string  `json:"location"         validate:"max=150"`
	AssignedUserID *string `json:"assigned_user_id" validate:"omitempty,uuid"`
}

type UpdateCashierRequest struct {
	Name           *string `json:"name"             validate:"omitempty,min=2,max=100"`
	Location       *string `json:"location"         validate:"omitempty,max=150"`
	IsActive       *bool   `json:"is_active"`
	AssignedUserID *string `json:"assigned_user_id" validate:"omitempty,uuid"`
}

type OpenCashierRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

// MovementRequest is a deposit into or withdrawal from an open till.
type MovementRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Reason *string         `json:"reason" validate:"omitempty,max=255"`
}

type CloseCashierRequest struct {
	FinalAmount       decimal.Decimal `json:"final_amount"       validate:"min=0"`
	DiscrepancyReason *string         `json:"discrepancy_reason" validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashierResponse struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	RegisterNumber   string                `json:"register_number"`
	Location         string                `json:"location"`
	IsActive         bool                  `json:"is_active"`
	AssignedUserID   *string               `json:"assigned_user_id"`
	AssignedUserName *string               `json:"assigned_user_name"`
	Status           reconciliation.Status `json:"status"`
}

type CloseCashierResponse struct {
	Operation   model.CashierOperation     `json:"operation"`
	Balance     reconciliation.Balance     `json:"balance"`
	Discrepancy reconciliation.Discrepancy `json:"discrepancy"`
}

type CashierHistoryResponse struct {
	CashierID string                    `json:"cashier_id"`
	Days      []reconciliation.DayGroup `json:"days"`
}

type ShortageResponse struct {
	OperationID string          `json:"operation_id"`
	Difference  decimal.Decimal `json:"difference"`
	Shortage    decimal.Decimal `json:"shortage"`
}
