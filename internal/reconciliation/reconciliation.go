// Package reconciliation derives a till's state and balances from its
// append-only operation log. Nothing here mutates a log: builders return the
// next operation and the caller appends it.
package reconciliation

import (
	"errors"
	"sort"
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyOpen    = errors.New("cashier is already open")
	ErrNotOpen        = errors.New("cashier is not open")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNotClose       = errors.New("operation is not a close")
	ErrNoMatchingOpen = errors.New("no open operation precedes this close")
	ErrReasonRequired = errors.New("a discrepancy reason is required to close with a shortage")
	ErrManagerMissing = errors.New("a manager authorization is required to close with a shortage")
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Actor is the user appending an operation.
type Actor struct {
	UserID   uuid.UUID
	UserName string
}

// Sorted returns the operations of one cashier ordered by timestamp. Equal
// timestamps keep their log order.
func Sorted(ops []model.CashierOperation, cashierID uuid.UUID) []model.CashierOperation {
	out := make([]model.CashierOperation, 0, len(ops))
	for _, op := range ops {
		if op.CashierID == cashierID {
			out = append(out, op)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// ── State ─────────────────────────────────────────────────────────────────────

// CurrentSession returns the open operation of the running session and every
// operation after it. ok is false when the cashier is closed.
func CurrentSession(ops []model.CashierOperation, cashierID uuid.UUID) (open model.CashierOperation, session []model.CashierOperation, ok bool) {
	sorted := Sorted(ops, cashierID)
	for i := len(sorted) - 1; i >= 0; i-- {
		switch sorted[i].OperationType {
		case model.OperationClose:
			return model.CashierOperation{}, nil, false
		case model.OperationOpen:
			return sorted[i], sorted[i:], true
		}
	}
	return model.CashierOperation{}, nil, false
}

func StatusOf(ops []model.CashierOperation, cashierID uuid.UUID) Status {
	if _, _, ok := CurrentSession(ops, cashierID); ok {
		return StatusOpen
	}
	return StatusClosed
}

// ── Transitions ───────────────────────────────────────────────────────────────

// Open builds the open operation. A cashier holds one session at a time.
func Open(ops []model.CashierOperation, cashierID uuid.UUID, by Actor, amount decimal.Decimal, at time.Time) (model.CashierOperation, error) {
	if StatusOf(ops, cashierID) == StatusOpen {
		return model.CashierOperation{}, ErrAlreadyOpen
	}
	if amount.IsNegative() {
		return model.CashierOperation{}, ErrInvalidAmount
	}
	return newOperation(cashierID, by, model.OperationOpen, amount, at), nil
}

func Deposit(ops []model.CashierOperation, cashierID uuid.UUID, by Actor, amount decimal.Decimal, reason *string, at time.Time) (model.CashierOperation, error) {
	return movement(ops, cashierID, by, model.OperationDeposit, amount, reason, at)
}

func Withdrawal(ops []model.CashierOperation, cashierID uuid.UUID, by Actor, amount decimal.Decimal, reason *string, at time.Time) (model.CashierOperation, error) {
	return movement(ops, cashierID, by, model.OperationWithdrawal, amount, reason, at)
}

func movement(ops []model.CashierOperation, cashierID uuid.UUID, by Actor, typ model.OperationType, amount decimal.Decimal, reason *string, at time.Time) (model.CashierOperation, error) {
	if StatusOf(ops, cashierID) != StatusOpen {
		return model.CashierOperation{}, ErrNotOpen
	}
	if !amount.IsPositive() {
		return model.CashierOperation{}, ErrInvalidAmount
	}
	op := newOperation(cashierID, by, typ, amount, at)
	op.Reason = reason
	return op, nil
}

// CloseInput carries the counted cash and, for a shortage, the audit data
// collected by the authorization flow.
type CloseInput struct {
	FinalAmount       decimal.Decimal
	CashSales         decimal.Decimal
	DiscrepancyReason *string
	ManagerID         *uuid.UUID
	ManagerName       *string
}

// Close builds the close operation together with the balance and discrepancy
// it was computed from. It trusts the caller to have obtained authorization
// for a shortage; use CheckShortageApproval to enforce it.
func Close(ops []model.CashierOperation, cashierID uuid.UUID, by Actor, in CloseInput, at time.Time) (model.CashierOperation, Balance, Discrepancy, error) {
	if StatusOf(ops, cashierID) != StatusOpen {
		return model.CashierOperation{}, Balance{}, Discrepancy{}, ErrNotOpen
	}
	if in.FinalAmount.IsNegative() {
		return model.CashierOperation{}, Balance{}, Discrepancy{}, ErrInvalidAmount
	}
	bal := BalanceOf(ops, cashierID, in.CashSales)
	disc := Classify(bal.Expected, in.FinalAmount)

	op := newOperation(cashierID, by, model.OperationClose, in.FinalAmount, at)
	opening, expected, closing := bal.Opening, bal.Expected, in.FinalAmount
	op.OpeningBalance = &opening
	op.ExpectedBalance = &expected
	op.ClosingBalance = &closing
	op.DiscrepancyReason = in.DiscrepancyReason
	op.ManagerID = in.ManagerID
	op.ManagerName = in.ManagerName
	return op, bal, disc, nil
}

// CheckShortageApproval rejects a shortage close that lacks a reason or a
// manager. Overages and balanced closes need neither.
func CheckShortageApproval(d Discrepancy, reason *string, managerID *uuid.UUID) error {
	if !d.RequiresAuthorization() {
		return nil
	}
	if reason == nil || *reason == "" {
		return ErrReasonRequired
	}
	if managerID == nil {
		return ErrManagerMissing
	}
	return nil
}

func newOperation(cashierID uuid.UUID, by Actor, typ model.OperationType, amount decimal.Decimal, at time.Time) model.CashierOperation {
	return model.CashierOperation{
		ID:            uuid.New(),
		CashierID:     cashierID,
		UserID:        by.UserID,
		UserName:      by.UserName,
		OperationType: typ,
		Amount:        amount,
		Timestamp:     at,
	}
}
