package reconciliation

import (
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is the replay of the running session.
type Balance struct {
	CashierID   uuid.UUID       `json:"cashier_id"`
	Status      Status          `json:"status"`
	OpenedAt    *time.Time      `json:"opened_at"`
	Opening     decimal.Decimal `json:"opening"`
	Deposits    decimal.Decimal `json:"deposits"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	Sales       decimal.Decimal `json:"sales"`
	Expected    decimal.Decimal `json:"expected"`
}

// BalanceOf replays the log since the latest open:
// expected = opening + deposits - withdrawals + cash sales.
// A closed cashier has an all-zero balance.
func BalanceOf(ops []model.CashierOperation, cashierID uuid.UUID, cashSales decimal.Decimal) Balance {
	b := Balance{
		CashierID:   cashierID,
		Status:      StatusClosed,
		Opening:     decimal.Zero,
		Deposits:    decimal.Zero,
		Withdrawals: decimal.Zero,
		Sales:       decimal.Zero,
		Expected:    decimal.Zero,
	}
	open, session, ok := CurrentSession(ops, cashierID)
	if !ok {
		return b
	}
	openedAt := open.Timestamp
	b.Status = StatusOpen
	b.OpenedAt = &openedAt
	b.Opening = open.Amount
	for _, op := range session[1:] {
		switch op.OperationType {
		case model.OperationDeposit:
			b.Deposits = b.Deposits.Add(op.Amount)
		case model.OperationWithdrawal:
			b.Withdrawals = b.Withdrawals.Add(op.Amount)
		}
	}
	b.Sales = cashSales
	b.Expected = b.Opening.Add(b.Deposits).Sub(b.Withdrawals).Add(b.Sales)
	return b
}

// ── Discrepancies ─────────────────────────────────────────────────────────────

type DiscrepancyKind string

const (
	KindBalanced DiscrepancyKind = "balanced"
	KindShortage DiscrepancyKind = "shortage"
	KindOverage  DiscrepancyKind = "overage"
)

// Discrepancy compares expected and counted cash. Amount is never negative.
type Discrepancy struct {
	Kind     DiscrepancyKind `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
	Expected decimal.Decimal `json:"expected"`
	Reported decimal.Decimal `json:"reported"`
}

func Classify(expected, reported decimal.Decimal) Discrepancy {
	d := Discrepancy{Kind: KindBalanced, Amount: decimal.Zero, Expected: expected, Reported: reported}
	diff := expected.Sub(reported)
	switch {
	case diff.IsPositive():
		d.Kind, d.Amount = KindShortage, diff
	case diff.IsNegative():
		d.Kind, d.Amount = KindOverage, diff.Neg()
	}
	return d
}

// RequiresAuthorization is true only for shortages; overages are accepted
// as reported.
func (d Discrepancy) RequiresAuthorization() bool {
	return d.Kind == KindShortage
}

// Difference is the opening amount of the session a close belongs to minus
// the closing amount. The opening comes from the latest open strictly before
// the close, or from the close's own OpeningBalance when no such open is in
// the log.
func Difference(closeOp model.CashierOperation, ops []model.CashierOperation) (decimal.Decimal, error) {
	if closeOp.OperationType != model.OperationClose {
		return decimal.Zero, ErrNotClose
	}
	var opening *decimal.Decimal
	sorted := Sorted(ops, closeOp.CashierID)
	for i := len(sorted) - 1; i >= 0; i-- {
		op := sorted[i]
		if op.OperationType == model.OperationOpen && op.Timestamp.Before(closeOp.Timestamp) {
			amount := op.Amount
			opening = &amount
			break
		}
	}
	if opening == nil {
		opening = closeOp.OpeningBalance
	}
	if opening == nil {
		return decimal.Zero, ErrNoMatchingOpen
	}
	closing := closeOp.Amount
	if closeOp.ClosingBalance != nil {
		closing = *closeOp.ClosingBalance
	}
	return opening.Sub(closing), nil
}

// Shortage is Difference clamped at zero: an overage is never a shortage.
func Shortage(closeOp model.CashierOperation, ops []model.CashierOperation) (decimal.Decimal, error) {
	diff, err := Difference(closeOp, ops)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(decimal.Zero, diff), nil
}

// Recorded returns the discrepancy stored on a close. Closes that carry an
// expected balance are compared against it; older closes without one fall
// back to Difference against the opening amount.
func Recorded(closeOp model.CashierOperation, ops []model.CashierOperation) (Discrepancy, error) {
	if closeOp.OperationType != model.OperationClose {
		return Discrepancy{}, ErrNotClose
	}
	reported := closeOp.Amount
	if closeOp.ClosingBalance != nil {
		reported = *closeOp.ClosingBalance
	}
	if closeOp.ExpectedBalance != nil {
		return Classify(*closeOp.ExpectedBalance, reported), nil
	}
	diff, err := Difference(closeOp, ops)
	if err != nil {
		return Discrepancy{}, err
	}
	return Classify(reported.Add(diff), reported), nil
}
