package service_test

import (
	"context"
	"testing"
	"time"

	"beautypos/internal/authgate"
	"beautypos/internal/dto"
	"beautypos/internal/model"
	"beautypos/internal/reconciliation"
	"beautypos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTillLifecycleBalanced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	till := f.openTill(t, 100)

	_, err := f.cashier.Deposit(ctx, till.ID, f.actor(), dto.MovementRequest{Amount: dec("20"), Reason: strPtr("change")})
	require.NoError(t, err)
	_, err = f.cashier.Withdrawal(ctx, till.ID, f.actor(), dto.MovementRequest{Amount: dec("10")})
	require.NoError(t, err)

	bal, err := f.cashier.Balance(ctx, till.ID)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.StatusOpen, bal.Status)
	assert.True(t, dec("110").Equal(bal.Expected))

	closed, err := f.cashier.Close(ctx, till.ID, f.actor(), dto.CloseCashierRequest{FinalAmount: dec("110")}, nil)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.KindBalanced, closed.Discrepancy.Kind)
	assert.Equal(t, model.OperationClose, closed.Operation.OperationType)
	require.NotNil(t, closed.Operation.ExpectedBalance)
	assert.True(t, dec("110").Equal(*closed.Operation.ExpectedBalance))

	assert.Len(t, f.journal.ops, 4)
	assert.Empty(t, f.journal.unsynced())
	require.Len(t, f.queue.closings, 1)
	assert.Equal(t, "balanced", f.queue.closings[0].DiscrepancyKind)

	got, err := f.cashier.Get(ctx, till.ID)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.StatusClosed, got.Status)

	_, err = f.cashier.Deposit(ctx, till.ID, f.actor(), dto.MovementRequest{Amount: dec("5")})
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Len(t, f.cashierDB.ops, 4)
}

func TestOperationKeptInJournalWhenDatabaseDown(t *testing.T) {
	f := newFixture(t)
	till := f.cashierDB.add("Front desk", "01")
	down := service.NewCashierService(unreachableCashierRepo{f.cashierDB}, f.users, f.orders, f.authz, f.journal, f.queue, time.UTC)

	op, err := down.Open(context.Background(), till.ID, f.actor(), dto.OpenCashierRequest{Amount: dec("100")})
	require.NoError(t, err)
	assert.Empty(t, f.cashierDB.ops)

	pending := f.journal.unsynced()
	require.Len(t, pending, 1)
	assert.Equal(t, op.ID, pending[0].ID)
	assert.Equal(t, model.OperationOpen, pending[0].OperationType)
	assert.True(t, dec("100").Equal(pending[0].Amount))
}

func TestDatabaseFailureWithoutJournalFails(t *testing.T) {
	f := newFixture(t)
	till := f.cashierDB.add("Front desk", "01")
	down := service.NewCashierService(unreachableCashierRepo{f.cashierDB}, f.users, f.orders, f.authz, nil, f.queue, time.UTC)

	_, err := down.Open(context.Background(), till.ID, f.actor(), dto.OpenCashierRequest{Amount: dec("100")})
	assert.EqualError(t, err, "database unreachable")
}

func TestOpenTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	till := f.openTill(t, 50)

	_, err := f.cashier.Open(context.Background(), till.ID, f.actor(), dto.OpenCashierRequest{Amount: dec("10")})

	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Len(t, f.cashierDB.ops, 1)
}

func TestShortageCloseNeedsReasonThenManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	till := f.openTill(t, 100)

	_, err := f.cashier.Close(ctx, till.ID, f.actor(), dto.CloseCashierRequest{FinalAmount: dec("90")}, nil)
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, authgate.StateIdle, f.authz.Pending(f.employee.ID).State)

	_, err = f.cashier.Close(ctx, till.ID, f.actor(), dto.CloseCashierRequest{FinalAmount: dec("90"), DiscrepancyReason: strPtr("coins miscounted")}, nil)
	requireAuthorization(t, err, authgate.ActionCloseWithShortage)
	assert.Len(t, f.cashierDB.ops, 1)

	closed, ok := f.approve(t).(*dto.CloseCashierResponse)
	require.True(t, ok)
	assert.Equal(t, reconciliation.KindShortage, closed.Discrepancy.Kind)
	assert.True(t, dec("10").Equal(closed.Discrepancy.Amount))
	require.NotNil(t, closed.Operation.ManagerName)
	assert.Equal(t, f.manager.Name, *closed.Operation.ManagerName)
	assert.Equal(t, f.employee.ID, closed.Operation.UserID)
	require.NotNil(t, closed.Operation.DiscrepancyReason)
	assert.Equal(t, "coins miscounted", *closed.Operation.DiscrepancyReason)

	require.Len(t, f.queue.closings, 1)
	require.NotNil(t, f.queue.closings[0].ManagerName)
	assert.Equal(t, "shortage", f.queue.closings[0].DiscrepancyKind)

	shortage, err := f.cashier.Shortage(ctx, till.ID, closed.Operation.ID)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(shortage.Difference))
	assert.True(t, dec("10").Equal(shortage.Shortage))
}

func TestOverageCloseNeedsNoAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	till := f.openTill(t, 100)

	closed, err := f.cashier.Close(ctx, till.ID, f.actor(), dto.CloseCashierRequest{FinalAmount: dec("120")}, nil)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.KindOverage, closed.Discrepancy.Kind)
	assert.Nil(t, closed.Operation.ManagerID)

	shortage, err := f.cashier.Shortage(ctx, till.ID, closed.Operation.ID)
	require.NoError(t, err)
	assert.True(t, dec("-20").Equal(shortage.Difference))
	assert.True(t, shortage.Shortage.IsZero())
}

func TestShortageOfNonCloseOperation(t *testing.T) {
	f := newFixture(t)
	till := f.openTill(t, 100)
	openOp := f.cashierDB.ops[0]

	_, err := f.cashier.Shortage(context.Background(), till.ID, openOp.ID)

	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestHistoryGroupsOperationsByDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	till := f.openTill(t, 100)
	_, err := f.cashier.Deposit(ctx, till.ID, f.actor(), dto.MovementRequest{Amount: dec("5")})
	require.NoError(t, err)

	h, err := f.cashier.History(ctx, till.ID)
	require.NoError(t, err)
	require.Len(t, h.Days, 1)
	assert.Len(t, h.Days[0].Operations, 2)
}

func TestDeactivateOpenTillConflicts(t *testing.T) {
	f := newFixture(t)
	till := f.openTill(t, 100)
	inactive := false

	_, err := f.cashier.Update(context.Background(), till.ID, dto.UpdateCashierRequest{IsActive: &inactive})

	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestOpenSessionsByUser(t *testing.T) {
	f := newFixture(t)
	till := f.openTill(t, 100)
	f.cashierDB.add("Back office", "02")

	open, err := f.cashier.OpenSessionsByUser(context.Background(), f.employee.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, till.ID, open[0].ID)

	none, err := f.cashier.OpenSessionsByUser(context.Background(), f.manager.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
