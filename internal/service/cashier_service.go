package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautypos/internal/authgate"
	"beautypos/internal/dto"
	"beautypos/internal/infra"
	"beautypos/internal/model"
	"beautypos/internal/reconciliation"
	"beautypos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OperationJournal buffers operations locally before they reach the database.
type OperationJournal interface {
	Record(ctx context.Context, op model.CashierOperation) error
	MarkSynced(ctx context.Context, ids []string) error
}

type ClosingReportQueue interface {
	EnqueueClosingReport(ctx context.Context, report infra.ClosingReport) error
}

// CloseShortagePayload is parked on the gate while a shortage close waits
// for a manager.
type CloseShortagePayload struct {
	CashierID         uuid.UUID       `json:"cashier_id"`
	UserName          string          `json:"user_name"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	DiscrepancyReason *string         `json:"discrepancy_reason"`
}

type CashierService interface {
	Create(ctx context.Context, req dto.CreateCashierRequest) (*dto.CashierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CashierResponse, error)
	List(ctx context.Context) ([]dto.CashierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCashierRequest) (*dto.CashierResponse, error)

	Open(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.OpenCashierRequest) (*model.CashierOperation, error)
	Deposit(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.MovementRequest) (*model.CashierOperation, error)
	Withdrawal(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.MovementRequest) (*model.CashierOperation, error)
	// Close counts the till. A shortage needs a reason and, without an
	// approval, is parked on the caller's authorization gate.
	Close(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.CloseCashierRequest, approval *authgate.Approval) (*dto.CloseCashierResponse, error)

	Balance(ctx context.Context, id uuid.UUID) (*reconciliation.Balance, error)
	History(ctx context.Context, id uuid.UUID) (*dto.CashierHistoryResponse, error)
	Shortage(ctx context.Context, cashierID, operationID uuid.UUID) (*dto.ShortageResponse, error)

	OpenSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.Cashier, error)
}

type cashierService struct {
	repo    repository.CashierRepository
	users   repository.UserRepository
	orders  repository.OrderRepository
	gate    Gatekeeper
	journal OperationJournal
	reports ClosingReportQueue
	loc     *time.Location
	now     func() time.Time
}

// NewCashierService wires the till use cases. journal and reports may be nil.
func NewCashierService(
	repo repository.CashierRepository,
	users repository.UserRepository,
	orders repository.OrderRepository,
	gate Gatekeeper,
	journal OperationJournal,
	reports ClosingReportQueue,
	loc *time.Location,
) CashierService {
	if loc == nil {
		loc = time.UTC
	}
	return &cashierService{
		repo:    repo,
		users:   users,
		orders:  orders,
		gate:    gate,
		journal: journal,
		reports: reports,
		loc:     loc,
		now:     time.Now,
	}
}

// ── Registry ──────────────────────────────────────────────────────────────────

func (s *cashierService) Create(ctx context.Context, req dto.CreateCashierRequest) (*dto.CashierResponse, error) {
	c := &model.Cashier{
		Name:           req.Name,
		RegisterNumber: req.RegisterNumber,
		Location:       req.Location,
		IsActive:       true,
	}
	if req.AssignedUserID != nil {
		if err := s.assign(ctx, c, *req.AssignedUserID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := cashierResponse(c, reconciliation.StatusClosed)
	return &resp, nil
}

func (s *cashierService) Get(ctx context.Context, id uuid.UUID) (*dto.CashierResponse, error) {
	c, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := cashierResponse(c, reconciliation.StatusOf(ops, id))
	return &resp, nil
}

func (s *cashierService) List(ctx context.Context) ([]dto.CashierResponse, error) {
	cashiers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ops, err := s.repo.ListAllOperations(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CashierResponse, len(cashiers))
	for i := range cashiers {
		resp[i] = cashierResponse(&cashiers[i], reconciliation.StatusOf(ops, cashiers[i].ID))
	}
	return resp, nil
}

func (s *cashierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCashierRequest) (*dto.CashierResponse, error) {
	c, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Location != nil {
		c.Location = *req.Location
	}
	if req.IsActive != nil {
		if !*req.IsActive && reconciliation.StatusOf(ops, id) == reconciliation.StatusOpen {
			return nil, fmt.Errorf("%w: close the cashier before deactivating it", ErrConflict)
		}
		c.IsActive = *req.IsActive
	}
	if req.AssignedUserID != nil {
		if err := s.assign(ctx, c, *req.AssignedUserID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := cashierResponse(c, reconciliation.StatusOf(ops, id))
	return &resp, nil
}

func (s *cashierService) assign(ctx context.Context, c *model.Cashier, rawUserID string) error {
	uid, err := uuid.Parse(rawUserID)
	if err != nil {
		return validationf("invalid assigned_user_id")
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return lookup("user", err)
	}
	c.AssignedUserID = &u.ID
	c.AssignedUserName = &u.Name
	return nil
}

// ── Till operations ───────────────────────────────────────────────────────────

func (s *cashierService) Open(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.OpenCashierRequest) (*model.CashierOperation, error) {
	c, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, fmt.Errorf("%w: cashier %s is inactive", ErrConflict, c.RegisterNumber)
	}
	op, err := reconciliation.Open(ops, id, by, req.Amount, s.now())
	if err != nil {
		return nil, cashierError(err)
	}
	return s.append(ctx, op)
}

func (s *cashierService) Deposit(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.MovementRequest) (*model.CashierOperation, error) {
	_, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	op, err := reconciliation.Deposit(ops, id, by, req.Amount, req.Reason, s.now())
	if err != nil {
		return nil, cashierError(err)
	}
	return s.append(ctx, op)
}

func (s *cashierService) Withdrawal(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.MovementRequest) (*model.CashierOperation, error) {
	_, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	op, err := reconciliation.Withdrawal(ops, id, by, req.Amount, req.Reason, s.now())
	if err != nil {
		return nil, cashierError(err)
	}
	return s.append(ctx, op)
}

func (s *cashierService) Close(ctx context.Context, id uuid.UUID, by reconciliation.Actor, req dto.CloseCashierRequest, approval *authgate.Approval) (*dto.CloseCashierResponse, error) {
	c, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.cashSales(ctx, ops, id)
	if err != nil {
		return nil, err
	}
	in := reconciliation.CloseInput{
		FinalAmount:       req.FinalAmount,
		CashSales:         sales,
		DiscrepancyReason: req.DiscrepancyReason,
	}
	if approval != nil {
		managerID, managerName := approval.ManagerID, approval.ManagerName
		in.ManagerID = &managerID
		in.ManagerName = &managerName
	}
	op, bal, disc, err := reconciliation.Close(ops, id, by, in, s.now())
	if err != nil {
		return nil, cashierError(err)
	}
	switch err := reconciliation.CheckShortageApproval(disc, in.DiscrepancyReason, in.ManagerID); {
	case errors.Is(err, reconciliation.ErrManagerMissing):
		return nil, requireApproval(ctx, s.gate, by.UserID, authgate.ActionCloseWithShortage, CloseShortagePayload{
			CashierID:         id,
			UserName:          by.UserName,
			FinalAmount:       req.FinalAmount,
			DiscrepancyReason: req.DiscrepancyReason,
		})
	case err != nil:
		return nil, cashierError(err)
	}

	saved, err := s.append(ctx, op)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("cashier_id", id.String()).
		Str("kind", string(disc.Kind)).
		Str("expected", disc.Expected.StringFixed(2)).
		Str("reported", disc.Reported.StringFixed(2)).
		Msg("cashier closed")
	s.enqueueClosingReport(ctx, c, saved, bal, disc)
	return &dto.CloseCashierResponse{Operation: *saved, Balance: bal, Discrepancy: disc}, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *cashierService) Balance(ctx context.Context, id uuid.UUID) (*reconciliation.Balance, error) {
	_, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.cashSales(ctx, ops, id)
	if err != nil {
		return nil, err
	}
	bal := reconciliation.BalanceOf(ops, id, sales)
	return &bal, nil
}

func (s *cashierService) History(ctx context.Context, id uuid.UUID) (*dto.CashierHistoryResponse, error) {
	_, ops, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CashierHistoryResponse{
		CashierID: id.String(),
		Days:      reconciliation.GroupByDay(ops, s.loc),
	}, nil
}

func (s *cashierService) Shortage(ctx context.Context, cashierID, operationID uuid.UUID) (*dto.ShortageResponse, error) {
	op, err := s.repo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, lookup("operation", err)
	}
	if op.CashierID != cashierID {
		return nil, fmt.Errorf("operation %w", ErrNotFound)
	}
	ops, err := s.repo.ListOperations(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	diff, err := reconciliation.Difference(*op, ops)
	if err != nil {
		return nil, cashierError(err)
	}
	return &dto.ShortageResponse{
		OperationID: op.ID.String(),
		Difference:  diff,
		Shortage:    decimal.Max(decimal.Zero, diff),
	}, nil
}

func (s *cashierService) OpenSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.Cashier, error) {
	cashiers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ops, err := s.repo.ListAllOperations(ctx)
	if err != nil {
		return nil, err
	}
	var open []model.Cashier
	for _, c := range cashiers {
		if op, _, ok := reconciliation.CurrentSession(ops, c.ID); ok && op.UserID == userID {
			open = append(open, c)
		}
	}
	return open, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cashierService) load(ctx context.Context, id uuid.UUID) (*model.Cashier, []model.CashierOperation, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, lookup("cashier", err)
	}
	ops, err := s.repo.ListOperations(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return c, ops, nil
}

// cashSales totals the cash orders of the running session, zero when closed.
func (s *cashierService) cashSales(ctx context.Context, ops []model.CashierOperation, id uuid.UUID) (decimal.Decimal, error) {
	open, _, ok := reconciliation.CurrentSession(ops, id)
	if !ok {
		return decimal.Zero, nil
	}
	return s.orders.SumCashSales(ctx, id, open.Timestamp)
}

// append journals op first and then writes it to the database. When the
// database write fails but the journal holds the operation, the operation is
// accepted and stays unsynced until cmd/syncjournal replays it.
func (s *cashierService) append(ctx context.Context, op model.CashierOperation) (*model.CashierOperation, error) {
	journaled := false
	if s.journal != nil {
		if err := s.journal.Record(ctx, op); err != nil {
			log.Warn().Err(err).Str("operation_id", op.ID.String()).Msg("journal record failed")
		} else {
			journaled = true
		}
	}

	if err := s.repo.AppendOperation(ctx, &op); err != nil {
		if !journaled {
			return nil, err
		}
		log.Warn().Err(err).
			Str("operation_id", op.ID.String()).
			Str("cashier_id", op.CashierID.String()).
			Msg("database append failed, operation kept in journal")
		return &op, nil
	}

	if journaled {
		if err := s.journal.MarkSynced(ctx, []string{op.ID.String()}); err != nil {
			log.Warn().Err(err).Str("operation_id", op.ID.String()).Msg("journal mark synced failed")
		}
	}
	return &op, nil
}

func (s *cashierService) enqueueClosingReport(ctx context.Context, c *model.Cashier, op *model.CashierOperation, bal reconciliation.Balance, disc reconciliation.Discrepancy) {
	if s.reports == nil {
		return
	}
	report := infra.ClosingReport{
		OperationID:       op.ID.String(),
		CashierName:       c.Name,
		RegisterNumber:    c.RegisterNumber,
		UserName:          op.UserName,
		OpenedAt:          bal.OpenedAt,
		ClosedAt:          op.Timestamp,
		Opening:           bal.Opening,
		Deposits:          bal.Deposits,
		Withdrawals:       bal.Withdrawals,
		CashSales:         bal.Sales,
		Expected:          disc.Expected,
		Reported:          disc.Reported,
		DiscrepancyKind:   string(disc.Kind),
		DiscrepancyAmount: disc.Amount,
		DiscrepancyReason: op.DiscrepancyReason,
		ManagerName:       op.ManagerName,
	}
	if err := s.reports.EnqueueClosingReport(ctx, report); err != nil {
		log.Warn().Err(err).Str("operation_id", op.ID.String()).Msg("closing report enqueue failed")
	}
}

// cashierError classifies reconciliation errors for the handlers.
func cashierError(err error) error {
	switch {
	case errors.Is(err, reconciliation.ErrAlreadyOpen), errors.Is(err, reconciliation.ErrNotOpen):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, reconciliation.ErrInvalidAmount),
		errors.Is(err, reconciliation.ErrReasonRequired),
		errors.Is(err, reconciliation.ErrNotClose),
		errors.Is(err, reconciliation.ErrNoMatchingOpen):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

func cashierResponse(c *model.Cashier, status reconciliation.Status) dto.CashierResponse {
	return dto.CashierResponse{
		ID:               c.ID.String(),
		Name:             c.Name,
		RegisterNumber:   c.RegisterNumber,
		Location:         c.Location,
		IsActive:         c.IsActive,
		AssignedUserID:   idString(c.AssignedUserID),
		AssignedUserName: c.AssignedUserName,
		Status:           status,
	}
}
