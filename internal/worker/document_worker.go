package worker

// document_worker.go
// Prints receipt and till closing PDFs, then queues them for email when
// there is someone to send them to.

import (
	"context"
	"encoding/json"
	"fmt"

	"beautypos/internal/infra"
	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ReceiptJobPayload struct {
	OrderID string `json:"order_id"`
}

// OrderLoader is satisfied by repository.OrderRepository.
type OrderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// EmailQueue is satisfied by *Dispatcher.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReceiptWorker struct {
	orders      OrderLoader
	emails      EmailQueue
	storeName   string
	storagePath string
}

func NewReceiptWorker(orders OrderLoader, emails EmailQueue, storeName, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{orders: orders, emails: emails, storeName: storeName, storagePath: storagePath}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}
	id, err := uuid.Parse(payload.OrderID)
	if err != nil {
		log.Error().Str("order_id", payload.OrderID).Msg("receipt_worker: invalid order id")
		return nil
	}
	order, err := w.orders.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("receipt_worker: load order %s: %w", id, err)
	}

	path, err := infra.GenerateReceiptPDF(order, w.storeName, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Int("ticket", order.TicketNumber).Str("path", path).Msg("receipt_worker: receipt generated")

	if order.CustomerEmail == nil || *order.CustomerEmail == "" {
		return nil
	}
	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: *order.CustomerEmail,
		Subject: fmt.Sprintf("%s - receipt #%d", w.storeName, order.TicketNumber),
		Body:    fmt.Sprintf("Thank you for shopping at %s. Your receipt is attached.", w.storeName),
		PDFPath: path,
	})
}

type ClosingReportWorker struct {
	emails      EmailQueue
	storeName   string
	storagePath string
	reportEmail string
}

func NewClosingReportWorker(emails EmailQueue, storeName, storagePath, reportEmail string) *ClosingReportWorker {
	return &ClosingReportWorker{emails: emails, storeName: storeName, storagePath: storagePath, reportEmail: reportEmail}
}

func (w *ClosingReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var report infra.ClosingReport
	if err := json.Unmarshal(raw, &report); err != nil {
		log.Error().Err(err).Msg("closing_worker: invalid payload")
		return nil
	}
	path, err := infra.GenerateClosingReportPDF(report, w.storeName, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("cashier", report.CashierName).Str("path", path).Msg("closing_worker: report generated")

	if w.reportEmail == "" {
		return nil
	}
	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: w.reportEmail,
		Subject: fmt.Sprintf("%s - till %s closed (%s)", w.storeName, report.RegisterNumber, report.DiscrepancyKind),
		Body:    fmt.Sprintf("%s closed till %s. Expected %s, counted %s.", report.UserName, report.CashierName, report.Expected.StringFixed(2), report.Reported.StringFixed(2)),
		PDFPath: path,
	})
}
