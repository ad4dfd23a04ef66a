package infra

// pdf.go — receipt and till-closing documents using go-pdf/fpdf.
// Both are printed on a narrow 74mm roll, the usual thermal printer width.
// Files are written to storagePath and the full path is returned.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"beautypos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const rollWidth = 74.0

func newRoll(height float64) (*fpdf.Fpdf, float64) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: rollWidth, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()
	return pdf, rollWidth - 8
}

func separator(pdf *fpdf.Fpdf) {
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), rollWidth-4, pdf.GetY())
	pdf.Ln(2)
}

func amountRow(pdf *fpdf.Fpdf, contentW float64, label string, amount decimal.Decimal) {
	pdf.CellFormat(contentW*0.65, 5, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.35, 5, "$"+amount.StringFixed(2), "", 1, "R", false, 0, "")
}

func writePDF(pdf *fpdf.Fpdf, storagePath, fileName string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fileName)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// GenerateReceiptPDF prints the customer receipt of a completed order.
func GenerateReceiptPDF(order *model.Order, storeName, storagePath string) (string, error) {
	// Height grows with the number of lines
	pdf, contentW := newRoll(110 + float64(len(order.Items))*5)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Ticket #%d", order.TicketNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, order.CreatedAt.Format("2006-01-02  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Served by "+order.UserName), "", 1, "L", false, 0, "")
	if order.CustomerName != nil {
		pdf.CellFormat(contentW, 4, tr("Customer: "+*order.CustomerName), "", 1, "L", false, 0, "")
	}
	separator(pdf)

	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range order.Items {
		name := []rune(item.ProductName)
		if len(name) > 22 {
			name = append(name[:21], '.')
		}
		pdf.CellFormat(col1, 5, tr(string(name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	separator(pdf)

	pdf.SetFont("Helvetica", "", 7)
	amountRow(pdf, contentW, "Subtotal:", order.Subtotal)
	if order.ManualDiscountAmount.IsPositive() {
		amountRow(pdf, contentW, "Discount:", order.ManualDiscountAmount.Neg())
	}
	if order.PromotionDiscount.IsPositive() {
		label := "Promotion:"
		if order.PromotionName != nil {
			label = tr(*order.PromotionName) + ":"
		}
		amountRow(pdf, contentW, label, order.PromotionDiscount.Neg())
	}
	pdf.SetFont("Helvetica", "B", 9)
	amountRow(pdf, contentW, "TOTAL:", order.Total)

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Paid by "+order.PaymentMethod, "", 1, "L", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	return writePDF(pdf, storagePath, fmt.Sprintf("receipt_%d.pdf", order.TicketNumber))
}

// ClosingReport is the printable summary of a closed till session.
type ClosingReport struct {
	OperationID       string          `json:"operation_id"`
	CashierName       string          `json:"cashier_name"`
	RegisterNumber    string          `json:"register_number"`
	UserName          string          `json:"user_name"`
	OpenedAt          *time.Time      `json:"opened_at"`
	ClosedAt          time.Time       `json:"closed_at"`
	Opening           decimal.Decimal `json:"opening"`
	Deposits          decimal.Decimal `json:"deposits"`
	Withdrawals       decimal.Decimal `json:"withdrawals"`
	CashSales         decimal.Decimal `json:"cash_sales"`
	Expected          decimal.Decimal `json:"expected"`
	Reported          decimal.Decimal `json:"reported"`
	DiscrepancyKind   string          `json:"discrepancy_kind"`
	DiscrepancyAmount decimal.Decimal `json:"discrepancy_amount"`
	DiscrepancyReason *string         `json:"discrepancy_reason"`
	ManagerName       *string         `json:"manager_name"`
}

// GenerateClosingReportPDF prints the cash-up slip of a till session.
func GenerateClosingReportPDF(r ClosingReport, storeName, storagePath string) (string, error) {
	pdf, contentW := newRoll(140)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Till closing report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr(fmt.Sprintf("%s (#%s)", r.CashierName, r.RegisterNumber)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Closed by "+r.UserName), "", 1, "L", false, 0, "")
	if r.OpenedAt != nil {
		pdf.CellFormat(contentW, 4, "Opened "+r.OpenedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, "Closed "+r.ClosedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	separator(pdf)

	amountRow(pdf, contentW, "Opening float:", r.Opening)
	amountRow(pdf, contentW, "Deposits:", r.Deposits)
	amountRow(pdf, contentW, "Withdrawals:", r.Withdrawals.Neg())
	amountRow(pdf, contentW, "Cash sales:", r.CashSales)
	pdf.SetFont("Helvetica", "B", 8)
	amountRow(pdf, contentW, "Expected:", r.Expected)
	amountRow(pdf, contentW, "Counted:", r.Reported)
	separator(pdf)

	pdf.SetFont("Helvetica", "B", 8)
	amountRow(pdf, contentW, "Result ("+r.DiscrepancyKind+"):", r.DiscrepancyAmount)
	pdf.SetFont("Helvetica", "", 7)
	if r.DiscrepancyReason != nil {
		pdf.MultiCell(contentW, 4, tr("Reason: "+*r.DiscrepancyReason), "", "L", false)
	}
	if r.ManagerName != nil {
		pdf.CellFormat(contentW, 4, tr("Authorized by "+*r.ManagerName), "", 1, "L", false, 0, "")
	}

	return writePDF(pdf, storagePath, fmt.Sprintf("closing_%s.pdf", r.OperationID))
}
