package handler

import (
	"net/http"

	"beautypos/internal/dto"
	"beautypos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// report binds the shared filter and writes whatever fn returns.
func report(c *gin.Context, fn func(*gin.Context, dto.ReportFilter) (any, error)) {
	var filter dto.ReportFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := fn(c, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sales godoc
// @Summary Sales totals for a period
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Success 200 {object} report.SalesSummary
// @Router /v1/reports/sales [get]
func (h *ReportsHandler) Sales(c *gin.Context) {
	report(c, func(c *gin.Context, f dto.ReportFilter) (any, error) {
		return h.svc.Sales(c.Request.Context(), f)
	})
}

// Products godoc
// @Summary Best-selling products
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Param limit query int false "Rows" default(10)
// @Success 200 {array} report.ProductStat
// @Router /v1/reports/products [get]
func (h *ReportsHandler) Products(c *gin.Context) {
	report(c, func(c *gin.Context, f dto.ReportFilter) (any, error) {
		return h.svc.TopProducts(c.Request.Context(), f)
	})
}

// Customers godoc
// @Summary Top customers by spend
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Param limit query int false "Rows" default(10)
// @Success 200 {array} report.CustomerStat
// @Router /v1/reports/customers [get]
func (h *ReportsHandler) Customers(c *gin.Context) {
	report(c, func(c *gin.Context, f dto.ReportFilter) (any, error) {
		return h.svc.TopCustomers(c.Request.Context(), f)
	})
}

// Cashiers godoc
// @Summary Per-register sessions, sales and shortages
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Success 200 {array} report.CashierStat
// @Router /v1/reports/cashiers [get]
func (h *ReportsHandler) Cashiers(c *gin.Context) {
	report(c, func(c *gin.Context, f dto.ReportFilter) (any, error) {
		return h.svc.Cashiers(c.Request.Context(), f)
	})
}

// Stock godoc
// @Summary Low stock and soon-to-expire products
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param days query int false "Expiry window in days" default(30)
// @Success 200 {array} report.StockAlert
// @Router /v1/reports/stock [get]
func (h *ReportsHandler) Stock(c *gin.Context) {
	report(c, func(c *gin.Context, f dto.ReportFilter) (any, error) {
		return h.svc.StockAlerts(c.Request.Context(), f)
	})
}
