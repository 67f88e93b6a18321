package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingSvc portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(reportingSvc portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingSvc: reportingSvc}
}

// getTrialBalance godoc
// @Summary Generate a trial balance
// @Description Lists every active account in one currency and the column totals; isBalanced false signals data corruption
// @Tags reports
// @Produce json
// @Param asOf query string false "Report as of this instant (RFC 3339), defaults to now"
// @Param currency query string false "ISO 4217 currency code, defaults to the base currency"
// @Success 200 {object} dto.TrialBalanceResponse
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf := time.Now().UTC()
	if asOfStr := c.Query("asOf"); asOfStr != "" {
		parsed, err := time.Parse(time.RFC3339, asOfStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be RFC 3339"})
			return
		}
		asOf = parsed
	}
	currency := c.Query("currency")
	if currency != "" && len(currency) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency must be a 3-letter code"})
		return
	}

	report, err := h.reportingSvc.TrialBalance(c.Request.Context(), asOf, domain.Currency(currency))
	if err != nil {
		logger.Error("Failed to generate trial balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate trial balance"})
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// registerReportingRoutes registers reporting specific routes
func registerReportingRoutes(group *gin.RouterGroup, reportingSvc portssvc.ReportingService) {
	h := newReportingHandler(reportingSvc)

	reports := group.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
	}
}
