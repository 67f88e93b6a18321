package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

// documentHandler handles HTTP requests for document pricing and invoice
// posting.
type documentHandler struct {
	documentSvc portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(documentSvc portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{documentSvc: documentSvc}
}

// calculateDocument godoc
// @Summary Price a document
// @Description Recomputes line amounts and totals; header lines are excluded from totals
// @Tags documents
// @Accept json
// @Produce json
// @Param document body dto.CalculateDocumentRequest true "Document lines"
// @Success 200 {object} dto.CalculateDocumentResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Router /documents/calculate [post]
func (h *documentHandler) calculateDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CalculateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	lines, totals, warnings, err := h.documentSvc.CalculateDocument(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Document calculation rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ToCalculateDocumentResponse(lines, totals, warnings))
}

// splitInstallments godoc
// @Summary Split a total into installments
// @Description Parts sum exactly to the total; the last part absorbs the rounding remainder
// @Tags documents
// @Accept json
// @Produce json
// @Param split body dto.SplitInstallmentsRequest true "Amount and part count"
// @Success 200 {object} dto.SplitInstallmentsResponse
// @Router /documents/split-installments [post]
func (h *documentHandler) splitInstallments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SplitInstallmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	total, err := domain.NewMoney(req.Amount, domain.Currency(req.CurrencyCode))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	parts, err := h.documentSvc.SplitInstallments(c.Request.Context(), total, req.Parts)
	if err != nil {
		logger.Warn("Installment split rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amounts := make([]decimal.Decimal, len(parts))
	for i, p := range parts {
		amounts[i] = p.Amount()
	}
	c.JSON(http.StatusOK, dto.SplitInstallmentsResponse{CurrencyCode: req.CurrencyCode, Parts: amounts})
}

// postInvoice godoc
// @Summary Post an invoice to the ledger
// @Description Recomputes totals server-side and posts the receivable/revenue/tax entry
// @Tags documents
// @Accept json
// @Produce json
// @Param invoice body dto.PostInvoiceRequest true "Invoice"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Credit limit exceeded or ledger conflict"
// @Router /documents/invoices [post]
func (h *documentHandler) postInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.documentSvc.PostInvoice(c.Request.Context(), req, userID)
	if err != nil {
		respondJournalError(c, logger, "post invoice", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// registerDocumentRoutes registers document costing specific routes
func registerDocumentRoutes(group *gin.RouterGroup, documentSvc portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentSvc)

	documents := group.Group("/documents")
	{
		documents.POST("/calculate", h.calculateDocument)
		documents.POST("/split-installments", h.splitInstallments)
		documents.POST("/invoices", h.postInvoice)
	}
}
