package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/core/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

// creditHandler handles HTTP requests for customer credit control.
type creditHandler struct {
	creditSvc portssvc.CreditSvcFacade
}

// newCreditHandler creates a new creditHandler.
func newCreditHandler(creditSvc portssvc.CreditSvcFacade) *creditHandler {
	return &creditHandler{creditSvc: creditSvc}
}

func respondCreditError(c *gin.Context, logger *slog.Logger, action string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrBelowUsedCredit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNegativeLimit), errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Credit operation failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createCustomer godoc
// @Summary Register a customer for credit control
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body dto.CreateCustomerRequest true "Customer"
// @Success 201 {object} dto.CustomerResponse
// @Router /customers [post]
func (h *creditHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, err := h.creditSvc.CreateCustomer(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondCreditError(c, logger, "create customer", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCustomerResponse(customer))
}

// getCustomer godoc
// @Summary Get a customer
// @Tags customers
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} map[string]string "Customer not found"
// @Router /customers/{customerID} [get]
func (h *creditHandler) getCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	customer, err := h.creditSvc.GetCustomerByID(c.Request.Context(), c.Param("customerID"))
	if err != nil {
		respondCreditError(c, logger, "retrieve customer", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// getCreditStatus godoc
// @Summary Get a customer's credit status
// @Description Snapshot of limit, used and available credit derived from the posted receivable balance
// @Tags customers
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} dto.CreditStatusResponse
// @Failure 404 {object} map[string]string "Customer not found"
// @Router /customers/{customerID}/credit-status [get]
func (h *creditHandler) getCreditStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status, err := h.creditSvc.GetCreditStatus(c.Request.Context(), c.Param("customerID"))
	if err != nil {
		respondCreditError(c, logger, "compute credit status", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditStatusResponse(status))
}

// updateCreditLimit godoc
// @Summary Update a customer's credit limit
// @Description Limits below the currently used credit are rejected
// @Tags customers
// @Accept json
// @Produce json
// @Param customerID path string true "Customer ID"
// @Param limit body dto.UpdateCreditLimitRequest true "New limit"
// @Success 200 {object} dto.CustomerResponse
// @Failure 409 {object} map[string]string "Limit below used credit"
// @Router /customers/{customerID}/credit-limit [put]
func (h *creditHandler) updateCreditLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateCreditLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	customer, err := h.creditSvc.UpdateCreditLimit(c.Request.Context(), c.Param("customerID"), req, userID)
	if err != nil {
		respondCreditError(c, logger, "update credit limit", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// registerCreditRoutes registers customer credit specific routes
func registerCreditRoutes(group *gin.RouterGroup, creditSvc portssvc.CreditSvcFacade) {
	h := newCreditHandler(creditSvc)

	customers := group.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("/:customerID", h.getCustomer)
		customers.GET("/:customerID/credit-status", h.getCreditStatus)
		customers.PUT("/:customerID/credit-limit", h.updateCreditLimit)
	}
}
