package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/core/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountSvc portssvc.AccountSvcFacade
	balanceSvc portssvc.BalanceSvcFacade
	journalSvc portssvc.JournalSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(accountSvc portssvc.AccountSvcFacade, balanceSvc portssvc.BalanceSvcFacade, journalSvc portssvc.JournalSvcFacade) *accountHandler {
	return &accountHandler{
		accountSvc: accountSvc,
		balanceSvc: balanceSvc,
		journalSvc: journalSvc,
	}
}

func accountErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, services.ErrParentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, services.ErrAccountInUse),
		errors.Is(err, services.ErrAccountHasChildren),
		errors.Is(err, services.ErrCycleDetected),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidAccountCode),
		errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondAccountError(c *gin.Context, logger *slog.Logger, action string, err error) {
	status := accountErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Account operation failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	logger.Warn("Account operation rejected", slog.String("action", action), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// createAccount godoc
// @Summary Register a new account
// @Description Creates an account in the chart of accounts with a unique code
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.CreateAccountRequest true "Account"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountSvc.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondAccountError(c, logger, "create account", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {array} dto.AccountResponse
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.accountSvc.ListAccounts(c.Request.Context())
	if err != nil {
		respondAccountError(c, logger, "list accounts", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// getAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountCode} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	account, err := h.accountSvc.GetAccountByCode(c.Request.Context(), c.Param("accountCode"))
	if err != nil {
		respondAccountError(c, logger, "retrieve account", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update an account's name or description
// @Tags accounts
// @Accept json
// @Produce json
// @Param accountCode path string true "Account code"
// @Param account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Router /accounts/{accountCode} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountSvc.UpdateAccount(c.Request.Context(), c.Param("accountCode"), req, userID)
	if err != nil {
		respondAccountError(c, logger, "update account", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// setParent godoc
// @Summary Re-parent an account
// @Description Moves an account in the hierarchy; cycles are rejected
// @Tags accounts
// @Accept json
// @Produce json
// @Param accountCode path string true "Account code"
// @Param parent body dto.SetParentRequest true "New parent (null to detach)"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} map[string]string "Cycle detected"
// @Router /accounts/{accountCode}/parent [put]
func (h *accountHandler) setParent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SetParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountSvc.SetParentAccount(c.Request.Context(), c.Param("accountCode"), req.ParentAccountCode, userID)
	if err != nil {
		respondAccountError(c, logger, "re-parent account", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Delete an account without posted activity
// @Description Accounts with posted lines or children cannot be deleted, only deactivated
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Success 204 "Deleted"
// @Failure 409 {object} map[string]string "Account has posted activity"
// @Router /accounts/{accountCode} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountSvc.DeleteAccount(c.Request.Context(), c.Param("accountCode"), userID); err != nil {
		respondAccountError(c, logger, "delete account", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Success 204 "Deactivated"
// @Router /accounts/{accountCode}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountSvc.DeactivateAccount(c.Request.Context(), c.Param("accountCode"), userID); err != nil {
		respondAccountError(c, logger, "deactivate account", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseAsOf reads the optional asOf query parameter (RFC 3339).
func parseAsOf(c *gin.Context) (*time.Time, bool) {
	asOfStr := c.Query("asOf")
	if asOfStr == "" {
		return nil, true
	}
	asOf, err := time.Parse(time.RFC3339, asOfStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be RFC 3339"})
		return nil, false
	}
	return &asOf, true
}

// getBalance godoc
// @Summary Get an account balance
// @Description Computes the signed balance from posted journal lines
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Param asOf query string false "Balance as of this instant (RFC 3339)"
// @Success 200 {object} dto.BalanceResponse
// @Router /accounts/{accountCode}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	balance, err := h.balanceSvc.GetAccountBalance(c.Request.Context(), c.Param("accountCode"), asOf)
	if err != nil {
		respondAccountError(c, logger, "compute account balance", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

// getRollupBalance godoc
// @Summary Get a roll-up balance
// @Description Computes the combined balance of an account and all of its descendants
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Param asOf query string false "Balance as of this instant (RFC 3339)"
// @Success 200 {object} dto.BalanceResponse
// @Router /accounts/{accountCode}/rollup-balance [get]
func (h *accountHandler) getRollupBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}
	balance, err := h.balanceSvc.GetRollupBalance(c.Request.Context(), c.Param("accountCode"), asOf)
	if err != nil {
		respondAccountError(c, logger, "compute roll-up balance", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

// listChildren godoc
// @Summary List an account's direct children
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Success 200 {array} dto.AccountResponse
// @Router /accounts/{accountCode}/children [get]
func (h *accountHandler) listChildren(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	children, err := h.accountSvc.ListChildAccounts(c.Request.Context(), c.Param("accountCode"))
	if err != nil {
		respondAccountError(c, logger, "list child accounts", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(children))
}

// listActivity godoc
// @Summary List posted activity for an account
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListActivityResponse
// @Router /accounts/{accountCode}/activity [get]
func (h *accountHandler) listActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListActivityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	res, err := h.journalSvc.ListActivityByAccount(c.Request.Context(), c.Param("accountCode"), params)
	if err != nil {
		respondAccountError(c, logger, "list account activity", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// registerAccountRoutes registers chart-of-accounts specific routes
func registerAccountRoutes(group *gin.RouterGroup, accountSvc portssvc.AccountSvcFacade, balanceSvc portssvc.BalanceSvcFacade, journalSvc portssvc.JournalSvcFacade) {
	h := newAccountHandler(accountSvc, balanceSvc, journalSvc)

	accounts := group.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountCode", h.getAccount)
		accounts.PUT("/:accountCode", h.updateAccount)
		accounts.DELETE("/:accountCode", h.deleteAccount)
		accounts.PUT("/:accountCode/parent", h.setParent)
		accounts.POST("/:accountCode/deactivate", h.deactivateAccount)
		accounts.GET("/:accountCode/children", h.listChildren)
		accounts.GET("/:accountCode/balance", h.getBalance)
		accounts.GET("/:accountCode/rollup-balance", h.getRollupBalance)
		accounts.GET("/:accountCode/activity", h.listActivity)
	}
}
