package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/core/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalSvc portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalSvc portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalSvc: journalSvc}
}

// journalErrorStatus maps a journal service error to an HTTP status.
func journalErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrIntegrity):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrAlreadyPosted),
		errors.Is(err, services.ErrNotDraft),
		errors.Is(err, services.ErrNotPosted),
		errors.Is(err, services.ErrAlreadyReversed),
		errors.Is(err, services.ErrCreditLimitBlown):
		return http.StatusConflict
	case errors.Is(err, services.ErrEntryUnbalanced),
		errors.Is(err, services.ErrEntryMinLines),
		errors.Is(err, services.ErrEntryMinAccounts),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrAccountInactive),
		errors.Is(err, services.ErrCurrencyMismatch),
		errors.Is(err, services.ErrDescriptionMissing),
		errors.Is(err, domain.ErrMalformedJournalLine),
		errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondJournalError(c *gin.Context, logger *slog.Logger, action string, err error) {
	status := journalErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Journal operation failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	logger.Warn("Journal operation rejected", slog.String("action", action), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// createEntry godoc
// @Summary Create a draft journal entry
// @Description Validates and persists a new balanced journal entry in DRAFT status
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Validation error"
// @Router /journal-entries [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.journalSvc.CreateEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondJournalError(c, logger, "create journal entry", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a journal entry and its lines by ID
// @Tags journal-entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /journal-entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.journalSvc.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		respondJournalError(c, logger, "retrieve journal entry", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a paginated list of journal entries, newest first
// @Tags journal-entries
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Router /journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	// Reference lookup piggybacks on the list endpoint
	if ref := c.Query("reference"); ref != "" {
		entry, err := h.journalSvc.GetEntryByReference(c.Request.Context(), ref)
		if err != nil {
			respondJournalError(c, logger, "retrieve journal entry by reference", err)
			return
		}
		c.JSON(http.StatusOK, dto.ListEntriesResponse{Entries: []dto.JournalEntryResponse{dto.ToJournalEntryResponse(entry)}})
		return
	}

	res, err := h.journalSvc.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondJournalError(c, logger, "list journal entries", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// postEntry godoc
// @Summary Post a draft journal entry
// @Description Transitions a draft entry to POSTED after revalidation; posted entries affect balances
// @Tags journal-entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 422 {object} map[string]string "Entry failed revalidation"
// @Router /journal-entries/{entryID}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.journalSvc.PostEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondJournalError(c, logger, "post journal entry", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// voidEntry godoc
// @Summary Void a draft journal entry
// @Description Transitions a draft entry to VOID; posted entries must be reversed instead
// @Tags journal-entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Router /journal-entries/{entryID}/void [post]
func (h *journalHandler) voidEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.journalSvc.VoidEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondJournalError(c, logger, "void journal entry", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted journal entry
// @Description Creates and posts a mirror-image entry linked to the original
// @Tags journal-entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]string "Entry is not posted or already reversed"
// @Router /journal-entries/{entryID}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.journalSvc.ReverseEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondJournalError(c, logger, "reverse journal entry", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}

// registerJournalRoutes registers journal entry specific routes
func registerJournalRoutes(group *gin.RouterGroup, journalSvc portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalSvc)

	entries := group.Group("/journal-entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/void", h.voidEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}
}
