package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/middleware"
)

// auditHandler handles HTTP requests for the audit log.
type auditHandler struct {
	auditSvc portssvc.AuditReaderSvc
}

// newAuditHandler creates a new auditHandler.
func newAuditHandler(auditSvc portssvc.AuditReaderSvc) *auditHandler {
	return &auditHandler{auditSvc: auditSvc}
}

// listAuditEvents godoc
// @Summary List audit events for an entity
// @Tags audit
// @Produce json
// @Param entityType path string true "Entity type (journal_entry, account, customer)"
// @Param entityID path string true "Entity ID"
// @Param limit query int false "Max events" default(50)
// @Success 200 {array} domain.AuditEvent
// @Router /audit/{entityType}/{entityID} [get]
func (h *auditHandler) listAuditEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.auditSvc.ListAuditEventsByEntity(c.Request.Context(), c.Param("entityType"), c.Param("entityID"), limit)
	if err != nil {
		logger.Error("Failed to list audit events", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// registerAuditRoutes registers audit log specific routes
func registerAuditRoutes(group *gin.RouterGroup, auditSvc portssvc.AuditReaderSvc) {
	h := newAuditHandler(auditSvc)
	group.GET("/audit/:entityType/:entityID", h.listAuditEvents)
}
