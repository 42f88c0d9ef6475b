package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/response"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

type AuditHandler struct {
	log   *logger.Logger
	audit services.AuditService
}

func NewAuditHandler(log *logger.Logger, audit services.AuditService) *AuditHandler {
	return &AuditHandler{
		log:   log.With("handler", "AuditHandler"),
		audit: audit,
	}
}

func (h *AuditHandler) List(c *gin.Context) {
	f := repos.AuditFilter{
		EntityType:  c.Query("entity_type"),
		Action:      c.Query("action"),
		PerformedBy: c.Query("performed_by"),
		Scope:       c.Query("scope"),
		Limit:       100,
	}
	if v, err := strconv.ParseInt(c.Query("entity_id"), 10, 64); err == nil {
		f.EntityID = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 1000 {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		f.Offset = v
	}
	if v := c.Query("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.Since = t
		}
	}

	entries, err := h.audit.List(dbctx.Context{Ctx: c.Request.Context()}, f)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries, "total": len(entries)})
}
