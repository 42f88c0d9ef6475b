package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/response"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

type PolicyHandler struct {
	log       *logger.Logger
	policies  services.PolicyService
	retention services.RetentionService
	settings  services.SettingsService
}

func NewPolicyHandler(
	log *logger.Logger,
	policies services.PolicyService,
	retention services.RetentionService,
	settings services.SettingsService,
) *PolicyHandler {
	return &PolicyHandler{
		log:       log.With("handler", "PolicyHandler"),
		policies:  policies,
		retention: retention,
		settings:  settings,
	}
}

func policyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return 0, false
	}
	return id, true
}

func (h *PolicyHandler) ListApprovalPolicies(c *gin.Context) {
	policies, err := h.policies.ListApprovalPolicies(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"policies": policies, "total": len(policies)})
}

func (h *PolicyHandler) CreateApprovalPolicy(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		MatchType  string `json:"match_type"`
		MatchValue string `json:"match_value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	p, err := h.policies.CreateApprovalPolicy(c.Request.Context(), actor, body.MatchType, body.MatchValue)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, p)
}

func (h *PolicyHandler) SetApprovalPolicyActive(c *gin.Context) {
	actor := middleware.Actor(c)
	id, ok := policyID(c)
	if !ok {
		return
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.policies.SetApprovalPolicyActive(c.Request.Context(), actor, id, body.Active); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandler) DeleteApprovalPolicy(c *gin.Context) {
	actor := middleware.Actor(c)
	id, ok := policyID(c)
	if !ok {
		return
	}
	if err := h.policies.DeleteApprovalPolicy(c.Request.Context(), actor, id); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandler) ListAccessPolicies(c *gin.Context) {
	policies, err := h.policies.ListAccessPolicies(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"policies": policies, "total": len(policies)})
}

func (h *PolicyHandler) CreateAccessPolicy(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Role          string `json:"role"`
		Department    string `json:"department"`
		AllowedLevels string `json:"allowed_levels"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	p, err := h.policies.CreateAccessPolicy(c.Request.Context(), actor, body.Role, body.Department, body.AllowedLevels)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, p)
}

func (h *PolicyHandler) UpdateAccessPolicy(c *gin.Context) {
	actor := middleware.Actor(c)
	id, ok := policyID(c)
	if !ok {
		return
	}
	var body struct {
		AllowedLevels string `json:"allowed_levels"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.policies.UpdateAccessPolicy(c.Request.Context(), actor, id, body.AllowedLevels); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandler) DeleteAccessPolicy(c *gin.Context) {
	actor := middleware.Actor(c)
	id, ok := policyID(c)
	if !ok {
		return
	}
	if err := h.policies.DeleteAccessPolicy(c.Request.Context(), actor, id); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandler) ListRetentionPolicies(c *gin.Context) {
	policies, err := h.retention.Policies(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"policies": policies, "total": len(policies)})
}

func (h *PolicyHandler) UpsertRetentionPolicy(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		DocumentType   string `json:"document_type"`
		RetentionYears int    `json:"retention_years"`
		Action         string `json:"action"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	p, err := h.retention.UpsertPolicy(c.Request.Context(), actor, body.DocumentType, body.RetentionYears, body.Action)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, p)
}

func (h *PolicyHandler) DeleteRetentionPolicy(c *gin.Context) {
	actor := middleware.Actor(c)
	id, ok := policyID(c)
	if !ok {
		return
	}
	if err := h.retention.DeletePolicy(c.Request.Context(), actor, id); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandler) RunRetentionSweep(c *gin.Context) {
	report, err := h.retention.Sweep(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, report)
}

func (h *PolicyHandler) GetLegalHold(c *gin.Context) {
	active, err := h.settings.LegalHoldActive(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"active": active})
}

func (h *PolicyHandler) SetLegalHold(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.settings.SetLegalHold(dbctx.Context{Ctx: c.Request.Context()}, body.Active, actor.ID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"active": body.Active})
}

func (h *PolicyHandler) ListSettings(c *gin.Context) {
	settings, err := h.settings.All(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": settings, "total": len(settings)})
}

func (h *PolicyHandler) SetSetting(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if body.Key == "" {
		response.RespondError(c, http.StatusBadRequest, "key_required", nil)
		return
	}
	if err := h.settings.Set(dbctx.Context{Ctx: c.Request.Context()}, body.Key, body.Value, actor.ID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
