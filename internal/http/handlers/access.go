package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/response"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

type AccessRequestHandler struct {
	log      *logger.Logger
	requests services.AccessRequestService
}

func NewAccessRequestHandler(log *logger.Logger, requests services.AccessRequestService) *AccessRequestHandler {
	return &AccessRequestHandler{
		log:      log.With("handler", "AccessRequestHandler"),
		requests: requests,
	}
}

func (h *AccessRequestHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		DocumentID int64  `json:"document_id"`
		Reason     string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req, err := h.requests.Request(c.Request.Context(), actor, body.DocumentID, body.Reason)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, req)
}

func (h *AccessRequestHandler) ListPending(c *gin.Context) {
	reqs, err := h.requests.ListPending(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"requests": reqs, "total": len(reqs)})
}

func (h *AccessRequestHandler) ListMine(c *gin.Context) {
	actor := middleware.Actor(c)
	reqs, err := h.requests.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"requests": reqs, "total": len(reqs)})
}

func (h *AccessRequestHandler) Review(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var body struct {
		Approve     bool `json:"approve"`
		ExpiresDays int  `json:"expires_days"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	var expiresAt *time.Time
	if body.Approve && body.ExpiresDays > 0 {
		t := time.Now().AddDate(0, 0, body.ExpiresDays)
		expiresAt = &t
	}
	req, err := h.requests.Review(c.Request.Context(), actor, id, body.Approve, expiresAt)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, req)
}
