package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/response"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

type ContainerHandler struct {
	log        *logger.Logger
	containers services.ContainerService
}

func NewContainerHandler(log *logger.Logger, containers services.ContainerService) *ContainerHandler {
	return &ContainerHandler{
		log:        log.With("handler", "ContainerHandler"),
		containers: containers,
	}
}

func (h *ContainerHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Name                 string `json:"name"`
		Subsidiary           string `json:"subsidiary"`
		Department           string `json:"department"`
		Function             string `json:"function"`
		DateRange            string `json:"date_range"`
		ConfidentialityLevel string `json:"confidentiality_level"`
		SourceLocation       string `json:"source_location"`
		PhysicalPageCount    int    `json:"physical_page_count"`
		ParentID             string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	container, err := h.containers.Create(c.Request.Context(), actor, services.ContainerInput{
		Name:                 body.Name,
		Subsidiary:           body.Subsidiary,
		Department:           body.Department,
		Function:             body.Function,
		DateRange:            body.DateRange,
		ConfidentialityLevel: body.ConfidentialityLevel,
		SourceLocation:       body.SourceLocation,
		PhysicalPageCount:    body.PhysicalPageCount,
		ParentID:             body.ParentID,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, container)
}

func (h *ContainerHandler) List(c *gin.Context) {
	containers, err := h.containers.List(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"containers": containers, "total": len(containers)})
}

func (h *ContainerHandler) Get(c *gin.Context) {
	container, err := h.containers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, container)
}

func (h *ContainerHandler) Transfer(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		NewLocation string `json:"new_location"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	container, err := h.containers.Transfer(c.Request.Context(), actor, c.Param("id"), body.NewLocation)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, container)
}

func (h *ContainerHandler) TransferLog(c *gin.Context) {
	entries, err := h.containers.TransferLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries, "total": len(entries)})
}

func (h *ContainerHandler) CreateBatch(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		ContainerID string `json:"container_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	batch, err := h.containers.CreateBatch(c.Request.Context(), actor, body.ContainerID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, batch)
}

func (h *ContainerHandler) ListBatches(c *gin.Context) {
	batches, err := h.containers.ListBatches(c.Request.Context(), c.Query("container_id"), c.Query("qc_status"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"batches": batches, "total": len(batches)})
}

func batchID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return 0, false
	}
	return id, true
}

func (h *ContainerHandler) BatchCompleteness(c *gin.Context) {
	id, ok := batchID(c)
	if !ok {
		return
	}
	report, err := h.containers.Completeness(c.Request.Context(), id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, report)
}

func (h *ContainerHandler) ReviewBatch(c *gin.Context) {
	actor := middleware.Actor(c)
	id, ok := batchID(c)
	if !ok {
		return
	}
	var body struct {
		Verdict string `json:"verdict"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	batch, err := h.containers.ReviewBatch(c.Request.Context(), actor, id, body.Verdict, body.Notes)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, batch)
}
