package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/response"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

const maxUploadBytes = 64 << 20

type DocumentHandler struct {
	log       *logger.Logger
	ingest    services.IngestService
	query     services.QueryService
	lifecycle services.LifecycleService
	classify  services.ClassifierService
}

func NewDocumentHandler(
	log *logger.Logger,
	ingest services.IngestService,
	query services.QueryService,
	lifecycle services.LifecycleService,
	classify services.ClassifierService,
) *DocumentHandler {
	return &DocumentHandler{
		log:       log.With("handler", "DocumentHandler"),
		ingest:    ingest,
		query:     query,
		lifecycle: lifecycle,
		classify:  classify,
	}
}

func bindListQuery(c *gin.Context) services.ListQuery {
	q := services.ListQuery{
		Category:       c.Query("category"),
		Status:         c.Query("status"),
		ApprovalStatus: c.Query("approval_status"),
		OCRStatus:      c.Query("ocr_status"),
		ContainerID:    c.Query("container_id"),
		UploaderID:     c.Query("uploader_id"),
		Search:         c.Query("search"),
		FavoritesOnly:  c.Query("favorites") == "true",
		IncludeDeleted: c.Query("include_deleted") == "true",
		Limit:          50,
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
		q.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		q.Offset = v
	}
	if v, err := strconv.ParseInt(c.Query("batch_id"), 10, 64); err == nil {
		q.BatchID = &v
	}
	return q
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document id %q", c.Param("id"))
	}
	return id, nil
}

func (h *DocumentHandler) List(c *gin.Context) {
	actor := middleware.Actor(c)
	result, err := h.query.List(c.Request.Context(), actor, bindListQuery(c))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	actor := middleware.Actor(c)
	raw := c.Param("id")
	if strings.HasPrefix(raw, "DOC-") {
		doc, err := h.query.GetByUID(c.Request.Context(), actor, raw)
		if err != nil {
			response.RespondFromError(c, err)
			return
		}
		response.RespondOK(c, doc)
		return
	}
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	doc, err := h.query.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *DocumentHandler) Search(c *gin.Context) {
	actor := middleware.Actor(c)
	limit := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	docs, err := h.query.Search(c.Request.Context(), actor, c.Query("q"), limit)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs, "total": len(docs)})
}

func (h *DocumentHandler) Export(c *gin.Context) {
	actor := middleware.Actor(c)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="documents.csv"`)
	if _, err := h.query.ExportCSV(c.Request.Context(), actor, bindListQuery(c), c.Writer); err != nil {
		h.log.Error("CSV export failed", "error", err)
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	form := c.Request.MultipartForm
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		if single := form.File["file"]; len(single) > 0 {
			fileHeaders = single
		}
	}
	if len(fileHeaders) == 0 {
		response.RespondError(c, http.StatusBadRequest, "no_files", nil)
		return
	}

	formValue := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	in := services.IngestInput{
		ContainerID:          formValue("container_id"),
		Category:             formValue("category"),
		ConfidentialityLevel: formValue("confidentiality_level"),
		Tags:                 formValue("tags"),
	}
	if v := formValue("batch_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			in.BatchID = &id
		}
	}
	if len(form.Value["metadata"]) > 0 {
		meta := map[string]string{}
		for _, pair := range strings.Split(form.Value["metadata"][0], ";") {
			if k, v, ok := strings.Cut(pair, "="); ok {
				meta[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		if len(meta) > 0 {
			in.Metadata = meta
		}
	}

	created := make([]any, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
			return
		}

		fileIn := in
		fileIn.Filename = fh.Filename
		fileIn.Data = data
		docs, err := h.ingest.Ingest(c.Request.Context(), actor, fileIn)
		if err != nil {
			response.RespondFromError(c, err)
			return
		}
		for _, d := range docs {
			created = append(created, d)
		}
	}
	response.RespondCreated(c, gin.H{"documents": created, "total": len(created)})
}

func (h *DocumentHandler) SuggestCategory(c *gin.Context) {
	filename := c.Query("filename")
	if filename == "" {
		response.RespondError(c, http.StatusBadRequest, "filename_required", nil)
		return
	}
	category, ok := h.classify.SuggestFromFilename(filename)
	response.RespondOK(c, gin.H{"category": category, "matched": ok})
}

func (h *DocumentHandler) transition(c *gin.Context, fn func(int64) error) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := fn(id); err != nil {
		response.RespondFromError(c, err)
		return
	}
}

func (h *DocumentHandler) Publish(c *gin.Context) {
	actor := middleware.Actor(c)
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.Publish(c.Request.Context(), actor, id)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) Approve(c *gin.Context) {
	actor := middleware.Actor(c)
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.Approve(c.Request.Context(), actor, id)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

type reasonBody struct {
	Reason string `json:"reason"`
}

func (h *DocumentHandler) Reject(c *gin.Context) {
	actor := middleware.Actor(c)
	var body reasonBody
	_ = c.ShouldBindJSON(&body)
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.Reject(c.Request.Context(), actor, id, body.Reason)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) RequestChanges(c *gin.Context) {
	actor := middleware.Actor(c)
	var body reasonBody
	_ = c.ShouldBindJSON(&body)
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.RequestChanges(c.Request.Context(), actor, id, body.Reason)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) SoftDelete(c *gin.Context) {
	actor := middleware.Actor(c)
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.SoftDelete(c.Request.Context(), actor, id)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) Restore(c *gin.Context) {
	actor := middleware.Actor(c)
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.Restore(c.Request.Context(), actor, id)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) PermanentDelete(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.lifecycle.PermanentDelete(c.Request.Context(), actor, id); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) Rescan(c *gin.Context) {
	actor := middleware.Actor(c)
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.Rescan(c.Request.Context(), actor, id)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) Reclassify(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.Reclassify(c.Request.Context(), actor, id, body.Category)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) UpdateMetadata(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	var doc any
	h.transition(c, func(id int64) error {
		d, err := h.lifecycle.UpdateMetadata(c.Request.Context(), actor, id, body.Metadata)
		doc = d
		return err
	})
	if doc != nil {
		response.RespondOK(c, doc)
	}
}

func (h *DocumentHandler) Versions(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	versions, err := h.lifecycle.Versions(c.Request.Context(), id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": versions, "total": len(versions)})
}
