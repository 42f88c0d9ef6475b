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

type LibraryHandler struct {
	log     *logger.Logger
	library services.LibraryService
}

func NewLibraryHandler(log *logger.Logger, library services.LibraryService) *LibraryHandler {
	return &LibraryHandler{
		log:     log.With("handler", "LibraryHandler"),
		library: library,
	}
}

func (h *LibraryHandler) ToggleFavorite(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	favorited, err := h.library.ToggleFavorite(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document_id": id, "favorited": favorited})
}

func (h *LibraryHandler) ListFavorites(c *gin.Context) {
	actor := middleware.Actor(c)
	ids, err := h.library.FavoriteIDs(c.Request.Context(), actor)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"document_ids": ids, "total": len(ids)})
}

func (h *LibraryHandler) CreateSavedSearch(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Name        string `json:"name"`
		QueryParams string `json:"query_params"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	ss, err := h.library.CreateSavedSearch(c.Request.Context(), actor, body.Name, body.QueryParams, body.IsPublic)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, ss)
}

func (h *LibraryHandler) ListSavedSearches(c *gin.Context) {
	actor := middleware.Actor(c)
	searches, err := h.library.ListSavedSearches(c.Request.Context(), actor)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"searches": searches, "total": len(searches)})
}

func (h *LibraryHandler) DeleteSavedSearch(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.library.DeleteSavedSearch(c.Request.Context(), actor, id); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) ListTaxonomy(c *gin.Context) {
	items, err := h.library.ListTaxonomy(c.Request.Context(), c.Query("kind"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items, "total": len(items)})
}

func (h *LibraryHandler) AddTaxonomyItem(c *gin.Context) {
	actor := middleware.Actor(c)
	var body struct {
		Kind  string `json:"kind"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	item, err := h.library.AddTaxonomyItem(c.Request.Context(), actor, body.Kind, body.Value)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, item)
}

func (h *LibraryHandler) SetTaxonomyStatus(c *gin.Context) {
	actor := middleware.Actor(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.library.SetTaxonomyStatus(c.Request.Context(), actor, id, body.Status); err != nil {
		response.RespondFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) FilterOptions(c *gin.Context) {
	opts, err := h.library.FilterOptions(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, opts)
}
