package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/http/response"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

type AnalyticsHandler struct {
	log       *logger.Logger
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(log *logger.Logger, analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:       log.With("handler", "AnalyticsHandler"),
		analytics: analytics,
	}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	actor := middleware.Actor(c)
	stats, err := h.analytics.Dashboard(c.Request.Context(), actor)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
