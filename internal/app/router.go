package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/PavithraSukumar6/kbn-dss-backend/internal/http"
	httpMW "github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/observability"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, actor *httpMW.ActorMiddleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:             log,
		ActorMiddleware: actor,

		DocumentHandler:      h.Document,
		ContainerHandler:     h.Container,
		AccessRequestHandler: h.AccessRequest,
		LibraryHandler:       h.Library,
		PolicyHandler:        h.Policy,
		AuditHandler:         h.Audit,
		AnalyticsHandler:     h.Analytics,
		HealthHandler:        h.Health,

		TracingEnabled: observability.Enabled(),
		ServiceName:    "kbn-dss",
	})
}
