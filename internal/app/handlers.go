package app

import (
	"gorm.io/gorm"

	httpH "github.com/PavithraSukumar6/kbn-dss-backend/internal/http/handlers"
	httpMW "github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type Handlers struct {
	Health        *httpH.HealthHandler
	Document      *httpH.DocumentHandler
	Container     *httpH.ContainerHandler
	AccessRequest *httpH.AccessRequestHandler
	Library       *httpH.LibraryHandler
	Policy        *httpH.PolicyHandler
	Audit         *httpH.AuditHandler
	Analytics     *httpH.AnalyticsHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(db),
		Document:      httpH.NewDocumentHandler(log, svc.Ingest, svc.Query, svc.Lifecycle, svc.Classifier),
		Container:     httpH.NewContainerHandler(log, svc.Container),
		AccessRequest: httpH.NewAccessRequestHandler(log, svc.AccessRequest),
		Library:       httpH.NewLibraryHandler(log, svc.Library),
		Policy:        httpH.NewPolicyHandler(log, svc.Policy, svc.Retention, svc.Settings),
		Audit:         httpH.NewAuditHandler(log, svc.Audit),
		Analytics:     httpH.NewAnalyticsHandler(log, svc.Analytics),
	}
}

func wireMiddleware(log *logger.Logger, rs Repos) *httpMW.ActorMiddleware {
	return httpMW.NewActorMiddleware(log, rs.User)
}
