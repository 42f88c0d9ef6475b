package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/jobs/handlers"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/jobs/runtime"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/jobs/worker"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

type Services struct {
	Audit         services.AuditService
	Settings      services.SettingsService
	Access        services.AccessService
	Classifier    services.ClassifierService
	Router        services.RouterService
	Ingest        services.IngestService
	Pipeline      services.PipelineService
	Lifecycle     services.LifecycleService
	Retention     services.RetentionService
	AccessRequest services.AccessRequestService
	Container     services.ContainerService
	Library       services.LibraryService
	Query         services.QueryService
	Analytics     services.AnalyticsService
	Policy        services.PolicyService

	JobWorker *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, rs Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	audit := services.NewAuditService(db, log, rs.Audit)
	settings := services.NewSettingsService(db, log, rs.Setting, audit, clients.SettingsBus)
	access := services.NewAccessService(db, log, rs.AccessPolicy, rs.AccessRequest, rs.Container)

	classifier, err := services.NewClassifier(log, cfg.ClassifyRulePath)
	if err != nil {
		return Services{}, fmt.Errorf("init classifier: %w", err)
	}
	router, err := services.NewRouter(log, rs.Container, cfg.RoutingRulePath)
	if err != nil {
		return Services{}, fmt.Errorf("init router: %w", err)
	}

	ingest := services.NewIngestService(db, log, rs.Document, rs.JobRun, rs.Container, rs.Batch, audit, clients.Blob, clients.Splitter)
	pipeline := services.NewPipelineService(
		db, log,
		rs.Document, rs.ApprovalPolicy, rs.Container,
		audit, settings, classifier, router,
		clients.OCR, clients.Blob, clients.SearchIndex,
		cfg.MaxConcurrentOCR,
	)
	lifecycle := services.NewLifecycleService(db, log, rs.Document, rs.DocumentVersion, rs.JobRun, access, audit, settings, clients.SearchIndex)
	retention := services.NewRetentionService(db, log, rs.Document, rs.DocumentVersion, rs.RetentionPolicy, audit, settings)
	accessRequest := services.NewAccessRequestService(db, log, rs.AccessRequest, rs.Document, access, audit)
	container := services.NewContainerService(db, log, rs.Container, rs.TransferLog, rs.Batch, audit)
	library := services.NewLibraryService(db, log, rs.Favorite, rs.SavedSearch, rs.Taxonomy, rs.Document, audit)
	query := services.NewQueryService(db, log, rs.Document, rs.Container, rs.Favorite, access, clients.SearchIndex, audit)
	analytics := services.NewAnalyticsService(db, log, rs.Document, rs.Audit)
	policy := services.NewPolicyService(db, log, rs.ApprovalPolicy, rs.AccessPolicy, audit)

	var jobWorker *worker.Worker
	if cfg.RunWorker {
		registry := runtime.NewRegistry()
		if err := handlers.RegisterAll(registry, pipeline, retention); err != nil {
			return Services{}, fmt.Errorf("register job handlers: %w", err)
		}
		jobWorker = worker.NewWorker(db, log, rs.JobRun, registry)
	}

	return Services{
		Audit:         audit,
		Settings:      settings,
		Access:        access,
		Classifier:    classifier,
		Router:        router,
		Ingest:        ingest,
		Pipeline:      pipeline,
		Lifecycle:     lifecycle,
		Retention:     retention,
		AccessRequest: accessRequest,
		Container:     container,
		Library:       library,
		Query:         query,
		Analytics:     analytics,
		Policy:        policy,
		JobWorker:     jobWorker,
	}, nil
}
