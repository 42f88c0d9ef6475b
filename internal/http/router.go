package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/PavithraSukumar6/kbn-dss-backend/internal/http/handlers"
	httpMW "github.com/PavithraSukumar6/kbn-dss-backend/internal/http/middleware"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	ActorMiddleware *httpMW.ActorMiddleware

	DocumentHandler      *httpH.DocumentHandler
	ContainerHandler     *httpH.ContainerHandler
	AccessRequestHandler *httpH.AccessRequestHandler
	LibraryHandler       *httpH.LibraryHandler
	PolicyHandler        *httpH.PolicyHandler
	AuditHandler         *httpH.AuditHandler
	AnalyticsHandler     *httpH.AnalyticsHandler

	HealthHandler *httpH.HealthHandler

	TracingEnabled bool
	ServiceName    string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.Health)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.ActorMiddleware != nil {
			protected.Use(cfg.ActorMiddleware.RequireActor())
		}

		// Documents
		if cfg.DocumentHandler != nil {
			protected.GET("/documents", cfg.DocumentHandler.List)
			protected.GET("/documents/search", cfg.DocumentHandler.Search)
			protected.GET("/documents/export", cfg.DocumentHandler.Export)
			protected.GET("/documents/suggest-category", cfg.DocumentHandler.SuggestCategory)
			protected.POST("/documents/upload", cfg.DocumentHandler.Upload)
			protected.GET("/documents/:id", cfg.DocumentHandler.Get)
			protected.GET("/documents/:id/versions", cfg.DocumentHandler.Versions)
			protected.POST("/documents/:id/publish", cfg.DocumentHandler.Publish)
			protected.POST("/documents/:id/approve", cfg.DocumentHandler.Approve)
			protected.POST("/documents/:id/reject", cfg.DocumentHandler.Reject)
			protected.POST("/documents/:id/request-changes", cfg.DocumentHandler.RequestChanges)
			protected.DELETE("/documents/:id", cfg.DocumentHandler.SoftDelete)
			protected.POST("/documents/:id/restore", cfg.DocumentHandler.Restore)
			protected.POST("/documents/:id/rescan", cfg.DocumentHandler.Rescan)
			protected.POST("/documents/:id/reclassify", cfg.DocumentHandler.Reclassify)
			protected.PATCH("/documents/:id/metadata", cfg.DocumentHandler.UpdateMetadata)
		}

		// Favorites and saved searches
		if cfg.LibraryHandler != nil {
			protected.POST("/documents/:id/favorite", cfg.LibraryHandler.ToggleFavorite)
			protected.GET("/favorites", cfg.LibraryHandler.ListFavorites)
			protected.GET("/saved-searches", cfg.LibraryHandler.ListSavedSearches)
			protected.POST("/saved-searches", cfg.LibraryHandler.CreateSavedSearch)
			protected.DELETE("/saved-searches/:id", cfg.LibraryHandler.DeleteSavedSearch)
			protected.GET("/taxonomy", cfg.LibraryHandler.ListTaxonomy)
			protected.GET("/filter-options", cfg.LibraryHandler.FilterOptions)
		}

		// Containers and batches
		if cfg.ContainerHandler != nil {
			protected.GET("/containers", cfg.ContainerHandler.List)
			protected.POST("/containers", cfg.ContainerHandler.Create)
			protected.GET("/containers/:id", cfg.ContainerHandler.Get)
			protected.POST("/containers/:id/transfer", cfg.ContainerHandler.Transfer)
			protected.GET("/containers/:id/transfer-log", cfg.ContainerHandler.TransferLog)
			protected.GET("/batches", cfg.ContainerHandler.ListBatches)
			protected.POST("/batches", cfg.ContainerHandler.CreateBatch)
			protected.GET("/batches/:id/completeness", cfg.ContainerHandler.BatchCompleteness)
			protected.POST("/batches/:id/review", cfg.ContainerHandler.ReviewBatch)
		}

		// Access requests
		if cfg.AccessRequestHandler != nil {
			protected.POST("/access-requests", cfg.AccessRequestHandler.Create)
			protected.GET("/access-requests/mine", cfg.AccessRequestHandler.ListMine)
			protected.GET("/access-requests/pending", cfg.AccessRequestHandler.ListPending)
			protected.POST("/access-requests/:id/review", cfg.AccessRequestHandler.Review)
		}

		// Policies (reads)
		if cfg.PolicyHandler != nil {
			protected.GET("/policies/approval", cfg.PolicyHandler.ListApprovalPolicies)
			protected.GET("/policies/access", cfg.PolicyHandler.ListAccessPolicies)
			protected.GET("/policies/retention", cfg.PolicyHandler.ListRetentionPolicies)
			protected.GET("/legal-hold", cfg.PolicyHandler.GetLegalHold)
		}

		// Analytics and audit
		if cfg.AnalyticsHandler != nil {
			protected.GET("/analytics/dashboard", cfg.AnalyticsHandler.Dashboard)
		}
		if cfg.AuditHandler != nil {
			protected.GET("/audit", cfg.AuditHandler.List)
		}
	}

	admin := protected.Group("/admin")
	{
		if cfg.ActorMiddleware != nil {
			admin.Use(cfg.ActorMiddleware.RequireAdmin())
		}

		if cfg.DocumentHandler != nil {
			admin.DELETE("/documents/:id/permanent", cfg.DocumentHandler.PermanentDelete)
		}
		if cfg.PolicyHandler != nil {
			admin.POST("/policies/approval", cfg.PolicyHandler.CreateApprovalPolicy)
			admin.PATCH("/policies/approval/:id", cfg.PolicyHandler.SetApprovalPolicyActive)
			admin.DELETE("/policies/approval/:id", cfg.PolicyHandler.DeleteApprovalPolicy)
			admin.POST("/policies/access", cfg.PolicyHandler.CreateAccessPolicy)
			admin.PATCH("/policies/access/:id", cfg.PolicyHandler.UpdateAccessPolicy)
			admin.DELETE("/policies/access/:id", cfg.PolicyHandler.DeleteAccessPolicy)
			admin.PUT("/policies/retention", cfg.PolicyHandler.UpsertRetentionPolicy)
			admin.DELETE("/policies/retention/:id", cfg.PolicyHandler.DeleteRetentionPolicy)
			admin.POST("/retention/sweep", cfg.PolicyHandler.RunRetentionSweep)
			admin.PUT("/legal-hold", cfg.PolicyHandler.SetLegalHold)
			admin.GET("/settings", cfg.PolicyHandler.ListSettings)
			admin.PUT("/settings", cfg.PolicyHandler.SetSetting)
		}
		if cfg.LibraryHandler != nil {
			admin.POST("/taxonomy", cfg.LibraryHandler.AddTaxonomyItem)
			admin.PATCH("/taxonomy/:id", cfg.LibraryHandler.SetTaxonomyStatus)
		}
	}

	return r
}
