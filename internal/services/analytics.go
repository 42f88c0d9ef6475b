package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// DailyCount is one day of intake throughput.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DashboardStats aggregates the governance dashboard numbers.
type DashboardStats struct {
	TotalDocuments    int64            `json:"total_documents"`
	Published         int64            `json:"published"`
	PendingApproval   int64            `json:"pending_approval"`
	ProcessingFailed  int64            `json:"processing_failed"`
	ByCategory        map[string]int64 `json:"by_category"`
	ByStatus          map[string]int64 `json:"by_status"`
	ByContainer       map[string]int64 `json:"by_container"`
	AverageConfidence float64          `json:"average_confidence"`
	DailyThroughput   []DailyCount     `json:"daily_throughput"`
	AuditActions      map[string]int64 `json:"audit_actions"`
}

type AnalyticsService interface {
	Dashboard(ctx context.Context, actor *types.User) (*DashboardStats, error)
}

type analyticsService struct {
	db        *gorm.DB
	log       *logger.Logger
	documents repos.DocumentRepo
	audit     repos.AuditRepo
}

func NewAnalyticsService(db *gorm.DB, baseLog *logger.Logger, documents repos.DocumentRepo, audit repos.AuditRepo) AnalyticsService {
	return &analyticsService{
		db:        db,
		log:       baseLog.With("service", "AnalyticsService"),
		documents: documents,
		audit:     audit,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context, actor *types.User) (*DashboardStats, error) {
	dbc := dbctx.Context{Ctx: ctx}
	stats := &DashboardStats{}

	var err error
	if stats.TotalDocuments, err = s.documents.Count(dbc, repos.DocumentFilter{}); err != nil {
		return nil, err
	}
	if stats.Published, err = s.documents.Count(dbc, repos.DocumentFilter{Status: types.StatusPublished}); err != nil {
		return nil, err
	}
	if stats.PendingApproval, err = s.documents.Count(dbc, repos.DocumentFilter{ApprovalStatus: types.ApprovalPending}); err != nil {
		return nil, err
	}
	if stats.ProcessingFailed, err = s.documents.Count(dbc, repos.DocumentFilter{OCRStatus: types.OCRStatusFailed}); err != nil {
		return nil, err
	}
	if stats.ByCategory, err = s.documents.CountGroupedBy(dbc, "category"); err != nil {
		return nil, err
	}
	if stats.ByStatus, err = s.documents.CountGroupedBy(dbc, "status"); err != nil {
		return nil, err
	}
	if stats.ByContainer, err = s.documents.CountGroupedBy(dbc, "container_id"); err != nil {
		return nil, err
	}
	if stats.AverageConfidence, err = s.documents.AverageConfidence(dbc); err != nil {
		return nil, err
	}
	if stats.DailyThroughput, err = s.dailyThroughput(dbc, 7); err != nil {
		return nil, err
	}
	if stats.AuditActions, err = s.audit.CountByAction(dbc, time.Now().AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	return stats, nil
}

// dailyThroughput counts intake per calendar day over the trailing window,
// zero-filling days with no uploads.
func (s *analyticsService) dailyThroughput(dbc dbctx.Context, days int) ([]DailyCount, error) {
	transaction := s.db
	if dbc.Tx != nil {
		transaction = dbc.Tx
	}

	since := time.Now().AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)
	dayExpr := "strftime('%Y-%m-%d', upload_date)"
	if transaction.Dialector.Name() == "postgres" {
		dayExpr = "to_char(upload_date, 'YYYY-MM-DD')"
	}

	type row struct {
		Day   string
		Count int64
	}
	var rows []row
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Select(dayExpr + " AS day, COUNT(*) AS count").
		Where("upload_date >= ?", since).
		Group("day").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Count
	}
	out := make([]DailyCount, 0, days)
	for i := 0; i < days; i++ {
		d := since.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, DailyCount{Date: d, Count: byDay[d]})
	}
	return out, nil
}
