package audit

import (
	"time"

	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// AuditFilter narrows log listings. Zero values are ignored.
type AuditFilter struct {
	EntityType  string
	EntityID    int64
	Action      string
	PerformedBy string
	Scope       string
	Since       time.Time
	Limit       int
	Offset      int
}

type AuditRepo interface {
	Create(dbc dbctx.Context, entries []*types.AuditLogEntry) ([]*types.AuditLogEntry, error)
	List(dbc dbctx.Context, f AuditFilter) ([]*types.AuditLogEntry, error)
	CountByAction(dbc dbctx.Context, since time.Time) (map[string]int64, error)
}

type auditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditRepo(db *gorm.DB, baseLog *logger.Logger) AuditRepo {
	return &auditRepo{db: db, log: baseLog.With("repo", "AuditRepo")}
}

func (r *auditRepo) Create(dbc dbctx.Context, entries []*types.AuditLogEntry) ([]*types.AuditLogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.AuditLogEntry{}, nil
	}
	now := time.Now()
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *auditRepo) List(dbc dbctx.Context, f AuditFilter) ([]*types.AuditLogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.AuditLogEntry{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.PerformedBy != "" {
		q = q.Where("performed_by = ?", f.PerformedBy)
	}
	if f.Scope != "" {
		q = q.Where("scope = ?", f.Scope)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	q = q.Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.AuditLogEntry
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type actionCount struct {
	Action string
	Count  int64
}

func (r *auditRepo) CountByAction(dbc dbctx.Context, since time.Time) (map[string]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.AuditLogEntry{}).
		Select("action, COUNT(*) AS count").
		Group("action")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	var rows []actionCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Action] = row.Count
	}
	return out, nil
}
