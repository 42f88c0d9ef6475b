package services

import (
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// AuditEvent is one governance action to record.
type AuditEvent struct {
	EntityType  string
	EntityID    int64
	Action      string
	Details     string
	Before      string
	After       string
	PerformedBy string
	Scope       string
}

// AuditService appends governance events. Recording is advisory: a failed
// write is logged and swallowed so it never rolls back the mutation it
// describes.
type AuditService interface {
	Record(dbc dbctx.Context, ev AuditEvent)
	List(dbc dbctx.Context, f repos.AuditFilter) ([]*types.AuditLogEntry, error)
}

type auditService struct {
	db        *gorm.DB
	log       *logger.Logger
	auditRepo repos.AuditRepo
}

func NewAuditService(db *gorm.DB, baseLog *logger.Logger, auditRepo repos.AuditRepo) AuditService {
	return &auditService{
		db:        db,
		log:       baseLog.With("service", "AuditService"),
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(dbc dbctx.Context, ev AuditEvent) {
	entry := &types.AuditLogEntry{
		EntityType:  ev.EntityType,
		EntityID:    ev.EntityID,
		Action:      ev.Action,
		Details:     ev.Details,
		Before:      ev.Before,
		After:       ev.After,
		PerformedBy: ev.PerformedBy,
		Scope:       ev.Scope,
	}
	// Audit writes bypass the caller's transaction: an aborted mutation must
	// not erase the record of the attempt, and a failed audit write must not
	// abort the mutation.
	if _, err := s.auditRepo.Create(dbctx.Context{Ctx: dbc.Ctx}, []*types.AuditLogEntry{entry}); err != nil {
		s.log.Error("audit write failed",
			"entity_type", ev.EntityType,
			"entity_id", ev.EntityID,
			"action", ev.Action,
			"error", err,
		)
	}
}

func (s *auditService) List(dbc dbctx.Context, f repos.AuditFilter) ([]*types.AuditLogEntry, error) {
	return s.auditRepo.List(dbc, f)
}
