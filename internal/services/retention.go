package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// SweepReport summarizes one retention pass.
type SweepReport struct {
	Archived       int `json:"archived"`
	MarkedDeletion int `json:"marked_deletion"`
	SkippedHold    int `json:"skipped_hold"`
	VersionsPruned int `json:"versions_pruned"`
}

// RetentionService runs the periodic retention sweep: per policy, transition
// overdue active documents to Archived or Pending_Deletion, then prune
// document versions past the configured horizon.
type RetentionService interface {
	Sweep(ctx context.Context) (*SweepReport, error)
	Policies(ctx context.Context) ([]*types.RetentionPolicy, error)
	UpsertPolicy(ctx context.Context, actor *types.User, documentType string, years int, action string) (*types.RetentionPolicy, error)
	DeletePolicy(ctx context.Context, actor *types.User, id int64) error
}

type retentionService struct {
	db       *gorm.DB
	log      *logger.Logger
	docRepo  repos.DocumentRepo
	versions repos.DocumentVersionRepo
	policies repos.RetentionPolicyRepo
	audit    AuditService
	settings SettingsService
}

func NewRetentionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	docRepo repos.DocumentRepo,
	versions repos.DocumentVersionRepo,
	policies repos.RetentionPolicyRepo,
	audit AuditService,
	settings SettingsService,
) RetentionService {
	return &retentionService{
		db:       db,
		log:      baseLog.With("service", "RetentionService"),
		docRepo:  docRepo,
		versions: versions,
		policies: policies,
		audit:    audit,
		settings: settings,
	}
}

func (s *retentionService) Sweep(ctx context.Context) (*SweepReport, error) {
	dbc := dbctx.Context{Ctx: ctx}
	report := &SweepReport{}

	policies, err := s.policies.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("load retention policies: %w", err)
	}

	now := time.Now()
	hold, err := s.settings.LegalHoldActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("read legal hold: %w", err)
	}

	for _, policy := range policies {
		cutoff := now.AddDate(-policy.RetentionYears, 0, 0)
		docs, err := s.docRepo.ListForRetention(dbc, policy.DocumentType, cutoff)
		if err != nil {
			return nil, fmt.Errorf("list overdue %s documents: %w", policy.DocumentType, err)
		}
		for _, doc := range docs {
			target := types.StatusArchived
			if policy.Action == types.RetentionActionDelete {
				// Archive transitions stay reversible and run under hold;
				// marking for deletion does not.
				if hold {
					report.SkippedHold++
					s.audit.Record(dbc, AuditEvent{
						EntityType:  "Document",
						EntityID:    doc.ID,
						Action:      "RETENTION_SKIPPED",
						Details:     "deletion marking deferred: legal hold active",
						PerformedBy: "System",
						Scope:       types.AuditScopeLegal,
					})
					continue
				}
				target = types.StatusPendingDeletion
			}
			if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
				"status": target,
			}); err != nil {
				return nil, fmt.Errorf("retention transition for document %d: %w", doc.ID, err)
			}
			s.audit.Record(dbc, AuditEvent{
				EntityType:  "Document",
				EntityID:    doc.ID,
				Action:      "RETENTION_TRANSITION",
				Details:     fmt.Sprintf("%s policy (%d years)", policy.DocumentType, policy.RetentionYears),
				Before:      doc.Status,
				After:       target,
				PerformedBy: "System",
			})
			if target == types.StatusArchived {
				report.Archived++
			} else {
				report.MarkedDeletion++
			}
		}
	}

	years, err := s.settings.VersionRetainYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("read version retention horizon: %w", err)
	}
	if years > 0 {
		pruned, err := s.versions.DeleteOlderThan(dbc, now.AddDate(-years, 0, 0))
		if err != nil {
			return nil, fmt.Errorf("prune versions: %w", err)
		}
		report.VersionsPruned = int(pruned)
	}

	s.log.Info("Retention sweep complete",
		"archived", report.Archived,
		"marked_deletion", report.MarkedDeletion,
		"skipped_hold", report.SkippedHold,
		"versions_pruned", report.VersionsPruned,
	)
	return report, nil
}

func (s *retentionService) Policies(ctx context.Context) ([]*types.RetentionPolicy, error) {
	return s.policies.List(dbctx.Context{Ctx: ctx})
}

func (s *retentionService) UpsertPolicy(ctx context.Context, actor *types.User, documentType string, years int, action string) (*types.RetentionPolicy, error) {
	dbc := dbctx.Context{Ctx: ctx}
	policy, err := s.policies.Upsert(dbc, &types.RetentionPolicy{
		DocumentType:   documentType,
		RetentionYears: years,
		Action:         action,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert retention policy: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "RetentionPolicy",
		EntityID:    policy.ID,
		Action:      "RETENTION_POLICY_UPSERT",
		Details:     fmt.Sprintf("%s: %d years, %s", documentType, years, action),
		PerformedBy: actor.ID,
	})
	return policy, nil
}

func (s *retentionService) DeletePolicy(ctx context.Context, actor *types.User, id int64) error {
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.policies.Delete(dbc, id); err != nil {
		return fmt.Errorf("delete retention policy: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "RetentionPolicy",
		EntityID:    id,
		Action:      "RETENTION_POLICY_DELETE",
		PerformedBy: actor.ID,
	})
	return nil
}
