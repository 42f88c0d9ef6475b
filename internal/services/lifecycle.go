package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/search"
)

// LifecycleService owns every explicit governance transition on a document.
// Authorization is checked before any mutation; legal hold blocks the delete
// family and all metadata/category mutation.
type LifecycleService interface {
	Publish(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error)
	Approve(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error)
	Reject(ctx context.Context, actor *types.User, documentID int64, reason string) (*types.Document, error)
	RequestChanges(ctx context.Context, actor *types.User, documentID int64, reason string) (*types.Document, error)
	SoftDelete(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error)
	Restore(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error)
	PermanentDelete(ctx context.Context, actor *types.User, documentID int64) error
	Rescan(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error)
	Reclassify(ctx context.Context, actor *types.User, documentID int64, category string) (*types.Document, error)
	UpdateMetadata(ctx context.Context, actor *types.User, documentID int64, metadata map[string]string) (*types.Document, error)
	Versions(ctx context.Context, documentID int64) ([]*types.DocumentVersion, error)
}

type lifecycleService struct {
	db       *gorm.DB
	log      *logger.Logger
	docRepo  repos.DocumentRepo
	versions repos.DocumentVersionRepo
	jobRepo  repos.JobRunRepo
	access   AccessService
	audit    AuditService
	settings SettingsService
	index    search.Index
}

func NewLifecycleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	docRepo repos.DocumentRepo,
	versions repos.DocumentVersionRepo,
	jobRepo repos.JobRunRepo,
	access AccessService,
	audit AuditService,
	settings SettingsService,
	index search.Index,
) LifecycleService {
	return &lifecycleService{
		db:       db,
		log:      baseLog.With("service", "LifecycleService"),
		docRepo:  docRepo,
		versions: versions,
		jobRepo:  jobRepo,
		access:   access,
		audit:    audit,
		settings: settings,
		index:    index,
	}
}

func (s *lifecycleService) load(dbc dbctx.Context, documentID int64) (*types.Document, error) {
	doc, err := s.docRepo.GetByID(dbc, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", documentID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d: %w", documentID, apperrors.ErrNotFound)
	}
	return doc, nil
}

// guardLegalHold rejects the action while the hold is set. Rejections are
// never silent: each one lands in the audit log under the Legal scope.
func (s *lifecycleService) guardLegalHold(dbc dbctx.Context, documentID int64, action, actor string) error {
	hold, err := s.settings.LegalHoldActive(dbc.Ctx)
	if err != nil {
		// Fail closed: an unreadable hold never permits the action.
		return fmt.Errorf("legal hold state unavailable, %s rejected: %w", action, err)
	}
	if !hold {
		return nil
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    documentID,
		Action:      "LEGAL_HOLD_BLOCKED",
		Details:     fmt.Sprintf("%s rejected: legal hold active", action),
		PerformedBy: actor,
		Scope:       types.AuditScopeLegal,
	})
	return fmt.Errorf("Legal Hold Active: %s is prohibited: %w", action, apperrors.ErrPolicyViolation)
}

func (s *lifecycleService) snapshot(dbc dbctx.Context, doc *types.Document, reason, actor string) error {
	v := types.SnapshotOf(doc, reason, actor)
	v.CreatedAt = time.Now()
	if _, err := s.versions.Create(dbc, []*types.DocumentVersion{v}); err != nil {
		return fmt.Errorf("snapshot document %d: %w", doc.ID, err)
	}
	return nil
}

// Publish is the single authoritative make-visible operation, idempotent by
// construction: it always converges on the same terminal field values.
func (s *lifecycleService) Publish(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"status":          types.StatusPublished,
		"is_published":    true,
		"approval_status": types.ApprovalApproved,
	}); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	actorID := "System"
	if actor != nil {
		actorID = actor.ID
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "PUBLISH",
		Before:      doc.Status,
		After:       types.StatusPublished,
		PerformedBy: actorID,
	})
	return s.load(dbc, documentID)
}

func (s *lifecycleService) Approve(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeReviewer(dbc, actor, doc); err != nil {
		return nil, err
	}
	return s.Publish(ctx, actor, documentID)
}

func (s *lifecycleService) setApproval(ctx context.Context, actor *types.User, documentID int64, status, action, reason string) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeReviewer(dbc, actor, doc); err != nil {
		return nil, err
	}
	if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"approval_status": status,
		"is_published":    false,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      action,
		Details:     reason,
		Before:      doc.ApprovalStatus,
		After:       status,
		PerformedBy: actor.ID,
	})
	return s.load(dbc, documentID)
}

func (s *lifecycleService) Reject(ctx context.Context, actor *types.User, documentID int64, reason string) (*types.Document, error) {
	return s.setApproval(ctx, actor, documentID, types.ApprovalRejected, "REJECT", reason)
}

func (s *lifecycleService) RequestChanges(ctx context.Context, actor *types.User, documentID int64, reason string) (*types.Document, error) {
	return s.setApproval(ctx, actor, documentID, types.ApprovalChangesRequested, "REQUEST_CHANGES", reason)
}

func (s *lifecycleService) SoftDelete(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeReviewer(dbc, actor, doc); err != nil {
		return nil, err
	}
	if err := s.guardLegalHold(dbc, doc.ID, "soft delete", actor.ID); err != nil {
		return nil, err
	}
	if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"status": types.StatusSoftDeleted,
	}); err != nil {
		return nil, fmt.Errorf("soft delete: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "SOFT_DELETE",
		Before:      doc.Status,
		After:       types.StatusSoftDeleted,
		PerformedBy: actor.ID,
	})
	return s.load(dbc, documentID)
}

func (s *lifecycleService) Restore(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeReviewer(dbc, actor, doc); err != nil {
		return nil, err
	}
	if !doc.Deleted() {
		return nil, fmt.Errorf("document %d is not deleted: %w", doc.ID, apperrors.ErrInvalidArgument)
	}
	if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"status": types.StatusPublished,
	}); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "RESTORE",
		Before:      doc.Status,
		After:       types.StatusPublished,
		PerformedBy: actor.ID,
	})
	return s.load(dbc, documentID)
}

// PermanentDelete is terminal. Admin only, and only from a soft-deleted or
// pending-deletion state.
func (s *lifecycleService) PermanentDelete(ctx context.Context, actor *types.User, documentID int64) error {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return err
	}
	if actor == nil || !actor.Admin() {
		return fmt.Errorf("permanent delete requires admin: %w", apperrors.ErrPermissionDenied)
	}
	if !doc.Deleted() {
		return fmt.Errorf("document %d must be soft-deleted first: %w", doc.ID, apperrors.ErrInvalidArgument)
	}
	if err := s.guardLegalHold(dbc, doc.ID, "permanent delete", actor.ID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.versions.DeleteByDocumentID(txc, doc.ID); err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
		if err := s.docRepo.FullDeleteByID(txc, doc.ID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.Remove(dbc, doc.ID); err != nil {
			s.log.Warn("index remove failed", "document_id", doc.ID, "error", err)
		}
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "PERMANENT_DELETE",
		Details:     doc.Filename,
		PerformedBy: actor.ID,
	})
	return nil
}

// Rescan snapshots current state and re-enters the pipeline.
func (s *lifecycleService) Rescan(ctx context.Context, actor *types.User, documentID int64) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.snapshot(dbc, doc, "rescan", actor.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.docRepo.UpdateFields(txc, doc.ID, map[string]interface{}{
			"ocr_status": types.OCRStatusProcessing,
			"qc_state":   "",
		}); err != nil {
			return fmt.Errorf("reset for rescan: %w", err)
		}
		job := &types.JobRun{
			JobType:    types.JobTypeDocumentProcess,
			EntityType: "Document",
			EntityID:   doc.ID,
			Status:     types.JobStatusQueued,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := s.jobRepo.Create(txc, []*types.JobRun{job}); err != nil {
			return fmt.Errorf("enqueue rescan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "RESCAN",
		PerformedBy: actor.ID,
	})
	return s.load(dbc, documentID)
}

func (s *lifecycleService) Reclassify(ctx context.Context, actor *types.User, documentID int64, category string) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.guardLegalHold(dbc, doc.ID, "reclassification", actor.ID); err != nil {
		return nil, err
	}
	if category == "" {
		return nil, fmt.Errorf("category required: %w", apperrors.ErrInvalidArgument)
	}
	if err := s.snapshot(dbc, doc, "reclassify", actor.ID); err != nil {
		return nil, err
	}

	// A human reclassification is a manual pin.
	meta := decodeMeta(doc.Metadata)
	meta["manual_category"] = category
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"category":   category,
		"confidence": float64(100),
		"metadata":   datatypes.JSON(rawMeta),
	}); err != nil {
		return nil, fmt.Errorf("reclassify: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "RECLASSIFY",
		Before:      doc.Category,
		After:       category,
		PerformedBy: actor.ID,
	})
	return s.load(dbc, documentID)
}

func (s *lifecycleService) UpdateMetadata(ctx context.Context, actor *types.User, documentID int64, metadata map[string]string) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.load(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.guardLegalHold(dbc, doc.ID, "metadata update", actor.ID); err != nil {
		return nil, err
	}
	if err := s.snapshot(dbc, doc, "metadata-update", actor.ID); err != nil {
		return nil, err
	}

	merged := decodeMeta(doc.Metadata)
	for k, v := range metadata {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	rawMeta, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"metadata": datatypes.JSON(rawMeta),
	}); err != nil {
		return nil, fmt.Errorf("update metadata: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "METADATA_UPDATE",
		Before:      string(doc.Metadata),
		After:       string(rawMeta),
		PerformedBy: actor.ID,
	})
	return s.load(dbc, documentID)
}

func (s *lifecycleService) Versions(ctx context.Context, documentID int64) ([]*types.DocumentVersion, error) {
	return s.versions.ListByDocumentID(dbctx.Context{Ctx: ctx}, documentID)
}
