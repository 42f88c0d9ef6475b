package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// AccessRequestService handles explicit time-boxed grants: request, list,
// review. Reviewing requires the target document's owner (uploader when no
// owner is recorded) or an admin.
type AccessRequestService interface {
	Request(ctx context.Context, actor *types.User, documentID int64, reason string) (*types.AccessRequest, error)
	ListPending(ctx context.Context) ([]*types.AccessRequest, error)
	ListMine(ctx context.Context, actor *types.User) ([]*types.AccessRequest, error)
	Review(ctx context.Context, reviewer *types.User, requestID int64, approve bool, expiresAt *time.Time) (*types.AccessRequest, error)
}

type accessRequestService struct {
	db       *gorm.DB
	log      *logger.Logger
	requests repos.AccessRequestRepo
	docRepo  repos.DocumentRepo
	access   AccessService
	audit    AuditService
}

func NewAccessRequestService(
	db *gorm.DB,
	baseLog *logger.Logger,
	requests repos.AccessRequestRepo,
	docRepo repos.DocumentRepo,
	access AccessService,
	audit AuditService,
) AccessRequestService {
	return &accessRequestService{
		db:       db,
		log:      baseLog.With("service", "AccessRequestService"),
		requests: requests,
		docRepo:  docRepo,
		access:   access,
		audit:    audit,
	}
}

func (s *accessRequestService) Request(ctx context.Context, actor *types.User, documentID int64, reason string) (*types.AccessRequest, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.docRepo.GetByID(dbc, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d: %w", documentID, apperrors.ErrNotFound)
	}
	pending, err := s.requests.HasPending(dbc, actor.ID, documentID)
	if err != nil {
		return nil, fmt.Errorf("check pending requests: %w", err)
	}
	if pending {
		return nil, fmt.Errorf("request already pending for document %d: %w", documentID, apperrors.ErrConflict)
	}

	now := time.Now()
	req := &types.AccessRequest{
		UserID:     actor.ID,
		DocumentID: documentID,
		Status:     types.AccessRequestPending,
		Reason:     reason,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.requests.Create(dbc, []*types.AccessRequest{req}); err != nil {
		return nil, fmt.Errorf("create access request: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "AccessRequest",
		EntityID:    req.ID,
		Action:      "ACCESS_REQUESTED",
		Details:     fmt.Sprintf("document %d: %s", documentID, reason),
		PerformedBy: actor.ID,
		Scope:       types.AuditScopeSecurity,
	})
	return req, nil
}

func (s *accessRequestService) ListPending(ctx context.Context) ([]*types.AccessRequest, error) {
	return s.requests.ListByStatus(dbctx.Context{Ctx: ctx}, types.AccessRequestPending)
}

func (s *accessRequestService) ListMine(ctx context.Context, actor *types.User) ([]*types.AccessRequest, error) {
	return s.requests.ListByUser(dbctx.Context{Ctx: ctx}, actor.ID)
}

func (s *accessRequestService) Review(ctx context.Context, reviewer *types.User, requestID int64, approve bool, expiresAt *time.Time) (*types.AccessRequest, error) {
	dbc := dbctx.Context{Ctx: ctx}
	req, err := s.requests.GetByID(dbc, requestID)
	if err != nil {
		return nil, fmt.Errorf("load access request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("access request %d: %w", requestID, apperrors.ErrNotFound)
	}
	doc, err := s.docRepo.GetByID(dbc, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %d: %w", req.DocumentID, apperrors.ErrNotFound)
	}
	// Authorization before any state change; a mismatch mutates nothing.
	if err := s.access.AuthorizeReviewer(dbc, reviewer, doc); err != nil {
		return nil, err
	}

	status := types.AccessRequestRejected
	if approve {
		status = types.AccessRequestApproved
	}
	updates := map[string]interface{}{
		"status":   status,
		"reviewer": reviewer.ID,
	}
	if approve && expiresAt != nil {
		updates["expires_at"] = *expiresAt
	}
	if err := s.requests.UpdateFields(dbc, req.ID, updates); err != nil {
		return nil, fmt.Errorf("review access request: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "AccessRequest",
		EntityID:    req.ID,
		Action:      "ACCESS_REVIEWED",
		Details:     fmt.Sprintf("document %d", req.DocumentID),
		Before:      req.Status,
		After:       status,
		PerformedBy: reviewer.ID,
		Scope:       types.AuditScopeSecurity,
	})
	return s.requests.GetByID(dbc, requestID)
}
