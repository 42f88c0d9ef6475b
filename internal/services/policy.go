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

// PolicyService is the admin surface for approval and access policies.
// Retention policies live on RetentionService next to the sweep.
type PolicyService interface {
	ListApprovalPolicies(ctx context.Context) ([]*types.ApprovalPolicy, error)
	CreateApprovalPolicy(ctx context.Context, actor *types.User, matchType, matchValue string) (*types.ApprovalPolicy, error)
	SetApprovalPolicyActive(ctx context.Context, actor *types.User, id int64, active bool) error
	DeleteApprovalPolicy(ctx context.Context, actor *types.User, id int64) error

	ListAccessPolicies(ctx context.Context) ([]*types.AccessPolicy, error)
	CreateAccessPolicy(ctx context.Context, actor *types.User, role, department, allowedLevels string) (*types.AccessPolicy, error)
	UpdateAccessPolicy(ctx context.Context, actor *types.User, id int64, allowedLevels string) error
	DeleteAccessPolicy(ctx context.Context, actor *types.User, id int64) error
}

type policyService struct {
	db       *gorm.DB
	log      *logger.Logger
	approval repos.ApprovalPolicyRepo
	access   repos.AccessPolicyRepo
	audit    AuditService
}

func NewPolicyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	approval repos.ApprovalPolicyRepo,
	access repos.AccessPolicyRepo,
	audit AuditService,
) PolicyService {
	return &policyService{
		db:       db,
		log:      baseLog.With("service", "PolicyService"),
		approval: approval,
		access:   access,
		audit:    audit,
	}
}

func requireAdmin(actor *types.User) error {
	if actor == nil || actor.Role != types.RoleAdmin {
		return fmt.Errorf("policy changes require admin: %w", apperrors.ErrPermissionDenied)
	}
	return nil
}

func (s *policyService) ListApprovalPolicies(ctx context.Context) ([]*types.ApprovalPolicy, error) {
	return s.approval.List(dbctx.Context{Ctx: ctx})
}

func (s *policyService) CreateApprovalPolicy(ctx context.Context, actor *types.User, matchType, matchValue string) (*types.ApprovalPolicy, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if matchType != types.MatchCategory && matchType != types.MatchConfidentiality {
		return nil, fmt.Errorf("match type must be %s or %s: %w", types.MatchCategory, types.MatchConfidentiality, apperrors.ErrInvalidArgument)
	}
	if matchValue == "" {
		return nil, fmt.Errorf("match value required: %w", apperrors.ErrInvalidArgument)
	}
	p := &types.ApprovalPolicy{MatchType: matchType, MatchValue: matchValue, IsActive: true, CreatedAt: time.Now()}
	if _, err := s.approval.Create(dbc, []*types.ApprovalPolicy{p}); err != nil {
		return nil, fmt.Errorf("create approval policy: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "ApprovalPolicy",
		EntityID:    p.ID,
		Action:      "POLICY_CREATED",
		Details:     fmt.Sprintf("%s=%s", matchType, matchValue),
		PerformedBy: actor.ID,
	})
	return p, nil
}

func (s *policyService) SetApprovalPolicyActive(ctx context.Context, actor *types.User, id int64, active bool) error {
	dbc := dbctx.Context{Ctx: ctx}
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.approval.UpdateFields(dbc, id, map[string]interface{}{"is_active": active}); err != nil {
		return err
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "ApprovalPolicy",
		EntityID:    id,
		Action:      "POLICY_TOGGLED",
		After:       fmt.Sprintf("active=%t", active),
		PerformedBy: actor.ID,
	})
	return nil
}

func (s *policyService) DeleteApprovalPolicy(ctx context.Context, actor *types.User, id int64) error {
	dbc := dbctx.Context{Ctx: ctx}
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.approval.Delete(dbc, id); err != nil {
		return err
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "ApprovalPolicy",
		EntityID:    id,
		Action:      "POLICY_DELETED",
		PerformedBy: actor.ID,
	})
	return nil
}

func (s *policyService) ListAccessPolicies(ctx context.Context) ([]*types.AccessPolicy, error) {
	return s.access.List(dbctx.Context{Ctx: ctx})
}

func (s *policyService) CreateAccessPolicy(ctx context.Context, actor *types.User, role, department, allowedLevels string) (*types.AccessPolicy, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if role == "" || allowedLevels == "" {
		return nil, fmt.Errorf("role and allowed levels required: %w", apperrors.ErrInvalidArgument)
	}
	p := &types.AccessPolicy{Role: role, Department: department, AllowedLevels: allowedLevels, CreatedAt: time.Now()}
	if _, err := s.access.Create(dbc, []*types.AccessPolicy{p}); err != nil {
		return nil, fmt.Errorf("create access policy: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "AccessPolicy",
		EntityID:    p.ID,
		Action:      "POLICY_CREATED",
		Details:     fmt.Sprintf("%s/%s: %s", role, department, allowedLevels),
		Scope:       types.AuditScopeSecurity,
		PerformedBy: actor.ID,
	})
	return p, nil
}

func (s *policyService) UpdateAccessPolicy(ctx context.Context, actor *types.User, id int64, allowedLevels string) error {
	dbc := dbctx.Context{Ctx: ctx}
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if allowedLevels == "" {
		return fmt.Errorf("allowed levels required: %w", apperrors.ErrInvalidArgument)
	}
	if err := s.access.UpdateFields(dbc, id, map[string]interface{}{"allowed_levels": allowedLevels}); err != nil {
		return err
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "AccessPolicy",
		EntityID:    id,
		Action:      "POLICY_UPDATED",
		After:       allowedLevels,
		Scope:       types.AuditScopeSecurity,
		PerformedBy: actor.ID,
	})
	return nil
}

func (s *policyService) DeleteAccessPolicy(ctx context.Context, actor *types.User, id int64) error {
	dbc := dbctx.Context{Ctx: ctx}
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.access.Delete(dbc, id); err != nil {
		return err
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "AccessPolicy",
		EntityID:    id,
		Action:      "POLICY_DELETED",
		Scope:       types.AuditScopeSecurity,
		PerformedBy: actor.ID,
	})
	return nil
}
