package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// AccessService is the access-control evaluator: per-document visibility,
// composable listing predicates, and mutation authorization. It is read-side
// and stateless per call.
type AccessService interface {
	Visible(dbc dbctx.Context, user *types.User, doc *types.Document) (bool, error)
	ListScopes(dbc dbctx.Context, user *types.User) ([]func(*gorm.DB) *gorm.DB, error)
	AuthorizeReviewer(dbc dbctx.Context, user *types.User, doc *types.Document) error
}

type accessService struct {
	db                *gorm.DB
	log               *logger.Logger
	accessPolicyRepo  repos.AccessPolicyRepo
	accessRequestRepo repos.AccessRequestRepo
	containerRepo     repos.ContainerRepo
}

func NewAccessService(
	db *gorm.DB,
	baseLog *logger.Logger,
	accessPolicyRepo repos.AccessPolicyRepo,
	accessRequestRepo repos.AccessRequestRepo,
	containerRepo repos.ContainerRepo,
) AccessService {
	return &accessService{
		db:                db,
		log:               baseLog.With("service", "AccessService"),
		accessPolicyRepo:  accessPolicyRepo,
		accessRequestRepo: accessRequestRepo,
		containerRepo:     containerRepo,
	}
}

// allowedLevels resolves the role's confidentiality clearance. A
// department-scoped policy row overrides the global row for that role; a role
// with no policy rows has no clearance at all.
func (s *accessService) allowedLevels(dbc dbctx.Context, role, department string) (map[string]bool, error) {
	rows, err := s.accessPolicyRepo.ListByRole(dbc, role)
	if err != nil {
		return nil, fmt.Errorf("load access policies for %s: %w", role, err)
	}
	var global, scoped *types.AccessPolicy
	for _, row := range rows {
		switch {
		case row.Department == "":
			global = row
		case department != "" && row.Department == department:
			scoped = row
		}
	}
	pick := global
	if scoped != nil {
		pick = scoped
	}
	out := make(map[string]bool)
	if pick == nil {
		return out, nil
	}
	for _, level := range pick.Levels() {
		out[level] = true
	}
	return out, nil
}

// Visible evaluates the fixed rule order: admin bypass, organizational
// isolation, confidentiality clearance with uploader/owner/grant overrides,
// pending-approval visibility.
func (s *accessService) Visible(dbc dbctx.Context, user *types.User, doc *types.Document) (bool, error) {
	if user == nil || doc == nil {
		return false, apperrors.ErrInvalidArgument
	}
	if user.Admin() {
		return true, nil
	}

	var container *types.Container
	if doc.ContainerID != "" {
		c, err := s.containerRepo.GetByID(dbc, doc.ContainerID)
		if err != nil {
			return false, fmt.Errorf("load container %s: %w", doc.ContainerID, err)
		}
		container = c
	}

	// Strict organizational isolation. No container means no scope match.
	switch user.ScopeKind {
	case types.ScopeDepartment:
		if container == nil || container.Department != user.ScopeValue {
			return false, nil
		}
	case types.ScopeSubsidiary:
		if container == nil || container.Subsidiary != user.ScopeValue {
			return false, nil
		}
	}

	isUploader := doc.UploaderID != "" && doc.UploaderID == user.ID
	isOwner := doc.OwnerID != "" && doc.OwnerID == user.ID

	if !isUploader && !isOwner {
		dept := ""
		if container != nil {
			dept = container.Department
		}
		levels, err := s.allowedLevels(dbc, user.Role, dept)
		if err != nil {
			return false, err
		}
		if !levels[types.EffectiveConfidentiality(doc, container)] {
			grant, err := s.accessRequestRepo.FindGrant(dbc, user.ID, doc.ID, time.Now())
			if err != nil {
				return false, fmt.Errorf("load access grant: %w", err)
			}
			if grant == nil {
				return false, nil
			}
		}
	}

	if doc.ApprovalStatus == types.ApprovalPending && !isUploader {
		return false, nil
	}
	return true, nil
}

// ListScopes compiles the visibility conjunction into GORM scopes for listing
// queries. Admins get no predicates.
func (s *accessService) ListScopes(dbc dbctx.Context, user *types.User) ([]func(*gorm.DB) *gorm.DB, error) {
	if user == nil {
		return nil, apperrors.ErrInvalidArgument
	}
	if user.Admin() {
		return nil, nil
	}

	var scopes []func(*gorm.DB) *gorm.DB

	switch user.ScopeKind {
	case types.ScopeDepartment:
		v := user.ScopeValue
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("container_id IN (SELECT id FROM containers WHERE department = ?)", v)
		})
	case types.ScopeSubsidiary:
		v := user.ScopeValue
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("container_id IN (SELECT id FROM containers WHERE subsidiary = ?)", v)
		})
	}

	// For listing, the department used for policy resolution is the user's own
	// scope; container-by-container policy overrides only affect direct reads.
	dept := ""
	if user.ScopeKind == types.ScopeDepartment {
		dept = user.ScopeValue
	}
	levelSet, err := s.allowedLevels(dbc, user.Role, dept)
	if err != nil {
		return nil, err
	}
	levels := make([]string, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	if len(levels) == 0 {
		levels = []string{""}
	}

	userID := user.ID
	now := time.Now()
	scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
		return q.Where(`(
			COALESCE(
				NULLIF(documents.confidentiality_level, ''),
				(SELECT NULLIF(containers.confidentiality_level, '') FROM containers WHERE containers.id = documents.container_id),
				'Internal'
			) IN ?
			OR documents.uploader_id = ?
			OR documents.owner_id = ?
			OR documents.id IN (
				SELECT document_id FROM access_requests
				WHERE user_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)
			)
		)`, levels, userID, userID, userID, types.AccessRequestApproved, now)
	})

	scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
		return q.Where("(documents.approval_status <> ? OR documents.uploader_id = ?)", types.ApprovalPending, userID)
	})

	return scopes, nil
}

// AuthorizeReviewer gates review actions: the document's owner, its uploader
// when no owner is recorded, or an admin. Fails closed.
func (s *accessService) AuthorizeReviewer(dbc dbctx.Context, user *types.User, doc *types.Document) error {
	if user == nil || doc == nil {
		return apperrors.ErrInvalidArgument
	}
	if user.Admin() {
		return nil
	}
	responsible := doc.OwnerID
	if responsible == "" {
		responsible = doc.UploaderID
	}
	if responsible != "" && responsible == user.ID {
		return nil
	}
	return fmt.Errorf("user %s is not a reviewer for document %d: %w", user.ID, doc.ID, apperrors.ErrPermissionDenied)
}
