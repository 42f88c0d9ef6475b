package repos

import (
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/audit"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/documents"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/jobs"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/library"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/org"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/policy"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type DocumentRepo = documents.DocumentRepo
type DocumentFilter = documents.DocumentFilter
type DocumentVersionRepo = documents.DocumentVersionRepo

type ContainerRepo = org.ContainerRepo
type TransferLogRepo = org.TransferLogRepo
type BatchRepo = org.BatchRepo
type UserRepo = org.UserRepo

type AccessPolicyRepo = policy.AccessPolicyRepo
type ApprovalPolicyRepo = policy.ApprovalPolicyRepo
type RetentionPolicyRepo = policy.RetentionPolicyRepo
type AccessRequestRepo = policy.AccessRequestRepo
type SettingRepo = policy.SettingRepo

type AuditRepo = audit.AuditRepo
type AuditFilter = audit.AuditFilter

type JobRunRepo = jobs.JobRunRepo

type FavoriteRepo = library.FavoriteRepo
type SavedSearchRepo = library.SavedSearchRepo
type TaxonomyRepo = library.TaxonomyRepo

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return documents.NewDocumentRepo(db, baseLog)
}
func NewDocumentVersionRepo(db *gorm.DB, baseLog *logger.Logger) DocumentVersionRepo {
	return documents.NewDocumentVersionRepo(db, baseLog)
}

func NewContainerRepo(db *gorm.DB, baseLog *logger.Logger) ContainerRepo {
	return org.NewContainerRepo(db, baseLog)
}
func NewTransferLogRepo(db *gorm.DB, baseLog *logger.Logger) TransferLogRepo {
	return org.NewTransferLogRepo(db, baseLog)
}
func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	return org.NewBatchRepo(db, baseLog)
}
func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return org.NewUserRepo(db, baseLog)
}

func NewAccessPolicyRepo(db *gorm.DB, baseLog *logger.Logger) AccessPolicyRepo {
	return policy.NewAccessPolicyRepo(db, baseLog)
}
func NewApprovalPolicyRepo(db *gorm.DB, baseLog *logger.Logger) ApprovalPolicyRepo {
	return policy.NewApprovalPolicyRepo(db, baseLog)
}
func NewRetentionPolicyRepo(db *gorm.DB, baseLog *logger.Logger) RetentionPolicyRepo {
	return policy.NewRetentionPolicyRepo(db, baseLog)
}
func NewAccessRequestRepo(db *gorm.DB, baseLog *logger.Logger) AccessRequestRepo {
	return policy.NewAccessRequestRepo(db, baseLog)
}
func NewSettingRepo(db *gorm.DB, baseLog *logger.Logger) SettingRepo {
	return policy.NewSettingRepo(db, baseLog)
}

func NewAuditRepo(db *gorm.DB, baseLog *logger.Logger) AuditRepo {
	return audit.NewAuditRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	return library.NewFavoriteRepo(db, baseLog)
}
func NewSavedSearchRepo(db *gorm.DB, baseLog *logger.Logger) SavedSearchRepo {
	return library.NewSavedSearchRepo(db, baseLog)
}
func NewTaxonomyRepo(db *gorm.DB, baseLog *logger.Logger) TaxonomyRepo {
	return library.NewTaxonomyRepo(db, baseLog)
}
