package app

import (
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type Repos struct {
	Document        repos.DocumentRepo
	DocumentVersion repos.DocumentVersionRepo
	Container       repos.ContainerRepo
	TransferLog     repos.TransferLogRepo
	Batch           repos.BatchRepo
	User            repos.UserRepo
	AccessPolicy    repos.AccessPolicyRepo
	ApprovalPolicy  repos.ApprovalPolicyRepo
	RetentionPolicy repos.RetentionPolicyRepo
	AccessRequest   repos.AccessRequestRepo
	Setting         repos.SettingRepo
	Audit           repos.AuditRepo
	JobRun          repos.JobRunRepo
	Favorite        repos.FavoriteRepo
	SavedSearch     repos.SavedSearchRepo
	Taxonomy        repos.TaxonomyRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Document:        repos.NewDocumentRepo(db, log),
		DocumentVersion: repos.NewDocumentVersionRepo(db, log),
		Container:       repos.NewContainerRepo(db, log),
		TransferLog:     repos.NewTransferLogRepo(db, log),
		Batch:           repos.NewBatchRepo(db, log),
		User:            repos.NewUserRepo(db, log),
		AccessPolicy:    repos.NewAccessPolicyRepo(db, log),
		ApprovalPolicy:  repos.NewApprovalPolicyRepo(db, log),
		RetentionPolicy: repos.NewRetentionPolicyRepo(db, log),
		AccessRequest:   repos.NewAccessRequestRepo(db, log),
		Setting:         repos.NewSettingRepo(db, log),
		Audit:           repos.NewAuditRepo(db, log),
		JobRun:          repos.NewJobRunRepo(db, log),
		Favorite:        repos.NewFavoriteRepo(db, log),
		SavedSearch:     repos.NewSavedSearchRepo(db, log),
		Taxonomy:        repos.NewTaxonomyRepo(db, log),
	}
}
