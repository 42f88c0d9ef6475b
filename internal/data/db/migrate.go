package db

import (
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
)

// AutoMigrateAll creates or updates every governance table.
func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating governance tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&domain.User{},
		&domain.Container{},
		&domain.TransferLogEntry{},
		&domain.Batch{},
		&domain.Document{},
		&domain.DocumentVersion{},
		&domain.AccessPolicy{},
		&domain.AccessRequest{},
		&domain.ApprovalPolicy{},
		&domain.RetentionPolicy{},
		&domain.AuditLogEntry{},
		&domain.Setting{},
		&domain.JobRun{},
		&domain.Favorite{},
		&domain.SavedSearch{},
		&domain.TaxonomyItem{},
	)
}
