package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
)

var seedDepartments = []string{"Finance", "HR", "Legal", "Operations", "Sales", "UAE"}

// SeedDefaults installs the baseline organizational hierarchy, taxonomy,
// approval policies and role clearances on an empty database. Every insert is
// idempotent so the seed can run on each boot.
func (s *Service) SeedDefaults() error {
	now := time.Now()

	root := &domain.Container{
		ID:         "ROOT",
		Name:       "KBN",
		Subsidiary: "KBN Group",
		Barcode:    "BC-ROOT-001",
		CreatedBy:  "System",
		CreatedAt:  now,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(root).Error; err != nil {
		return fmt.Errorf("seed root container: %w", err)
	}
	for _, dept := range seedDepartments {
		c := &domain.Container{
			ID:         fmt.Sprintf("DEPT-%s", upper(dept)),
			Name:       dept,
			Department: dept,
			ParentID:   "ROOT",
			Barcode:    fmt.Sprintf("BC-DEPT-%s", upper(dept)),
			CreatedBy:  "System",
			CreatedAt:  now,
		}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(c).Error; err != nil {
			return fmt.Errorf("seed container %s: %w", c.ID, err)
		}
	}

	taxonomy := make([]*domain.TaxonomyItem, 0, len(domain.Categories)+len(seedDepartments))
	for _, cat := range domain.Categories {
		taxonomy = append(taxonomy, &domain.TaxonomyItem{
			Kind: domain.TaxonomyDocumentType, Value: cat, Status: domain.TaxonomyActive, CreatedAt: now,
		})
	}
	for _, dept := range seedDepartments {
		taxonomy = append(taxonomy, &domain.TaxonomyItem{
			Kind: domain.TaxonomyDepartment, Value: dept, Status: domain.TaxonomyActive, CreatedAt: now,
		})
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&taxonomy).Error; err != nil {
		return fmt.Errorf("seed taxonomy: %w", err)
	}

	if err := seedApprovalPolicies(s.db, now); err != nil {
		return err
	}
	return seedAccessPolicies(s.db, now)
}

func seedApprovalPolicies(gdb *gorm.DB, now time.Time) error {
	var count int64
	if err := gdb.Model(&domain.ApprovalPolicy{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count approval policies: %w", err)
	}
	if count > 0 {
		return nil
	}
	defaults := []*domain.ApprovalPolicy{
		{MatchType: domain.MatchCategory, MatchValue: domain.CategoryHR, IsActive: true, CreatedAt: now},
		{MatchType: domain.MatchCategory, MatchValue: domain.CategoryID, IsActive: true, CreatedAt: now},
		{MatchType: domain.MatchConfidentiality, MatchValue: domain.ConfidentialityConfidential, IsActive: true, CreatedAt: now},
	}
	if err := gdb.Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed approval policies: %w", err)
	}
	return nil
}

func seedAccessPolicies(gdb *gorm.DB, now time.Time) error {
	var count int64
	if err := gdb.Model(&domain.AccessPolicy{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count access policies: %w", err)
	}
	if count > 0 {
		return nil
	}
	defaults := []*domain.AccessPolicy{
		{Role: domain.RoleAdmin, AllowedLevels: "Public,Internal,Confidential,Restricted", CreatedAt: now},
		{Role: domain.RoleManager, AllowedLevels: "Public,Internal,Confidential", CreatedAt: now},
		{Role: domain.RoleOperator, AllowedLevels: "Public,Internal", CreatedAt: now},
		{Role: domain.RoleViewer, AllowedLevels: "Public,Internal", CreatedAt: now},
		{Role: domain.RoleIntern, AllowedLevels: "Public", CreatedAt: now},
	}
	if err := gdb.Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed access policies: %w", err)
	}
	return nil
}

func upper(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}
