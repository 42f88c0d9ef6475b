package domain

import "time"

// Favorite marks a (user, document) pair for the favorites listing filter.
type Favorite struct {
	UserID     string    `gorm:"primaryKey" json:"user_id"`
	DocumentID int64     `gorm:"primaryKey;autoIncrement:false" json:"document_id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (Favorite) TableName() string { return "favorites" }

// SavedSearch stores a named listing-query parameter set; published searches
// are visible to every user.
type SavedSearch struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"column:user_id;not null;index" json:"user_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	QueryParams string    `gorm:"column:query_params;type:text" json:"query_params"`
	IsPublic    bool      `gorm:"column:is_public;not null;default:false" json:"is_public"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (SavedSearch) TableName() string { return "saved_searches" }

// Taxonomy kinds and statuses.
const (
	TaxonomyDocumentType = "DocumentType"
	TaxonomyDepartment   = "Department"

	TaxonomyActive     = "Active"
	TaxonomyDeprecated = "Deprecated"
)

// TaxonomyItem is one controlled-vocabulary value.
type TaxonomyItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind      string    `gorm:"column:kind;not null;uniqueIndex:idx_taxonomy_kind_value,priority:1" json:"kind"`
	Value     string    `gorm:"column:value;not null;uniqueIndex:idx_taxonomy_kind_value,priority:2" json:"value"`
	Status    string    `gorm:"column:status;not null;default:Active" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TaxonomyItem) TableName() string { return "taxonomy" }
