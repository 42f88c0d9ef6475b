package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document is the unit of governance. One row per scanned page artifact.
type Document struct {
	ID  int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UID string `gorm:"column:uid;uniqueIndex" json:"uid"`

	Filename    string `gorm:"column:filename;not null" json:"filename"`
	Fingerprint string `gorm:"column:fingerprint;index" json:"fingerprint,omitempty"`
	PageCount   int    `gorm:"column:page_count;not null;default:1" json:"page_count"`
	PageNumber  int    `gorm:"column:page_number;not null;default:1" json:"page_number,omitempty"`

	// Blob location of the raw artifact; never exposed in API payloads.
	StorageKey string `gorm:"column:storage_key" json:"-"`

	OCRStatus    string         `gorm:"column:ocr_status;not null;index" json:"ocr_status"`
	Content      string         `gorm:"column:content;type:text" json:"content,omitempty"`
	Confidence   float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`
	Category     string         `gorm:"column:category;index" json:"category"`
	Metadata     datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	TemplateType string         `gorm:"column:template_type" json:"template_type,omitempty"`

	Status         string `gorm:"column:status;not null;index" json:"status"`
	QCState        string `gorm:"column:qc_state;index" json:"qc_state,omitempty"`
	ApprovalStatus string `gorm:"column:approval_status;not null;index" json:"approval_status"`
	IsPublished    bool   `gorm:"column:is_published;not null;default:false;index" json:"is_published"`

	// Confidentiality override; empty means "inherit from container".
	ConfidentialityLevel string `gorm:"column:confidentiality_level;index" json:"confidentiality_level,omitempty"`
	OwnerID              string `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
	UploaderID           string `gorm:"column:uploader_id;index" json:"uploader_id,omitempty"`
	ContainerID          string `gorm:"column:container_id;index" json:"container_id,omitempty"`
	BatchID              *int64 `gorm:"column:batch_id;index" json:"batch_id,omitempty"`
	Tags                 string `gorm:"column:tags" json:"tags,omitempty"`

	UploadDate time.Time `gorm:"column:upload_date;not null;index" json:"upload_date"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

// NewDocumentUID mints the external identifier carried alongside the numeric
// primary key, e.g. DOC-1A2B3C4D-V1.
func NewDocumentUID() string {
	return fmt.Sprintf("DOC-%s-V1", strings.ToUpper(uuid.NewString()[:8]))
}

// EffectiveConfidentiality resolves the level the access evaluator enforces:
// document override, else container default, else Internal. The container may
// be nil when the document is unfiled.
func EffectiveConfidentiality(doc *Document, container *Container) string {
	if doc != nil && doc.ConfidentialityLevel != "" {
		return doc.ConfidentialityLevel
	}
	if container != nil && container.ConfidentialityLevel != "" {
		return container.ConfidentialityLevel
	}
	return ConfidentialityInternal
}

// Deleted reports whether the document is excluded from default listings.
func (d *Document) Deleted() bool {
	return d.Status == StatusSoftDeleted || d.Status == StatusPendingDeletion
}

// ActiveForRetention reports whether the retention sweep may still act on the
// document.
func (d *Document) ActiveForRetention() bool {
	switch d.Status {
	case StatusArchived, StatusSoftDeleted, StatusPendingDeletion:
		return false
	}
	return true
}
