package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentVersion is an immutable snapshot of a Document taken before any
// metadata-mutating action. Append-only; pruned only by the retention sweep.
type DocumentVersion struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID int64          `gorm:"column:document_id;not null;index" json:"document_id"`
	Filename   string         `gorm:"column:filename" json:"filename"`
	Category   string         `gorm:"column:category" json:"category"`
	Confidence float64        `gorm:"column:confidence" json:"confidence"`
	Content    string         `gorm:"column:content;type:text" json:"content,omitempty"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	Reason     string         `gorm:"column:reason" json:"reason"`
	UserID     string         `gorm:"column:user_id" json:"user_id"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

func (DocumentVersion) TableName() string { return "document_versions" }

// SnapshotOf captures the pre-mutation state of doc.
func SnapshotOf(doc *Document, reason, userID string) *DocumentVersion {
	return &DocumentVersion{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Category:   doc.Category,
		Confidence: doc.Confidence,
		Content:    doc.Content,
		Metadata:   doc.Metadata,
		Reason:     reason,
		UserID:     userID,
	}
}
