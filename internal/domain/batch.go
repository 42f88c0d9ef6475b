package domain

import "time"

// Batch groups documents scanned from one physical intake under a container,
// tracking expected vs scanned page counts and a QC verdict.
type Batch struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ContainerID       string     `gorm:"column:container_id;not null;index" json:"container_id"`
	Status            string     `gorm:"column:status;not null;default:Pending" json:"status"`
	QCStatus          string     `gorm:"column:qc_status;index" json:"qc_status,omitempty"`
	QCNotes           string     `gorm:"column:qc_notes" json:"qc_notes,omitempty"`
	QCBy              string     `gorm:"column:qc_by" json:"qc_by,omitempty"`
	QCDate            *time.Time `gorm:"column:qc_date" json:"qc_date,omitempty"`
	TotalPagesScanned int        `gorm:"column:total_pages_scanned;not null;default:0" json:"total_pages_scanned"`
	ExpectedPageCount int        `gorm:"column:expected_page_count;not null;default:0" json:"expected_page_count"`
	StartTime         time.Time  `gorm:"column:start_time;not null" json:"start_time"`
	EndTime           *time.Time `gorm:"column:end_time" json:"end_time,omitempty"`
}

func (Batch) TableName() string { return "batches" }
