package domain

import "time"

// Audit scope tags.
const (
	AuditScopeLegal    = "Legal"
	AuditScopeSecurity = "Security"
)

// AuditLogEntry is an append-only record of one governance action. Nothing in
// the core reads it to make decisions; it is a record, not a policy input.
type AuditLogEntry struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType  string    `gorm:"column:entity_type;not null;index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID    int64     `gorm:"column:entity_id;index:idx_audit_entity,priority:2" json:"entity_id"`
	Action      string    `gorm:"column:action;not null;index" json:"action"`
	Details     string    `gorm:"column:details;type:text" json:"details,omitempty"`
	Before      string    `gorm:"column:before_value" json:"before_value,omitempty"`
	After       string    `gorm:"column:after_value" json:"after_value,omitempty"`
	PerformedBy string    `gorm:"column:performed_by;index" json:"performed_by"`
	Scope       string    `gorm:"column:scope;index" json:"scope,omitempty"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

func (AuditLogEntry) TableName() string { return "audit_log" }
