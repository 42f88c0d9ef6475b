package domain

import (
	"strings"
	"time"
)

// AccessPolicy maps a role to the confidentiality levels it may read.
// A department-scoped row overrides the global row for that role.
type AccessPolicy struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Role          string    `gorm:"column:role;not null;index" json:"role"`
	Department    string    `gorm:"column:department;index" json:"department,omitempty"`
	AllowedLevels string    `gorm:"column:allowed_levels;not null" json:"allowed_levels"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (AccessPolicy) TableName() string { return "access_policies" }

// Levels parses the comma-set of allowed confidentiality levels.
func (p *AccessPolicy) Levels() []string {
	parts := strings.Split(p.AllowedLevels, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ApprovalPolicy forces Pending Approval for any document whose category or
// effective confidentiality matches, regardless of confidence.
type ApprovalPolicy struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchType  string    `gorm:"column:match_type;not null;index" json:"match_type"`
	MatchValue string    `gorm:"column:match_value;not null" json:"match_value"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (ApprovalPolicy) TableName() string { return "approval_policies" }

// Matches reports whether the policy applies to the given category and
// effective confidentiality.
func (p *ApprovalPolicy) Matches(category, confidentiality string) bool {
	if !p.IsActive {
		return false
	}
	switch p.MatchType {
	case MatchCategory:
		return p.MatchValue == category
	case MatchConfidentiality:
		return p.MatchValue == confidentiality
	}
	return false
}

// RetentionPolicy schedules an archive or delete transition for documents of
// one type after RetentionYears.
type RetentionPolicy struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentType   string    `gorm:"column:document_type;not null;uniqueIndex" json:"document_type"`
	RetentionYears int       `gorm:"column:retention_years;not null" json:"retention_years"`
	Action         string    `gorm:"column:action;not null" json:"action"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (RetentionPolicy) TableName() string { return "retention_policies" }

// AccessRequest is an explicit, time-boxed grant overriding the
// confidentiality gate for exactly one (user, document) pair.
type AccessRequest struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string     `gorm:"column:user_id;not null;index" json:"user_id"`
	DocumentID int64      `gorm:"column:document_id;not null;index" json:"document_id"`
	Status     string     `gorm:"column:status;not null;default:Pending;index" json:"status"`
	Reason     string     `gorm:"column:reason" json:"reason,omitempty"`
	Reviewer   string     `gorm:"column:reviewer" json:"reviewer,omitempty"`
	ExpiresAt  *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

func (AccessRequest) TableName() string { return "access_requests" }

// GrantsAt reports whether the request is an approved, unexpired grant at t.
func (r *AccessRequest) GrantsAt(t time.Time) bool {
	if r.Status != AccessRequestApproved {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(t)
}
