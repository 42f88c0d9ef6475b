package domain

import "time"

// User is the governed actor. Identity and credentials are issued elsewhere;
// the evaluator only consumes role + organizational scope.
type User struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Role       string    `gorm:"column:role;not null;index" json:"role"`
	ScopeKind  string    `gorm:"column:scope_kind;index" json:"scope_kind,omitempty"`
	ScopeValue string    `gorm:"column:scope_value;index" json:"scope_value,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Admin() bool { return u != nil && u.Role == RoleAdmin }
