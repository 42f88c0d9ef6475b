package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Container is an organizational node (subsidiary/department/function)
// forming a tree via ParentID. Documents without an explicit confidentiality
// level inherit the container default.
type Container struct {
	ID                   string    `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"column:name" json:"name"`
	Subsidiary           string    `gorm:"column:subsidiary;index" json:"subsidiary,omitempty"`
	Department           string    `gorm:"column:department;index" json:"department,omitempty"`
	Function             string    `gorm:"column:function;index" json:"function,omitempty"`
	DateRange            string    `gorm:"column:date_range" json:"date_range,omitempty"`
	ConfidentialityLevel string    `gorm:"column:confidentiality_level" json:"confidentiality_level,omitempty"`
	SourceLocation       string    `gorm:"column:source_location" json:"source_location,omitempty"`
	PhysicalPageCount    int       `gorm:"column:physical_page_count;not null;default:0" json:"physical_page_count"`
	ParentID             string    `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Barcode              string    `gorm:"column:barcode;uniqueIndex" json:"barcode,omitempty"`
	CreatedBy            string    `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
}

func (Container) TableName() string { return "containers" }

func NewContainerID() string {
	return fmt.Sprintf("CONT-%s", strings.ToUpper(uuid.NewString()[:8]))
}

func NewBarcode() string {
	return fmt.Sprintf("BC-%04d-%s", 1000+rand.Intn(9000), strings.ToUpper(uuid.NewString()[:6]))
}

// TransferLogEntry records a physical container movement.
type TransferLogEntry struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ContainerID      string    `gorm:"column:container_id;not null;index" json:"container_id"`
	PreviousLocation string    `gorm:"column:previous_location" json:"previous_location"`
	NewLocation      string    `gorm:"column:new_location" json:"new_location"`
	TransferredBy    string    `gorm:"column:transferred_by" json:"transferred_by"`
	CreatedAt        time.Time `gorm:"not null;index" json:"created_at"`
}

func (TransferLogEntry) TableName() string { return "transfer_log" }
