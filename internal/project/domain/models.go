// Package domain contains persistence models for projects and their lots.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProjectStatus is the project lifecycle state.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

// LotStatus tracks a lot through its conformance lifecycle.
type LotStatus string

const (
	LotOpen      LotStatus = "open"
	LotConformed LotStatus = "conformed"
	LotClosed    LotStatus = "closed"
)

// ValidLotStatus reports whether s is a known lot status.
func ValidLotStatus(s LotStatus) bool {
	switch s {
	case LotOpen, LotConformed, LotClosed:
		return true
	default:
		return false
	}
}

type Project struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID  `gorm:"not null;uniqueIndex:ux_projects_org_code,priority:1" json:"organization_id"`
	Name      string        `gorm:"not null" json:"name"`
	Code      string        `gorm:"not null;uniqueIndex:ux_projects_org_code,priority:2" json:"code"`
	Status    ProjectStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// Lot is a discrete, trackable unit of construction work within a project.
type Lot struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"organization_id"`
	ProjectID   snowflake.ID `gorm:"not null;uniqueIndex:ux_lots_project_number,priority:1" json:"project_id"`
	LotNumber   string       `gorm:"not null;uniqueIndex:ux_lots_project_number,priority:2" json:"lot_number"`
	Description string       `gorm:"" json:"description,omitempty"`
	Status      LotStatus    `gorm:"type:text;not null;default:'open'" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Lot) TableName() string { return "lots" }

// ProjectSummary is a project with its lot counts.
type ProjectSummary struct {
	Project
	OpenLotCount  int `json:"open_lot_count"`
	TotalLotCount int `json:"total_lot_count"`
}

// LotCount is a grouped lot tally for one project and status.
type LotCount struct {
	ProjectID snowflake.ID `json:"project_id"`
	Status    LotStatus    `json:"status"`
	Count     int          `json:"count"`
}

// BulkImportResult reports the outcome of a bulk lot import.
type BulkImportResult struct {
	Created      int      `json:"created"`
	Skipped      int      `json:"skipped"`
	SkippedLines []string `json:"skipped_lines"`
	Duplicates   []string `json:"duplicates"`
}
