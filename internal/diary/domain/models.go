// Package domain contains persistence models for daily site diaries and
// their costed entries.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
)

// DiaryStatus is the diary lifecycle state. Submission is one-way.
type DiaryStatus string

const (
	DiaryDraft     DiaryStatus = "draft"
	DiarySubmitted DiaryStatus = "submitted"
)

// Diary records one day of work on one lot. At most one diary may exist
// per (lot, date), enforced by a unique index.
type Diary struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index:ix_diaries_org_date,priority:1" json:"organization_id"`
	ProjectID snowflake.ID `gorm:"not null;index" json:"project_id"`
	LotID     snowflake.ID `gorm:"not null;uniqueIndex:ux_diaries_lot_date,priority:1" json:"lot_id"`
	Date      string       `gorm:"type:text;not null;uniqueIndex:ux_diaries_lot_date,priority:2;index:ix_diaries_org_date,priority:2" json:"date"`
	ForemanID snowflake.ID `gorm:"not null" json:"foreman_id"`
	Status    DiaryStatus  `gorm:"type:text;not null;default:'draft'" json:"status"`
	Notes     string       `gorm:"" json:"notes,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Diary) TableName() string { return "diaries" }

// DiaryEntry is one resource's time on a diary. FrozenRateCents is copied
// from the resource's assigned rate card exactly once, when the entry is
// created; it is never recomputed from live rates. TotalHours and
// TotalCostCents are derived and stored whenever times change, so reads
// (including the weekly report) never re-rate or re-round.
type DiaryEntry struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID `gorm:"not null;index" json:"organization_id"`
	DiaryID         snowflake.ID `gorm:"not null;index" json:"diary_id"`
	ResourceID      snowflake.ID `gorm:"not null;index" json:"resource_id"`
	FrozenRateCents *int64       `gorm:"" json:"frozen_rate_cents"`
	StartTime       *string      `gorm:"type:text" json:"start_time"`
	FinishTime      *string      `gorm:"type:text" json:"finish_time"`
	BreakHours      *float64     `gorm:"" json:"break_hours"`
	TotalHours      *float64     `gorm:"" json:"total_hours"`
	TotalCostCents  *int64       `gorm:"" json:"total_cost_cents"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Resource *rateledgerdomain.Resource `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
}

// TableName sets the database table name.
func (DiaryEntry) TableName() string { return "diary_entries" }

// DiaryDetail is a diary with its entries.
type DiaryDetail struct {
	Diary
	Entries []DiaryEntry `json:"entries"`
}
