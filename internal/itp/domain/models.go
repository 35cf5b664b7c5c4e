// Package domain contains persistence models for inspection and test
// plans: reusable templates, their per-lot instances, and the individual
// checks inspectors work through.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TemplateItem is one question on a template. Items live inside the
// template row as a JSON array; they only become rows of their own when
// the template is attached to a lot.
type TemplateItem struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	IsHoldPoint bool   `json:"is_hold_point"`
	Order       int    `json:"order"`
}

// Template is a reusable inspection checklist. Editing a template never
// touches lots it has already been attached to; attachment copies the
// items out as checks.
type Template struct {
	ID        snowflake.ID                      `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID                      `gorm:"not null;index" json:"organization_id"`
	Title     string                            `gorm:"not null" json:"title"`
	Items     datatypes.JSONSlice[TemplateItem] `gorm:"not null" json:"items"`
	CreatedAt time.Time                         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time                         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Template) TableName() string { return "itp_templates" }

// LotItpStatus is the per-lot inspection lifecycle state.
type LotItpStatus string

const (
	LotItpInProgress LotItpStatus = "in_progress"
	LotItpComplete   LotItpStatus = "complete"
)

// LotItp is a template attached to a lot. TemplateTitle is a snapshot;
// renaming the template later does not rewrite it. A template can be
// attached to a lot at most once.
type LotItp struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID  `gorm:"not null;index" json:"organization_id"`
	LotID         snowflake.ID  `gorm:"not null;uniqueIndex:ux_lot_itps_lot_template,priority:1" json:"lot_id"`
	TemplateID    snowflake.ID  `gorm:"not null;uniqueIndex:ux_lot_itps_lot_template,priority:2" json:"template_id"`
	TemplateTitle string        `gorm:"not null" json:"template_title"`
	Status        LotItpStatus  `gorm:"type:text;not null;default:'in_progress'" json:"status"`
	SignedOffAt   *time.Time    `gorm:"" json:"signed_off_at,omitempty"`
	SignedOffBy   *snowflake.ID `gorm:"" json:"signed_off_by,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (LotItp) TableName() string { return "lot_itps" }

// CheckStatus is the state of one inspection check.
type CheckStatus string

const (
	CheckPending CheckStatus = "pending"
	CheckPass    CheckStatus = "pass"
	CheckFail    CheckStatus = "fail"
	CheckNA      CheckStatus = "na"
)

// ValidCheckStatus reports whether s is a known check status.
func ValidCheckStatus(s CheckStatus) bool {
	switch s {
	case CheckPending, CheckPass, CheckFail, CheckNA:
		return true
	default:
		return false
	}
}

// Check is one question on a lot's inspection, copied from the template
// at attach time. Question, IsHoldPoint and Position never change after
// the copy.
type Check struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"organization_id"`
	LotItpID    snowflake.ID `gorm:"not null;index" json:"lot_itp_id"`
	Question    string       `gorm:"not null" json:"question"`
	IsHoldPoint bool         `gorm:"not null;default:false" json:"is_hold_point"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	Status      CheckStatus  `gorm:"type:text;not null;default:'pending'" json:"status"`
	PhotoURL    *string      `gorm:"" json:"photo_url,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Check) TableName() string { return "itp_checks" }

// Progress counts a lot inspection's checks by outcome.
type Progress struct {
	Total   int `json:"total"`
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
	NA      int `json:"na"`
	Pending int `json:"pending"`
}

// LotItpDetail is a lot inspection with its checks and tallies.
type LotItpDetail struct {
	LotItp
	Checks   []Check  `json:"checks"`
	Progress Progress `json:"progress"`
}
