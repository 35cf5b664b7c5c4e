// Package domain contains persistence models for the rate ledger:
// vendors, their rate cards, and the resources bound to them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RateUnit is the unit a rate card price applies to.
type RateUnit string

const (
	UnitHour        RateUnit = "hr"
	UnitDay         RateUnit = "day"
	UnitCubicMetre  RateUnit = "m3"
	UnitSquareMetre RateUnit = "m2"
	UnitEach        RateUnit = "ea"
)

// ValidUnit reports whether u is a known rate unit.
func ValidUnit(u RateUnit) bool {
	switch u {
	case UnitHour, UnitDay, UnitCubicMetre, UnitSquareMetre, UnitEach:
		return true
	default:
		return false
	}
}

// ResourceType distinguishes people from plant.
type ResourceType string

const (
	ResourcePerson ResourceType = "person"
	ResourcePlant  ResourceType = "plant"
)

// ValidResourceType reports whether t is a known resource type.
func ValidResourceType(t ResourceType) bool {
	return t == ResourcePerson || t == ResourcePlant
}

// Vendor is a company (or the internal crew) that supplies labour or plant.
type Vendor struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name         string       `gorm:"not null" json:"name"`
	ABN          string       `gorm:"column:abn" json:"abn,omitempty"`
	ContactEmail string       `gorm:"" json:"contact_email,omitempty"`
	IsInternal   bool         `gorm:"not null;default:false" json:"is_internal"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Vendor) TableName() string { return "vendors" }

// RateCard is a priced role a vendor offers. Prices are minor currency
// units (cents); diary entries copy RateCents at creation and never read
// the card again.
type RateCard struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	VendorID  snowflake.ID `gorm:"not null;index" json:"vendor_id"`
	RoleName  string       `gorm:"not null" json:"role_name"`
	RateCents int64        `gorm:"not null;default:0" json:"rate_cents"`
	Unit      RateUnit     `gorm:"type:text;not null;default:'hr'" json:"unit"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RateCard) TableName() string { return "rate_cards" }

// Resource is a person or machine hired from a vendor. Its assigned rate
// card must belong to the same vendor.
type Resource struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID              snowflake.ID `gorm:"not null;index" json:"organization_id"`
	VendorID           snowflake.ID `gorm:"not null;index" json:"vendor_id"`
	AssignedRateCardID snowflake.ID `gorm:"not null;index" json:"assigned_rate_card_id"`
	Name               string       `gorm:"not null" json:"name"`
	Type               ResourceType `gorm:"type:text;not null" json:"type"`
	Phone              string       `gorm:"" json:"phone,omitempty"`
	IsActive           bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Vendor   *Vendor   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	RateCard *RateCard `gorm:"foreignKey:AssignedRateCardID" json:"rate_card,omitempty"`
}

// TableName sets the database table name.
func (Resource) TableName() string { return "resources" }
