// Package domain contains the read models for labor and plant cost
// reporting. Everything here is derived from stored diary entry values;
// the report never re-rates or re-rounds.
package domain

import (
	"github.com/bwmarrin/snowflake"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
)

// ResourceLine is one resource's accumulated week.
type ResourceLine struct {
	ResourceID   snowflake.ID                  `json:"resource_id"`
	ResourceName string                        `json:"resource_name"`
	ResourceType rateledgerdomain.ResourceType `json:"resource_type"`
	DaysWorked   int                           `json:"days_worked"`
	TotalHours   float64                       `json:"total_hours"`
	TotalCents   int64                         `json:"total_cost_cents"`
}

// VendorGroup is a vendor's resources with subtotals.
type VendorGroup struct {
	VendorID   snowflake.ID   `json:"vendor_id"`
	VendorName string         `json:"vendor_name"`
	Resources  []ResourceLine `json:"resources"`
	TotalHours float64        `json:"total_hours"`
	TotalCents int64          `json:"total_cost_cents"`
}

// WeeklyReport is the full weekly cost breakdown.
type WeeklyReport struct {
	Start           string        `json:"start"`
	End             string        `json:"end"`
	Vendors         []VendorGroup `json:"vendors"`
	TotalHours      float64       `json:"total_hours"`
	TotalCents      int64         `json:"total_cost_cents"`
	ActiveResources int           `json:"active_resources"`
}

// Summary is the dashboard roll-up for the current week.
type Summary struct {
	WeekStart       string  `json:"week_start"`
	WeekEnd         string  `json:"week_end"`
	TotalHours      float64 `json:"total_hours"`
	TotalCents      int64   `json:"total_cost_cents"`
	ActiveResources int     `json:"active_resources"`
	DiaryCount      int     `json:"diary_count"`
}
