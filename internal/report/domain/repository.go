package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"gorm.io/gorm"
)

// EntryRow is one diary entry joined with its diary, resource and vendor.
// Hours and cents come straight from the stored entry.
type EntryRow struct {
	ResourceID   snowflake.ID
	ResourceName string
	ResourceType rateledgerdomain.ResourceType
	VendorID     snowflake.ID
	VendorName   string
	Date         string
	TotalHours   *float64
	TotalCents   *int64
}

// Filter narrows the reporting window. Zero IDs mean no filter.
type Filter struct {
	OrgID     snowflake.ID
	Start     string
	End       string
	ProjectID snowflake.ID
	VendorID  snowflake.ID
}

// Repository is the read side for reports.
type Repository interface {
	ListEntryRows(ctx context.Context, db *gorm.DB, f Filter) ([]EntryRow, error)
	CountDiaries(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end string) (int64, error)
}
