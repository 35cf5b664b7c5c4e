package domain

import (
	"context"
	"errors"
)

// WeeklyRequest selects the reporting window and optional filters.
// Start and End are inclusive YYYY-MM-DD dates.
type WeeklyRequest struct {
	Start     string `form:"start" binding:"required"`
	End       string `form:"end" binding:"required"`
	ProjectID string `form:"project_id"`
	VendorID  string `form:"vendor_id"`
}

// Service aggregates stored diary costs into reports.
type Service interface {
	Weekly(ctx context.Context, req WeeklyRequest) (WeeklyReport, error)
	Summary(ctx context.Context) (Summary, error)
	ExportXLSX(ctx context.Context, req WeeklyRequest) ([]byte, error)
}

var (
	// ErrInvalidOrganization indicates the request carried no resolvable org.
	ErrInvalidOrganization = errors.New("no organization resolved for request")

	// ErrInvalidID indicates a malformed identifier.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidDate rejects dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrInvalidRange rejects windows where end precedes start.
	ErrInvalidRange = errors.New("end date must not precede start date")
)
