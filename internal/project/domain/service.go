package domain

import (
	"context"
	"errors"
)

type CreateProjectRequest struct {
	Name string
	Code string
}

type UpdateProjectRequest struct {
	ID     string
	Name   *string
	Code   *string
	Status *ProjectStatus
}

type CreateLotRequest struct {
	ProjectID   string
	LotNumber   string
	Description string
}

type Service interface {
	CreateProject(ctx context.Context, req CreateProjectRequest) (Project, error)
	UpdateProject(ctx context.Context, req UpdateProjectRequest) (Project, error)
	GetProject(ctx context.Context, id string) (ProjectSummary, error)
	ListProjects(ctx context.Context, includeArchived bool) ([]ProjectSummary, error)

	CreateLot(ctx context.Context, req CreateLotRequest) (Lot, error)
	ListLots(ctx context.Context, projectID string) ([]Lot, error)
	BulkImportLots(ctx context.Context, projectID, csv string) (BulkImportResult, error)
	UpdateLotStatus(ctx context.Context, lotID string, status LotStatus) (Lot, error)
	DeleteLot(ctx context.Context, lotID string) error
}

var (
	ErrInvalidOrganization = errors.New("no organization resolved for request")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidName         = errors.New("project name is required")
	ErrInvalidCode         = errors.New("project code is required")
	ErrInvalidLotNumber    = errors.New("lot number is required")
	ErrInvalidLotStatus    = errors.New("unknown lot status")

	ErrProjectNotFound = errors.New("project not found")
	ErrLotNotFound     = errors.New("lot not found")

	ErrDuplicateProjectCode = errors.New("a project with this code already exists")
	ErrDuplicateLotNumber   = errors.New("a lot with this number already exists in this project")

	// ErrLotHasDiaries and ErrLotHasItps guard lot deletion: a lot with
	// recorded work or attached checklists cannot be removed.
	ErrLotHasDiaries = errors.New("cannot delete lot with linked diaries")
	ErrLotHasItps    = errors.New("cannot delete lot with linked ITPs")
)
