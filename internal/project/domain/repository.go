package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertProject(ctx context.Context, db *gorm.DB, project *Project) error
	UpdateProject(ctx context.Context, db *gorm.DB, project *Project) error
	FindProjectByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Project, error)
	FindProjectByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*Project, error)
	ListProjects(ctx context.Context, db *gorm.DB, orgID snowflake.ID, includeArchived bool) ([]Project, error)

	InsertLot(ctx context.Context, db *gorm.DB, lot *Lot) error
	InsertLots(ctx context.Context, db *gorm.DB, lots []Lot) error
	UpdateLot(ctx context.Context, db *gorm.DB, lot *Lot) error
	FindLotByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Lot, error)
	ListLots(ctx context.Context, db *gorm.DB, orgID, projectID snowflake.ID) ([]Lot, error)
	ListLotNumbers(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]string, error)
	CountLotsGrouped(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]LotCount, error)
	DeleteLot(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error

	CountDiariesByLot(ctx context.Context, db *gorm.DB, lotID snowflake.ID) (int64, error)
	CountItpsByLot(ctx context.Context, db *gorm.DB, lotID snowflake.ID) (int64, error)
}
