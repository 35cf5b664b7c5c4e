package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertProject(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) UpdateProject(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Save(project).Error
}

func (r *repo) FindProjectByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *repo) FindProjectByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *repo) ListProjects(ctx context.Context, db *gorm.DB, orgID snowflake.ID, includeArchived bool) ([]domain.Project, error) {
	stmt := db.WithContext(ctx).Where("org_id = ?", orgID)
	if !includeArchived {
		stmt = stmt.Where("status = ?", domain.ProjectActive)
	}
	var projects []domain.Project
	err := stmt.Order("name").Find(&projects).Error
	return projects, err
}

func (r *repo) InsertLot(ctx context.Context, db *gorm.DB, lot *domain.Lot) error {
	return db.WithContext(ctx).Create(lot).Error
}

func (r *repo) InsertLots(ctx context.Context, db *gorm.DB, lots []domain.Lot) error {
	if len(lots) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lots).Error
}

func (r *repo) UpdateLot(ctx context.Context, db *gorm.DB, lot *domain.Lot) error {
	return db.WithContext(ctx).Save(lot).Error
}

func (r *repo) FindLotByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Lot, error) {
	var lot domain.Lot
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *repo) ListLots(ctx context.Context, db *gorm.DB, orgID, projectID snowflake.ID) ([]domain.Lot, error) {
	var lots []domain.Lot
	err := db.WithContext(ctx).
		Where("org_id = ? AND project_id = ?", orgID, projectID).
		Order("lot_number").
		Find(&lots).Error
	return lots, err
}

func (r *repo) ListLotNumbers(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]string, error) {
	var numbers []string
	err := db.WithContext(ctx).
		Model(&domain.Lot{}).
		Where("project_id = ?", projectID).
		Pluck("lot_number", &numbers).Error
	return numbers, err
}

func (r *repo) CountLotsGrouped(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.LotCount, error) {
	var counts []domain.LotCount
	err := db.WithContext(ctx).
		Model(&domain.Lot{}).
		Select("project_id, status, COUNT(*) AS count").
		Where("org_id = ?", orgID).
		Group("project_id, status").
		Scan(&counts).Error
	return counts, err
}

func (r *repo) DeleteLot(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Lot{}).Error
}

func (r *repo) CountDiariesByLot(ctx context.Context, db *gorm.DB, lotID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("diaries").
		Where("lot_id = ?", lotID).
		Count(&count).Error
	return count, err
}

func (r *repo) CountItpsByLot(ctx context.Context, db *gorm.DB, lotID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("lot_itps").
		Where("lot_id = ?", lotID).
		Count(&count).Error
	return count, err
}
