package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	diarydomain "github.com/smallbiznis/lotworks/internal/diary/domain"
	"github.com/smallbiznis/lotworks/internal/report/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

// Provide constructs the report read repository.
func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) ListEntryRows(ctx context.Context, db *gorm.DB, f domain.Filter) ([]domain.EntryRow, error) {
	q := db.WithContext(ctx).
		Table("diary_entries AS e").
		Select(`r.id AS resource_id, r.name AS resource_name, r.type AS resource_type,
			v.id AS vendor_id, v.name AS vendor_name,
			d.date AS date, e.total_hours AS total_hours, e.total_cost_cents AS total_cents`).
		Joins("JOIN diaries d ON d.id = e.diary_id").
		Joins("JOIN resources r ON r.id = e.resource_id").
		Joins("JOIN vendors v ON v.id = r.vendor_id").
		Where("d.org_id = ? AND d.date >= ? AND d.date <= ?", f.OrgID, f.Start, f.End)
	if f.ProjectID != 0 {
		q = q.Where("d.project_id = ?", f.ProjectID)
	}
	if f.VendorID != 0 {
		q = q.Where("v.id = ?", f.VendorID)
	}

	var rows []domain.EntryRow
	if err := q.Order("v.name ASC, r.name ASC, d.date ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CountDiaries(ctx context.Context, db *gorm.DB, orgID snowflake.ID, start, end string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&diarydomain.Diary{}).
		Where("org_id = ? AND date >= ? AND date <= ?", orgID, start, end).
		Count(&count).Error
	return count, err
}
