package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/diary/domain"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

// Provide constructs the diary repository.
func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindDiary(ctx context.Context, db *gorm.DB, orgID, diaryID snowflake.ID) (*domain.Diary, error) {
	var diary domain.Diary
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", diaryID, orgID).
		First(&diary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &diary, nil
}

func (r *repositoryImpl) FindDiaryByLotDate(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID, date string) (*domain.Diary, error) {
	var diary domain.Diary
	err := db.WithContext(ctx).
		Where("org_id = ? AND lot_id = ? AND date = ?", orgID, lotID, date).
		First(&diary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &diary, nil
}

func (r *repositoryImpl) ListDiariesForDate(ctx context.Context, db *gorm.DB, orgID, projectID snowflake.ID, date string) ([]domain.Diary, error) {
	var diaries []domain.Diary
	q := db.WithContext(ctx).Where("org_id = ? AND date = ?", orgID, date)
	if projectID != 0 {
		q = q.Where("project_id = ?", projectID)
	}
	if err := q.Order("lot_id ASC").Find(&diaries).Error; err != nil {
		return nil, err
	}
	return diaries, nil
}

func (r *repositoryImpl) ListDiariesForLot(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID) ([]domain.Diary, error) {
	var diaries []domain.Diary
	err := db.WithContext(ctx).
		Where("org_id = ? AND lot_id = ?", orgID, lotID).
		Order("date DESC").
		Find(&diaries).Error
	if err != nil {
		return nil, err
	}
	return diaries, nil
}

func (r *repositoryImpl) SaveDiary(ctx context.Context, db *gorm.DB, diary *domain.Diary) error {
	return db.WithContext(ctx).Save(diary).Error
}

// UpdateDiaryStatus flips the status only when the current value matches,
// so two concurrent submits cannot both win.
func (r *repositoryImpl) UpdateDiaryStatus(ctx context.Context, db *gorm.DB, diaryID snowflake.ID, from, to domain.DiaryStatus) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Diary{}).
		Where("id = ? AND status = ?", diaryID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) FindEntry(ctx context.Context, db *gorm.DB, orgID, entryID snowflake.ID) (*domain.DiaryEntry, error) {
	var entry domain.DiaryEntry
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", entryID, orgID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) ListEntries(ctx context.Context, db *gorm.DB, diaryID snowflake.ID) ([]domain.DiaryEntry, error) {
	var entries []domain.DiaryEntry
	err := db.WithContext(ctx).
		Where("diary_id = ?", diaryID).
		Preload("Resource").
		Preload("Resource.Vendor").
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repositoryImpl) ListEntryResourceIDs(ctx context.Context, db *gorm.DB, diaryID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.DiaryEntry{}).
		Where("diary_id = ?", diaryID).
		Pluck("resource_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) CreateEntries(ctx context.Context, db *gorm.DB, entries []domain.DiaryEntry) error {
	return db.WithContext(ctx).Create(&entries).Error
}

func (r *repositoryImpl) SaveEntry(ctx context.Context, db *gorm.DB, entry *domain.DiaryEntry) error {
	return db.WithContext(ctx).Omit("Resource").Save(entry).Error
}

func (r *repositoryImpl) DeleteEntry(ctx context.Context, db *gorm.DB, entry *domain.DiaryEntry) error {
	return db.WithContext(ctx).Delete(entry).Error
}

// CountIncompleteEntries returns the total entry count and how many of
// them still lack a start or finish time.
func (r *repositoryImpl) CountIncompleteEntries(ctx context.Context, db *gorm.DB, diaryID snowflake.ID) (int64, int64, error) {
	var total, incomplete int64
	err := db.WithContext(ctx).
		Model(&domain.DiaryEntry{}).
		Where("diary_id = ?", diaryID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = db.WithContext(ctx).
		Model(&domain.DiaryEntry{}).
		Where("diary_id = ? AND (start_time IS NULL OR finish_time IS NULL)", diaryID).
		Count(&incomplete).Error
	if err != nil {
		return 0, 0, err
	}
	return total, incomplete, nil
}

func (r *repositoryImpl) FindLot(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID) (*projectdomain.Lot, error) {
	var lot projectdomain.Lot
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", lotID, orgID).
		First(&lot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *repositoryImpl) FindResources(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) ([]rateledgerdomain.Resource, error) {
	var resources []rateledgerdomain.Resource
	err := db.WithContext(ctx).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Preload("RateCard").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}
