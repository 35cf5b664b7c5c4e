package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/itp/domain"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	"gorm.io/gorm"
)

type repositoryImpl struct{}

// Provide constructs the inspection repository.
func Provide() domain.Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindTemplate(ctx context.Context, db *gorm.DB, orgID, templateID snowflake.ID) (*domain.Template, error) {
	var template domain.Template
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", templateID, orgID).
		First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repositoryImpl) ListTemplates(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Template, error) {
	var templates []domain.Template
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("title ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repositoryImpl) SaveTemplate(ctx context.Context, db *gorm.DB, template *domain.Template) error {
	return db.WithContext(ctx).Save(template).Error
}

func (r *repositoryImpl) DeleteTemplate(ctx context.Context, db *gorm.DB, template *domain.Template) error {
	return db.WithContext(ctx).Delete(template).Error
}

func (r *repositoryImpl) CountLotItpsByTemplate(ctx context.Context, db *gorm.DB, templateID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.LotItp{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) FindLotItp(ctx context.Context, db *gorm.DB, orgID, lotItpID snowflake.ID) (*domain.LotItp, error) {
	var lotItp domain.LotItp
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", lotItpID, orgID).
		First(&lotItp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lotItp, nil
}

func (r *repositoryImpl) ListLotItpsForLot(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID) ([]domain.LotItp, error) {
	var lotItps []domain.LotItp
	err := db.WithContext(ctx).
		Where("org_id = ? AND lot_id = ?", orgID, lotID).
		Order("created_at ASC, id ASC").
		Find(&lotItps).Error
	if err != nil {
		return nil, err
	}
	return lotItps, nil
}

func (r *repositoryImpl) ListLotItpsByStatus(ctx context.Context, db *gorm.DB, orgID snowflake.ID, status domain.LotItpStatus) ([]domain.LotItp, error) {
	var lotItps []domain.LotItp
	err := db.WithContext(ctx).
		Where("org_id = ? AND status = ?", orgID, status).
		Order("created_at ASC, id ASC").
		Find(&lotItps).Error
	if err != nil {
		return nil, err
	}
	return lotItps, nil
}

func (r *repositoryImpl) ListAttachedTemplateIDs(ctx context.Context, db *gorm.DB, lotID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&domain.LotItp{}).
		Where("lot_id = ?", lotID).
		Pluck("template_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) SaveLotItp(ctx context.Context, db *gorm.DB, lotItp *domain.LotItp) error {
	return db.WithContext(ctx).Save(lotItp).Error
}

// SignOffLotItp flips the inspection to complete only while it is still
// in progress, so two concurrent sign-offs cannot both win.
func (r *repositoryImpl) SignOffLotItp(ctx context.Context, db *gorm.DB, lotItp *domain.LotItp) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.LotItp{}).
		Where("id = ? AND status = ?", lotItp.ID, domain.LotItpInProgress).
		Updates(map[string]any{
			"status":        domain.LotItpComplete,
			"signed_off_at": lotItp.SignedOffAt,
			"signed_off_by": lotItp.SignedOffBy,
			"updated_at":    time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) FindCheck(ctx context.Context, db *gorm.DB, orgID, checkID snowflake.ID) (*domain.Check, error) {
	var check domain.Check
	err := db.WithContext(ctx).
		Where("id = ? AND org_id = ?", checkID, orgID).
		First(&check).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (r *repositoryImpl) ListChecks(ctx context.Context, db *gorm.DB, lotItpID snowflake.ID) ([]domain.Check, error) {
	var checks []domain.Check
	err := db.WithContext(ctx).
		Where("lot_itp_id = ?", lotItpID).
		Order("position ASC").
		Find(&checks).Error
	if err != nil {
		return nil, err
	}
	return checks, nil
}

func (r *repositoryImpl) CreateChecks(ctx context.Context, db *gorm.DB, checks []domain.Check) error {
	return db.WithContext(ctx).Create(&checks).Error
}

func (r *repositoryImpl) SaveCheck(ctx context.Context, db *gorm.DB, check *domain.Check) error {
	return db.WithContext(ctx).Save(check).Error
}

func (r *repositoryImpl) CountChecksByStatus(ctx context.Context, db *gorm.DB, lotItpID snowflake.ID) (map[domain.CheckStatus]int, error) {
	var rows []struct {
		Status domain.CheckStatus
		Count  int
	}
	err := db.WithContext(ctx).
		Model(&domain.Check{}).
		Select("status, COUNT(*) AS count").
		Where("lot_itp_id = ?", lotItpID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.CheckStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
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
