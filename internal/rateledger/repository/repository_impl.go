package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertVendor(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	return db.WithContext(ctx).Create(vendor).Error
}

func (r *repo) UpdateVendor(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	return db.WithContext(ctx).Save(vendor).Error
}

func (r *repo) FindVendorByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *repo) ListVendors(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name").
		Find(&vendors).Error
	return vendors, err
}

func (r *repo) DeleteVendor(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Vendor{}).Error
}

func (r *repo) CountActiveResourcesByVendor(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Resource{}).
		Where("vendor_id = ? AND is_active = ?", vendorID, true).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertRateCard(ctx context.Context, db *gorm.DB, card *domain.RateCard) error {
	return db.WithContext(ctx).Create(card).Error
}

func (r *repo) UpdateRateCard(ctx context.Context, db *gorm.DB, card *domain.RateCard) error {
	return db.WithContext(ctx).Save(card).Error
}

func (r *repo) FindRateCardByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.RateCard, error) {
	var card domain.RateCard
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *repo) ListRateCardsByVendor(ctx context.Context, db *gorm.DB, orgID, vendorID snowflake.ID) ([]domain.RateCard, error) {
	var cards []domain.RateCard
	err := db.WithContext(ctx).
		Where("org_id = ? AND vendor_id = ?", orgID, vendorID).
		Order("role_name").
		Find(&cards).Error
	return cards, err
}

func (r *repo) DeleteRateCards(ctx context.Context, db *gorm.DB, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.RateCard{}).Error
}

func (r *repo) CountResourcesByRateCards(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Resource{}).
		Where("assigned_rate_card_id IN ?", ids).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertResource(ctx context.Context, db *gorm.DB, resource *domain.Resource) error {
	return db.WithContext(ctx).Create(resource).Error
}

func (r *repo) UpdateResource(ctx context.Context, db *gorm.DB, resource *domain.Resource) error {
	return db.WithContext(ctx).Omit("Vendor", "RateCard").Save(resource).Error
}

func (r *repo) FindResourceByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Resource, error) {
	var resource domain.Resource
	err := db.WithContext(ctx).
		Preload("Vendor").
		Preload("RateCard").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resource, nil
}

func (r *repo) ListResources(ctx context.Context, db *gorm.DB, orgID snowflake.ID, activeOnly bool) ([]domain.Resource, error) {
	stmt := db.WithContext(ctx).
		Preload("Vendor").
		Preload("RateCard").
		Where("org_id = ?", orgID)
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	var resources []domain.Resource
	err := stmt.Order("name").Find(&resources).Error
	return resources, err
}
