package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertVendor(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	UpdateVendor(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	FindVendorByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Vendor, error)
	ListVendors(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Vendor, error)
	DeleteVendor(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	CountActiveResourcesByVendor(ctx context.Context, db *gorm.DB, vendorID snowflake.ID) (int64, error)

	InsertRateCard(ctx context.Context, db *gorm.DB, card *RateCard) error
	UpdateRateCard(ctx context.Context, db *gorm.DB, card *RateCard) error
	FindRateCardByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*RateCard, error)
	ListRateCardsByVendor(ctx context.Context, db *gorm.DB, orgID, vendorID snowflake.ID) ([]RateCard, error)
	DeleteRateCards(ctx context.Context, db *gorm.DB, ids []snowflake.ID) error
	CountResourcesByRateCards(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (int64, error)

	InsertResource(ctx context.Context, db *gorm.DB, resource *Resource) error
	UpdateResource(ctx context.Context, db *gorm.DB, resource *Resource) error
	FindResourceByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Resource, error)
	ListResources(ctx context.Context, db *gorm.DB, orgID snowflake.ID, activeOnly bool) ([]Resource, error)
}
