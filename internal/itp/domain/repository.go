package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	"gorm.io/gorm"
)

// Repository is the persistence boundary for inspections. Methods take
// the *gorm.DB so services can run several calls inside one transaction.
type Repository interface {
	FindTemplate(ctx context.Context, db *gorm.DB, orgID, templateID snowflake.ID) (*Template, error)
	ListTemplates(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Template, error)
	SaveTemplate(ctx context.Context, db *gorm.DB, template *Template) error
	DeleteTemplate(ctx context.Context, db *gorm.DB, template *Template) error
	CountLotItpsByTemplate(ctx context.Context, db *gorm.DB, templateID snowflake.ID) (int64, error)

	FindLotItp(ctx context.Context, db *gorm.DB, orgID, lotItpID snowflake.ID) (*LotItp, error)
	ListLotItpsForLot(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID) ([]LotItp, error)
	ListLotItpsByStatus(ctx context.Context, db *gorm.DB, orgID snowflake.ID, status LotItpStatus) ([]LotItp, error)
	ListAttachedTemplateIDs(ctx context.Context, db *gorm.DB, lotID snowflake.ID) ([]snowflake.ID, error)
	SaveLotItp(ctx context.Context, db *gorm.DB, lotItp *LotItp) error
	SignOffLotItp(ctx context.Context, db *gorm.DB, lotItp *LotItp) (int64, error)

	FindCheck(ctx context.Context, db *gorm.DB, orgID, checkID snowflake.ID) (*Check, error)
	ListChecks(ctx context.Context, db *gorm.DB, lotItpID snowflake.ID) ([]Check, error)
	CreateChecks(ctx context.Context, db *gorm.DB, checks []Check) error
	SaveCheck(ctx context.Context, db *gorm.DB, check *Check) error
	CountChecksByStatus(ctx context.Context, db *gorm.DB, lotItpID snowflake.ID) (map[CheckStatus]int, error)

	FindLot(ctx context.Context, db *gorm.DB, orgID, lotID snowflake.ID) (*projectdomain.Lot, error)
}
