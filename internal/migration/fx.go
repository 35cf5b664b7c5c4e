package migration

import (
	"github.com/smallbiznis/lotworks/internal/config"
	diarydomain "github.com/smallbiznis/lotworks/internal/diary/domain"
	itpdomain "github.com/smallbiznis/lotworks/internal/itp/domain"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module applies the schema at startup. Postgres uses the embedded SQL
// migrations; other dialects (dev and test sqlite) auto-migrate.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		return conn.AutoMigrate(
			&rateledgerdomain.Vendor{},
			&rateledgerdomain.RateCard{},
			&rateledgerdomain.Resource{},
			&projectdomain.Project{},
			&projectdomain.Lot{},
			&diarydomain.Diary{},
			&diarydomain.DiaryEntry{},
			&itpdomain.Template{},
			&itpdomain.LotItp{},
			&itpdomain.Check{},
		)
	}),
)
