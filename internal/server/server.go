package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/lotworks/internal/config"
	"github.com/smallbiznis/lotworks/internal/diary"
	diarydomain "github.com/smallbiznis/lotworks/internal/diary/domain"
	"github.com/smallbiznis/lotworks/internal/itp"
	itpdomain "github.com/smallbiznis/lotworks/internal/itp/domain"
	"github.com/smallbiznis/lotworks/internal/project"
	projectdomain "github.com/smallbiznis/lotworks/internal/project/domain"
	"github.com/smallbiznis/lotworks/internal/rateledger"
	rateledgerdomain "github.com/smallbiznis/lotworks/internal/rateledger/domain"
	"github.com/smallbiznis/lotworks/internal/report"
	reportdomain "github.com/smallbiznis/lotworks/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	rateledger.Module,
	project.Module,
	diary.Module,
	itp.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	rateledgerSvc rateledgerdomain.Service
	projectSvc    projectdomain.Service
	diarySvc      diarydomain.Service
	itpSvc        itpdomain.Service
	reportSvc     reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	RateledgerSvc rateledgerdomain.Service
	ProjectSvc    projectdomain.Service
	DiarySvc      diarydomain.Service
	ItpSvc        itpdomain.Service
	ReportSvc     reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		rateledgerSvc: p.RateledgerSvc,
		projectSvc:    p.ProjectSvc,
		diarySvc:      p.DiarySvc,
		itpSvc:        p.ItpSvc,
		reportSvc:     p.ReportSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api", OrgContext(s.cfg))

	api.GET("/vendors", s.ListVendors)
	api.POST("/vendors", s.CreateVendor)
	api.GET("/vendors/:id", s.GetVendor)
	api.PATCH("/vendors/:id", s.UpdateVendor)
	api.DELETE("/vendors/:id", s.ArchiveVendor)
	api.GET("/vendors/:id/rate-cards", s.ListRateCards)
	api.PUT("/vendors/:id/rate-cards", s.UpsertRateCards)
	api.DELETE("/rate-cards/:id", s.DeleteRateCard)

	api.GET("/resources", s.ListResources)
	api.POST("/resources", s.CreateResource)
	api.GET("/resources/:id", s.GetResource)
	api.PATCH("/resources/:id", s.UpdateResource)
	api.PUT("/resources/:id/active", s.SetResourceActive)

	api.GET("/projects", s.ListProjects)
	api.POST("/projects", s.CreateProject)
	api.GET("/projects/:id", s.GetProject)
	api.PATCH("/projects/:id", s.UpdateProject)
	api.GET("/projects/:id/lots", s.ListLots)
	api.POST("/projects/:id/lots", s.CreateLot)
	api.POST("/projects/:id/lots/import", s.ImportLots)
	api.PUT("/lots/:id/status", s.UpdateLotStatus)
	api.DELETE("/lots/:id", s.DeleteLot)

	api.POST("/diaries", s.InitializeDiary)
	api.GET("/diaries", s.ListDiariesForDate)
	api.GET("/diaries/:id", s.GetDiary)
	api.POST("/diaries/:id/entries", s.AddDiaryEntries)
	api.PUT("/diaries/:id/notes", s.UpdateDiaryNotes)
	api.POST("/diaries/:id/submit", s.SubmitDiary)
	api.PUT("/entries/:id/time", s.SetEntryTime)
	api.DELETE("/entries/:id", s.RemoveEntry)
	api.GET("/lots/:id/diaries", s.ListDiariesForLot)

	api.GET("/itp-templates", s.ListTemplates)
	api.POST("/itp-templates", s.CreateTemplate)
	api.GET("/itp-templates/:id", s.GetTemplate)
	api.PATCH("/itp-templates/:id", s.UpdateTemplateTitle)
	api.PUT("/itp-templates/:id/items", s.ReplaceTemplateItems)
	api.DELETE("/itp-templates/:id", s.DeleteTemplate)

	api.GET("/lots/:id/itps", s.ListLotItps)
	api.POST("/lots/:id/itps", s.AttachTemplate)
	api.GET("/lots/:id/available-templates", s.AvailableTemplates)
	api.GET("/lot-itps", s.ListInProgressItps)
	api.GET("/lot-itps/:id", s.GetLotItp)
	api.POST("/lot-itps/:id/sign-off", s.SignOffLotItp)
	api.PATCH("/checks/:id", s.UpdateCheck)
	api.POST("/checks/:id/photo", s.UploadCheckPhoto)
	api.DELETE("/checks/:id/photo", s.ClearCheckPhoto)

	api.GET("/reports/weekly", s.WeeklyReport)
	api.GET("/reports/weekly/export", s.ExportWeeklyReport)
	api.GET("/reports/summary", s.ReportSummary)
}
