package diary

import (
	"github.com/smallbiznis/lotworks/internal/diary/repository"
	"github.com/smallbiznis/lotworks/internal/diary/service"
	"go.uber.org/fx"
)

var Module = fx.Module("diary.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
