package itp

import (
	"github.com/smallbiznis/lotworks/internal/itp/repository"
	"github.com/smallbiznis/lotworks/internal/itp/service"
	"go.uber.org/fx"
)

var Module = fx.Module("itp.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
