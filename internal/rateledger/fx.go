package rateledger

import (
	"github.com/smallbiznis/lotworks/internal/rateledger/repository"
	"github.com/smallbiznis/lotworks/internal/rateledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rateledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
