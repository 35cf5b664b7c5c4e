package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/lotworks/internal/clock"
	"github.com/smallbiznis/lotworks/internal/config"
	"github.com/smallbiznis/lotworks/internal/migration"
	"github.com/smallbiznis/lotworks/internal/photostore"
	photolocal "github.com/smallbiznis/lotworks/internal/photostore/local"
	"github.com/smallbiznis/lotworks/internal/server"
	"github.com/smallbiznis/lotworks/pkg/db"
	"github.com/smallbiznis/lotworks/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(RegisterPhotoStore),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func RegisterPhotoStore(cfg config.Config) (photostore.Store, error) {
	store, err := photolocal.New(cfg.PhotoDir, cfg.PhotoBaseURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}
