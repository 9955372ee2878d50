package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tecnomade/clouget-pos/internal/clock"
	"github.com/tecnomade/clouget-pos/internal/config"
	"github.com/tecnomade/clouget-pos/internal/logger"
	"github.com/tecnomade/clouget-pos/internal/migration"
	"github.com/tecnomade/clouget-pos/internal/server"
	"github.com/tecnomade/clouget-pos/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
