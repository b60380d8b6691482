package main

import (
	"go.uber.org/fx"

	"github.com/pairline/pairline/internal/server"
)

func main() {
	fx.New(
		server.ConfigModule,
		server.LoggerModule,
		server.SignalingModule,
		server.HTTPModule,
		fx.NopLogger,
	).Run()
}
