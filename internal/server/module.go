package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/logging"
	"github.com/pairline/pairline/internal/signaling"
)

var loggerWriter = os.Stdout

func newLogger(cfg *config.Server) *slog.Logger {
	return logging.New(loggerWriter, logging.ParseLevel(cfg.LogLevel, slog.LevelInfo))
}

// ConfigModule provides *config.Server.
var ConfigModule = fx.Module("config", fx.Provide(config.LoadServer))

// LoggerModule provides the process logger.
var LoggerModule = fx.Module("logger", fx.Provide(newLogger))

type hub_Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *slog.Logger
}

// newHub starts the hub loop with the application and stops it on shutdown.
func newHub(params hub_Params) *signaling.Hub {
	hub := signaling.NewHub(params.Logger)
	ctx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go hub.Run(ctx)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-hub.Done():
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
	return hub
}

// SignalingModule provides the running *signaling.Hub.
var SignalingModule = fx.Module("signaling", fx.Provide(newHub))

type httpServer_Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Server
	Hub       *signaling.Hub
	Logger    *slog.Logger
}

func httpServer(params httpServer_Params) *echo.Echo {
	router := NewRouter(params.Config, params.Hub, params.Logger)
	srv := &http.Server{Addr: params.Config.Addr(), Handler: router}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			params.Logger.Info("starting signaling server", "addr", ln.Addr().String())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					params.Logger.Error("http server stopped", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, params.Config.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
	return router
}

// HTTPModule serves the relay's endpoints.
var HTTPModule = fx.Module("http", fx.Provide(httpServer), fx.Invoke(func(*echo.Echo) {}))
