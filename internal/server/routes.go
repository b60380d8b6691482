package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/signaling"
)

// NewUpgrader configures the websocket upgrader for the relay.
func NewUpgrader(cfg *config.Server) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  64 * 1024, // 64 KB
		WriteBufferSize: 64 * 1024, // 64 KB
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
}

// ServeWs returns an http.HandlerFunc that upgrades the request and runs the
// resulting client against the hub until it disconnects.
func ServeWs(hub *signaling.Hub, upgrader *websocket.Upgrader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("failed to upgrade connection", "remote", r.RemoteAddr, "err", err)
			return
		}

		signaling.NewClient(hub, conn, logger).Serve()
	}
}

// NewRouter wires every HTTP endpoint of the relay.
func NewRouter(cfg *config.Server, hub *signaling.Hub, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(e, logger)

	e.GET("/ws", echo.WrapHandler(ServeWs(hub, NewUpgrader(cfg), logger)))
	e.GET("/health", healthCheck)
	e.GET("/stats", stats(hub))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

func healthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "Signaling server is healthy.")
}

func stats(hub *signaling.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := hub.Stats(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(http.StatusOK, s)
	}
}

func httpErrorHandler(e *echo.Echo, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		logger.Error(err.Error(), "method", c.Request().Method, "path", c.Request().URL.Path)
		e.DefaultHTTPErrorHandler(err, c)
	}
}
