package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/stationhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/stationhub-backend/internal/http/middleware"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	StationHandler *httpH.StationHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Stations
	if h := cfg.StationHandler; h != nil {
		api.GET("/stations/restart-pending", h.ListRestartPending)
		api.GET("/stations/:id", h.GetStation)
		api.PATCH("/stations/:id", h.UpdateStation)
		api.POST("/stations/:id/restart-ack", h.AcknowledgeRestart)

		api.POST("/stations/:id/mounts", h.AddMount)
		api.PATCH("/mounts/:id", h.UpdateMount)
		api.DELETE("/mounts/:id", h.DeleteMount)

		api.POST("/stations/:id/hls-streams", h.AddHLSStream)
		api.DELETE("/hls-streams/:id", h.DeleteHLSStream)

		api.PATCH("/remotes/:id", h.UpdateRemote)
		api.PATCH("/playlists/:id", h.UpdatePlaylist)
	}

	return r
}
