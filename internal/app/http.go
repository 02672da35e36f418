package app

import (
	"github.com/yungbote/stationhub-backend/internal/http"
	httpH "github.com/yungbote/stationhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/stationhub-backend/internal/http/middleware"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Station *httpH.StationHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Station: httpH.NewStationHandler(services.Stations),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.JWTSecret == "" {
		log.Warn("API_JWT_SECRET is not set; /api requests will be rejected")
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecret),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: middleware.Auth,
		StationHandler: handlers.Station,
		HealthHandler:  handlers.Health,
	})
}
