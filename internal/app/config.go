package app

import (
	"strings"
	"time"

	"github.com/yungbote/stationhub-backend/internal/data/db"
	"github.com/yungbote/stationhub-backend/internal/platform/envutil"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
	"github.com/yungbote/stationhub-backend/internal/realtime/bus"
)

type Config struct {
	Port            string
	Environment     string
	ServiceName     string
	ShutdownTimeout time.Duration

	DB db.Config

	RedisAddr      string
	RestartChannel string

	JWTSecret   string
	CORSOrigins []string

	MediaRoot     string
	MediaCacheDir string
	InitMusicPath string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:            envutil.String("PORT", "8080", log),
		Environment:     envutil.String("APP_ENV", "development", log),
		ServiceName:     envutil.String("OTEL_SERVICE_NAME", "stationhub", log),
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 15, log)) * time.Second,
		DB: db.Config{
			Driver:     db.Driver(strings.ToLower(envutil.String("DB_DRIVER", string(db.DriverPostgres), log))),
			Host:       envutil.String("POSTGRES_HOST", "localhost", log),
			Port:       envutil.String("POSTGRES_PORT", "5432", log),
			User:       envutil.String("POSTGRES_USER", "postgres", log),
			Password:   envutil.String("POSTGRES_PASSWORD", "", log),
			Name:       envutil.String("POSTGRES_NAME", "stationhub", log),
			SQLitePath: envutil.String("SQLITE_PATH", "stationhub.db", log),
		},
		RedisAddr:      envutil.String("REDIS_ADDR", "", log),
		RestartChannel: envutil.String("RESTART_CHANNEL", bus.DefaultRestartChannel, log),
		JWTSecret:      envutil.String("API_JWT_SECRET", "", log),
		CORSOrigins:    splitList(envutil.String("CORS_ORIGINS", "", log)),
		MediaRoot:      envutil.String("MEDIA_ROOT", "/var/stationhub/stations", log),
		MediaCacheDir:  envutil.String("MEDIA_CACHE_DIR", "/var/stationhub/cache", log),
		InitMusicPath:  envutil.String("INIT_MUSIC_PATH", "", log),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
