package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/stationhub-backend/internal/data/aggregates"
	"github.com/yungbote/stationhub-backend/internal/data/restart"
	"github.com/yungbote/stationhub-backend/internal/data/uow"
	domainagg "github.com/yungbote/stationhub-backend/internal/domain/aggregates"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
	"github.com/yungbote/stationhub-backend/internal/platform/storage"
	"github.com/yungbote/stationhub-backend/internal/radio/liquidsoap"
	"github.com/yungbote/stationhub-backend/internal/realtime/bus"
	"github.com/yungbote/stationhub-backend/internal/services"
	"github.com/yungbote/stationhub-backend/internal/webhook"
)

type Services struct {
	Restart     *restart.Capture
	Ports       *services.PortChecker
	StationAgg  domainagg.StationAggregate
	Stations    services.StationService
	Filesystems *storage.StationFilesystems
	Seeder      *services.MediaSeeder
	Copy        *liquidsoap.CopyCommand
	Webhooks    *webhook.Dispatcher
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, restartBus bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	capture := restart.New(log, restart.WithNotifier(bus.NewRestartNotifier(restartBus)))
	ports := services.NewPortChecker(log, repos.Station)
	agg := aggregates.NewStationAggregate(aggregates.StationAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:        db,
			Log:       log,
			Hooks:     aggregates.NewLogHooks(log),
			Listeners: []uow.Listener{capture},
		},
		Stations: repos.Station,
		Media:    repos.Media,
		Ports:    ports,
	})

	fs, err := resolveFilesystems(log, cfg)
	if err != nil {
		return Services{}, fmt.Errorf("init media storage: %w", err)
	}

	return Services{
		Restart:     capture,
		Ports:       ports,
		StationAgg:  agg,
		Stations:    services.NewStationService(log, repos.Station, agg),
		Filesystems: fs,
		Seeder: services.NewMediaSeeder(log, services.MediaSeederDeps{
			Stations:  repos.Station,
			Playlists: repos.Playlist,
			Aggregate: agg,
			Files:     fs,
			MusicPath: cfg.InitMusicPath,
		}),
		Copy:     liquidsoap.NewCopyCommand(log, fs),
		Webhooks: webhook.NewDispatcher(log),
	}, nil
}
