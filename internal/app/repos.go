package app

import (
	"gorm.io/gorm"

	stationrepo "github.com/yungbote/stationhub-backend/internal/data/repos/station"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

type Repos struct {
	Station  stationrepo.StationRepo
	Playlist stationrepo.PlaylistRepo
	Media    stationrepo.MediaRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Station:  stationrepo.NewStationRepo(db, log),
		Playlist: stationrepo.NewPlaylistRepo(db, log),
		Media:    stationrepo.NewMediaRepo(db, log),
	}
}
