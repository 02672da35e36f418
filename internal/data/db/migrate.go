package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

// Models lists every table owned by the backend, in migration order.
func Models() []any {
	return []any{
		&station.Station{},
		&station.Mount{},
		&station.HLSStream{},
		&station.Remote{},
		&station.Playlist{},
		&station.Media{},
		&station.PlaylistMedia{},
		&station.Webhook{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// EnsureStationIndexes adds the partial index the restart reconciler polls on.
func EnsureStationIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_station_needs_restart_pending
		ON station (updated_at)
		WHERE needs_restart = true;
	`).Error; err != nil {
		return fmt.Errorf("create idx_station_needs_restart_pending: %w", err)
	}
	return nil
}
