// Package liquidsoap implements the commands the Liquidsoap AutoDJ calls back into.
package liquidsoap

import (
	"context"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/storage"
)

// Command answers one callback from a station's Liquidsoap process.
type Command interface {
	Run(ctx context.Context, st *station.Station, asAutoDJ bool, payload map[string]any) (string, error)
}

// MediaFilesystems resolves the media library of a station.
type MediaFilesystems interface {
	Media(ctx context.Context, st *station.Station) (storage.Filesystem, error)
}
