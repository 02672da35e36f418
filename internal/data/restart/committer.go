package restart

import (
	"errors"
	"fmt"

	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

// ErrNoStager is returned when stations must be flagged but there is no flush to stage into.
var ErrNoStager = errors.New("restart: nil stager")

// Commit sets needs_restart on every station and re-registers each one with the
// in-flight flush exactly once. Stations not passed in are never touched.
func Commit(stations []*station.Station, stager uow.Stager) error {
	if len(stations) == 0 {
		return nil
	}
	if stager == nil {
		return ErrNoStager
	}
	for _, st := range stations {
		st.MarkNeedsRestart()
		if err := stager.Restage(st); err != nil {
			return fmt.Errorf("stage restart for station %s: %w", st.ID, err)
		}
	}
	return nil
}
