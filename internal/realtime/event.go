// Package realtime carries station events between processes.
package realtime

import (
	"time"

	"github.com/google/uuid"
)

// RestartEvent announces that a station committed needs_restart=true.
type RestartEvent struct {
	StationID uuid.UUID `json:"station_id"`
	ShortName string    `json:"short_name"`
	At        time.Time `json:"at"`
}
