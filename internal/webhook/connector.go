// Package webhook routes station events to the connectors configured on a station.
package webhook

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

// Event triggers a webhook may subscribe to.
const (
	TriggerSongChanged    = "song_changed"
	TriggerListenerGained = "listener_gained"
	TriggerListenerLost   = "listener_lost"
	TriggerLiveConnect    = "live_connect"
	TriggerLiveDisconnect = "live_disconnect"
	TriggerStationOffline = "station_offline"
	TriggerStationOnline  = "station_online"
)

// NowPlaying is the station state handed to connectors.
type NowPlaying struct {
	StationID uuid.UUID `json:"station_id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Listeners int       `json:"listeners"`
	IsLive    bool      `json:"is_live"`
	IsOnline  bool      `json:"is_online"`
	At        time.Time `json:"at"`
}

// Connector delivers webhook events of one type.
type Connector interface {
	// ShouldDispatch reports whether hook wants any of the triggers.
	ShouldDispatch(hook *station.Webhook, triggers []string) bool
	Dispatch(ctx context.Context, st *station.Station, hook *station.Webhook, np NowPlaying, triggers []string) error
}

// FilterTriggers is the base dispatch rule: a disabled hook never fires, a hook without
// configured triggers fires for everything, otherwise at least one trigger must match.
func FilterTriggers(hook *station.Webhook, triggers []string) bool {
	if hook == nil || !hook.IsEnabled {
		return false
	}
	if len(hook.Triggers) == 0 {
		return true
	}
	for _, want := range hook.Triggers {
		for _, got := range triggers {
			if want == got {
				return true
			}
		}
	}
	return false
}
