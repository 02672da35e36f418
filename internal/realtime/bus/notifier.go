package bus

import (
	"context"
	"time"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/realtime"
)

// RestartNotifier publishes committed restart flags on a bus.
type RestartNotifier struct {
	bus Bus
	now func() time.Time
}

func NewRestartNotifier(b Bus) *RestartNotifier {
	if b == nil {
		b = NewNoopBus()
	}
	return &RestartNotifier{bus: b, now: time.Now}
}

func (n *RestartNotifier) NotifyRestart(ctx context.Context, stations []*station.Station) error {
	if len(stations) == 0 {
		return nil
	}
	at := n.now().UTC()
	events := make([]realtime.RestartEvent, 0, len(stations))
	for _, st := range stations {
		if st == nil {
			continue
		}
		events = append(events, realtime.RestartEvent{StationID: st.ID, ShortName: st.ShortName, At: at})
	}
	return n.bus.Publish(ctx, events...)
}
