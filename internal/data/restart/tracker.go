package restart

import (
	"github.com/google/uuid"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

// Tracker collects stations to flag, once per station, in first-seen order.
type Tracker struct {
	seen  map[any]struct{}
	order []*station.Station
}

// NewTracker returns an empty tracker for one flush.
func NewTracker() *Tracker {
	return &Tracker{seen: map[any]struct{}{}}
}

// Add records st and reports whether it was new this cycle.
func (t *Tracker) Add(st *station.Station) bool {
	if st == nil {
		return false
	}
	var key any = st.ID
	if st.ID == uuid.Nil {
		// not yet inserted; the instance is the identity
		key = st
	}
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	t.order = append(t.order, st)
	return true
}

// Len is the number of distinct stations recorded.
func (t *Tracker) Len() int { return len(t.order) }

// Stations returns the recorded stations in first-seen order.
func (t *Tracker) Stations() []*station.Station {
	return append([]*station.Station(nil), t.order...)
}
