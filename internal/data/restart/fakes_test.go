package restart

import (
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

type fakeBatch struct {
	inserts []any
	updates []any
	deletes []any
	changes map[any]uow.ChangeSet
}

func (b *fakeBatch) Inserts() []any { return b.inserts }
func (b *fakeBatch) Updates() []any { return b.updates }
func (b *fakeBatch) Deletes() []any { return b.deletes }

func (b *fakeBatch) ChangeSet(entity any) uow.ChangeSet {
	if b.changes == nil {
		return nil
	}
	return b.changes[entity]
}

func (b *fakeBatch) update(entity any, fields ...string) *fakeBatch {
	if b.changes == nil {
		b.changes = map[any]uow.ChangeSet{}
	}
	cs := uow.ChangeSet{}
	for _, f := range fields {
		cs[f] = uow.FieldChange{Old: 1, New: 2}
	}
	b.updates = append(b.updates, entity)
	b.changes[entity] = cs
	return b
}

type spyStager struct {
	calls []any
	err   error
}

func (s *spyStager) Restage(entity any) error {
	s.calls = append(s.calls, entity)
	return s.err
}

func (s *spyStager) count(entity any) int {
	n := 0
	for _, c := range s.calls {
		if c == entity {
			n++
		}
	}
	return n
}

var errStage = errors.New("stage failed")

func newStation(short string, manual bool) *station.Station {
	st := &station.Station{ID: uuid.New(), Name: short, ShortName: short}
	st.SetBackendConfig(station.BackendConfig{UseManualAutoDJ: manual})
	return st
}

func mountOf(st *station.Station) *station.Mount {
	return &station.Mount{ID: uuid.New(), StationID: st.ID, Station: st, Name: "/radio.mp3"}
}

func hlsOf(st *station.Station) *station.HLSStream {
	return &station.HLSStream{ID: uuid.New(), StationID: st.ID, Station: st, Name: "aac_hifi", Format: "aac", Bitrate: 256}
}

func remoteOf(st *station.Station, typ station.RemoteType) *station.Remote {
	return &station.Remote{ID: uuid.New(), StationID: st.ID, Station: st, Type: typ, URL: "http://relay.example"}
}

func playlistOf(st *station.Station) *station.Playlist {
	p := station.NewPlaylist(st, "rotation")
	p.ID = uuid.New()
	return p
}
