package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

func SeedStation(tb testing.TB, db *gorm.DB, shortName string, manualAutoDJ bool) *station.Station {
	tb.Helper()
	st := &station.Station{
		ID:        uuid.New(),
		Name:      shortName,
		ShortName: shortName,
		IsEnabled: true,
	}
	st.SetBackendConfig(station.BackendConfig{UseManualAutoDJ: manualAutoDJ})
	st.SetFrontendConfig(station.FrontendConfig{})
	if err := db.Create(st).Error; err != nil {
		tb.Fatalf("seed station: %v", err)
	}
	return st
}

func SeedMount(tb testing.TB, db *gorm.DB, st *station.Station, name string) *station.Mount {
	tb.Helper()
	m := &station.Mount{ID: uuid.New(), StationID: st.ID, Name: name, IsPublic: true, AutoDJBitrate: 128}
	if err := db.Omit("Station").Create(m).Error; err != nil {
		tb.Fatalf("seed mount: %v", err)
	}
	return m
}

func SeedHLSStream(tb testing.TB, db *gorm.DB, st *station.Station, name string) *station.HLSStream {
	tb.Helper()
	h := &station.HLSStream{ID: uuid.New(), StationID: st.ID, Name: name, Format: "aac", Bitrate: 128}
	if err := db.Omit("Station").Create(h).Error; err != nil {
		tb.Fatalf("seed hls stream: %v", err)
	}
	return h
}

func SeedRemote(tb testing.TB, db *gorm.DB, st *station.Station, typ station.RemoteType) *station.Remote {
	tb.Helper()
	r := &station.Remote{ID: uuid.New(), StationID: st.ID, Type: typ, URL: "http://relay.example:8000"}
	if err := db.Omit("Station").Create(r).Error; err != nil {
		tb.Fatalf("seed remote: %v", err)
	}
	return r
}

func SeedPlaylist(tb testing.TB, db *gorm.DB, st *station.Station, name string) *station.Playlist {
	tb.Helper()
	p := station.NewPlaylist(st, name)
	p.ID = uuid.New()
	p.Station = nil
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("seed playlist: %v", err)
	}
	return p
}

func PtrInt(v int) *int { return &v }
