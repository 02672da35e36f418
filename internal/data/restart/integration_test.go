package restart

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/stationhub-backend/internal/data/repos/testutil"
	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

type countingListener struct{ updates map[string]int }

// OnFlush counts how often each station row appears in the final plan.
func (l *countingListener) OnFlush(ev *uow.FlushEvent) error {
	for _, e := range ev.Batch.Updates() {
		if st, ok := e.(*station.Station); ok {
			l.updates[st.ShortName]++
		}
	}
	return nil
}

func reloadStation(t *testing.T, db *gorm.DB, st *station.Station) station.Station {
	t.Helper()
	var out station.Station
	if err := db.First(&out, "id = ?", st.ID).Error; err != nil {
		t.Fatalf("reload station: %v", err)
	}
	return out
}

func TestCommitPersistsRestartFlag(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "persist", false)
	m1 := testutil.SeedMount(t, db, st, "/one.mp3")
	testutil.SeedMount(t, db, st, "/two.mp3")

	n := &spyNotifier{}
	count := &countingListener{updates: map[string]int{}}
	u := uow.New(db, uow.WithListener(New(testutil.Logger(t), WithNotifier(n))), uow.WithListener(count))

	var loaded station.Station
	if err := u.Load(ctx, &loaded, st.ID, "Mounts"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, m := range loaded.Mounts {
		m.AutoDJBitrate = 320
	}
	if err := u.Persist(ctx, station.NewHLSStream(&loaded, "aac_lofi", "aac", 64)); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := reloadStation(t, db, st); !got.NeedsRestart {
		t.Fatalf("needs_restart not committed")
	}
	if count.updates["persist"] != 1 {
		t.Fatalf("station should appear once in the plan, got %d", count.updates["persist"])
	}
	if n.calls != 1 || len(n.stations) != 1 || n.stations[0].ID != st.ID {
		t.Fatalf("notifier: calls=%d stations=%d", n.calls, len(n.stations))
	}

	var mount station.Mount
	if err := db.First(&mount, "id = ?", m1.ID).Error; err != nil {
		t.Fatalf("reload mount: %v", err)
	}
	if mount.AutoDJBitrate != 320 {
		t.Fatalf("mount change lost: %d", mount.AutoDJBitrate)
	}
}

func TestStationEditSurvivesRestartFlag(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "rename", false)
	seeded := testutil.SeedMount(t, db, st, "/rename.mp3")

	updates := 0
	err := db.Callback().Update().After("gorm:update").Register("test:count_station_updates", func(tx *gorm.DB) {
		if tx.Statement.Table == "stations" {
			updates++
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	u := uow.New(db, uow.WithListener(New(nil)))
	var loaded station.Station
	if err := u.Load(ctx, &loaded, st.ID); err != nil {
		t.Fatalf("Load station: %v", err)
	}
	loaded.Name = "Renamed"
	var m station.Mount
	if err := u.Load(ctx, &m, seeded.ID, "Station"); err != nil {
		t.Fatalf("Load mount: %v", err)
	}
	m.AutoDJBitrate = 256
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := reloadStation(t, db, st)
	if got.Name != "Renamed" || !got.NeedsRestart {
		t.Fatalf("want name=Renamed needs_restart=true, got name=%q needs_restart=%v", got.Name, got.NeedsRestart)
	}
	if updates != 1 {
		t.Fatalf("station row should be written once, got %d updates", updates)
	}
}

func TestListenerStatsDoNotFlag(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "stats", false)
	seeded := testutil.SeedMount(t, db, st, "/radio.mp3")

	u := uow.New(db, uow.WithListener(New(nil)))
	var m station.Mount
	if err := u.Load(ctx, &m, seeded.ID, "Station"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.ListenersTotal = 42
	m.ListenersUnique = 17
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := reloadStation(t, db, st); got.NeedsRestart {
		t.Fatalf("listener statistics must not flag a restart")
	}
}

func TestUnclassifiableMutationAbortsCommit(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "abort", false)
	seeded := testutil.SeedMount(t, db, st, "/keep.mp3")

	u := uow.New(db, uow.WithListener(New(nil)))
	var m station.Mount
	// Station deliberately not preloaded
	if err := u.Load(ctx, &m, seeded.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.Name = "/changed.mp3"
	if err := u.Flush(ctx); !errors.Is(err, ErrUnclassifiable) {
		t.Fatalf("expected ErrUnclassifiable, got %v", err)
	}
	var reloaded station.Mount
	if err := db.First(&reloaded, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Name != "/keep.mp3" {
		t.Fatalf("aborted commit leaked a write")
	}
}

func TestAcknowledgeDoesNotRetrigger(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "ack", true)
	testutil.SeedPlaylist(t, db, st, "rotation")

	u := uow.New(db, uow.WithListener(New(nil)))
	var loaded station.Station
	if err := u.Load(ctx, &loaded, st.ID, "Playlists"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded.Playlists[0].Weight = 9
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !reloadStation(t, db, st).NeedsRestart {
		t.Fatalf("manual playlist edit should flag")
	}

	loaded.ClearNeedsRestart()
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("ack Flush: %v", err)
	}
	if reloadStation(t, db, st).NeedsRestart {
		t.Fatalf("station edits must not re-flag the station")
	}
}

func TestRelayRemoteEditDoesNotFlag(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "relay", false)
	seeded := testutil.SeedRemote(t, db, st, station.RemoteRelay)

	u := uow.New(db, uow.WithListener(New(nil)))
	var r station.Remote
	if err := u.Load(ctx, &r, seeded.ID, "Station"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r.URL = "http://other.example:8000"
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if reloadStation(t, db, st).NeedsRestart {
		t.Fatalf("relay remotes are not editable and must not flag")
	}
}
