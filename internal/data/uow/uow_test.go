package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/stationhub-backend/internal/data/repos/testutil"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
)

type recordingListener struct {
	calls   int
	batches []snapshotBatch
	fn      func(ev *FlushEvent) error
}

type snapshotBatch struct {
	inserts, updates, deletes int
	changes                   []ChangeSet
}

func (l *recordingListener) OnFlush(ev *FlushEvent) error {
	l.calls++
	b := snapshotBatch{
		inserts: len(ev.Batch.Inserts()),
		updates: len(ev.Batch.Updates()),
		deletes: len(ev.Batch.Deletes()),
	}
	for _, e := range ev.Batch.Updates() {
		b.changes = append(b.changes, ev.Batch.ChangeSet(e))
	}
	l.batches = append(l.batches, b)
	if l.fn != nil {
		return l.fn(ev)
	}
	return nil
}

func TestFlushWritesOnlyChangedColumns(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "alpha", false)
	seeded := testutil.SeedMount(t, db, st, "/radio.mp3")

	rec := &recordingListener{}
	u := New(db, WithListener(rec))
	var m station.Mount
	if err := u.Load(ctx, &m, seeded.ID, "Station"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !u.IsManaged(ctx, m.Station) {
		t.Fatalf("preloaded station should be managed")
	}
	m.Name = "/live.mp3"
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if rec.calls != 1 {
		t.Fatalf("listener calls: want=1 got=%d", rec.calls)
	}
	b := rec.batches[0]
	if b.updates != 1 || b.inserts != 0 || b.deletes != 0 {
		t.Fatalf("unexpected batch shape: %+v", b)
	}
	fields := b.changes[0].Fields()
	if len(fields) != 1 || fields[0] != "name" {
		t.Fatalf("changed fields: want=[name] got=%v", fields)
	}
	if b.changes[0]["name"].Old != "/radio.mp3" || b.changes[0]["name"].New != "/live.mp3" {
		t.Fatalf("unexpected change: %+v", b.changes[0]["name"])
	}

	var reloaded station.Mount
	if err := db.First(&reloaded, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Name != "/live.mp3" {
		t.Fatalf("name not persisted: %q", reloaded.Name)
	}

	// committed state is the new baseline
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("unchanged flush should not reach listeners, calls=%d", rec.calls)
	}
}

func TestFlushInsertsAndDeletes(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "beta", false)
	old := testutil.SeedMount(t, db, st, "/old.mp3")

	rec := &recordingListener{}
	u := New(db, WithListener(rec))
	var loaded station.Station
	if err := u.Load(ctx, &loaded, st.ID, "Mounts"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Mounts) != 1 {
		t.Fatalf("expected 1 mount, got %d", len(loaded.Mounts))
	}
	fresh := station.NewMount(&loaded, "/new.mp3")
	if err := u.Persist(ctx, fresh); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := u.Remove(ctx, loaded.Mounts[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if b := rec.batches[0]; b.inserts != 1 || b.deletes != 1 || b.updates != 0 {
		t.Fatalf("unexpected batch shape: %+v", b)
	}

	var count int64
	db.Model(&station.Mount{}).Where("id = ?", old.ID).Count(&count)
	if count != 0 {
		t.Fatalf("old mount should be deleted")
	}
	db.Model(&station.Mount{}).Where("id = ?", fresh.ID).Count(&count)
	if count != 1 {
		t.Fatalf("new mount should be inserted")
	}
	if !u.IsManaged(ctx, fresh) {
		t.Fatalf("inserted mount should be managed after commit")
	}
}

func TestRemoveDropsPendingInsert(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "gamma", false)

	rec := &recordingListener{}
	u := New(db, WithListener(rec))
	m := station.NewMount(st, "/tmp.mp3")
	if err := u.Persist(ctx, m); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := u.Remove(ctx, m); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("empty plan should not reach listeners")
	}
}

func TestRestageFoldsChangeIntoSameCommit(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "delta", false)
	seeded := testutil.SeedMount(t, db, st, "/a.mp3")

	var m station.Mount
	rec := &recordingListener{}
	rec.fn = func(ev *FlushEvent) error {
		m.Station.MarkNeedsRestart()
		if err := ev.Stager.Restage(m.Station); err != nil {
			return err
		}
		// a second restage of the same station keeps a single plan entry
		if err := ev.Stager.Restage(m.Station); err != nil {
			return err
		}
		if got := len(ev.Batch.Updates()); got != 2 {
			t.Errorf("plan updates after restage: want=2 got=%d", got)
		}
		cs := ev.Batch.ChangeSet(m.Station)
		if _, ok := cs["needs_restart"]; !ok || len(cs) != 1 {
			t.Errorf("station change set: %+v", cs)
		}
		return nil
	}
	u := New(db, WithListener(rec))
	if err := u.Load(ctx, &m, seeded.ID, "Station"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.AutoDJBitrate = 192
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("listeners must run once per flush, got %d", rec.calls)
	}

	var reloaded station.Station
	if err := db.First(&reloaded, "id = ?", st.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.NeedsRestart {
		t.Fatalf("needs_restart not persisted")
	}
}

func TestRestageMergesSecondCopy(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "eta", false)

	var loaded station.Station
	var other station.Station
	rec := &recordingListener{}
	rec.fn = func(ev *FlushEvent) error {
		other.MarkNeedsRestart()
		if err := ev.Stager.Restage(&other); err != nil {
			return err
		}
		if got := len(ev.Batch.Updates()); got != 1 {
			t.Errorf("plan updates after restage: want=1 got=%d", got)
		}
		cs := ev.Batch.ChangeSet(&loaded)
		if _, ok := cs["name"]; !ok {
			t.Errorf("rename dropped from change set: %+v", cs)
		}
		if _, ok := cs["needs_restart"]; !ok {
			t.Errorf("flag missing from change set: %+v", cs)
		}
		return nil
	}
	u := New(db, WithListener(rec))
	if err := u.Load(ctx, &loaded, st.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := db.First(&other, "id = ?", st.ID).Error; err != nil {
		t.Fatalf("second copy: %v", err)
	}
	loaded.Name = "Renamed"
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if !loaded.NeedsRestart {
		t.Fatalf("managed instance should carry the restaged flag")
	}
	var reloaded station.Station
	if err := db.First(&reloaded, "id = ?", st.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Name != "Renamed" || !reloaded.NeedsRestart {
		t.Fatalf("want name=Renamed needs_restart=true, got name=%q needs_restart=%v", reloaded.Name, reloaded.NeedsRestart)
	}
}

func TestLoadReusesManagedInstances(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "theta", false)
	seeded := testutil.SeedMount(t, db, st, "/t.mp3")

	u := New(db)
	var loaded station.Station
	if err := u.Load(ctx, &loaded, st.ID, "Mounts"); err != nil {
		t.Fatalf("Load station: %v", err)
	}
	if len(loaded.Mounts) != 1 || loaded.Mounts[0].Station != &loaded {
		t.Fatalf("has-many children should point back at the loaded station")
	}

	var m station.Mount
	if err := u.Load(ctx, &m, seeded.ID, "Station"); err != nil {
		t.Fatalf("Load mount: %v", err)
	}
	if m.Station != &loaded {
		t.Fatalf("preloaded station should be the managed instance")
	}
}

func TestRestageWithoutChangesDropsPlannedUpdate(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "epsilon", false)

	var loaded station.Station
	rec := &recordingListener{}
	rec.fn = func(ev *FlushEvent) error {
		loaded.Name = "epsilon"
		if err := ev.Stager.Restage(&loaded); err != nil {
			return err
		}
		if n := len(ev.Batch.Updates()); n != 0 {
			t.Errorf("reverted station should leave the plan, got %d updates", n)
		}
		return nil
	}
	u := New(db, WithListener(rec))
	if err := u.Load(ctx, &loaded, st.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded.Name = "renamed"
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestRestageUnmanagedEntity(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "zeta", false)
	seeded := testutil.SeedMount(t, db, st, "/z.mp3")

	stray := &station.Station{ID: uuid.New(), Name: "stray", ShortName: "stray"}
	rec := &recordingListener{fn: func(ev *FlushEvent) error {
		return ev.Stager.Restage(stray)
	}}
	u := New(db, WithListener(rec))
	var m station.Mount
	if err := u.Load(ctx, &m, seeded.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.Name = "/zz.mp3"
	err := u.Flush(ctx)
	if !errors.Is(err, ErrNotManaged) {
		t.Fatalf("expected ErrNotManaged, got %v", err)
	}
}

func TestListenerErrorAbortsCommit(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "eta", false)
	seeded := testutil.SeedMount(t, db, st, "/keep.mp3")

	boom := errors.New("boom")
	committed := false
	rec := &recordingListener{fn: func(ev *FlushEvent) error {
		ev.AfterCommit(func(context.Context) { committed = true })
		return boom
	}}
	u := New(db, WithListener(rec))
	var m station.Mount
	if err := u.Load(ctx, &m, seeded.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.Name = "/lost.mp3"
	if err := u.Flush(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected listener error, got %v", err)
	}
	if committed {
		t.Fatalf("after-commit callback ran for an aborted flush")
	}
	var reloaded station.Mount
	if err := db.First(&reloaded, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Name != "/keep.mp3" {
		t.Fatalf("aborted flush leaked a write: %q", reloaded.Name)
	}
}

type failingRunner struct {
	err   error
	calls int
}

func (r *failingRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.calls++
	return r.err
}

func TestRunnerFailureKeepsChangesPending(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "theta", false)

	runner := &failingRunner{err: errors.New("begin failed")}
	u := New(db, WithRunner(runner))
	var loaded station.Station
	if err := u.Load(ctx, &loaded, st.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded.Name = "changed"
	if err := u.Flush(ctx); err == nil {
		t.Fatalf("expected runner error")
	}
	if runner.calls != 1 {
		t.Fatalf("runner calls: want=1 got=%d", runner.calls)
	}
	// the change stays pending for a retry
	runner.err = nil
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if runner.calls != 2 {
		t.Fatalf("retry should reach the runner again")
	}
}

func TestMutationsOrder(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	st := testutil.SeedStation(t, db, "iota", false)
	a := testutil.SeedMount(t, db, st, "/a.mp3")
	b := testutil.SeedMount(t, db, st, "/b.mp3")

	var ops []Op
	u := New(db, WithListener(ListenerFunc(func(ev *FlushEvent) error {
		for _, m := range Mutations(ev.Batch) {
			ops = append(ops, m.Op)
		}
		return nil
	})))
	var ma, mb station.Mount
	if err := u.Load(ctx, &ma, a.ID); err != nil {
		t.Fatalf("Load a: %v", err)
	}
	if err := u.Load(ctx, &mb, b.ID); err != nil {
		t.Fatalf("Load b: %v", err)
	}
	if err := u.Remove(ctx, &ma); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	mb.Name = "/b2.mp3"
	if err := u.Persist(ctx, station.NewMount(st, "/c.mp3")); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := u.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := []Op{OpInsert, OpUpdate, OpDelete}
	if len(ops) != len(want) {
		t.Fatalf("ops: want=%v got=%v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("ops: want=%v got=%v", want, ops)
		}
	}
}
