package testutil

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
)

func TestHooksRecorderKeepsOrder(t *testing.T) {
	h := &HooksRecorder{}
	h.IncConflict("station.mount.add")
	h.ObserveOperation("station.mount.add", "conflict", time.Millisecond)
	h.ObserveOperation("station.update", "success", time.Millisecond)

	want := []HookEvent{
		{Kind: HookConflict, Op: "station.mount.add"},
		{Kind: HookObserve, Op: "station.mount.add", Status: "conflict"},
		{Kind: HookObserve, Op: "station.update", Status: "success"},
	}
	if got := h.Events(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events: got=%+v", got)
	}
	if got := h.Statuses(); !reflect.DeepEqual(got, []string{"conflict", "success"}) {
		t.Fatalf("statuses: got=%v", got)
	}
	if h.Count(HookRetry) != 0 || h.Count(HookConflict) != 1 {
		t.Fatalf("counts: retry=%d conflict=%d", h.Count(HookRetry), h.Count(HookConflict))
	}
}

func TestBrokenRunnerNeverRunsBody(t *testing.T) {
	boom := errors.New("connection reset")
	r := &BrokenRunner{Err: boom}
	err := r.InTx(context.Background(), func(dbctx.Context) error {
		t.Fatalf("body must not run")
		return nil
	})
	if !errors.Is(err, boom) || r.Attempts() != 1 {
		t.Fatalf("err=%v attempts=%d", err, r.Attempts())
	}
}

type fakeBatch struct {
	updates []any
	deletes []any
}

func (b fakeBatch) Inserts() []any              { return nil }
func (b fakeBatch) Updates() []any              { return b.updates }
func (b fakeBatch) Deletes() []any              { return b.deletes }
func (b fakeBatch) ChangeSet(any) uow.ChangeSet { return nil }

func TestFlushRecorderNamesMutations(t *testing.T) {
	fail := errors.New("veto")
	r := &FlushRecorder{Fail: fail}
	ev := &uow.FlushEvent{Batch: fakeBatch{
		updates: []any{&station.Station{}},
		deletes: []any{&station.Mount{}},
	}}
	if err := r.OnFlush(ev); !errors.Is(err, fail) {
		t.Fatalf("expected veto, got %v", err)
	}
	want := [][]string{{"update:Station", "delete:Mount"}}
	if got := r.Flushes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("flushes: got=%v", got)
	}
}
