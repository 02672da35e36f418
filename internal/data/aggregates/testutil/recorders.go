// Package testutil holds recorders for aggregate tests.
package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/yungbote/stationhub-backend/internal/data/aggregates"
	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
)

type HookKind string

const (
	HookObserve  HookKind = "observe"
	HookConflict HookKind = "conflict"
	HookRetry    HookKind = "retry"
)

type HookEvent struct {
	Kind   HookKind
	Op     string
	Status string
}

// HooksRecorder keeps every aggregate hook call in arrival order.
type HooksRecorder struct {
	mu     sync.Mutex
	events []HookEvent
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, _ time.Duration) {
	h.add(HookEvent{Kind: HookObserve, Op: name, Status: status})
}

func (h *HooksRecorder) IncConflict(name string) { h.add(HookEvent{Kind: HookConflict, Op: name}) }
func (h *HooksRecorder) IncRetry(name string)    { h.add(HookEvent{Kind: HookRetry, Op: name}) }

func (h *HooksRecorder) add(ev HookEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *HooksRecorder) Events() []HookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HookEvent(nil), h.events...)
}

// Statuses returns the observed status of every finished write.
func (h *HooksRecorder) Statuses() []string {
	var out []string
	for _, ev := range h.Events() {
		if ev.Kind == HookObserve {
			out = append(out, ev.Status)
		}
	}
	return out
}

func (h *HooksRecorder) Count(kind HookKind) int {
	n := 0
	for _, ev := range h.Events() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// BrokenRunner refuses to open a transaction. The flush callback never runs.
type BrokenRunner struct {
	Err      error
	mu       sync.Mutex
	attempts int
}

var _ aggregates.TxRunner = (*BrokenRunner)(nil)

func (r *BrokenRunner) InTx(context.Context, func(dbctx.Context) error) error {
	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()
	return r.Err
}

func (r *BrokenRunner) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// FlushRecorder is a unit of work listener that remembers what each flush carried.
// Entries look like "update:Station" or "insert:Mount".
type FlushRecorder struct {
	// Fail, when set, aborts every flush after it has been recorded.
	Fail    error
	mu      sync.Mutex
	flushes [][]string
}

var _ uow.Listener = (*FlushRecorder)(nil)

func (r *FlushRecorder) OnFlush(ev *uow.FlushEvent) error {
	var seen []string
	for _, m := range uow.Mutations(ev.Batch) {
		seen = append(seen, fmt.Sprintf("%s:%s", m.Op, typeName(m.Entity)))
	}
	r.mu.Lock()
	r.flushes = append(r.flushes, seen)
	r.mu.Unlock()
	return r.Fail
}

func (r *FlushRecorder) Flushes() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.flushes...)
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "nil"
	}
	return t.Name()
}
