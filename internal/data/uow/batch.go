package uow

import (
	"context"
	"sort"

	"gorm.io/gorm"
)

type Op int

const (
	OpInsert Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FieldChange describes one column change. Values are normalized driver values.
type FieldChange struct {
	Old any
	New any
}

// ChangeSet maps column names to their change.
type ChangeSet map[string]FieldChange

// Fields returns the changed column names in lexical order.
func (c ChangeSet) Fields() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Mutation is one pending write. Changes is only set for OpUpdate.
type Mutation struct {
	Op      Op
	Entity  any
	Changes ChangeSet
}

// Batch is the read-only view of the writes pending in one flush.
type Batch interface {
	Inserts() []any
	Updates() []any
	Deletes() []any
	ChangeSet(entity any) ChangeSet
}

// Stager re-registers an in-memory change of a managed entity with the in-flight flush.
type Stager interface {
	Restage(entity any) error
}

// FlushEvent is handed to every listener once per flush, inside the commit transaction.
type FlushEvent struct {
	Ctx    context.Context
	Tx     *gorm.DB
	Batch  Batch
	Stager Stager

	afterCommit []func(ctx context.Context)
}

// AfterCommit registers fn to run once the flush transaction has committed.
// Nothing registered runs when the flush aborts.
func (e *FlushEvent) AfterCommit(fn func(ctx context.Context)) {
	if e == nil || fn == nil {
		return
	}
	e.afterCommit = append(e.afterCommit, fn)
}

type Listener interface {
	OnFlush(ev *FlushEvent) error
}

type ListenerFunc func(ev *FlushEvent) error

func (f ListenerFunc) OnFlush(ev *FlushEvent) error { return f(ev) }

// Mutations flattens a batch into insert, update, delete order.
func Mutations(b Batch) []Mutation {
	if b == nil {
		return nil
	}
	ins, upd, del := b.Inserts(), b.Updates(), b.Deletes()
	out := make([]Mutation, 0, len(ins)+len(upd)+len(del))
	for _, e := range ins {
		out = append(out, Mutation{Op: OpInsert, Entity: e})
	}
	for _, e := range upd {
		out = append(out, Mutation{Op: OpUpdate, Entity: e, Changes: b.ChangeSet(e)})
	}
	for _, e := range del {
		out = append(out, Mutation{Op: OpDelete, Entity: e})
	}
	return out
}
