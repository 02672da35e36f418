package uow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
)

var tracer = otel.Tracer("github.com/yungbote/stationhub-backend/internal/data/uow")

type plannedUpdate struct {
	m       *managed
	changes ChangeSet
}

// cycle is the write plan of one flush. It is the Batch and Stager handed to listeners.
type cycle struct {
	ctx     context.Context
	u       *UnitOfWork
	inserts []any
	updates []*plannedUpdate
	byKey   map[string]*plannedUpdate
	deletes []*managed
	staged  int
}

var (
	_ Batch  = (*cycle)(nil)
	_ Stager = (*cycle)(nil)
)

func (u *UnitOfWork) plan(ctx context.Context) *cycle {
	c := &cycle{
		ctx:     ctx,
		u:       u,
		inserts: append([]any(nil), u.inserts...),
		byKey:   map[string]*plannedUpdate{},
	}
	for _, key := range u.order {
		m := u.managed[key]
		if _, gone := u.deleteSet[key]; gone {
			continue
		}
		changes := diff(ctx, m)
		if len(changes) == 0 {
			continue
		}
		p := &plannedUpdate{m: m, changes: changes}
		c.updates = append(c.updates, p)
		c.byKey[key] = p
	}
	for _, key := range u.deletes {
		if m := u.managed[key]; m != nil {
			c.deletes = append(c.deletes, m)
		}
	}
	return c
}

func (c *cycle) empty() bool {
	return len(c.inserts) == 0 && len(c.updates) == 0 && len(c.deletes) == 0
}

func (c *cycle) Inserts() []any { return append([]any(nil), c.inserts...) }

func (c *cycle) Updates() []any {
	out := make([]any, 0, len(c.updates))
	for _, p := range c.updates {
		out = append(out, p.m.entity)
	}
	return out
}

func (c *cycle) Deletes() []any {
	out := make([]any, 0, len(c.deletes))
	for _, m := range c.deletes {
		out = append(out, m.entity)
	}
	return out
}

func (c *cycle) ChangeSet(entity any) ChangeSet {
	key, _, err := c.u.identify(c.ctx, entity)
	if err != nil || key == "" {
		return nil
	}
	p := c.byKey[key]
	if p == nil {
		return nil
	}
	out := make(ChangeSet, len(p.changes))
	for k, v := range p.changes {
		out[k] = v
	}
	return out
}

// Restage recomputes entity's change set and folds it into the write plan.
// When entity is another copy of a managed identity, its changed columns are copied onto
// the managed instance, which stays the one written. Pending inserts and deletes already
// carry the entity's final state.
func (c *cycle) Restage(entity any) error {
	if c.u.scheduledInsert(entity) {
		return nil
	}
	key, _, err := c.u.identify(c.ctx, entity)
	if err != nil {
		return err
	}
	m, ok := c.u.managed[key]
	if key == "" || !ok {
		return fmt.Errorf("restage %T: %w", entity, ErrNotManaged)
	}
	if _, gone := c.u.deleteSet[key]; gone {
		return nil
	}
	c.staged++
	if entity != m.entity {
		if err := merge(c.ctx, m, entity); err != nil {
			return err
		}
	}
	changes := diff(c.ctx, m)
	if p := c.byKey[key]; p != nil {
		if len(changes) == 0 {
			c.dropUpdate(key)
			return nil
		}
		p.changes = changes
		return nil
	}
	if len(changes) == 0 {
		return nil
	}
	p := &plannedUpdate{m: m, changes: changes}
	c.updates = append(c.updates, p)
	c.byKey[key] = p
	return nil
}

func (c *cycle) dropUpdate(key string) {
	delete(c.byKey, key)
	for i, p := range c.updates {
		if p.m.key == key {
			c.updates = append(c.updates[:i], c.updates[i+1:]...)
			return
		}
	}
}

func (c *cycle) execute(tx *gorm.DB) error {
	for _, e := range c.inserts {
		if err := tx.Omit(clause.Associations).Create(e).Error; err != nil {
			return fmt.Errorf("insert %T: %w", e, err)
		}
	}
	for _, p := range c.updates {
		values := rawValues(c.ctx, p.m, p.changes)
		if len(values) == 0 {
			continue
		}
		if err := tx.Model(p.m.entity).Omit(clause.Associations).Updates(values).Error; err != nil {
			return fmt.Errorf("update %s: %w", p.m.key, err)
		}
	}
	for _, m := range c.deletes {
		if err := tx.Delete(m.entity).Error; err != nil {
			return fmt.Errorf("delete %s: %w", m.key, err)
		}
	}
	return nil
}

// Flush writes every pending change in one transaction. Listeners run once, before any
// write, and may stage further changes; a listener error aborts the whole flush.
func (u *UnitOfWork) Flush(ctx context.Context) error {
	c := u.plan(ctx)
	if c.empty() {
		return nil
	}

	ctx, span := tracer.Start(ctx, "uow.flush")
	defer span.End()
	c.ctx = ctx

	var afterCommit []func(context.Context)
	err := u.runner.InTx(ctx, func(dbc dbctx.Context) error {
		tx := dbc.Tx
		if tx == nil {
			tx = u.db
		}
		tx = tx.WithContext(ctx)
		ev := &FlushEvent{Ctx: ctx, Tx: tx, Batch: c, Stager: c}
		for _, l := range u.listeners {
			if err := l.OnFlush(ev); err != nil {
				return err
			}
		}
		if err := c.execute(tx); err != nil {
			return err
		}
		afterCommit = ev.afterCommit
		return nil
	})
	span.SetAttributes(
		attribute.Int("uow.inserts", len(c.inserts)),
		attribute.Int("uow.updates", len(c.updates)),
		attribute.Int("uow.deletes", len(c.deletes)),
		attribute.Int("uow.restaged", c.staged),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if u.log != nil {
			u.log.Warn("flush aborted", "error", err)
		}
		return err
	}

	u.settle(ctx, c)
	if u.log != nil {
		u.log.Debug("flush committed",
			"inserts", len(c.inserts),
			"updates", len(c.updates),
			"deletes", len(c.deletes),
		)
	}
	for _, fn := range afterCommit {
		fn(ctx)
	}
	return nil
}

// settle makes the committed state the new baseline.
func (u *UnitOfWork) settle(ctx context.Context, c *cycle) {
	for _, m := range c.deletes {
		delete(u.managed, m.key)
		delete(u.deleteSet, m.key)
	}
	u.deletes = nil
	if len(c.deletes) > 0 {
		kept := u.order[:0]
		for _, key := range u.order {
			if _, ok := u.managed[key]; ok {
				kept = append(kept, key)
			}
		}
		u.order = kept
	}
	for _, p := range c.updates {
		p.m.original = snapshot(ctx, p.m.schema, p.m.entity)
	}
	inserted := c.inserts
	u.inserts = nil
	for _, e := range inserted {
		_ = u.track(ctx, e)
	}
}
