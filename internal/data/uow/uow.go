package uow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

var (
	// ErrNotManaged is returned when a change is staged for an entity the unit of work never loaded.
	ErrNotManaged = errors.New("uow: entity is not managed")
	// ErrNoIdentity is returned when an entity without a primary key must be identified.
	ErrNoIdentity = errors.New("uow: entity has no identity")
	// ErrNoDatabase is returned when a flush runs without a runner or a database.
	ErrNoDatabase = errors.New("uow: no database configured")
)

// Runner owns the transaction boundary a flush executes in.
type Runner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormRunner struct {
	db *gorm.DB
}

func (r gormRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r.db == nil {
		return ErrNoDatabase
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

type Option func(*UnitOfWork)

func WithRunner(r Runner) Option {
	return func(u *UnitOfWork) {
		if r != nil {
			u.runner = r
		}
	}
}

func WithListener(l Listener) Option {
	return func(u *UnitOfWork) {
		if l != nil {
			u.listeners = append(u.listeners, l)
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(u *UnitOfWork) {
		if log != nil {
			u.log = log.With("component", "UnitOfWork")
		}
	}
}

// UnitOfWork tracks loaded entities and schedules writes until Flush.
// It is not safe for concurrent use.
type UnitOfWork struct {
	db        *gorm.DB
	runner    Runner
	log       *logger.Logger
	listeners []Listener
	cache     *sync.Map

	managed   map[string]*managed
	order     []string
	inserts   []any
	deletes   []string
	deleteSet map[string]struct{}
}

var schemaCache sync.Map

func New(db *gorm.DB, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		db:        db,
		runner:    gormRunner{db: db},
		cache:     &schemaCache,
		managed:   map[string]*managed{},
		deleteSet: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Load fetches the row with the given id into dest and tracks it together with any
// preloaded associations.
func (u *UnitOfWork) Load(ctx context.Context, dest any, id any, preloads ...string) error {
	q := u.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where("id = ?", id).First(dest).Error; err != nil {
		return err
	}
	return u.trackGraph(ctx, dest)
}

// Track snapshots an entity loaded outside the unit of work. Tracking an identity that
// is already managed keeps the first instance and its snapshot.
func (u *UnitOfWork) Track(ctx context.Context, entity any) error {
	return u.trackGraph(ctx, entity)
}

// IsManaged reports whether entity's identity is tracked.
func (u *UnitOfWork) IsManaged(ctx context.Context, entity any) bool {
	key, _, err := u.identify(ctx, entity)
	if err != nil || key == "" {
		return false
	}
	_, ok := u.managed[key]
	return ok
}

// Persist schedules entity for insertion unless it is already managed or scheduled.
func (u *UnitOfWork) Persist(ctx context.Context, entity any) error {
	if u.scheduledInsert(entity) {
		return nil
	}
	key, _, err := u.identify(ctx, entity)
	if err != nil {
		return err
	}
	if key != "" {
		if _, ok := u.managed[key]; ok {
			return nil
		}
	}
	u.inserts = append(u.inserts, entity)
	return nil
}

// Remove schedules entity for deletion. A pending insert of the same instance is dropped instead.
func (u *UnitOfWork) Remove(ctx context.Context, entity any) error {
	for i, e := range u.inserts {
		if e == entity {
			u.inserts = append(u.inserts[:i], u.inserts[i+1:]...)
			return nil
		}
	}
	key, _, err := u.identify(ctx, entity)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("remove %T: %w", entity, ErrNoIdentity)
	}
	if _, ok := u.managed[key]; !ok {
		if err := u.track(ctx, entity); err != nil {
			return err
		}
	}
	if _, ok := u.deleteSet[key]; !ok {
		u.deleteSet[key] = struct{}{}
		u.deletes = append(u.deletes, key)
	}
	return nil
}

func (u *UnitOfWork) scheduledInsert(entity any) bool {
	for _, e := range u.inserts {
		if e == entity {
			return true
		}
	}
	return false
}

func (u *UnitOfWork) track(ctx context.Context, entity any) error {
	key, s, err := u.identify(ctx, entity)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("track %T: %w", entity, ErrNoIdentity)
	}
	if _, ok := u.managed[key]; ok {
		return nil
	}
	u.managed[key] = &managed{
		key:      key,
		entity:   entity,
		schema:   s,
		original: snapshot(ctx, s, entity),
	}
	u.order = append(u.order, key)
	return nil
}

// trackGraph tracks entity and every loaded association. Associations whose identity is
// already managed are repointed at the managed instance, and has-many children get their
// owner back-reference set.
func (u *UnitOfWork) trackGraph(ctx context.Context, entity any) error {
	key, s, err := u.identify(ctx, entity)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("track %T: %w", entity, ErrNoIdentity)
	}
	if _, ok := u.managed[key]; ok {
		return nil
	}
	if err := u.track(ctx, entity); err != nil {
		return err
	}
	rv := reflect.Indirect(reflect.ValueOf(entity))
	single := make([]*schema.Relationship, 0, len(s.Relationships.BelongsTo)+len(s.Relationships.HasOne))
	single = append(single, s.Relationships.BelongsTo...)
	single = append(single, s.Relationships.HasOne...)
	for _, rel := range single {
		if err := u.adopt(ctx, rel.Field.ReflectValueOf(ctx, rv)); err != nil {
			return err
		}
	}
	for _, rel := range s.Relationships.HasMany {
		children := rel.Field.ReflectValueOf(ctx, rv)
		if children.Kind() != reflect.Slice {
			continue
		}
		for i := 0; i < children.Len(); i++ {
			child := children.Index(i)
			if err := u.adopt(ctx, child); err != nil {
				return err
			}
			u.linkOwner(ctx, child, s, entity)
		}
	}
	return nil
}

// adopt tracks the association held in v. A pointer to an identity that is already
// managed is replaced with the managed instance.
func (u *UnitOfWork) adopt(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return nil
		}
		key, _, err := u.identify(ctx, v.Interface())
		if err != nil {
			return err
		}
		if m, ok := u.managed[key]; ok && key != "" {
			mv := reflect.ValueOf(m.entity)
			if v.CanSet() && mv.Type() == v.Type() {
				v.Set(mv)
			}
			return nil
		}
		return u.trackGraph(ctx, v.Interface())
	case reflect.Struct:
		if !v.CanAddr() {
			return nil
		}
		return u.trackGraph(ctx, v.Addr().Interface())
	}
	return nil
}

// linkOwner points an unset belongs-to field of child back at owner.
func (u *UnitOfWork) linkOwner(ctx context.Context, child reflect.Value, ownerSchema *schema.Schema, owner any) {
	if child.Kind() == reflect.Struct && child.CanAddr() {
		child = child.Addr()
	}
	if child.Kind() != reflect.Pointer || child.IsNil() {
		return
	}
	cs, err := u.parse(child.Interface())
	if err != nil {
		return
	}
	ov := reflect.ValueOf(owner)
	for _, rel := range cs.Relationships.BelongsTo {
		if rel.FieldSchema == nil || rel.FieldSchema.Table != ownerSchema.Table {
			continue
		}
		f := rel.Field.ReflectValueOf(ctx, child.Elem())
		if f.Kind() == reflect.Pointer && f.IsNil() && f.CanSet() && ov.Type() == f.Type() {
			f.Set(ov)
		}
	}
}
