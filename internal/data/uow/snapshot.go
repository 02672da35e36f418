package uow

import (
	"bytes"
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm/schema"
)

type managed struct {
	key      string
	entity   any
	schema   *schema.Schema
	original map[string]any
}

func (u *UnitOfWork) parse(entity any) (*schema.Schema, error) {
	if entity == nil {
		return nil, fmt.Errorf("uow: nil entity")
	}
	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("uow: entity %T must be a non-nil pointer", entity)
	}
	return schema.Parse(entity, u.cache, u.db.NamingStrategy)
}

// identify returns the identity key of entity, or "" when its primary key is unset.
func (u *UnitOfWork) identify(ctx context.Context, entity any) (string, *schema.Schema, error) {
	s, err := u.parse(entity)
	if err != nil {
		return "", nil, err
	}
	pk := s.PrioritizedPrimaryField
	if pk == nil {
		return "", s, fmt.Errorf("uow: %s has no primary key", s.Table)
	}
	v, zero := pk.ValueOf(ctx, reflect.Indirect(reflect.ValueOf(entity)))
	if zero {
		return "", s, nil
	}
	return s.Table + ":" + fmt.Sprint(v), s, nil
}

func snapshot(ctx context.Context, s *schema.Schema, entity any) map[string]any {
	rv := reflect.Indirect(reflect.ValueOf(entity))
	out := make(map[string]any, len(s.DBNames))
	for _, name := range s.DBNames {
		f := s.FieldsByDBName[name]
		if f == nil {
			continue
		}
		v, _ := f.ValueOf(ctx, rv)
		out[name] = normalize(v)
	}
	return out
}

// diff compares the current column values of m.entity with its snapshot.
func diff(ctx context.Context, m *managed) ChangeSet {
	current := snapshot(ctx, m.schema, m.entity)
	changes := ChangeSet{}
	for _, name := range m.schema.DBNames {
		if f := m.schema.FieldsByDBName[name]; f != nil && f.PrimaryKey {
			continue
		}
		oldV, newV := m.original[name], current[name]
		if equal(oldV, newV) {
			continue
		}
		changes[name] = FieldChange{Old: oldV, New: newV}
	}
	return changes
}

// merge copies the columns that differ between other and m's snapshot onto m.entity.
func merge(ctx context.Context, m *managed, other any) error {
	if reflect.TypeOf(other) != reflect.TypeOf(m.entity) {
		return fmt.Errorf("restage %T as %s: %w", other, m.key, ErrNotManaged)
	}
	dst := reflect.Indirect(reflect.ValueOf(m.entity))
	src := reflect.Indirect(reflect.ValueOf(other))
	current := snapshot(ctx, m.schema, other)
	for _, name := range m.schema.DBNames {
		f := m.schema.FieldsByDBName[name]
		if f == nil || f.PrimaryKey || equal(m.original[name], current[name]) {
			continue
		}
		f.ReflectValueOf(ctx, dst).Set(f.ReflectValueOf(ctx, src))
	}
	return nil
}

// rawValues returns the live field values for the given columns, for use in an UPDATE.
func rawValues(ctx context.Context, m *managed, changes ChangeSet) map[string]any {
	rv := reflect.Indirect(reflect.ValueOf(m.entity))
	out := make(map[string]any, len(changes))
	for name := range changes {
		f := m.schema.FieldsByDBName[name]
		if f == nil {
			continue
		}
		v, _ := f.ValueOf(ctx, rv)
		out[name] = v
	}
	return out
}

// normalize detaches a column value from the entity so later in-place edits are visible.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case []byte:
		return append([]byte(nil), t...)
	case driver.Valuer:
		if dv, err := t.Value(); err == nil {
			return normalize(dv)
		}
	}
	if rv.Kind() == reflect.Pointer {
		return normalize(rv.Elem().Interface())
	}
	return v
}

func equal(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []byte:
		switch bv := b.(type) {
		case []byte:
			return bytes.Equal(av, bv)
		case string:
			return string(av) == bv
		}
		return false
	case string:
		if bv, ok := b.([]byte); ok {
			return av == string(bv)
		}
	}
	return reflect.DeepEqual(a, b)
}
