// Package store defines the record collection contract shared by the SQL and
// in-memory backends, and the schemas of the records this service keeps.
package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	ErrDuplicate     = errors.New("duplicate key")
	ErrUnknownColumn = errors.New("unknown column")
)

// Filter is an exact-match condition: every column must equal its value.
type Filter map[string]any

// Fields is the set of column assignments of an update.
type Fields map[string]any

type UpdateResult struct {
	Acknowledged bool  `json:"acknowledged"`
	Matched      int64 `json:"matched"`
}

// Collection is a store of records of one shape. FindOne returns nil, nil when
// nothing matches.
type Collection[T any] interface {
	FindOne(ctx context.Context, f Filter) (*T, error)
	Find(ctx context.Context, f Filter) ([]T, error)
	Exists(ctx context.Context, f Filter) (bool, error)
	Insert(ctx context.Context, v *T) error
	Update(ctx context.Context, f Filter, set Fields) (UpdateResult, error)
	Delete(ctx context.Context, f Filter) (int64, error)
}

// Schema maps a record type onto a table. Columns[0] is the primary key and
// is assigned by the store on insert when empty.
type Schema[T any] struct {
	Table   string
	Columns []string
	Unique  []string
	Values  func(v *T) []any
	Targets func(v *T) []any
	ID      func(v *T) string
	SetID   func(v *T, id string)
	Set     func(v *T, col string, val any) error
}

func (s Schema[T]) Has(col string) bool {
	return slices.Contains(s.Columns, col)
}

func (s Schema[T]) IsUnique(col string) bool {
	return slices.Contains(s.Unique, col)
}

// Keys returns the columns of m in a stable order, failing on any column the
// schema does not know.
func Keys[M ~map[string]any, T any](s Schema[T], m M) ([]string, error) {
	ks := slices.Sorted(maps.Keys(m))
	for _, k := range ks {
		if !s.Has(k) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Table, k)
		}
	}
	return ks, nil
}

// Normalize converts a Go value to its driver form, so named string types
// compare equal to plain strings.
func Normalize(v any) any {
	nv, err := driver.DefaultParameterConverter.ConvertValue(v)
	if err != nil {
		return v
	}
	return nv
}
