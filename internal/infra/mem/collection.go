package mem

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/small-engineer/go-todo-serv/internal/store"
)

type Collection[T any] struct {
	mu sync.RWMutex
	s  store.Schema[T]
	v  []T
}

func NewCollection[T any](s store.Schema[T]) *Collection[T] {
	return &Collection[T]{
		s: s,
	}
}

func (c *Collection[T]) match(v *T, f store.Filter) bool {
	vals := c.s.Values(v)
	for i, col := range c.s.Columns {
		want, ok := f[col]
		if !ok {
			continue
		}
		if store.Normalize(want) != store.Normalize(vals[i]) {
			return false
		}
	}
	return true
}

func (c *Collection[T]) FindOne(ctx context.Context, f store.Filter) (*T, error) {
	if _, err := store.Keys(c.s, f); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.v {
		if c.match(&c.v[i], f) {
			v := c.v[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (c *Collection[T]) Find(ctx context.Context, f store.Filter) ([]T, error) {
	if _, err := store.Keys(c.s, f); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []T{}
	for i := range c.v {
		if c.match(&c.v[i], f) {
			out = append(out, c.v[i])
		}
	}
	return out, nil
}

func (c *Collection[T]) Exists(ctx context.Context, f store.Filter) (bool, error) {
	v, err := c.FindOne(ctx, f)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// Insert enforces uniqueness of the primary key and of the schema's unique
// columns.
func (c *Collection[T]) Insert(ctx context.Context, v *T) error {
	if c.s.ID(v) == "" {
		c.s.SetID(v, uuid.NewString())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.v {
		if c.s.ID(&c.v[i]) == c.s.ID(v) || c.clashes(&c.v[i], v) {
			return store.ErrDuplicate
		}
	}
	c.v = append(c.v, *v)
	return nil
}

func (c *Collection[T]) clashes(a, b *T) bool {
	av, bv := c.s.Values(a), c.s.Values(b)
	for i, col := range c.s.Columns {
		if !c.s.IsUnique(col) {
			continue
		}
		if store.Normalize(av[i]) == store.Normalize(bv[i]) {
			return true
		}
	}
	return false
}

func (c *Collection[T]) Update(ctx context.Context, f store.Filter, set store.Fields) (store.UpdateResult, error) {
	if len(f) == 0 {
		return store.UpdateResult{}, errors.New("refusing to write without a filter")
	}
	ks, err := store.Keys(c.s, set)
	if err != nil {
		return store.UpdateResult{}, err
	}
	if len(ks) == 0 {
		return store.UpdateResult{}, errors.New("empty update")
	}
	if _, err := store.Keys(c.s, f); err != nil {
		return store.UpdateResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for i := range c.v {
		if !c.match(&c.v[i], f) {
			continue
		}
		nv := c.v[i]
		for _, k := range ks {
			if err := c.s.Set(&nv, k, set[k]); err != nil {
				return store.UpdateResult{}, err
			}
		}
		c.v[i] = nv
		n++
	}
	return store.UpdateResult{Acknowledged: true, Matched: n}, nil
}

func (c *Collection[T]) Delete(ctx context.Context, f store.Filter) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("refusing to write without a filter")
	}
	if _, err := store.Keys(c.s, f); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.v[:0]
	var n int64
	for i := range c.v {
		if c.match(&c.v[i], f) {
			n++
			continue
		}
		kept = append(kept, c.v[i])
	}
	c.v = kept
	return n, nil
}
