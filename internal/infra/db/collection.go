package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/small-engineer/go-todo-serv/internal/store"
)

const mysqlDupEntry = 1062

var errNoFilter = errors.New("refusing to write without a filter")

type Collection[T any] struct {
	db *sql.DB
	s  store.Schema[T]
}

func NewCollection[T any](db *sql.DB, s store.Schema[T]) *Collection[T] {
	return &Collection[T]{
		db: db,
		s:  s,
	}
}

func (c *Collection[T]) where(f store.Filter) (string, []any, error) {
	ks, err := store.Keys(c.s, f)
	if err != nil {
		return "", nil, err
	}
	if len(ks) == 0 {
		return "", nil, nil
	}
	conds := make([]string, 0, len(ks))
	args := make([]any, 0, len(ks))
	for _, k := range ks {
		conds = append(conds, k+" = ?")
		args = append(args, store.Normalize(f[k]))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (c *Collection[T]) selectSQL() string {
	return "SELECT " + strings.Join(c.s.Columns, ", ") + " FROM " + c.s.Table
}

func (c *Collection[T]) FindOne(ctx context.Context, f store.Filter) (*T, error) {
	w, args, err := c.where(f)
	if err != nil {
		return nil, err
	}
	row := c.db.QueryRowContext(ctx, c.selectSQL()+w+" LIMIT 1", args...)
	var v T
	err = row.Scan(c.s.Targets(&v)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", c.s.Table, err)
	}
	return &v, nil
}

func (c *Collection[T]) Find(ctx context.Context, f store.Filter) ([]T, error) {
	w, args, err := c.where(f)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, c.selectSQL()+w, args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.s.Table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err := rows.Scan(c.s.Targets(&v)...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", c.s.Table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", c.s.Table, err)
	}
	return out, nil
}

func (c *Collection[T]) Exists(ctx context.Context, f store.Filter) (bool, error) {
	w, args, err := c.where(f)
	if err != nil {
		return false, err
	}
	var one int
	err = c.db.QueryRowContext(ctx, "SELECT 1 FROM "+c.s.Table+w+" LIMIT 1", args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists in %s: %w", c.s.Table, err)
	}
	return true, nil
}

func (c *Collection[T]) Insert(ctx context.Context, v *T) error {
	if c.s.ID(v) == "" {
		c.s.SetID(v, uuid.NewString())
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(c.s.Columns)), ", ")
	q := "INSERT INTO " + c.s.Table + " (" + strings.Join(c.s.Columns, ", ") + ") VALUES (" + ph + ")"
	_, err := c.db.ExecContext(ctx, q, c.s.Values(v)...)
	if isDuplicate(err) {
		return fmt.Errorf("insert into %s: %w", c.s.Table, store.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert into %s: %w", c.s.Table, err)
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, f store.Filter, set store.Fields) (store.UpdateResult, error) {
	if len(f) == 0 {
		return store.UpdateResult{}, errNoFilter
	}
	ks, err := store.Keys(c.s, set)
	if err != nil {
		return store.UpdateResult{}, err
	}
	if len(ks) == 0 {
		return store.UpdateResult{}, errors.New("empty update")
	}
	w, wargs, err := c.where(f)
	if err != nil {
		return store.UpdateResult{}, err
	}
	assigns := make([]string, 0, len(ks))
	args := make([]any, 0, len(ks)+len(wargs))
	for _, k := range ks {
		assigns = append(assigns, k+" = ?")
		args = append(args, store.Normalize(set[k]))
	}
	args = append(args, wargs...)

	res, err := c.db.ExecContext(ctx, "UPDATE "+c.s.Table+" SET "+strings.Join(assigns, ", ")+w, args...)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("update %s: %w", c.s.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("update %s: %w", c.s.Table, err)
	}
	return store.UpdateResult{Acknowledged: true, Matched: n}, nil
}

func (c *Collection[T]) Delete(ctx context.Context, f store.Filter) (int64, error) {
	if len(f) == 0 {
		return 0, errNoFilter
	}
	w, args, err := c.where(f)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, "DELETE FROM "+c.s.Table+w, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", c.s.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", c.s.Table, err)
	}
	return n, nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDupEntry
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
