package store

import (
	"fmt"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

const (
	ColID        = "id"
	ColName      = "name"
	ColEmail     = "email"
	ColPassword  = "password_hash"
	ColCompleted = "completed"
	ColUser      = "user_id"
)

var Users = Schema[domain.User]{
	Table:   "users",
	Columns: []string{ColID, ColName, ColEmail, ColPassword},
	Unique:  []string{ColEmail},
	Values: func(u *domain.User) []any {
		return []any{string(u.ID), u.Name, u.Email, u.PasswordHash}
	},
	Targets: func(u *domain.User) []any {
		return []any{&u.ID, &u.Name, &u.Email, &u.PasswordHash}
	},
	ID: func(u *domain.User) string {
		return string(u.ID)
	},
	SetID: func(u *domain.User, id string) {
		u.ID = domain.UserID(id)
	},
	Set: func(u *domain.User, col string, val any) error {
		switch col {
		case ColName:
			return assign(&u.Name, val)
		case ColEmail:
			return assign(&u.Email, val)
		case ColPassword:
			return assign(&u.PasswordHash, val)
		}
		return fmt.Errorf("%w: users.%s is not writable", ErrUnknownColumn, col)
	},
}

var Todos = Schema[domain.Todo]{
	Table:   "todos",
	Columns: []string{ColID, ColName, ColCompleted, ColUser},
	Values: func(t *domain.Todo) []any {
		return []any{string(t.ID), t.Name, t.Completed, string(t.User)}
	},
	Targets: func(t *domain.Todo) []any {
		return []any{&t.ID, &t.Name, &t.Completed, &t.User}
	},
	ID: func(t *domain.Todo) string {
		return string(t.ID)
	},
	SetID: func(t *domain.Todo, id string) {
		t.ID = domain.TodoID(id)
	},
	Set: func(t *domain.Todo, col string, val any) error {
		switch col {
		case ColName:
			return assign(&t.Name, val)
		case ColCompleted:
			return assign(&t.Completed, val)
		}
		return fmt.Errorf("%w: todos.%s is not writable", ErrUnknownColumn, col)
	},
}

func assign[V string | bool](dst *V, val any) error {
	v, ok := val.(V)
	if !ok {
		return fmt.Errorf("cannot assign %T to %T", val, *dst)
	}
	*dst = v
	return nil
}
