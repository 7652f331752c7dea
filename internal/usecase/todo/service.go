package todo

import (
	"context"

	"github.com/small-engineer/go-todo-serv/internal/domain"
	"github.com/small-engineer/go-todo-serv/internal/store"
)

var ErrNotFound = domain.NewError(domain.ErrNotFound, "Todo not found")

// Service scopes every operation to the todos owned by the given user.
type Service struct {
	todos store.Collection[domain.Todo]
}

func NewService(t store.Collection[domain.Todo]) *Service {
	return &Service{
		todos: t,
	}
}

func owned(owner domain.UserID, id domain.TodoID) store.Filter {
	return store.Filter{
		store.ColID:   string(id),
		store.ColUser: string(owner),
	}
}

// Create ignores any id, owner or completion state set on in.
func (s *Service) Create(ctx context.Context, owner domain.UserID, in domain.Todo) (*domain.Todo, error) {
	t := &domain.Todo{
		Name:      in.Name,
		Completed: false,
		User:      owner,
	}
	if err := s.todos.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, owner domain.UserID) ([]domain.Todo, error) {
	return s.todos.Find(ctx, store.Filter{store.ColUser: string(owner)})
}

func (s *Service) Get(ctx context.Context, owner domain.UserID, id domain.TodoID) (*domain.Todo, error) {
	t, err := s.todos.FindOne(ctx, owned(owner, id))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// Update writes only the fields set in p.
func (s *Service) Update(ctx context.Context, owner domain.UserID, id domain.TodoID, p domain.TodoPatch) (store.UpdateResult, error) {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return store.UpdateResult{}, err
	}
	if p.Empty() {
		return store.UpdateResult{Acknowledged: true, Matched: 1}, nil
	}

	set := store.Fields{}
	if p.Name != nil {
		set[store.ColName] = *p.Name
	}
	if p.Completed != nil {
		set[store.ColCompleted] = *p.Completed
	}
	return s.todos.Update(ctx, store.Filter{store.ColID: string(id)}, set)
}

func (s *Service) Delete(ctx context.Context, owner domain.UserID, id domain.TodoID) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	_, err := s.todos.Delete(ctx, store.Filter{store.ColID: string(id)})
	return err
}
