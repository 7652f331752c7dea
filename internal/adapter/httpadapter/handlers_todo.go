package httpadapter

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

var errNoUser = errors.New("no user in request context")

type createTodoReq struct {
	Name string `json:"name"`
}

type updateTodoReq struct {
	Name      *string `json:"name"`
	Completed *bool   `json:"completed"`
}

func currentUser(r *http.Request) (*domain.User, error) {
	u, ok := UserFrom(r.Context())
	if !ok {
		return nil, errNoUser
	}
	return u, nil
}

func todoID(r *http.Request) domain.TodoID {
	return domain.TodoID(chi.URLParam(r, paramID))
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	var in createTodoReq
	if err := decode(w, r, &in); err != nil {
		return err
	}

	t, err := s.todos.Create(r.Context(), u.ID, domain.Todo{Name: in.Name})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, t)
	return nil
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	ts, err := s.todos.List(r.Context(), u.ID)
	if err != nil {
		return err
	}
	if ts == nil {
		ts = []domain.Todo{}
	}
	writeJSON(w, http.StatusOK, ts)
	return nil
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	t, err := s.todos.Get(r.Context(), u.ID, todoID(r))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, t)
	return nil
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	var in updateTodoReq
	if err := decode(w, r, &in); err != nil {
		return err
	}

	res, err := s.todos.Update(r.Context(), u.ID, todoID(r), domain.TodoPatch{
		Name:      in.Name,
		Completed: in.Completed,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := s.todos.Delete(r.Context(), u.ID, todoID(r)); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, message{Response: msgDeleted})
	return nil
}
