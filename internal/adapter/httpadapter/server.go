package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/small-engineer/go-todo-serv/internal/usecase/auth"
	"github.com/small-engineer/go-todo-serv/internal/usecase/todo"
)

const (
	paramID = "id"

	msgHome       = "Success"
	msgRegistered = "Registration successful"
	msgDeleted    = "Todo deleted"
)

type Server struct {
	auth      *auth.Service
	todos     *todo.Service
	log       logrus.FieldLogger
	mapStatus bool
}

type Option func(*Server)

// WithStatusMapping makes errors answer 400/401/404/409 by kind instead of a
// uniform 500.
func WithStatusMapping(on bool) Option {
	return func(s *Server) {
		s.mapStatus = on
	}
}

func NewServer(a *auth.Service, t *todo.Service, log logrus.FieldLogger, opts ...Option) *Server {
	s := &Server{
		auth:  a,
		todos: t,
		log:   log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Post("/users", s.handle(s.handleRegister))
	r.Post("/users/login", s.handle(s.handleLogin))

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.handle(s.handleHome))
		r.Route("/todos", func(r chi.Router) {
			r.Post("/", s.handle(s.handleCreateTodo))
			r.Get("/", s.handle(s.handleListTodos))
			r.Get("/{"+paramID+"}", s.handle(s.handleGetTodo))
			r.Put("/{"+paramID+"}", s.handle(s.handleUpdateTodo))
			r.Delete("/{"+paramID+"}", s.handle(s.handleDeleteTodo))
		})
	})
	return r
}
