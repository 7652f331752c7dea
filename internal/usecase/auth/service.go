package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/small-engineer/go-todo-serv/internal/domain"
	"github.com/small-engineer/go-todo-serv/internal/store"
)

var (
	ErrEmailRequired = domain.NewError(domain.ErrValidation, "Email is required")
	ErrEmailExists   = domain.NewError(domain.ErrConflict, "User already exists with this email")
	ErrUserNotFound  = domain.NewError(domain.ErrNotFound, "User not found")
	ErrWrongPassword = domain.NewError(domain.ErrUnauthorized, "Password is incorrect")
	ErrInvalidToken  = domain.NewError(domain.ErrUnauthenticated, "Token is invalid")
	ErrUnknownUser   = domain.NewError(domain.ErrUnauthenticated, "User not found")
)

const notifyTimeout = 30 * time.Second

// UserCache holds resolved users by id. Get returns nil, nil on a miss.
type UserCache interface {
	Get(ctx context.Context, id domain.UserID) (*domain.User, error)
	Set(ctx context.Context, u *domain.User) error
}

type Notifier interface {
	Registered(ctx context.Context, u *domain.User) error
}

type Option func(*Service)

func WithCache(c UserCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notify = n
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = l
	}
}

type Service struct {
	users  store.Collection[domain.User]
	tokens *Tokens
	cache  UserCache
	notify Notifier
	log    logrus.FieldLogger
}

func NewService(u store.Collection[domain.User], t *Tokens, opts ...Option) *Service {
	s := &Service{
		users:  u,
		tokens: t,
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register stores a new user. Emails are matched byte for byte, so padded or
// differently cased addresses are distinct accounts.
func (s *Service) Register(ctx context.Context, name, email, pass string) (*domain.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	ex, err := s.users.Exists(ctx, store.Filter{store.ColEmail: email})
	if err != nil {
		return nil, err
	}
	if ex {
		return nil, ErrEmailExists
	}

	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashPassword(pass),
	}
	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if s.notify != nil {
		go s.sendWelcome(context.WithoutCancel(ctx), u)
	}
	return u, nil
}

func (s *Service) sendWelcome(ctx context.Context, u *domain.User) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notify.Registered(ctx, u); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("welcome notification failed")
	}
}

func (s *Service) Login(ctx context.Context, email, pass string) (string, error) {
	u, err := s.users.FindOne(ctx, store.Filter{store.ColEmail: email})
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	if !samePassword(pass, u.PasswordHash) {
		return "", ErrWrongPassword
	}
	return s.tokens.Issue(u.ID)
}

// Authenticate resolves a token to the user it was issued for.
func (s *Service) Authenticate(ctx context.Context, tok string) (*domain.User, error) {
	if tok == "" {
		return nil, ErrInvalidToken
	}
	cl, err := s.tokens.Verify(tok)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, domain.UserID(cl.ID))
}

func (s *Service) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	if s.cache != nil {
		u, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.WithError(err).Warn("user cache read failed")
		}
		if u != nil {
			return u, nil
		}
	}

	u, err := s.users.FindOne(ctx, store.Filter{store.ColID: string(id)})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnknownUser
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, u); err != nil {
			s.log.WithError(err).Warn("user cache write failed")
		}
	}
	return u, nil
}
