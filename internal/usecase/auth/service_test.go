package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/small-engineer/go-todo-serv/internal/domain"
	"github.com/small-engineer/go-todo-serv/internal/infra/mem"
	"github.com/small-engineer/go-todo-serv/internal/store"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T, opts ...Option) (*Service, *mem.Collection[domain.User]) {
	t.Helper()
	users := mem.NewCollection(store.Users)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewService(users, newTestTokens(t, "secret"), opts...), users
}

// dupOnInsert reports a unique key violation on every insert, as a store
// does when a concurrent registration wins the race.
type dupOnInsert struct {
	store.Collection[domain.User]
}

func (dupOnInsert) Insert(ctx context.Context, u *domain.User) error {
	return store.ErrDuplicate
}

type notifier struct {
	got chan *domain.User
	err error
}

func (n *notifier) Registered(ctx context.Context, u *domain.User) error {
	n.got <- u
	return n.err
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s, users := newTestService(t)

	u, err := s.Register(ctx, "Ana", "a@x.com", "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	stored, err := users.FindOne(ctx, store.Filter{store.ColEmail: "a@x.com"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ana", stored.Name)
	assert.NotEqual(t, "p1", stored.PasswordHash)
	assert.Equal(t, hashPassword("p1"), stored.PasswordHash)
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	_, err := s.Register(ctx, "Ana", "a@x.com", "p1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		email string
		want  error
		kind  error
	}{
		{name: "missing email", email: "", want: ErrEmailRequired, kind: domain.ErrValidation},
		{name: "duplicate email", email: "a@x.com", want: ErrEmailExists, kind: domain.ErrConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, "B", tc.email, "p2")
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestRegister_ExactEmail(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	first, err := s.Register(ctx, "Ana", "a@x.com", "p1")
	require.NoError(t, err)

	for _, email := range []string{" a@x.com ", "A@x.com", "a@X.COM", "   "} {
		t.Run(email, func(t *testing.T) {
			u, err := s.Register(ctx, "B", email, "p2")
			require.NoError(t, err)
			assert.NotEqual(t, first.ID, u.ID)
			assert.Equal(t, email, u.Email)

			tok, err := s.Login(ctx, email, "p2")
			require.NoError(t, err)
			cl, err := s.tokens.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, string(u.ID), cl.ID)
		})
	}
}

func TestLogin_ExactEmail(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	_, err := s.Register(ctx, "Ana", "a@x.com", "p1")
	require.NoError(t, err)

	for _, email := range []string{"  a@x.com", "a@x.com ", "A@X.COM"} {
		t.Run(email, func(t *testing.T) {
			tok, err := s.Login(ctx, email, "p1")
			assert.ErrorIs(t, err, ErrUserNotFound)
			assert.Empty(t, tok)
		})
	}
}

func TestRegister_NoPassword(t *testing.T) {
	ctx := context.Background()
	s, users := newTestService(t)

	_, err := s.Register(ctx, "", "nopass@x.com", "")
	require.NoError(t, err)

	stored, err := users.FindOne(ctx, store.Filter{store.ColEmail: "nopass@x.com"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_StoreDuplicate(t *testing.T) {
	users := dupOnInsert{mem.NewCollection(store.Users)}
	s := NewService(users, newTestTokens(t, "secret"), WithLogger(quietLogger()))

	_, err := s.Register(context.Background(), "Ana", "a@x.com", "p1")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_Notifies(t *testing.T) {
	n := &notifier{got: make(chan *domain.User, 1), err: errors.New("smtp down")}
	s, _ := newTestService(t, WithNotifier(n))

	u, err := s.Register(context.Background(), "Ana", "a@x.com", "p1")
	require.NoError(t, err, "notification failures never fail registration")

	select {
	case got := <-n.got:
		assert.Equal(t, u.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	u, err := s.Register(ctx, "Ana", "a@x.com", "p1")
	require.NoError(t, err)

	tok, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	cl, err := s.tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, string(u.ID), cl.ID)

	tok, err = s.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, tok)

	_, err = s.Login(ctx, "nobody@x.com", "p1")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	u, err := s.Register(ctx, "Ana", "a@x.com", "p1")
	require.NoError(t, err)
	tok, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	got, err := s.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = s.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Authenticate(ctx, "junk")
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, err := s.tokens.Issue("ghost")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthenticate_UsesCache(t *testing.T) {
	ctx := context.Background()
	cache := mem.NewUserCache()
	s, _ := newTestService(t, WithCache(cache))

	u, err := s.Register(ctx, "Ana", "a@x.com", "p1")
	require.NoError(t, err)
	tok, err := s.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	cached, err := cache.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	_, err = s.Authenticate(ctx, tok)
	require.NoError(t, err)

	cached, err = cache.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, u.Email, cached.Email)

	// served from the cache once the store no longer has the user
	empty, _ := newTestService(t, WithCache(cache))
	empty.tokens = s.tokens
	got, err := empty.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}
