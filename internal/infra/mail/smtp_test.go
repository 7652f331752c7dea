package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

type sent struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestMailer(cfg Config, err error) (*Mailer, *[]sent) {
	var out []sent
	m := NewMailer(cfg)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		out = append(out, sent{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
		return err
	}
	return m, &out
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{Host: "smtp.example.com", Port: "587"}.Enabled())
	assert.True(t, Config{Host: "smtp.example.com", Port: "587", From: "no-reply@example.com"}.Enabled())
}

func TestRegistered(t *testing.T) {
	cfg := Config{Host: "smtp.example.com", Port: "587", User: "u", Pass: "p", From: "no-reply@example.com"}
	m, out := newTestMailer(cfg, nil)

	err := m.Registered(context.Background(), &domain.User{ID: "u1", Name: "Ana", Email: "a@x.com"})
	require.NoError(t, err)

	require.Len(t, *out, 1)
	got := (*out)[0]
	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.NotNil(t, got.auth)
	assert.Equal(t, "no-reply@example.com", got.from)
	assert.Equal(t, []string{"a@x.com"}, got.to)
	assert.Contains(t, got.msg, "To: a@x.com\r\n")
	assert.Contains(t, got.msg, "Subject: Welcome\r\n")
	assert.Contains(t, got.msg, "Hi Ana,")
}

func TestRegistered_NoAuthWithoutUser(t *testing.T) {
	m, out := newTestMailer(Config{Host: "localhost", Port: "25", From: "f@x.com"}, nil)

	require.NoError(t, m.Registered(context.Background(), &domain.User{Email: "a@x.com"}))
	require.Len(t, *out, 1)
	assert.Nil(t, (*out)[0].auth)
	assert.Contains(t, (*out)[0].msg, "Hi a@x.com,")
}

func TestRegistered_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	m, _ := newTestMailer(Config{Host: "localhost", Port: "25", From: "f@x.com"}, boom)

	err := m.Registered(context.Background(), &domain.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, out := newTestMailer(Config{Host: "localhost", Port: "25", From: "f@x.com"}, nil)
	err = m.Registered(ctx, &domain.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *out)
}
