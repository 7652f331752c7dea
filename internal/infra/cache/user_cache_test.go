package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

func setupUserCacheTest(t *testing.T) (*UserCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	return NewUserCache(rdb, time.Minute), mr
}

func TestUserCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := setupUserCacheTest(t)

	u := &domain.User{ID: "u1", Name: "Ana", Email: "a@x.com", PasswordHash: "argon2id$h"}
	require.NoError(t, c.Set(ctx, u))

	assert.True(t, mr.Exists("user:u1"))
	assert.Equal(t, time.Minute, mr.TTL("user:u1"))

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *u, *got)
}

func TestUserCache_Miss(t *testing.T) {
	c, _ := setupUserCacheTest(t)

	got, err := c.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := setupUserCacheTest(t)

	require.NoError(t, c.Set(ctx, &domain.User{ID: "u1", Email: "a@x.com"}))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserCache_Corrupt(t *testing.T) {
	c, mr := setupUserCacheTest(t)
	require.NoError(t, mr.Set("user:u1", "{not json"))

	_, err := c.Get(context.Background(), "u1")
	assert.Error(t, err)
}

func TestNewUserCache_DefaultTTL(t *testing.T) {
	c := NewUserCache(nil, 0)
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "invalid://url")
	assert.Error(t, err)
}
