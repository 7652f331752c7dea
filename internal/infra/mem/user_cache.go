package mem

import (
	"context"
	"sync"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

type UserCache struct {
	mu sync.Mutex
	m  map[domain.UserID]domain.User
}

func NewUserCache() *UserCache {
	return &UserCache{
		m: make(map[domain.UserID]domain.User),
	}
}

func (c *UserCache) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	c.mu.Lock()
	u, ok := c.m[id]
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *UserCache) Set(ctx context.Context, u *domain.User) error {
	c.mu.Lock()
	c.m[u.ID] = *u
	c.mu.Unlock()
	return nil
}
