// Package cache keeps resolved users in Redis so the auth middleware can skip
// the credential store on repeat requests. Users are never updated or deleted,
// so entries only leave the cache through TTL expiry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

const (
	keyPrefix  = "user:"
	DefaultTTL = 15 * time.Minute
)

// entry mirrors domain.User including the digest, which domain.User hides
// from JSON.
type entry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func key(id domain.UserID) string {
	return keyPrefix + string(id)
}

func (c *UserCache) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	val, err := c.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key(id), err)
	}
	var e entry
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, fmt.Errorf("decode cached user %s: %w", id, err)
	}
	return &domain.User{
		ID:           domain.UserID(e.ID),
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
	}, nil
}

func (c *UserCache) Set(ctx context.Context, u *domain.User) error {
	b, err := json.Marshal(entry{
		ID:           string(u.ID),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	})
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key(u.ID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key(u.ID), err)
	}
	return nil
}
