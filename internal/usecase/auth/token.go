package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens carrying a user id. Tokens do not
// expire.
type Tokens struct {
	key []byte
	now func() time.Time
}

func NewTokens(key []byte) (*Tokens, error) {
	if len(key) == 0 {
		return nil, errors.New("token key is empty")
	}
	return &Tokens{
		key: key,
		now: time.Now,
	}, nil
}

func (t *Tokens) Issue(id domain.UserID) (string, error) {
	cl := Claims{
		ID: string(id),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(t.now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	v, err := tok.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return v, nil
}

// Verify returns ErrInvalidToken for anything but a well-formed token signed
// with this key.
func (t *Tokens) Verify(tok string) (*Claims, error) {
	p, err := jwt.ParseWithClaims(tok, &Claims{}, func(tk *jwt.Token) (interface{}, error) {
		if tk.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Method.Alg())
		}
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	cl, ok := p.Claims.(*Claims)
	if !ok || !p.Valid || cl.ID == "" {
		return nil, ErrInvalidToken
	}
	return cl, nil
}
