package ports

import (
	"context"
	"errors"

	"github.com/thirty33/foodshop-go/internal/domains/session/domain"
)

var ErrNoSession = errors.New("no active session")

// Session is an issued token bound to its user profile.
type Session struct {
	Token string
	User  domain.User
}

// Gateway calls the backend auth endpoints.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context) error
}

// TokenStore persists the bearer token between requests.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Service exposes session use cases to the UI layers.
type Service interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	CurrentUser() (domain.User, bool)
	Capabilities() domain.Capabilities
	Token() string
}
