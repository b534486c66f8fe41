// Package api adapts the foodshop HTTP client to the session gateway port.
package api

import (
	"context"
	"errors"

	foodshopclient "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	"github.com/thirty33/foodshop-go/internal/domains/session/domain"
	"github.com/thirty33/foodshop-go/internal/domains/session/ports"
)

var _ ports.Gateway = (*Gateway)(nil)

// Gateway calls the backend auth endpoints through the shared client.
type Gateway struct {
	client *foodshopclient.Client
}

func NewGateway(client *foodshopclient.Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("session gateway not configured")
	}
	resp, err := g.client.Login(ctx, foodshopclient.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &ports.Session{Token: resp.Token, User: toDomainUser(resp.User)}, nil
}

func (g *Gateway) Logout(ctx context.Context) error {
	if g == nil || g.client == nil {
		return errors.New("session gateway not configured")
	}
	return g.client.Logout(ctx)
}

func toDomainUser(data foodshopclient.UserData) domain.User {
	return domain.User{
		ID:         data.ID,
		Name:       data.Name,
		Email:      data.Email,
		Role:       domain.Role(data.Role),
		Permission: domain.Permission(data.Permission),
		IsMaster:   data.IsMaster,
	}
}
