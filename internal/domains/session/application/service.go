package application

import (
	"context"
	"errors"
	"sync"

	"github.com/thirty33/foodshop-go/internal/domains/session/domain"
	"github.com/thirty33/foodshop-go/internal/domains/session/ports"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
)

// Service owns the login/logout lifecycle and the resolved capability set.
type Service struct {
	gateway  ports.Gateway
	tokens   ports.TokenStore
	notifier notify.Notifier

	mu           sync.RWMutex
	user         domain.User
	capabilities domain.Capabilities
	active       bool
}

// Option configures the service.
type Option func(*Service)

// WithNotifier routes auth failures to the given notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func NewService(gateway ports.Gateway, tokens ports.TokenStore, opts ...Option) *Service {
	s := &Service{
		gateway:  gateway,
		tokens:   tokens,
		notifier: notify.Noop,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Login validates credentials locally, then exchanges them for a bearer
// token which is persisted for subsequent requests. Validation failures
// never reach the network.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := domain.ValidateCredentials(email, password); err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}
	session, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		s.notifier.Error(err.Error())
		return nil, err
	}
	if session == nil || session.Token == "" {
		err := errors.New("login succeeded without a token")
		s.notifier.Error(err.Error())
		return nil, err
	}
	if err := s.tokens.Save(ctx, session.Token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = session.User
	s.capabilities = domain.ResolveCapabilities(session.User)
	s.active = true
	s.mu.Unlock()
	user := session.User
	return &user, nil
}

// Logout invalidates the token server-side and clears it locally even
// when the backend call fails; a stale local token is worse than a
// failed revocation.
func (s *Service) Logout(ctx context.Context) error {
	err := s.gateway.Logout(ctx)
	if clearErr := s.tokens.Clear(ctx); clearErr != nil && err == nil {
		err = clearErr
	}
	s.mu.Lock()
	s.user = domain.User{}
	s.capabilities = domain.Capabilities{}
	s.active = false
	s.mu.Unlock()
	return err
}

// Expire drops the local session without calling the backend. The HTTP
// client's unauthorized hook lands here when a request returns 401.
func (s *Service) Expire(ctx context.Context) {
	_ = s.tokens.Clear(ctx)
	s.mu.Lock()
	s.user = domain.User{}
	s.capabilities = domain.Capabilities{}
	s.active = false
	s.mu.Unlock()
}

// CurrentUser returns the authenticated user, if any.
func (s *Service) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.active
}

// Capabilities returns the capability set resolved at login. The zero
// value (all disabled) is returned for anonymous callers.
func (s *Service) Capabilities() domain.Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capabilities
}

// Token exposes the stored bearer token for the HTTP client.
func (s *Service) Token() string {
	token, err := s.tokens.Load(context.Background())
	if err != nil {
		return ""
	}
	return token
}

var _ ports.Service = (*Service)(nil)
