package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/thirty33/foodshop-go/internal/domains/catalog/domain"
	"github.com/thirty33/foodshop-go/internal/domains/catalog/ports"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
	"github.com/thirty33/foodshop-go/internal/shared/scroll"
)

// Service drives the menu and category feeds: client-side pagination,
// scroll-triggered loading, and the exclusive group filter.
type Service struct {
	gateway  ports.Gateway
	notifier notify.Notifier

	mu           sync.Mutex
	delegateUser string
	menuID       int64
	activeFilter string
	groups       []domain.Group

	menus      *pagination.Paginator[domain.Menu]
	categories *pagination.Paginator[domain.Category]

	menusTrigger      *scroll.Trigger
	categoriesTrigger *scroll.Trigger
}

// Option configures the service.
type Option func(*Service)

// WithNotifier routes fetch failures to the given notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func NewService(gateway ports.Gateway, opts ...Option) *Service {
	s := &Service{
		gateway:  gateway,
		notifier: notify.Noop,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.menus = pagination.New(s.fetchMenus, pagination.WithNotifier[domain.Menu](s.notifier))
	s.categories = pagination.New(s.fetchCategories, pagination.WithNotifier[domain.Category](s.notifier))
	s.menusTrigger = scroll.NewTrigger(func() { s.LoadMoreMenus(context.Background()) })
	s.categoriesTrigger = scroll.NewTrigger(func() { s.LoadMoreCategories(context.Background()) })
	return s
}

// Close tears down the scroll triggers.
func (s *Service) Close() {
	s.menusTrigger.Close()
	s.categoriesTrigger.Close()
}

// SetDelegation switches the impersonation target, restarting both feeds.
func (s *Service) SetDelegation(delegateUser string) {
	s.mu.Lock()
	s.delegateUser = delegateUser
	s.mu.Unlock()
	s.menus.Reset(s.menusTriggerKey())
	s.categories.Reset(s.categoriesTriggerKey())
}

// LoadMenus performs the initial menu fetch for the current session.
func (s *Service) LoadMenus(ctx context.Context) {
	s.menus.Reset(s.menusTriggerKey())
	s.menus.EnsureInitial(ctx)
	s.syncTriggers()
}

// LoadMoreMenus fetches the next menu page, if any.
func (s *Service) LoadMoreMenus(ctx context.Context) {
	s.menus.LoadMore(ctx)
	s.syncTriggers()
}

// ObserveMenusScroll feeds a viewport event into the menu feed trigger.
func (s *Service) ObserveMenusScroll(m scroll.Metrics) {
	s.menusTrigger.Observe(m)
}

// UseMenu selects a menu, clears any group filter, and loads the first
// category page plus the available groups.
func (s *Service) UseMenu(ctx context.Context, menuID int64) {
	s.mu.Lock()
	s.menuID = menuID
	s.activeFilter = ""
	s.groups = nil
	s.mu.Unlock()

	groups, err := s.gateway.FetchGroups(ctx, menuID)
	if err != nil {
		s.notifier.Error(err.Error())
	} else {
		s.mu.Lock()
		s.groups = groups
		s.mu.Unlock()
	}

	s.categories.Reset(s.categoriesTriggerKey())
	s.categories.EnsureInitial(ctx)
	s.syncTriggers()
}

// SelectGroup activates one named group filter, replacing any previous
// selection and restarting the category feed.
func (s *Service) SelectGroup(ctx context.Context, name string) {
	s.mu.Lock()
	if s.activeFilter == name {
		s.mu.Unlock()
		return
	}
	s.activeFilter = name
	s.mu.Unlock()
	s.categories.Reset(s.categoriesTriggerKey())
	s.categories.EnsureInitial(ctx)
	s.syncTriggers()
}

// ClearGroup removes the active group filter.
func (s *Service) ClearGroup(ctx context.Context) {
	s.mu.Lock()
	if s.activeFilter == "" {
		s.mu.Unlock()
		return
	}
	s.activeFilter = ""
	s.mu.Unlock()
	s.categories.Reset(s.categoriesTriggerKey())
	s.categories.EnsureInitial(ctx)
	s.syncTriggers()
}

// LoadMoreCategories fetches the next category page, if any.
func (s *Service) LoadMoreCategories(ctx context.Context) {
	s.categories.LoadMore(ctx)
	s.syncTriggers()
}

// ObserveCategoriesScroll feeds a viewport event into the category trigger.
func (s *Service) ObserveCategoriesScroll(m scroll.Metrics) {
	s.categoriesTrigger.Observe(m)
}

// Menus returns the accumulated menu feed.
func (s *Service) Menus() []domain.Menu { return s.menus.Items() }

// Categories returns the accumulated category feed.
func (s *Service) Categories() []domain.Category { return s.categories.Items() }

// Groups returns the group filters for the selected menu.
func (s *Service) Groups() []domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// ActiveGroup returns the selected group name, empty when none.
func (s *Service) ActiveGroup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeFilter
}

// HasMoreMenus reports whether the menu feed has further pages.
func (s *Service) HasMoreMenus() bool { return s.menus.HasMore() }

// HasMoreCategories reports whether the category feed has further pages.
func (s *Service) HasMoreCategories() bool { return s.categories.HasMore() }

// MarkMenuOrdered flips the cached has_order flag after an order is
// confirmed, avoiding a full feed reload.
func (s *Service) MarkMenuOrdered(menuID int64) {
	s.menus.Patch(func(m *domain.Menu) {
		if m.ID == menuID {
			m.HasOrder = true
		}
	})
}

func (s *Service) fetchMenus(ctx context.Context, page int) (pagination.Page[domain.Menu], error) {
	s.mu.Lock()
	delegate := s.delegateUser
	s.mu.Unlock()
	return s.gateway.FetchMenus(ctx, page, delegate)
}

func (s *Service) fetchCategories(ctx context.Context, page int) (pagination.Page[domain.Category], error) {
	s.mu.Lock()
	menuID := s.menuID
	filter := s.activeFilter
	delegate := s.delegateUser
	s.mu.Unlock()
	return s.gateway.FetchCategories(ctx, menuID, page, filter, delegate)
}

func (s *Service) menusTriggerKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return "menus|" + s.delegateUser
}

func (s *Service) categoriesTriggerKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("categories|%d|%s|%s", s.menuID, s.activeFilter, s.delegateUser)
}

// syncTriggers keeps both scroll triggers gated on hasMore && !isLoading.
func (s *Service) syncTriggers() {
	s.menusTrigger.SetActive(s.menus.HasMore() && !s.menus.IsLoading())
	s.categoriesTrigger.SetActive(s.categories.HasMore() && !s.categories.IsLoading())
}
