package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
	"github.com/thirty33/foodshop-go/internal/shared/scroll"
)

// History drives the paginated order history list with its status,
// period, and search filters. Changing any filter restarts the feed at
// page 1.
type History struct {
	gateway  ports.Gateway
	notifier notify.Notifier

	mu    sync.Mutex
	query domain.ListQuery

	orders  *pagination.Paginator[domain.Summary]
	trigger *scroll.Trigger
}

// HistoryOption configures the history service.
type HistoryOption func(*History)

// WithHistoryNotifier routes fetch failures to the given notifier.
func WithHistoryNotifier(n notify.Notifier) HistoryOption {
	return func(h *History) {
		if n != nil {
			h.notifier = n
		}
	}
}

func NewHistory(gateway ports.Gateway, opts ...HistoryOption) *History {
	h := &History{
		gateway:  gateway,
		notifier: notify.Noop,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.orders = pagination.New(h.fetchPage, pagination.WithNotifier[domain.Summary](h.notifier))
	h.trigger = scroll.NewTrigger(func() { h.LoadMore(context.Background()) })
	return h
}

// Close tears down the scroll trigger.
func (h *History) Close() {
	h.trigger.Close()
}

// Load performs the initial fetch for the current filter set.
func (h *History) Load(ctx context.Context) {
	h.orders.Reset(h.triggerKey())
	h.orders.EnsureInitial(ctx)
	h.syncTrigger()
}

// LoadMore fetches the next page, if any.
func (h *History) LoadMore(ctx context.Context) {
	h.orders.LoadMore(ctx)
	h.syncTrigger()
}

// ObserveScroll feeds a viewport event into the list trigger.
func (h *History) ObserveScroll(m scroll.Metrics) {
	h.trigger.Observe(m)
}

// SetFilters replaces the filter set and restarts the feed when it
// actually changed.
func (h *History) SetFilters(ctx context.Context, query domain.ListQuery) {
	h.mu.Lock()
	if h.query == query {
		h.mu.Unlock()
		return
	}
	h.query = query
	h.mu.Unlock()
	h.orders.Reset(h.triggerKey())
	h.orders.EnsureInitial(ctx)
	h.syncTrigger()
}

// Orders returns the accumulated history rows.
func (h *History) Orders() []domain.Summary { return h.orders.Items() }

// HasMore reports whether the list has further pages.
func (h *History) HasMore() bool { return h.orders.HasMore() }

// Get loads one order's full detail for the history detail view.
func (h *History) Get(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := h.gateway.GetByID(ctx, id)
	if err != nil {
		h.notifier.Error(err.Error())
		return nil, err
	}
	return order, nil
}

func (h *History) fetchPage(ctx context.Context, page int) (pagination.Page[domain.Summary], error) {
	h.mu.Lock()
	query := h.query
	h.mu.Unlock()
	return h.gateway.List(ctx, query, page)
}

func (h *History) triggerKey() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fmt.Sprintf("orders|%s|%s|%s|%s", h.query.Status, h.query.TimePeriod, h.query.Search, h.query.DelegateUser)
}

func (h *History) syncTrigger() {
	h.trigger.SetActive(h.orders.HasMore() && !h.orders.IsLoading())
}
