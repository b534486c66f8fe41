package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
)

// historyGateway serves canned summary pages and records the queries it
// was asked for.
type historyGateway struct {
	*fakeOrderGateway

	mu      sync.Mutex
	pages   map[int][]domain.Summary
	last    int
	queries []domain.ListQuery
}

func newHistoryGateway(pages map[int][]domain.Summary) *historyGateway {
	last := 0
	for page := range pages {
		if page > last {
			last = page
		}
	}
	return &historyGateway{fakeOrderGateway: newFakeOrderGateway(), pages: pages, last: last}
}

func (g *historyGateway) List(_ context.Context, query domain.ListQuery, page int) (pagination.Page[domain.Summary], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, query)
	return pagination.Page[domain.Summary]{
		Data:        g.pages[page],
		CurrentPage: page,
		LastPage:    g.last,
	}, nil
}

func (g *historyGateway) seenQueries() []domain.ListQuery {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.ListQuery(nil), g.queries...)
}

func summaries(ids ...int64) []domain.Summary {
	out := make([]domain.Summary, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Summary{ID: id, DispatchDate: fmt.Sprintf("2026-09-%02d", id), Status: domain.StatusPending})
	}
	return out
}

func TestHistoryLoadAndLoadMoreAppend(t *testing.T) {
	gateway := newHistoryGateway(map[int][]domain.Summary{
		1: summaries(1, 2),
		2: summaries(3),
	})
	history := NewHistory(gateway)
	defer history.Close()
	ctx := context.Background()

	history.Load(ctx)
	require.Len(t, history.Orders(), 2)
	require.True(t, history.HasMore())

	history.LoadMore(ctx)
	require.Len(t, history.Orders(), 3)
	require.False(t, history.HasMore())

	// No further pages: LoadMore is a no-op.
	history.LoadMore(ctx)
	require.Len(t, history.Orders(), 3)
}

func TestHistorySetFiltersRestartsFeed(t *testing.T) {
	gateway := newHistoryGateway(map[int][]domain.Summary{1: summaries(1, 2)})
	history := NewHistory(gateway)
	defer history.Close()
	ctx := context.Background()

	history.Load(ctx)
	require.Len(t, history.Orders(), 2)

	query := domain.ListQuery{Status: domain.StatusProcessed}
	history.SetFilters(ctx, query)
	seen := gateway.seenQueries()
	require.Len(t, seen, 2)
	require.Equal(t, query, seen[1])

	// Re-applying the same filters does not refetch.
	history.SetFilters(ctx, query)
	require.Len(t, gateway.seenQueries(), 2)
}

func TestHistoryGetSurfacesErrors(t *testing.T) {
	gateway := newHistoryGateway(map[int][]domain.Summary{})
	recorder := notify.NewRecorder()
	history := NewHistory(gateway, WithHistoryNotifier(recorder))
	defer history.Close()

	_, err := history.Get(context.Background(), 404)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.NotEmpty(t, recorder.All())
}
