package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thirty33/foodshop-go/internal/shared/notify"
)

// pagedFetch serves pages out of a fixed dataset and counts calls.
func pagedFetch(items []string, perPage int, calls *int) FetchFunc[string] {
	lastPage := (len(items) + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	return func(_ context.Context, page int) (Page[string], error) {
		*calls++
		start := (page - 1) * perPage
		end := start + perPage
		if start > len(items) {
			start = len(items)
		}
		if end > len(items) {
			end = len(items)
		}
		return Page[string]{Data: items[start:end], CurrentPage: page, LastPage: lastPage}, nil
	}
}

func TestEnsureInitial_FetchesOnce(t *testing.T) {
	calls := 0
	p := New(pagedFetch([]string{"a", "b", "c"}, 2, &calls))

	p.EnsureInitial(context.Background())
	p.EnsureInitial(context.Background())

	require.Equal(t, 1, calls)
	require.Equal(t, []string{"a", "b"}, p.Items())
	require.True(t, p.HasMore())
}

func TestLoadMore_AppendsUntilBoundary(t *testing.T) {
	calls := 0
	p := New(pagedFetch([]string{"a", "b", "c", "d", "e"}, 2, &calls))

	p.EnsureInitial(context.Background())
	p.LoadMore(context.Background())
	p.LoadMore(context.Background())

	require.Equal(t, []string{"a", "b", "c", "d", "e"}, p.Items())
	require.False(t, p.HasMore())
	require.Equal(t, 3, p.CurrentPage())
	require.Equal(t, 3, p.LastPage())

	// At the boundary further calls must not hit the network.
	before := calls
	p.LoadMore(context.Background())
	p.LoadMore(context.Background())
	require.Equal(t, before, calls)
}

func TestHasMore_SinglePage(t *testing.T) {
	calls := 0
	p := New(pagedFetch([]string{"only"}, 10, &calls))

	p.EnsureInitial(context.Background())

	require.False(t, p.HasMore())
	p.LoadMore(context.Background())
	require.Equal(t, 1, calls)
}

func TestReset_ClearsItemsAndRefetchesPageOne(t *testing.T) {
	calls := 0
	menu := "menu-1"
	fetch := func(_ context.Context, page int) (Page[string], error) {
		calls++
		return Page[string]{Data: []string{fmt.Sprintf("%s/p%d", menu, page)}, CurrentPage: page, LastPage: 3}, nil
	}
	p := New(fetch)

	p.Reset("menu-1")
	p.EnsureInitial(context.Background())
	p.LoadMore(context.Background())
	require.Equal(t, []string{"menu-1/p1", "menu-1/p2"}, p.Items())

	menu = "menu-2"
	p.Reset("menu-2")
	require.Empty(t, p.Items())
	require.Equal(t, 1, p.CurrentPage())
	require.False(t, p.HasMore())

	p.EnsureInitial(context.Background())
	require.Equal(t, []string{"menu-2/p1"}, p.Items())
}

func TestReset_SameTriggerIsNoop(t *testing.T) {
	calls := 0
	p := New(pagedFetch([]string{"a", "b", "c"}, 2, &calls))

	p.Reset("menu-1")
	p.EnsureInitial(context.Background())
	p.Reset("menu-1")

	require.Equal(t, []string{"a", "b"}, p.Items())
	require.Equal(t, 1, calls)
}

func TestFetchError_KeepsItemsAndNotifies(t *testing.T) {
	recorder := notify.NewRecorder()
	calls := 0
	fetch := func(_ context.Context, page int) (Page[string], error) {
		calls++
		if page == 2 {
			return Page[string]{}, errors.New("timeout de red")
		}
		return Page[string]{Data: []string{"a"}, CurrentPage: page, LastPage: 2}, nil
	}
	p := New(fetch, WithNotifier[string](recorder))

	p.EnsureInitial(context.Background())
	p.LoadMore(context.Background())

	require.Equal(t, []string{"a"}, p.Items())
	require.False(t, p.IsLoading())
	errs := recorder.ByLevel(notify.LevelError)
	require.Len(t, errs, 1)
	require.Equal(t, "timeout de red", errs[0].Message)
}

func TestReset_DiscardsInFlightPageOne(t *testing.T) {
	// A reset racing a slow page-1 fetch must win: the stale response is
	// dropped instead of repopulating the cleared feed.
	var p *Paginator[string]
	fetch := func(_ context.Context, page int) (Page[string], error) {
		if page == 1 {
			p.Reset("next-menu")
		}
		return Page[string]{Data: []string{"stale"}, CurrentPage: page, LastPage: 5}, nil
	}
	p = New(fetch)
	p.Reset("first-menu")

	p.EnsureInitial(context.Background())

	require.Empty(t, p.Items())
	require.False(t, p.HasMore())
	require.False(t, p.IsLoading())
}

func TestPatch_UpdatesCachedItems(t *testing.T) {
	calls := 0
	p := New(pagedFetch([]string{"a", "b"}, 5, &calls))
	p.EnsureInitial(context.Background())

	p.Patch(func(s *string) {
		if *s == "b" {
			*s = "b*"
		}
	})

	require.Equal(t, []string{"a", "b*"}, p.Items())
}
