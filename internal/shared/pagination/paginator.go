// Package pagination implements the manual pagination engine behind every
// paginated feed: menus, categories, and the order history list.
package pagination

import (
	"context"
	"sync"

	"github.com/thirty33/foodshop-go/internal/shared/notify"
)

// Page is one page of a paginated backend response.
type Page[T any] struct {
	Data        []T
	CurrentPage int
	LastPage    int
}

// FetchFunc loads a single page. Implementations call the backend.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// Paginator accumulates pages of T for one feed session. A session is
// identified by a reset trigger key; changing the key clears the
// accumulated items and restarts at page 1.
type Paginator[T any] struct {
	mu         sync.Mutex
	fetch      FetchFunc[T]
	notifier   notify.Notifier
	trigger    string
	items      []T
	currentPage int
	lastPage    int
	hasMore     bool
	loading     bool
	fetched     bool
	// generation invalidates in-flight fetches on reset so a slow
	// response can never repopulate a feed the caller already left.
	generation uint64
}

// Option configures a Paginator.
type Option[T any] func(*Paginator[T])

// WithNotifier routes fetch failures to the given notifier.
func WithNotifier[T any](n notify.Notifier) Option[T] {
	return func(p *Paginator[T]) {
		if n != nil {
			p.notifier = n
		}
	}
}

// New builds a paginator around the fetch function.
func New[T any](fetch FetchFunc[T], opts ...Option[T]) *Paginator[T] {
	p := &Paginator[T]{
		fetch:       fetch,
		notifier:    notify.Noop,
		currentPage: 1,
		lastPage:    1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Reset clears the session when the trigger key changes. The first call
// establishes the key without forcing a second initial fetch.
func (p *Paginator[T]) Reset(trigger string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trigger == trigger && p.fetched {
		return
	}
	p.trigger = trigger
	p.resetLocked()
}

// ForceReset clears the session regardless of the trigger key.
func (p *Paginator[T]) ForceReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Paginator[T]) resetLocked() {
	p.items = nil
	p.currentPage = 1
	p.lastPage = 1
	p.hasMore = false
	p.fetched = false
	p.loading = false
	p.generation++
}

// EnsureInitial performs the one-shot page-1 fetch for an empty session.
// Repeated calls while the session already holds data are no-ops.
func (p *Paginator[T]) EnsureInitial(ctx context.Context) {
	p.mu.Lock()
	if p.fetched || p.loading || len(p.items) > 0 || p.currentPage != 1 {
		p.mu.Unlock()
		return
	}
	p.runFetchLocked(ctx, 1)
}

// LoadMore advances to the next page. It is a no-op unless the previous
// fetch reported more pages and no fetch is in flight.
func (p *Paginator[T]) LoadMore(ctx context.Context) {
	p.mu.Lock()
	if !p.hasMore || p.loading {
		p.mu.Unlock()
		return
	}
	next := p.currentPage + 1
	if next > p.lastPage {
		// Stale increment; the server already told us there is nothing left.
		p.hasMore = false
		p.mu.Unlock()
		return
	}
	p.currentPage = next
	p.runFetchLocked(ctx, next)
}

// runFetchLocked issues the network call outside the lock and applies the
// result only if no reset happened in between. The caller must hold the
// lock; it is released before the fetch and re-taken to apply.
func (p *Paginator[T]) runFetchLocked(ctx context.Context, page int) {
	p.loading = true
	gen := p.generation
	fetch := p.fetch
	p.mu.Unlock()

	result, err := fetch(ctx, page)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		// The session was reset while this fetch was in flight.
		return
	}
	p.loading = false
	if err != nil {
		p.notifier.Error(err.Error())
		return
	}
	if result.CurrentPage <= 1 {
		p.items = append([]T(nil), result.Data...)
	} else {
		p.items = append(p.items, result.Data...)
	}
	p.currentPage = result.CurrentPage
	if p.currentPage < 1 {
		p.currentPage = 1
	}
	p.lastPage = result.LastPage
	if p.lastPage < 1 {
		p.lastPage = 1
	}
	p.hasMore = p.currentPage < p.lastPage
	p.fetched = true
}

// Items returns a copy of the accumulated items.
func (p *Paginator[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Patch applies fn to every accumulated item in place, letting callers
// update a cached row without refetching the whole feed.
func (p *Paginator[T]) Patch(fn func(*T)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		fn(&p.items[i])
	}
}

// HasMore reports whether another page is available.
func (p *Paginator[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// IsLoading reports whether a fetch is in flight.
func (p *Paginator[T]) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// CurrentPage returns the page of the most recent successful fetch.
func (p *Paginator[T]) CurrentPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPage
}

// LastPage returns the total page count reported by the server.
func (p *Paginator[T]) LastPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPage
}
