package ports

import (
	"context"
	"errors"

	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
)

// ErrNotFound signals the backend has no order for the requested key.
var ErrNotFound = errors.New("order not found")

// LineInput references a product and the quantity to set.
type LineInput struct {
	ProductID int64
	Quantity  int
}

// LineChange adjusts one existing order line.
type LineChange struct {
	LineID             int64
	Quantity           int
	PartiallyScheduled *bool
}

// Gateway calls the backend order endpoints.
type Gateway interface {
	GetByDate(ctx context.Context, date, delegateUser string) (*domain.Order, error)
	CreateOrUpdate(ctx context.Context, date, delegateUser string, lines []LineInput) (*domain.Order, error)
	DeleteItems(ctx context.Context, date, delegateUser string, productIDs []int64) (*domain.Order, error)
	UpdateLine(ctx context.Context, date, delegateUser string, change LineChange) (*domain.Order, error)
	UpdateStatus(ctx context.Context, date, delegateUser string, status domain.Status) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, query domain.ListQuery, page int) (pagination.Page[domain.Summary], error)
}

// CartService exposes the cart synchronization use cases to adapters.
type CartService interface {
	SetDate(ctx context.Context, date string)
	Sync(ctx context.Context)
	AddProduct(ctx context.Context, productID int64, quantity int) error
	DeleteItem(ctx context.Context, productID int64) error
	UpdateLine(ctx context.Context, change LineChange) error
	SetPartiallyScheduled(ctx context.Context, lineID int64, scheduled bool) error
	Order() *domain.Order
	State() domain.SyncState
}

// ReplayTask is one product-quantity pair to push onto the target order.
type ReplayTask struct {
	ProductID int64
	Quantity  int
}

// ReplayItemResult is the settled outcome of one replay task.
type ReplayItemResult struct {
	ProductID int64
	Err       error
}

// ReplayInput carries the whole replay request. Progress, when set, is
// invoked after each task settles and before the next one starts.
type ReplayInput struct {
	Date         string
	DelegateUser string
	Tasks        []ReplayTask
	Progress     func(task ReplayTask, err error)
}

// ReplayResult summarizes a completed replay.
type ReplayResult struct {
	Results []ReplayItemResult
}

// FailedCount counts the tasks that errored.
func (r ReplayResult) FailedCount() int {
	failed := 0
	for _, res := range r.Results {
		if res.Err != nil {
			failed++
		}
	}
	return failed
}

// ReplayOrchestrator runs the one-at-a-time replay of a previous order
// against the current dispatch date.
type ReplayOrchestrator interface {
	ReplayOrder(ctx context.Context, input ReplayInput) (ReplayResult, error)
}
