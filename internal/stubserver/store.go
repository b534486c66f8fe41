// Package stubserver implements a self-contained ordering backend that
// serves the same wire contract the production API does: envelope
// responses, Laravel-style pagination, and bearer-token sessions. It backs
// local development and the client's contract tests.
package stubserver

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	foodshop "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
)

// Sentinel errors the HTTP layer maps onto the envelope error contract.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidStatus      = errors.New("invalid order status")
)

// PageSize is the fixed page length of every paginated listing.
const PageSize = 10

// SessionTTL bounds how long an issued token stays valid.
const SessionTTL = 24 * time.Hour

// OrdersFilter narrows the order history listing.
type OrdersFilter struct {
	Status     string
	TimePeriod string
	Search     string
}

// Store persists the stub backend's state. The memory implementation
// seeds itself; the Postgres one survives restarts.
type Store interface {
	// Authenticate verifies credentials and issues a bearer token.
	Authenticate(ctx context.Context, email, password string) (foodshop.UserData, string, error)
	// UserByToken resolves the session owner, ErrInvalidToken otherwise.
	UserByToken(ctx context.Context, token string) (foodshop.UserData, error)
	// RevokeToken invalidates one session token.
	RevokeToken(ctx context.Context, token string) error
	// PurgeExpiredSessions drops sessions past their TTL, returning the count.
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	Menus(ctx context.Context, page int) (foodshop.Pagination[foodshop.MenuData], error)
	Categories(ctx context.Context, menuID int64, page int, group string) (foodshop.Pagination[foodshop.CategoryItem], error)
	Groups(ctx context.Context, menuID int64) ([]foodshop.CategoryGroup, error)

	OrderByDate(ctx context.Context, username, date string) (*foodshop.OrderData, error)
	UpsertOrder(ctx context.Context, username, date string, lines []foodshop.OrderLineInput) (*foodshop.OrderData, error)
	DeleteOrderItems(ctx context.Context, username, date string, productIDs []int64) (*foodshop.OrderData, error)
	UpdateOrderLine(ctx context.Context, username, date string, lineID int64, quantity int, partiallyScheduled *bool) (*foodshop.OrderData, error)
	UpdateOrderStatus(ctx context.Context, username, date, status string) error
	OrderByID(ctx context.Context, username string, id int64) (*foodshop.OrderData, error)
	Orders(ctx context.Context, username string, filter OrdersFilter, page int) (foodshop.Pagination[foodshop.OrderSummaryData], error)
}

// ValidOrderStatus reports whether the backend accepts the status value.
func ValidOrderStatus(status string) bool {
	switch status {
	case "PENDING", "PARTIALLY_SCHEDULED", "PROCESSED", "CANCELED":
		return true
	default:
		return false
	}
}

// FormatPrice renders CLP amounts with dot thousand separators.
func FormatPrice(amount int) string {
	digits := strconv.Itoa(amount)
	var b strings.Builder
	b.WriteString("$")
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteString(".")
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteString(".")
		}
	}
	return b.String()
}

// Paginate slices items into the fixed-size page envelope.
func Paginate[T any](items []T, page int) foodshop.Pagination[T] {
	if page < 1 {
		page = 1
	}
	total := len(items)
	lastPage := (total + PageSize - 1) / PageSize
	if lastPage < 1 {
		lastPage = 1
	}
	if page > lastPage {
		page = lastPage
	}
	from := (page - 1) * PageSize
	to := from + PageSize
	if to > total {
		to = total
	}
	var data []T
	if from < total {
		data = append([]T(nil), items[from:to]...)
	}
	result := foodshop.Pagination[T]{
		Data:        data,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     PageSize,
		Total:       total,
	}
	if len(data) > 0 {
		result.From = from + 1
		result.To = to
	}
	return result
}
