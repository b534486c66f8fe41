package domain

import (
	"errors"

	sessiondomain "github.com/thirty33/foodshop-go/internal/domains/session/domain"
)

// Status enumerates order progression on the backend.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPartially Status = "PARTIALLY_SCHEDULED"
	StatusProcessed Status = "PROCESSED"
	StatusCanceled  Status = "CANCELED"
)

// Valid reports whether the status is one the backend understands.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartially, StatusProcessed, StatusCanceled:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidQuantity = errors.New("la cantidad debe ser mayor que cero")
	ErrInvalidStatus   = errors.New("estado de pedido inválido")
	ErrLineNotFound    = errors.New("la línea del pedido no existe")
)

// Product is the slice of product data an order line carries.
type Product struct {
	ID    int64
	Name  string
	Price string
}

// OrderLine is one product entry on an order.
type OrderLine struct {
	ID                 int64
	Quantity           int
	TotalPrice         string
	PartiallyScheduled bool
	Product            Product
}

// Order is the per-dispatch-date order aggregate.
type Order struct {
	ID           int64
	DispatchDate string
	Status       Status
	Total        string
	Lines        []OrderLine
}

// IsEmpty reports whether the order has no lines.
func (o *Order) IsEmpty() bool {
	return o == nil || len(o.Lines) == 0
}

// LineForProduct returns the line holding the product, if present.
func (o *Order) LineForProduct(productID int64) (OrderLine, bool) {
	if o == nil {
		return OrderLine{}, false
	}
	for _, line := range o.Lines {
		if line.Product.ID == productID {
			return line, true
		}
	}
	return OrderLine{}, false
}

// LineByID returns the line with the given identifier, if present.
func (o *Order) LineByID(lineID int64) (OrderLine, bool) {
	if o == nil {
		return OrderLine{}, false
	}
	for _, line := range o.Lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return OrderLine{}, false
}

// SyncState is the cart synchronization state machine for one dispatch
// date. A fetch failure lands in SyncEmpty: no order for a future date is
// expected, not exceptional.
type SyncState string

const (
	SyncNoDate  SyncState = "no_date"
	SyncLoading SyncState = "loading"
	SyncLoaded  SyncState = "loaded"
	SyncEmpty   SyncState = "empty"
)

// MobileBreakpointPx is the viewport width below which the mobile layout
// applies.
const MobileBreakpointPx = 768

// Viewport is the client viewport at interaction time.
type Viewport struct {
	WidthPx int
}

// IsMobile reports whether the viewport uses the mobile layout.
func (v Viewport) IsMobile() bool {
	return v.WidthPx > 0 && v.WidthPx < MobileBreakpointPx
}

// ShouldAutoOpenSideCart decides whether adding a product should pop the
// side cart open: only when the cart was empty, and never on mobile for
// users whose capability set opts out of the auto-open flow.
func ShouldAutoOpenSideCart(wasEmpty bool, viewport Viewport, caps sessiondomain.Capabilities) bool {
	if !wasEmpty {
		return false
	}
	if viewport.IsMobile() && caps.SkipAutoOpenCartOnMobile {
		return false
	}
	return true
}

// Summary is one row of the order history list.
type Summary struct {
	ID           int64
	DispatchDate string
	Status       Status
	Total        string
	CreatedAt    string
}

// ListQuery filters the order history list.
type ListQuery struct {
	Status       Status
	TimePeriod   string
	Search       string
	DelegateUser string
}
