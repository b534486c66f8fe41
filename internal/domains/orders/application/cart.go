package application

import (
	"context"
	"errors"
	"sync"

	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	sessiondomain "github.com/thirty33/foodshop-go/internal/domains/session/domain"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
)

// ErrPartialSchedulingNotAllowed gates the scheduling toggle to the
// roles that may use it.
var ErrPartialSchedulingNotAllowed = errors.New("el usuario no puede programar parcialmente")

// CapabilitySource supplies the capability set of the active user.
type CapabilitySource interface {
	Capabilities() sessiondomain.Capabilities
}

// ViewportFunc reports the viewport at interaction time.
type ViewportFunc func() domain.Viewport

// Cart synchronizes the per-dispatch-date order with the backend. The
// server stays the source of truth: mutations never merge locally, they
// flag the cart for reload and the next Sync refetches.
type Cart struct {
	gateway      ports.Gateway
	notifier     notify.Notifier
	capabilities CapabilitySource
	viewport     ViewportFunc

	mu            sync.Mutex
	date          string
	delegateUser  string
	state         domain.SyncState
	order         *domain.Order
	needsReload   bool
	mutating      bool
	sideCartOpen  bool
	productBusy   map[int64]bool
}

// CartOption configures the cart service.
type CartOption func(*Cart)

// WithCartNotifier routes mutation failures to the given notifier.
func WithCartNotifier(n notify.Notifier) CartOption {
	return func(c *Cart) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithCapabilities wires the active user's capability set.
func WithCapabilities(source CapabilitySource) CartOption {
	return func(c *Cart) {
		if source != nil {
			c.capabilities = source
		}
	}
}

// WithViewport wires the viewport probe used by the auto-open heuristic.
func WithViewport(fn ViewportFunc) CartOption {
	return func(c *Cart) {
		if fn != nil {
			c.viewport = fn
		}
	}
}

// NewCart builds the cart service. Without options it behaves as an
// anonymous desktop session.
func NewCart(gateway ports.Gateway, opts ...CartOption) *Cart {
	c := &Cart{
		gateway:     gateway,
		notifier:    notify.Noop,
		viewport:    func() domain.Viewport { return domain.Viewport{} },
		state:       domain.SyncNoDate,
		productBusy: map[int64]bool{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SetDelegation switches the impersonation target for subsequent calls.
func (c *Cart) SetDelegation(delegateUser string) {
	c.mu.Lock()
	c.delegateUser = delegateUser
	c.mu.Unlock()
}

// SetDate points the cart at a dispatch date and fetches its order. An
// empty date clears the cart entirely.
func (c *Cart) SetDate(ctx context.Context, date string) {
	c.mu.Lock()
	if date == "" {
		c.date = ""
		c.order = nil
		c.state = domain.SyncNoDate
		c.needsReload = false
		c.mu.Unlock()
		return
	}
	c.date = date
	c.state = domain.SyncLoading
	c.needsReload = true
	c.mu.Unlock()
	c.Sync(ctx)
}

// Sync consumes the reload flag, refetching the order when set.
func (c *Cart) Sync(ctx context.Context) {
	c.mu.Lock()
	if !c.needsReload || c.date == "" {
		c.mu.Unlock()
		return
	}
	c.needsReload = false
	date := c.date
	delegate := c.delegateUser
	c.state = domain.SyncLoading
	c.mu.Unlock()

	order, err := c.gateway.GetByDate(ctx, date, delegate)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.date != date {
		// The user navigated to another date while this fetch was in
		// flight; the stale response does not apply.
		return
	}
	if err != nil {
		c.order = nil
		c.state = domain.SyncEmpty
		return
	}
	c.order = order
	if order == nil {
		c.state = domain.SyncEmpty
	} else {
		c.state = domain.SyncLoaded
	}
}

// AddProduct upserts a product line on the current date's order and
// auto-opens the side cart when warranted.
func (c *Cart) AddProduct(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		c.notifier.Error(domain.ErrInvalidQuantity.Error())
		return domain.ErrInvalidQuantity
	}
	date, delegate, err := c.beginMutation(productID)
	if err != nil {
		return err
	}
	wasEmpty := c.Order().IsEmpty()

	_, err = c.gateway.CreateOrUpdate(ctx, date, delegate, []ports.LineInput{{ProductID: productID, Quantity: quantity}})
	c.endMutation(ctx, productID, err)
	if err != nil {
		return err
	}

	if domain.ShouldAutoOpenSideCart(wasEmpty, c.viewport(), c.currentCapabilities()) {
		c.mu.Lock()
		c.sideCartOpen = true
		c.mu.Unlock()
	}
	return nil
}

// DeleteItem removes the product's line from the current date's order.
func (c *Cart) DeleteItem(ctx context.Context, productID int64) error {
	date, delegate, err := c.beginMutation(productID)
	if err != nil {
		return err
	}
	_, err = c.gateway.DeleteItems(ctx, date, delegate, []int64{productID})
	c.endMutation(ctx, productID, err)
	return err
}

// UpdateLine adjusts an existing line's quantity.
func (c *Cart) UpdateLine(ctx context.Context, change ports.LineChange) error {
	if change.PartiallyScheduled == nil && change.Quantity <= 0 {
		c.notifier.Error(domain.ErrInvalidQuantity.Error())
		return domain.ErrInvalidQuantity
	}
	line, ok := c.Order().LineByID(change.LineID)
	if !ok {
		c.notifier.Error(domain.ErrLineNotFound.Error())
		return domain.ErrLineNotFound
	}
	date, delegate, err := c.beginMutation(line.Product.ID)
	if err != nil {
		return err
	}
	_, err = c.gateway.UpdateLine(ctx, date, delegate, change)
	c.endMutation(ctx, line.Product.ID, err)
	return err
}

// SetPartiallyScheduled toggles a line's scheduling flag. The quantity
// is untouched; only Admin/Café capability sets may call this.
func (c *Cart) SetPartiallyScheduled(ctx context.Context, lineID int64, scheduled bool) error {
	if !c.currentCapabilities().CanSchedulePartially {
		c.notifier.Error(ErrPartialSchedulingNotAllowed.Error())
		return ErrPartialSchedulingNotAllowed
	}
	line, ok := c.Order().LineByID(lineID)
	if !ok {
		c.notifier.Error(domain.ErrLineNotFound.Error())
		return domain.ErrLineNotFound
	}
	return c.UpdateLine(ctx, ports.LineChange{
		LineID:             lineID,
		Quantity:           line.Quantity,
		PartiallyScheduled: &scheduled,
	})
}

// Order returns the last synchronized order, nil when none.
func (c *Cart) Order() *domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order == nil {
		return nil
	}
	copied := *c.order
	copied.Lines = append([]domain.OrderLine(nil), c.order.Lines...)
	return &copied
}

// State returns the synchronization state.
func (c *Cart) State() domain.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsMutating reports whether any mutation is in flight.
func (c *Cart) IsMutating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutating
}

// ProductBusy reports whether the given product has a mutation in
// flight, driving the per-button spinner.
func (c *Cart) ProductBusy(productID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.productBusy[productID]
}

// SideCartOpen reports whether the side cart should be shown.
func (c *Cart) SideCartOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sideCartOpen
}

// CloseSideCart dismisses the side cart.
func (c *Cart) CloseSideCart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sideCartOpen = false
}

// MarkDirty flags the cart for reload on the next Sync. The replay flow
// uses this after pushing items through the orchestrator.
func (c *Cart) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.date != "" {
		c.needsReload = true
	}
}

var errNoDispatchDate = errors.New("no hay una fecha de despacho seleccionada")

func (c *Cart) beginMutation(productID int64) (date, delegate string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.date == "" {
		c.notifier.Error(errNoDispatchDate.Error())
		return "", "", errNoDispatchDate
	}
	c.mutating = true
	c.productBusy[productID] = true
	return c.date, c.delegateUser, nil
}

// endMutation clears the loading flags, marks the cart for reload, and
// immediately synchronizes so the server state lands locally.
func (c *Cart) endMutation(ctx context.Context, productID int64, mutationErr error) {
	c.mu.Lock()
	c.mutating = false
	delete(c.productBusy, productID)
	if mutationErr == nil {
		c.needsReload = true
	}
	c.mu.Unlock()
	if mutationErr != nil {
		c.notifier.Error(mutationErr.Error())
		return
	}
	c.Sync(ctx)
}

func (c *Cart) currentCapabilities() sessiondomain.Capabilities {
	if c.capabilities == nil {
		return sessiondomain.Capabilities{}
	}
	return c.capabilities.Capabilities()
}

var _ ports.CartService = (*Cart)(nil)
