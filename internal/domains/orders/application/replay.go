package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
)

// PreviousOrderState tracks the repeat-order modal lifecycle.
type PreviousOrderState string

const (
	PreviousIdle     PreviousOrderState = "idle"
	PreviousLoading  PreviousOrderState = "loading"
	PreviousLoaded   PreviousOrderState = "loaded"
	PreviousNotFound PreviousOrderState = "not_found"
	PreviousError    PreviousOrderState = "error"
)

// ItemStatus is the per-item outcome shown while replaying.
type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemLoading ItemStatus = "loading"
	ItemSuccess ItemStatus = "success"
	ItemError   ItemStatus = "error"
)

// ReplayItem is one adjustable line of the previous order.
type ReplayItem struct {
	ProductID    int64
	ProductName  string
	Quantity     int
	Status       ItemStatus
	ErrorMessage string
}

// MenuPatcher lets the replay flow flip a cached menu's has_order flag
// in place after confirmation, avoiding a full menu reload.
type MenuPatcher interface {
	MarkMenuOrdered(menuID int64)
}

// Replay drives the previous-order repeat flow: fetch a prior date's
// order, adjust quantities, push the items one at a time onto the
// current date, then optionally confirm.
type Replay struct {
	gateway      ports.Gateway
	orchestrator ports.ReplayOrchestrator
	cart         *Cart
	menus        MenuPatcher
	notifier     notify.Notifier

	mu           sync.Mutex
	state        PreviousOrderState
	items        []ReplayItem
	delegateUser string
	replaying    bool
	confirming   bool
}

// ReplayOption configures the replay flow.
type ReplayOption func(*Replay)

// WithReplayNotifier routes flow outcomes to the given notifier.
func WithReplayNotifier(n notify.Notifier) ReplayOption {
	return func(r *Replay) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithMenuPatcher wires the cached menu feed patched on confirmation.
func WithMenuPatcher(patcher MenuPatcher) ReplayOption {
	return func(r *Replay) { r.menus = patcher }
}

// NewReplay builds the flow around the orchestrator and the cart whose
// date the items land on.
func NewReplay(gateway ports.Gateway, orchestrator ports.ReplayOrchestrator, cart *Cart, opts ...ReplayOption) *Replay {
	r := &Replay{
		gateway:      gateway,
		orchestrator: orchestrator,
		cart:         cart,
		notifier:     notify.Noop,
		state:        PreviousIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// SetDelegation switches the impersonation target for subsequent calls.
func (r *Replay) SetDelegation(delegateUser string) {
	r.mu.Lock()
	r.delegateUser = delegateUser
	r.mu.Unlock()
}

// FetchPrevious loads the order of a prior dispatch date. A missing
// order is the benign not-found state, rendered as an empty message;
// every other failure is an error state plus a toast.
func (r *Replay) FetchPrevious(ctx context.Context, date string) {
	r.mu.Lock()
	r.state = PreviousLoading
	r.items = nil
	delegate := r.delegateUser
	r.mu.Unlock()

	order, err := r.gateway.GetByDate(ctx, date, delegate)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		if isNotFound(err) {
			r.state = PreviousNotFound
			return
		}
		r.state = PreviousError
		r.notifier.Error(err.Error())
		return
	}
	if order.IsEmpty() {
		r.state = PreviousNotFound
		return
	}
	r.state = PreviousLoaded
	for _, line := range order.Lines {
		r.items = append(r.items, ReplayItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Status:      ItemPending,
		})
	}
}

// AdjustQuantity changes the quantity to replay for one product.
func (r *Replay) AdjustQuantity(productID int64, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ProductID == productID {
			r.items[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrLineNotFound
}

// ReplayAll pushes every item onto the target date, one at a time. A
// per-item failure never aborts the rest; when everything has settled
// the current order is refetched once and a warning summarizes any
// failures.
func (r *Replay) ReplayAll(ctx context.Context, targetDate string) {
	r.mu.Lock()
	if r.replaying || len(r.items) == 0 {
		r.mu.Unlock()
		return
	}
	r.replaying = true
	tasks := make([]ports.ReplayTask, 0, len(r.items))
	for i := range r.items {
		r.items[i].Status = ItemLoading
		r.items[i].ErrorMessage = ""
		tasks = append(tasks, ports.ReplayTask{ProductID: r.items[i].ProductID, Quantity: r.items[i].Quantity})
	}
	delegate := r.delegateUser
	r.mu.Unlock()

	result, err := r.orchestrator.ReplayOrder(ctx, ports.ReplayInput{
		Date:         targetDate,
		DelegateUser: delegate,
		Tasks:        tasks,
		Progress:     r.markItem,
	})

	r.mu.Lock()
	r.replaying = false
	r.mu.Unlock()

	if err != nil {
		r.notifier.Error(err.Error())
		return
	}
	// Progress callbacks already marked the items for the inline
	// orchestrator; the durable one only reports the final results.
	for _, item := range result.Results {
		r.markItem(ports.ReplayTask{ProductID: item.ProductID}, item.Err)
	}

	if r.cart != nil {
		r.cart.MarkDirty()
		r.cart.Sync(ctx)
	}

	if failed := result.FailedCount(); failed > 0 {
		r.notifier.Warning(fmt.Sprintf("%d de %d productos no pudieron agregarse al pedido.", failed, len(tasks)))
	} else {
		r.notifier.Success("Pedido repetido correctamente.")
	}
}

// Confirm transitions the target date's order to PROCESSED and patches
// the cached menu entry so the feed reflects it without a reload.
func (r *Replay) Confirm(ctx context.Context, targetDate string, menuID int64) error {
	r.mu.Lock()
	if r.confirming {
		r.mu.Unlock()
		return nil
	}
	r.confirming = true
	delegate := r.delegateUser
	r.mu.Unlock()

	err := r.gateway.UpdateStatus(ctx, targetDate, delegate, domain.StatusProcessed)

	r.mu.Lock()
	r.confirming = false
	r.mu.Unlock()

	if err != nil {
		r.notifier.Error(err.Error())
		return err
	}
	if r.menus != nil {
		r.menus.MarkMenuOrdered(menuID)
	}
	r.notifier.Success("Pedido confirmado.")
	return nil
}

// Busy reports whether a replay or confirmation is in flight; the modal
// must not close while it is.
func (r *Replay) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaying || r.confirming
}

// State returns the previous-order lifecycle state.
func (r *Replay) State() PreviousOrderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Items returns a copy of the replay items with their outcomes.
func (r *Replay) Items() []ReplayItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ReplayItem, len(r.items))
	copy(out, r.items)
	return out
}

// Discard drops the loaded items when the modal closes.
func (r *Replay) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaying || r.confirming {
		return
	}
	r.items = nil
	r.state = PreviousIdle
}

func (r *Replay) markItem(task ports.ReplayTask, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ProductID != task.ProductID {
			continue
		}
		if err != nil {
			r.items[i].Status = ItemError
			r.items[i].ErrorMessage = err.Error()
		} else {
			r.items[i].Status = ItemSuccess
		}
		return
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound)
}
