package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	sessiondomain "github.com/thirty33/foodshop-go/internal/domains/session/domain"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
)

// fakeOrderGateway keeps an in-memory order per dispatch date and records
// every call so tests can assert the exact backend traffic.
type fakeOrderGateway struct {
	mu          sync.Mutex
	orders      map[string]*domain.Order
	nextLineID  int64
	getCalls    int
	upsertCalls int
	deleteCalls int
	updateCalls int

	upsertErr   error
	failProduct int64
	onUpsert    func(productID int64)
}

func newFakeOrderGateway() *fakeOrderGateway {
	return &fakeOrderGateway{orders: map[string]*domain.Order{}, nextLineID: 100}
}

func (f *fakeOrderGateway) GetByDate(_ context.Context, date, _ string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	order, ok := f.orders[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, date)
	}
	return cloneOrder(order), nil
}

func (f *fakeOrderGateway) CreateOrUpdate(_ context.Context, date, _ string, lines []ports.LineInput) (*domain.Order, error) {
	f.mu.Lock()
	f.upsertCalls++
	hook := f.onUpsert
	f.mu.Unlock()
	if hook != nil && len(lines) > 0 {
		hook(lines[0].ProductID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	for _, line := range lines {
		if f.failProduct != 0 && line.ProductID == f.failProduct {
			return nil, fmt.Errorf("producto %d no disponible", line.ProductID)
		}
	}
	order, ok := f.orders[date]
	if !ok {
		order = &domain.Order{DispatchDate: date, Status: domain.StatusPending}
		f.orders[date] = order
	}
	for _, input := range lines {
		updated := false
		for i := range order.Lines {
			if order.Lines[i].Product.ID == input.ProductID {
				order.Lines[i].Quantity = input.Quantity
				updated = true
				break
			}
		}
		if !updated {
			f.nextLineID++
			order.Lines = append(order.Lines, domain.OrderLine{
				ID:       f.nextLineID,
				Quantity: input.Quantity,
				Product:  domain.Product{ID: input.ProductID, Name: fmt.Sprintf("Producto %d", input.ProductID)},
			})
		}
	}
	return cloneOrder(order), nil
}

func (f *fakeOrderGateway) DeleteItems(_ context.Context, date, _ string, productIDs []int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	order, ok := f.orders[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, date)
	}
	for _, id := range productIDs {
		kept := order.Lines[:0]
		for _, line := range order.Lines {
			if line.Product.ID != id {
				kept = append(kept, line)
			}
		}
		order.Lines = kept
	}
	return cloneOrder(order), nil
}

func (f *fakeOrderGateway) UpdateLine(_ context.Context, date, _ string, change ports.LineChange) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	order, ok := f.orders[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, date)
	}
	for i := range order.Lines {
		if order.Lines[i].ID == change.LineID {
			order.Lines[i].Quantity = change.Quantity
			if change.PartiallyScheduled != nil {
				order.Lines[i].PartiallyScheduled = *change.PartiallyScheduled
			}
			return cloneOrder(order), nil
		}
	}
	return nil, fmt.Errorf("%w: line %d", ports.ErrNotFound, change.LineID)
}

func (f *fakeOrderGateway) UpdateStatus(_ context.Context, date, _ string, status domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[date]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrNotFound, date)
	}
	order.Status = status
	return nil
}

func (f *fakeOrderGateway) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.ID == id {
			return cloneOrder(order), nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ports.ErrNotFound, id)
}

func (f *fakeOrderGateway) List(_ context.Context, _ domain.ListQuery, page int) (pagination.Page[domain.Summary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summaries := make([]domain.Summary, 0, len(f.orders))
	for _, order := range f.orders {
		summaries = append(summaries, domain.Summary{ID: order.ID, DispatchDate: order.DispatchDate, Status: order.Status})
	}
	return pagination.Page[domain.Summary]{Data: summaries, CurrentPage: page, LastPage: 1}, nil
}

func (f *fakeOrderGateway) seed(date string, order *domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[date] = order
}

func cloneOrder(order *domain.Order) *domain.Order {
	if order == nil {
		return nil
	}
	copied := *order
	copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &copied
}

type fixedCapabilities struct {
	caps sessiondomain.Capabilities
}

func (f fixedCapabilities) Capabilities() sessiondomain.Capabilities { return f.caps }

func adminCapabilities() sessiondomain.Capabilities {
	return sessiondomain.ResolveCapabilities(sessiondomain.User{Role: sessiondomain.RoleAdmin})
}

func agreementIndividualCapabilities() sessiondomain.Capabilities {
	return sessiondomain.ResolveCapabilities(sessiondomain.User{
		Role:       sessiondomain.RoleConvenio,
		Permission: sessiondomain.PermissionIndividual,
	})
}

func TestCartSetDateLoadsOrder(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{
		ID:           7,
		DispatchDate: "2026-09-01",
		Status:       domain.StatusPending,
		Lines:        []domain.OrderLine{{ID: 1, Quantity: 2, Product: domain.Product{ID: 10, Name: "Menú ejecutivo"}}},
	})
	cart := NewCart(gateway)

	cart.SetDate(context.Background(), "2026-09-01")

	require.Equal(t, domain.SyncLoaded, cart.State())
	order := cart.Order()
	require.NotNil(t, order)
	require.Len(t, order.Lines, 1)
	require.Equal(t, int64(10), order.Lines[0].Product.ID)
}

func TestCartMissingOrderIsEmptyNotError(t *testing.T) {
	gateway := newFakeOrderGateway()
	recorder := notify.NewRecorder()
	cart := NewCart(gateway, WithCartNotifier(recorder))

	cart.SetDate(context.Background(), "2026-09-02")

	require.Equal(t, domain.SyncEmpty, cart.State())
	require.Nil(t, cart.Order())
	require.Empty(t, recorder.ByLevel(notify.LevelError))
}

func TestCartClearDate(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{DispatchDate: "2026-09-01"})
	cart := NewCart(gateway)
	cart.SetDate(context.Background(), "2026-09-01")

	cart.SetDate(context.Background(), "")

	require.Equal(t, domain.SyncNoDate, cart.State())
	require.Nil(t, cart.Order())
}

func TestCartAddProductSyncsFromServer(t *testing.T) {
	gateway := newFakeOrderGateway()
	cart := NewCart(gateway)
	cart.SetDate(context.Background(), "2026-09-01")
	getsBefore := gateway.getCalls

	err := cart.AddProduct(context.Background(), 10, 3)

	require.NoError(t, err)
	require.Equal(t, 1, gateway.upsertCalls)
	// The mutation never merges locally; the order comes back from a refetch.
	require.Equal(t, getsBefore+1, gateway.getCalls)
	order := cart.Order()
	require.NotNil(t, order)
	line, ok := order.LineForProduct(10)
	require.True(t, ok)
	require.Equal(t, 3, line.Quantity)
	require.Equal(t, domain.SyncLoaded, cart.State())
}

func TestCartAddProductRejectsInvalidQuantity(t *testing.T) {
	gateway := newFakeOrderGateway()
	recorder := notify.NewRecorder()
	cart := NewCart(gateway, WithCartNotifier(recorder))
	cart.SetDate(context.Background(), "2026-09-01")

	err := cart.AddProduct(context.Background(), 10, 0)

	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	require.Zero(t, gateway.upsertCalls)
	require.Len(t, recorder.ByLevel(notify.LevelError), 1)
}

func TestCartAddProductWithoutDateFails(t *testing.T) {
	gateway := newFakeOrderGateway()
	cart := NewCart(gateway)

	err := cart.AddProduct(context.Background(), 10, 1)

	require.Error(t, err)
	require.Zero(t, gateway.upsertCalls)
}

func TestCartAddProductFailureKeepsOrderAndNotifies(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{
		DispatchDate: "2026-09-01",
		Lines:        []domain.OrderLine{{ID: 1, Quantity: 1, Product: domain.Product{ID: 10}}},
	})
	recorder := notify.NewRecorder()
	cart := NewCart(gateway, WithCartNotifier(recorder))
	cart.SetDate(context.Background(), "2026-09-01")
	gateway.upsertErr = errors.New("producto agotado")

	err := cart.AddProduct(context.Background(), 20, 1)

	require.Error(t, err)
	require.Len(t, recorder.ByLevel(notify.LevelError), 1)
	order := cart.Order()
	require.NotNil(t, order)
	require.Len(t, order.Lines, 1)
	require.False(t, cart.IsMutating())
}

func TestCartProductBusyDuringMutation(t *testing.T) {
	gateway := newFakeOrderGateway()
	cart := NewCart(gateway)
	cart.SetDate(context.Background(), "2026-09-01")

	var busyDuring bool
	gateway.onUpsert = func(productID int64) {
		busyDuring = cart.ProductBusy(productID)
	}

	require.NoError(t, cart.AddProduct(context.Background(), 10, 1))
	require.True(t, busyDuring)
	require.False(t, cart.ProductBusy(10))
}

func TestCartSideCartAutoOpen(t *testing.T) {
	cases := []struct {
		name     string
		caps     sessiondomain.Capabilities
		widthPx  int
		expected bool
	}{
		{name: "admin on mobile opens", caps: adminCapabilities(), widthPx: 390, expected: true},
		{name: "admin on desktop opens", caps: adminCapabilities(), widthPx: 1440, expected: true},
		{name: "agreement individual on mobile stays closed", caps: agreementIndividualCapabilities(), widthPx: 390, expected: false},
		{name: "agreement individual on desktop opens", caps: agreementIndividualCapabilities(), widthPx: 1440, expected: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := newFakeOrderGateway()
			cart := NewCart(gateway,
				WithCapabilities(fixedCapabilities{caps: tc.caps}),
				WithViewport(func() domain.Viewport { return domain.Viewport{WidthPx: tc.widthPx} }),
			)
			cart.SetDate(context.Background(), "2026-09-01")

			require.NoError(t, cart.AddProduct(context.Background(), 10, 1))
			require.Equal(t, tc.expected, cart.SideCartOpen())
		})
	}
}

func TestCartSideCartOpensOnlyOnFirstItem(t *testing.T) {
	gateway := newFakeOrderGateway()
	cart := NewCart(gateway,
		WithCapabilities(fixedCapabilities{caps: adminCapabilities()}),
		WithViewport(func() domain.Viewport { return domain.Viewport{WidthPx: 1440} }),
	)
	cart.SetDate(context.Background(), "2026-09-01")

	require.NoError(t, cart.AddProduct(context.Background(), 10, 1))
	require.True(t, cart.SideCartOpen())

	cart.CloseSideCart()
	require.NoError(t, cart.AddProduct(context.Background(), 20, 1))
	require.False(t, cart.SideCartOpen())
}

func TestCartDeleteItem(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{
		DispatchDate: "2026-09-01",
		Lines: []domain.OrderLine{
			{ID: 1, Quantity: 1, Product: domain.Product{ID: 10}},
			{ID: 2, Quantity: 2, Product: domain.Product{ID: 20}},
		},
	})
	cart := NewCart(gateway)
	cart.SetDate(context.Background(), "2026-09-01")

	require.NoError(t, cart.DeleteItem(context.Background(), 10))

	order := cart.Order()
	require.NotNil(t, order)
	require.Len(t, order.Lines, 1)
	require.Equal(t, int64(20), order.Lines[0].Product.ID)
}

func TestCartUpdateLineQuantity(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{
		DispatchDate: "2026-09-01",
		Lines:        []domain.OrderLine{{ID: 5, Quantity: 1, Product: domain.Product{ID: 10}}},
	})
	cart := NewCart(gateway)
	cart.SetDate(context.Background(), "2026-09-01")

	require.NoError(t, cart.UpdateLine(context.Background(), ports.LineChange{LineID: 5, Quantity: 4}))

	order := cart.Order()
	line, ok := order.LineByID(5)
	require.True(t, ok)
	require.Equal(t, 4, line.Quantity)
}

func TestCartPartialSchedulingRequiresCapability(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{
		DispatchDate: "2026-09-01",
		Lines:        []domain.OrderLine{{ID: 5, Quantity: 2, Product: domain.Product{ID: 10}}},
	})
	recorder := notify.NewRecorder()
	cart := NewCart(gateway,
		WithCartNotifier(recorder),
		WithCapabilities(fixedCapabilities{caps: agreementIndividualCapabilities()}),
	)
	cart.SetDate(context.Background(), "2026-09-01")

	err := cart.SetPartiallyScheduled(context.Background(), 5, true)

	require.ErrorIs(t, err, ErrPartialSchedulingNotAllowed)
	require.Zero(t, gateway.updateCalls)
}

func TestCartPartialSchedulingKeepsQuantity(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{
		DispatchDate: "2026-09-01",
		Lines:        []domain.OrderLine{{ID: 5, Quantity: 3, Product: domain.Product{ID: 10}}},
	})
	cart := NewCart(gateway, WithCapabilities(fixedCapabilities{caps: adminCapabilities()}))
	cart.SetDate(context.Background(), "2026-09-01")

	require.NoError(t, cart.SetPartiallyScheduled(context.Background(), 5, true))

	order := cart.Order()
	line, ok := order.LineByID(5)
	require.True(t, ok)
	require.True(t, line.PartiallyScheduled)
	require.Equal(t, 3, line.Quantity)
}
