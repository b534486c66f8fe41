package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
	"github.com/thirty33/foodshop-go/internal/shared/queue"
)

// inlineOrchestrator mirrors the production inline orchestrator without
// importing the adapters package, keeping the application tests local.
type inlineOrchestrator struct {
	gateway ports.Gateway
}

func (o inlineOrchestrator) ReplayOrder(ctx context.Context, input ports.ReplayInput) (ports.ReplayResult, error) {
	runner := queue.NewRunner(func(ctx context.Context, task ports.ReplayTask) error {
		_, err := o.gateway.CreateOrUpdate(ctx, input.Date, input.DelegateUser, []ports.LineInput{{
			ProductID: task.ProductID,
			Quantity:  task.Quantity,
		}})
		return err
	}, queue.WithProgress(input.Progress))
	outcomes := runner.Run(ctx, input.Tasks)
	result := ports.ReplayResult{}
	for _, outcome := range outcomes {
		result.Results = append(result.Results, ports.ReplayItemResult{ProductID: outcome.Task.ProductID, Err: outcome.Err})
	}
	return result, nil
}

type recordingMenuPatcher struct {
	marked []int64
}

func (p *recordingMenuPatcher) MarkMenuOrdered(menuID int64) {
	p.marked = append(p.marked, menuID)
}

func seedPreviousOrder(gateway *fakeOrderGateway) {
	gateway.seed("2026-08-25", &domain.Order{
		ID:           1,
		DispatchDate: "2026-08-25",
		Status:       domain.StatusProcessed,
		Lines: []domain.OrderLine{
			{ID: 1, Quantity: 2, Product: domain.Product{ID: 10, Name: "Menú ejecutivo"}},
			{ID: 2, Quantity: 1, Product: domain.Product{ID: 20, Name: "Jugo natural"}},
			{ID: 3, Quantity: 3, Product: domain.Product{ID: 30, Name: "Postre del día"}},
			{ID: 4, Quantity: 1, Product: domain.Product{ID: 40, Name: "Café americano"}},
		},
	})
}

func newTestReplay(gateway *fakeOrderGateway, opts ...ReplayOption) (*Replay, *Cart) {
	cart := NewCart(gateway)
	replay := NewReplay(gateway, inlineOrchestrator{gateway: gateway}, cart, opts...)
	return replay, cart
}

func TestReplayFetchPreviousLoadsItems(t *testing.T) {
	gateway := newFakeOrderGateway()
	seedPreviousOrder(gateway)
	replay, _ := newTestReplay(gateway)

	replay.FetchPrevious(context.Background(), "2026-08-25")

	require.Equal(t, PreviousLoaded, replay.State())
	items := replay.Items()
	require.Len(t, items, 4)
	require.Equal(t, int64(10), items[0].ProductID)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, ItemPending, items[0].Status)
}

func TestReplayFetchPreviousMissingOrderIsNotFound(t *testing.T) {
	gateway := newFakeOrderGateway()
	recorder := notify.NewRecorder()
	replay, _ := newTestReplay(gateway, WithReplayNotifier(recorder))

	replay.FetchPrevious(context.Background(), "2026-08-25")

	require.Equal(t, PreviousNotFound, replay.State())
	require.Empty(t, replay.Items())
	// A missing previous order is an empty state, never a toast.
	require.Empty(t, recorder.All())
}

func TestReplayAdjustQuantity(t *testing.T) {
	gateway := newFakeOrderGateway()
	seedPreviousOrder(gateway)
	replay, _ := newTestReplay(gateway)
	replay.FetchPrevious(context.Background(), "2026-08-25")

	require.NoError(t, replay.AdjustQuantity(10, 5))
	require.ErrorIs(t, replay.AdjustQuantity(10, 0), domain.ErrInvalidQuantity)
	require.ErrorIs(t, replay.AdjustQuantity(99, 1), domain.ErrLineNotFound)

	items := replay.Items()
	require.Equal(t, 5, items[0].Quantity)
}

func TestReplayAllAttemptsEveryItemPastFailures(t *testing.T) {
	gateway := newFakeOrderGateway()
	seedPreviousOrder(gateway)
	gateway.failProduct = 20
	recorder := notify.NewRecorder()
	replay, cart := newTestReplay(gateway, WithReplayNotifier(recorder))
	cart.SetDate(context.Background(), "2026-09-01")
	replay.FetchPrevious(context.Background(), "2026-08-25")

	replay.ReplayAll(context.Background(), "2026-09-01")

	// All four items were pushed; the failing one never aborted the rest.
	require.Equal(t, 4, gateway.upsertCalls)
	items := replay.Items()
	require.Len(t, items, 4)
	succeeded, failed := 0, 0
	for _, item := range items {
		switch item.Status {
		case ItemSuccess:
			succeeded++
		case ItemError:
			failed++
			require.Equal(t, int64(20), item.ProductID)
			require.NotEmpty(t, item.ErrorMessage)
		default:
			t.Fatalf("item %d left in status %q", item.ProductID, item.Status)
		}
	}
	require.Equal(t, 3, succeeded)
	require.Equal(t, 1, failed)

	warnings := recorder.ByLevel(notify.LevelWarning)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "1 de 4")

	// The cart refetched the order once and holds the three landed lines.
	order := cart.Order()
	require.NotNil(t, order)
	require.Len(t, order.Lines, 3)
}

func TestReplayAllSuccessNotifiesOnce(t *testing.T) {
	gateway := newFakeOrderGateway()
	seedPreviousOrder(gateway)
	recorder := notify.NewRecorder()
	replay, cart := newTestReplay(gateway, WithReplayNotifier(recorder))
	cart.SetDate(context.Background(), "2026-09-01")
	replay.FetchPrevious(context.Background(), "2026-08-25")

	replay.ReplayAll(context.Background(), "2026-09-01")

	require.Empty(t, recorder.ByLevel(notify.LevelWarning))
	require.Len(t, recorder.ByLevel(notify.LevelSuccess), 1)
	for _, item := range replay.Items() {
		require.Equal(t, ItemSuccess, item.Status)
	}
}

func TestReplayAllWithoutItemsIsNoop(t *testing.T) {
	gateway := newFakeOrderGateway()
	replay, _ := newTestReplay(gateway)

	replay.ReplayAll(context.Background(), "2026-09-01")

	require.Zero(t, gateway.upsertCalls)
}

func TestReplayConfirmMarksMenuOrdered(t *testing.T) {
	gateway := newFakeOrderGateway()
	gateway.seed("2026-09-01", &domain.Order{
		DispatchDate: "2026-09-01",
		Status:       domain.StatusPending,
		Lines:        []domain.OrderLine{{ID: 1, Quantity: 1, Product: domain.Product{ID: 10}}},
	})
	patcher := &recordingMenuPatcher{}
	recorder := notify.NewRecorder()
	replay, _ := newTestReplay(gateway, WithMenuPatcher(patcher), WithReplayNotifier(recorder))

	require.NoError(t, replay.Confirm(context.Background(), "2026-09-01", 77))

	require.Equal(t, []int64{77}, patcher.marked)
	require.Len(t, recorder.ByLevel(notify.LevelSuccess), 1)
	require.Equal(t, domain.StatusProcessed, gateway.orders["2026-09-01"].Status)
}

func TestReplayConfirmFailureSkipsMenuPatch(t *testing.T) {
	gateway := newFakeOrderGateway()
	patcher := &recordingMenuPatcher{}
	recorder := notify.NewRecorder()
	replay, _ := newTestReplay(gateway, WithMenuPatcher(patcher), WithReplayNotifier(recorder))

	err := replay.Confirm(context.Background(), "2026-09-01", 77)

	require.Error(t, err)
	require.Empty(t, patcher.marked)
	require.Len(t, recorder.ByLevel(notify.LevelError), 1)
}

func TestReplayDiscardResetsState(t *testing.T) {
	gateway := newFakeOrderGateway()
	seedPreviousOrder(gateway)
	replay, _ := newTestReplay(gateway)
	replay.FetchPrevious(context.Background(), "2026-08-25")

	replay.Discard()

	require.Equal(t, PreviousIdle, replay.State())
	require.Empty(t, replay.Items())
}
