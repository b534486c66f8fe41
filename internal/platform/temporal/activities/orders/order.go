package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordersports "github.com/thirty33/foodshop-go/internal/domains/orders/ports"
)

const (
	// UpsertOrderLineActivityName pushes one product line onto an order.
	UpsertOrderLineActivityName = "orders.activities.UpsertOrderLine"
)

// UpsertOrderLineInput is the payload for a single replayed line.
type UpsertOrderLineInput struct {
	Date         string
	DelegateUser string
	ProductID    int64
	Quantity     int
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	gateway ordersports.Gateway
}

// NewActivities wires the orders gateway into the Temporal activities bundle.
func NewActivities(gateway ordersports.Gateway) *Activities {
	return &Activities{gateway: gateway}
}

// UpsertOrderLine creates or updates one line on the target date's order.
func (a *Activities) UpsertOrderLine(ctx context.Context, input UpsertOrderLineInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.gateway == nil {
		logger.Error("order line activity not initialized", "productId", input.ProductID)
		return errors.New("order line activity not initialized")
	}
	logger.Info("UpsertOrderLine activity started", "productId", input.ProductID, "date", input.Date)
	_, err := a.gateway.CreateOrUpdate(ctx, input.Date, input.DelegateUser, []ordersports.LineInput{{
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}})
	if err != nil {
		logger.Error("UpsertOrderLine activity failed", "productId", input.ProductID, "error", err)
		return err
	}
	logger.Info("UpsertOrderLine activity completed", "productId", input.ProductID)
	return nil
}
