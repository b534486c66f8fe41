// Package api adapts the foodshop HTTP client to the orders gateway port.
package api

import (
	"context"
	"errors"
	"fmt"

	foodshopclient "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	"github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
)

var _ ports.Gateway = (*Gateway)(nil)

// Gateway calls the order endpoints through the shared client. Backend
// 404s are folded into ports.ErrNotFound so callers can branch without
// touching transport types.
type Gateway struct {
	client *foodshopclient.Client
}

func NewGateway(client *foodshopclient.Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) GetByDate(ctx context.Context, date, delegateUser string) (*domain.Order, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	data, err := g.client.GetOrderByDate(ctx, date, delegateUser)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDomainOrder(data), nil
}

func (g *Gateway) CreateOrUpdate(ctx context.Context, date, delegateUser string, lines []ports.LineInput) (*domain.Order, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	req := foodshopclient.CreateOrUpdateOrderRequest{Date: date, DelegateUser: delegateUser}
	for _, line := range lines {
		req.OrderLines = append(req.OrderLines, foodshopclient.OrderLineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	data, err := g.client.CreateOrUpdateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return toDomainOrder(data), nil
}

func (g *Gateway) DeleteItems(ctx context.Context, date, delegateUser string, productIDs []int64) (*domain.Order, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	req := foodshopclient.DeleteOrderItemsRequest{Date: date, DelegateUser: delegateUser}
	for _, id := range productIDs {
		req.OrderLines = append(req.OrderLines, foodshopclient.OrderLineInput{ProductID: id})
	}
	data, err := g.client.DeleteOrderItems(ctx, req)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDomainOrder(data), nil
}

func (g *Gateway) UpdateLine(ctx context.Context, date, delegateUser string, change ports.LineChange) (*domain.Order, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	data, err := g.client.UpdateOrderLine(ctx, foodshopclient.UpdateOrderLineRequest{
		Date:               date,
		DelegateUser:       delegateUser,
		OrderLineID:        change.LineID,
		Quantity:           change.Quantity,
		PartiallyScheduled: change.PartiallyScheduled,
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDomainOrder(data), nil
}

func (g *Gateway) UpdateStatus(ctx context.Context, date, delegateUser string, status domain.Status) error {
	if err := g.ensure(); err != nil {
		return err
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	err := g.client.UpdateOrderStatus(ctx, foodshopclient.UpdateOrderStatusRequest{
		Date:         date,
		DelegateUser: delegateUser,
		Status:       string(status),
	})
	return mapNotFound(err)
}

func (g *Gateway) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := g.ensure(); err != nil {
		return nil, err
	}
	data, err := g.client.GetOrderByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toDomainOrder(data), nil
}

func (g *Gateway) List(ctx context.Context, query domain.ListQuery, page int) (pagination.Page[domain.Summary], error) {
	if err := g.ensure(); err != nil {
		return pagination.Page[domain.Summary]{}, err
	}
	result, err := g.client.ListOrders(ctx, foodshopclient.OrdersQuery{
		Page:         page,
		Status:       string(query.Status),
		TimePeriod:   query.TimePeriod,
		Search:       query.Search,
		DelegateUser: query.DelegateUser,
	})
	if err != nil {
		return pagination.Page[domain.Summary]{}, err
	}
	summaries := make([]domain.Summary, 0, len(result.Data))
	for _, item := range result.Data {
		summaries = append(summaries, domain.Summary{
			ID:           item.ID,
			DispatchDate: item.DispatchDate,
			Status:       domain.Status(item.Status),
			Total:        item.Total,
			CreatedAt:    item.CreatedAt,
		})
	}
	return pagination.Page[domain.Summary]{Data: summaries, CurrentPage: result.CurrentPage, LastPage: result.LastPage}, nil
}

func (g *Gateway) ensure() error {
	if g == nil || g.client == nil {
		return errors.New("orders gateway not configured")
	}
	return nil
}

func mapNotFound(err error) error {
	if err == nil {
		return nil
	}
	if foodshopclient.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ports.ErrNotFound, err.Error())
	}
	return err
}

func toDomainOrder(data *foodshopclient.OrderData) *domain.Order {
	if data == nil {
		return nil
	}
	order := &domain.Order{
		ID:           data.ID,
		DispatchDate: data.DispatchDate,
		Status:       domain.Status(data.Status),
		Total:        data.Total,
	}
	for _, line := range data.OrderLines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:                 line.ID,
			Quantity:           line.Quantity,
			TotalPrice:         line.TotalPrice,
			PartiallyScheduled: line.PartiallyScheduled,
			Product: domain.Product{
				ID:    line.Product.ID,
				Name:  line.Product.Name,
				Price: line.Product.Price,
			},
		})
	}
	return order
}
