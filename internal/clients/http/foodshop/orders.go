package foodshop

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// OrderLineInput references a product and the quantity to set.
type OrderLineInput struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrUpdateOrderRequest upserts lines on the order of a dispatch date.
type CreateOrUpdateOrderRequest struct {
	Date         string           `json:"date"`
	DelegateUser string           `json:"delegate_user,omitempty"`
	OrderLines   []OrderLineInput `json:"order_lines"`
}

// DeleteOrderItemsRequest removes lines from the order of a dispatch date.
type DeleteOrderItemsRequest struct {
	Date         string           `json:"date"`
	DelegateUser string           `json:"delegate_user,omitempty"`
	OrderLines   []OrderLineInput `json:"order_lines"`
}

// UpdateOrderStatusRequest transitions the order of a dispatch date.
type UpdateOrderStatusRequest struct {
	Date         string `json:"date"`
	Status       string `json:"status"`
	DelegateUser string `json:"delegate_user,omitempty"`
}

// UpdateOrderLineRequest adjusts a single line without touching the rest.
type UpdateOrderLineRequest struct {
	Date               string `json:"date"`
	DelegateUser       string `json:"delegate_user,omitempty"`
	OrderLineID        int64  `json:"order_line_id"`
	Quantity           int    `json:"quantity"`
	PartiallyScheduled *bool  `json:"partially_scheduled,omitempty"`
}

// OrdersQuery filters the order history list.
type OrdersQuery struct {
	Page         int
	Status       string
	TimePeriod   string
	Search       string
	DelegateUser string
}

// GetOrderByDate fetches the order for a dispatch date. A missing order
// surfaces as a KindNotFound error.
func (c *Client) GetOrderByDate(ctx context.Context, date string, delegateUser string) (*OrderData, error) {
	query := url.Values{}
	if delegate := strings.TrimSpace(delegateUser); delegate != "" {
		query.Set("delegate_user", delegate)
	}
	var out OrderData
	if err := c.get(ctx, "orders/get-order/"+url.PathEscape(date), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrUpdateOrder adds or updates lines on the date's order.
func (c *Client) CreateOrUpdateOrder(ctx context.Context, req CreateOrUpdateOrderRequest) (*OrderData, error) {
	var out OrderData
	if err := c.post(ctx, "orders/create-or-update-order", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteOrderItems removes the referenced lines from the date's order.
func (c *Client) DeleteOrderItems(ctx context.Context, req DeleteOrderItemsRequest) (*OrderData, error) {
	var out OrderData
	if err := c.post(ctx, "orders/delete-order-items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderLine adjusts one line's quantity or scheduling flag.
func (c *Client) UpdateOrderLine(ctx context.Context, req UpdateOrderLineRequest) (*OrderData, error) {
	var out OrderData
	if err := c.post(ctx, "orders/update-order-line", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus transitions the date's order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, req UpdateOrderStatusRequest) error {
	return c.post(ctx, "orders/update-order-status", req, nil)
}

// GetOrderByID fetches one order by identifier.
func (c *Client) GetOrderByID(ctx context.Context, id int64) (*OrderData, error) {
	var out OrderData
	if err := c.get(ctx, fmt.Sprintf("orders/get-order-by-id/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders fetches one page of the filtered order history.
func (c *Client) ListOrders(ctx context.Context, q OrdersQuery) (Pagination[OrderSummaryData], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pageOrFirst(q.Page)))
	if status := strings.TrimSpace(q.Status); status != "" {
		query.Set("status", status)
	}
	if period := strings.TrimSpace(q.TimePeriod); period != "" {
		query.Set("time_period", period)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		query.Set("search", search)
	}
	if delegate := strings.TrimSpace(q.DelegateUser); delegate != "" {
		query.Set("delegate_user", delegate)
	}
	var out Pagination[OrderSummaryData]
	if err := c.get(ctx, "orders/get-orders", query, &out); err != nil {
		return Pagination[OrderSummaryData]{}, err
	}
	return out, nil
}
