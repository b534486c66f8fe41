package foodshop

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MenusQuery selects one page of the menu feed.
type MenusQuery struct {
	Page         int
	DelegateUser string
}

// ListMenus fetches one page of daily menus.
func (c *Client) ListMenus(ctx context.Context, q MenusQuery) (Pagination[MenuData], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pageOrFirst(q.Page)))
	if delegate := strings.TrimSpace(q.DelegateUser); delegate != "" {
		query.Set("delegate_user", delegate)
	}
	var out Pagination[MenuData]
	if err := c.get(ctx, "menus", query, &out); err != nil {
		return Pagination[MenuData]{}, err
	}
	return out, nil
}

// CategoriesQuery selects one page of a menu's category feed.
type CategoriesQuery struct {
	Page          int
	PriorityGroup string
	DelegateUser  string
}

// ListCategories fetches one page of the category feed for a menu.
func (c *Client) ListCategories(ctx context.Context, menuID int64, q CategoriesQuery) (Pagination[CategoryItem], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(pageOrFirst(q.Page)))
	if group := strings.TrimSpace(q.PriorityGroup); group != "" {
		query.Set("priority_group", group)
	}
	if delegate := strings.TrimSpace(q.DelegateUser); delegate != "" {
		query.Set("delegate_user", delegate)
	}
	var out Pagination[CategoryItem]
	if err := c.get(ctx, fmt.Sprintf("categories/%d", menuID), query, &out); err != nil {
		return Pagination[CategoryItem]{}, err
	}
	return out, nil
}

// ListCategoryGroups fetches the named groups used by the tag filter.
func (c *Client) ListCategoryGroups(ctx context.Context, menuID int64) ([]CategoryGroup, error) {
	var out []CategoryGroup
	if err := c.get(ctx, fmt.Sprintf("categories/%d/groups", menuID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func pageOrFirst(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
