// Package api adapts the foodshop HTTP client to the catalog gateway port.
package api

import (
	"context"
	"errors"

	foodshopclient "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	"github.com/thirty33/foodshop-go/internal/domains/catalog/domain"
	"github.com/thirty33/foodshop-go/internal/domains/catalog/ports"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
)

var _ ports.Gateway = (*Gateway)(nil)

// Gateway calls the catalog endpoints through the shared client.
type Gateway struct {
	client *foodshopclient.Client
}

func NewGateway(client *foodshopclient.Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) FetchMenus(ctx context.Context, page int, delegateUser string) (pagination.Page[domain.Menu], error) {
	if g == nil || g.client == nil {
		return pagination.Page[domain.Menu]{}, errors.New("catalog gateway not configured")
	}
	result, err := g.client.ListMenus(ctx, foodshopclient.MenusQuery{Page: page, DelegateUser: delegateUser})
	if err != nil {
		return pagination.Page[domain.Menu]{}, err
	}
	menus := make([]domain.Menu, 0, len(result.Data))
	for _, item := range result.Data {
		menus = append(menus, toDomainMenu(item))
	}
	return pagination.Page[domain.Menu]{Data: menus, CurrentPage: result.CurrentPage, LastPage: result.LastPage}, nil
}

func (g *Gateway) FetchCategories(ctx context.Context, menuID int64, page int, priorityGroup, delegateUser string) (pagination.Page[domain.Category], error) {
	if g == nil || g.client == nil {
		return pagination.Page[domain.Category]{}, errors.New("catalog gateway not configured")
	}
	result, err := g.client.ListCategories(ctx, menuID, foodshopclient.CategoriesQuery{
		Page:          page,
		PriorityGroup: priorityGroup,
		DelegateUser:  delegateUser,
	})
	if err != nil {
		return pagination.Page[domain.Category]{}, err
	}
	categories := make([]domain.Category, 0, len(result.Data))
	for _, item := range result.Data {
		categories = append(categories, toDomainCategory(item))
	}
	return pagination.Page[domain.Category]{Data: categories, CurrentPage: result.CurrentPage, LastPage: result.LastPage}, nil
}

func (g *Gateway) FetchGroups(ctx context.Context, menuID int64) ([]domain.Group, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("catalog gateway not configured")
	}
	result, err := g.client.ListCategoryGroups(ctx, menuID)
	if err != nil {
		return nil, err
	}
	groups := make([]domain.Group, 0, len(result))
	for _, item := range result {
		groups = append(groups, domain.Group{ID: item.ID, Name: item.Name})
	}
	return groups, nil
}

func toDomainMenu(data foodshopclient.MenuData) domain.Menu {
	return domain.Menu{
		ID:              data.ID,
		Title:           data.Title,
		Description:     data.Description,
		PublicationDate: data.PublicationDate,
		HasOrder:        data.HasOrder == 1,
	}
}

func toDomainCategory(item foodshopclient.CategoryItem) domain.Category {
	category := domain.Category{
		ID:              item.Category.ID,
		Name:            item.Category.Name,
		Description:     item.Category.Description,
		ShowAllProducts: item.ShowAllProducts,
	}
	for _, p := range item.Category.Products {
		category.Products = append(category.Products, toDomainProduct(p))
	}
	for _, l := range item.Category.CategoryLines {
		category.Lines = append(category.Lines, domain.CategoryLine{
			ID:               l.ID,
			Weekday:          l.Weekday,
			PreparationDays:  l.PreparationDays,
			MaximumOrderTime: l.MaximumOrderTime,
			Active:           l.Active,
		})
	}
	for _, s := range item.Category.Subcategories {
		category.Subcategories = append(category.Subcategories, domain.Subcategory{ID: s.ID, Name: s.Name})
	}
	return category
}

func toDomainProduct(data foodshopclient.Product) domain.Product {
	return domain.Product{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Price:       data.Price,
		Image:       data.Image,
		CategoryID:  data.CategoryID,
	}
}
