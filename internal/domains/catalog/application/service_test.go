package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thirty33/foodshop-go/internal/domains/catalog/domain"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
)

type fetchRecord struct {
	menuID int64
	page   int
	group  string
}

type fakeCatalogGateway struct {
	mu            sync.Mutex
	menuPages     int
	categoryPages int
	menuFetches   []int
	catFetches    []fetchRecord
	groups        []domain.Group
}

func (f *fakeCatalogGateway) FetchMenus(_ context.Context, page int, _ string) (pagination.Page[domain.Menu], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.menuFetches = append(f.menuFetches, page)
	return pagination.Page[domain.Menu]{
		Data:        []domain.Menu{{ID: int64(page), Title: fmt.Sprintf("Menú %d", page)}},
		CurrentPage: page,
		LastPage:    f.menuPages,
	}, nil
}

func (f *fakeCatalogGateway) FetchCategories(_ context.Context, menuID int64, page int, group, _ string) (pagination.Page[domain.Category], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catFetches = append(f.catFetches, fetchRecord{menuID: menuID, page: page, group: group})
	name := fmt.Sprintf("menu-%d-cat-p%d", menuID, page)
	if group != "" {
		name = fmt.Sprintf("%s-%s", name, group)
	}
	return pagination.Page[domain.Category]{
		Data:        []domain.Category{{ID: int64(page), Name: name}},
		CurrentPage: page,
		LastPage:    f.categoryPages,
	}, nil
}

func (f *fakeCatalogGateway) FetchGroups(_ context.Context, _ int64) ([]domain.Group, error) {
	return f.groups, nil
}

func TestLoadMenus_PaginatesUntilBoundary(t *testing.T) {
	gateway := &fakeCatalogGateway{menuPages: 2, categoryPages: 1}
	svc := NewService(gateway)
	defer svc.Close()

	svc.LoadMenus(context.Background())
	require.Len(t, svc.Menus(), 1)
	require.True(t, svc.HasMoreMenus())

	svc.LoadMoreMenus(context.Background())
	require.Len(t, svc.Menus(), 2)
	require.False(t, svc.HasMoreMenus())

	// Boundary: no extra fetch happens.
	svc.LoadMoreMenus(context.Background())
	require.Equal(t, []int{1, 2}, gateway.menuFetches)
}

func TestUseMenu_SwitchingMenusRestartsCategoryFeed(t *testing.T) {
	gateway := &fakeCatalogGateway{menuPages: 1, categoryPages: 3}
	svc := NewService(gateway)
	defer svc.Close()

	svc.UseMenu(context.Background(), 10)
	svc.LoadMoreCategories(context.Background())
	require.Len(t, svc.Categories(), 2)

	svc.UseMenu(context.Background(), 20)
	categories := svc.Categories()
	require.Len(t, categories, 1)
	require.Equal(t, "menu-20-cat-p1", categories[0].Name)

	// The new session started over at page 1 before any page 2.
	require.Equal(t, []fetchRecord{
		{menuID: 10, page: 1},
		{menuID: 10, page: 2},
		{menuID: 20, page: 1},
	}, gateway.catFetches)
}

func TestSelectGroup_IsExclusiveAndResetsFeed(t *testing.T) {
	gateway := &fakeCatalogGateway{
		menuPages:     1,
		categoryPages: 1,
		groups:        []domain.Group{{ID: 1, Name: "Veggie"}, {ID: 2, Name: "Postres"}},
	}
	svc := NewService(gateway)
	defer svc.Close()

	svc.UseMenu(context.Background(), 10)
	require.Len(t, svc.Groups(), 2)
	require.Empty(t, svc.ActiveGroup())

	svc.SelectGroup(context.Background(), "Veggie")
	require.Equal(t, "Veggie", svc.ActiveGroup())
	require.Equal(t, "menu-10-cat-p1-Veggie", svc.Categories()[0].Name)

	// Selecting another group replaces the previous one.
	svc.SelectGroup(context.Background(), "Postres")
	require.Equal(t, "Postres", svc.ActiveGroup())
	require.Equal(t, "menu-10-cat-p1-Postres", svc.Categories()[0].Name)

	svc.ClearGroup(context.Background())
	require.Empty(t, svc.ActiveGroup())
	require.Equal(t, "menu-10-cat-p1", svc.Categories()[0].Name)
}

func TestSelectGroup_SameGroupIsNoop(t *testing.T) {
	gateway := &fakeCatalogGateway{menuPages: 1, categoryPages: 1}
	svc := NewService(gateway)
	defer svc.Close()

	svc.UseMenu(context.Background(), 10)
	fetchesBefore := len(gateway.catFetches)

	svc.SelectGroup(context.Background(), "")
	require.Len(t, gateway.catFetches, fetchesBefore)
}

func TestMarkMenuOrdered_PatchesCachedMenu(t *testing.T) {
	gateway := &fakeCatalogGateway{menuPages: 1, categoryPages: 1}
	svc := NewService(gateway)
	defer svc.Close()

	svc.LoadMenus(context.Background())
	require.False(t, svc.Menus()[0].HasOrder)

	svc.MarkMenuOrdered(svc.Menus()[0].ID)
	require.True(t, svc.Menus()[0].HasOrder)
}
