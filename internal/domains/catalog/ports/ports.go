package ports

import (
	"context"

	"github.com/thirty33/foodshop-go/internal/domains/catalog/domain"
	"github.com/thirty33/foodshop-go/internal/shared/pagination"
)

// Gateway fetches catalog data from the backend.
type Gateway interface {
	FetchMenus(ctx context.Context, page int, delegateUser string) (pagination.Page[domain.Menu], error)
	FetchCategories(ctx context.Context, menuID int64, page int, priorityGroup, delegateUser string) (pagination.Page[domain.Category], error)
	FetchGroups(ctx context.Context, menuID int64) ([]domain.Group, error)
}
