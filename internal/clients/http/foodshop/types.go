package foodshop

// Wire DTOs for the ordering backend. Field names follow the backend's
// snake_case contract; the domain packages map these into their own types.

// MenuData is one daily menu row in the menu feed.
type MenuData struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
	HasOrder        int    `json:"has_order"`
}

// CategoryItem is one row of the per-menu category feed.
type CategoryItem struct {
	ID              int64    `json:"id"`
	ShowAllProducts bool     `json:"show_all_products"`
	Category        Category `json:"category"`
}

// Category groups products plus its per-weekday ordering cutoffs.
type Category struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Products      []Product      `json:"products"`
	CategoryLines []CategoryLine `json:"category_lines"`
	Subcategories []Subcategory  `json:"subcategories"`
}

// CategoryLine is the ordering cutoff for one weekday.
type CategoryLine struct {
	ID               int64  `json:"id"`
	Weekday          string `json:"weekday"`
	PreparationDays  int    `json:"preparation_days"`
	MaximumOrderTime string `json:"maximum_order_time"`
	Active           bool   `json:"active"`
}

// Subcategory is a named slice of a category.
type Subcategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryGroup is a named tag-filter over categories.
type CategoryGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a purchasable item.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	CategoryID  int64  `json:"category_id"`
}

// OrderData is the order resource for one dispatch date.
type OrderData struct {
	ID           int64           `json:"id"`
	DispatchDate string          `json:"dispatch_date"`
	Status       string          `json:"status"`
	Total        string          `json:"total"`
	OrderLines   []OrderLineData `json:"order_lines"`
}

// OrderLineData is one line of an order.
type OrderLineData struct {
	ID                 int64   `json:"id"`
	Quantity           int     `json:"quantity"`
	TotalPrice         string  `json:"total_price"`
	PartiallyScheduled bool    `json:"partially_scheduled"`
	Product            Product `json:"product"`
}

// OrderSummaryData is one row of the order history list.
type OrderSummaryData struct {
	ID           int64  `json:"id"`
	DispatchDate string `json:"dispatch_date"`
	Status       string `json:"status"`
	Total        string `json:"total"`
	CreatedAt    string `json:"created_at"`
}

// UserData describes the authenticated user as the backend reports it.
type UserData struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Permission string `json:"permission"`
	IsMaster   bool   `json:"is_master"`
}
