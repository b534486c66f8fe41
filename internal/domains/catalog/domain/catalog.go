package domain

// Menu is one daily menu shown in the menu feed.
type Menu struct {
	ID              int64
	Title           string
	Description     string
	PublicationDate string
	HasOrder        bool
}

// Category groups products inside a menu, with its per-weekday ordering
// cutoffs and optional subcategories.
type Category struct {
	ID              int64
	Name            string
	Description     string
	ShowAllProducts bool
	Products        []Product
	Lines           []CategoryLine
	Subcategories   []Subcategory
}

// CategoryLine is the ordering cutoff for one weekday.
type CategoryLine struct {
	ID               int64
	Weekday          string
	PreparationDays  int
	MaximumOrderTime string
	Active           bool
}

// Subcategory is a named slice of a category.
type Subcategory struct {
	ID   int64
	Name string
}

// Group is a named tag-filter over categories. At most one group is
// active at a time.
type Group struct {
	ID   int64
	Name string
}

// Product is a purchasable item.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       string
	Image       string
	CategoryID  int64
}
