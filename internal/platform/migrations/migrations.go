package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the stub backend schema. Intended to replace adapter-level
// automigrate in deployments that manage the database lifecycle upfront.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&userRecord{},
		&sessionRecord{},
		&menuRecord{},
		&categoryRecord{},
		&productRecord{},
		&orderRecord{},
		&orderLineRecord{},
	)
}

// User schema mirrors the stub Postgres store.
type userRecord struct {
	ID         int64  `gorm:"primaryKey;column:id"`
	Name       string `gorm:"column:name"`
	Email      string `gorm:"column:email;uniqueIndex"`
	Password   string `gorm:"column:password_hash"`
	Role       string `gorm:"column:role;type:varchar(32)"`
	Permission string `gorm:"column:permission;type:varchar(32)"`
	IsMaster   bool   `gorm:"column:is_master"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the stub Postgres store.
type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:64"`
	Email     string    `gorm:"column:email;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Menu schema mirrors the stub Postgres store.
type menuRecord struct {
	ID              int64  `gorm:"primaryKey;column:id"`
	Title           string `gorm:"column:title"`
	Description     string `gorm:"column:description"`
	PublicationDate string `gorm:"column:publication_date;index"`
}

func (menuRecord) TableName() string { return "menus" }

// Category schema mirrors the stub Postgres store.
type categoryRecord struct {
	ID               int64          `gorm:"primaryKey;column:id"`
	MenuID           int64          `gorm:"column:menu_id;index"`
	Name             string         `gorm:"column:name"`
	Description      string         `gorm:"column:description"`
	ShowAllProducts  bool           `gorm:"column:show_all_products"`
	GroupName        string         `gorm:"column:group_name;index"`
	Weekdays         pq.StringArray `gorm:"column:weekdays;type:text[]"`
	PreparationDays  int            `gorm:"column:preparation_days"`
	MaximumOrderTime string         `gorm:"column:maximum_order_time"`
	Subcategories    pq.StringArray `gorm:"column:subcategories;type:text[]"`
}

func (categoryRecord) TableName() string { return "categories" }

// Product schema mirrors the stub Postgres store.
type productRecord struct {
	ID          int64  `gorm:"primaryKey;column:id"`
	CategoryID  int64  `gorm:"column:category_id;index"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	PriceCLP    int    `gorm:"column:price_clp"`
	Image       string `gorm:"column:image"`
}

func (productRecord) TableName() string { return "products" }

// Order schema mirrors the stub Postgres store.
type orderRecord struct {
	ID           int64     `gorm:"primaryKey;column:id;autoIncrement"`
	Username     string    `gorm:"column:username;uniqueIndex:idx_orders_user_date"`
	DispatchDate string    `gorm:"column:dispatch_date;uniqueIndex:idx_orders_user_date"`
	Status       string    `gorm:"column:status;type:varchar(32);index"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Order line schema mirrors the stub Postgres store.
type orderLineRecord struct {
	ID                 int64 `gorm:"primaryKey;column:id;autoIncrement"`
	OrderID            int64 `gorm:"column:order_id;index"`
	ProductID          int64 `gorm:"column:product_id"`
	Quantity           int   `gorm:"column:quantity"`
	PartiallyScheduled bool  `gorm:"column:partially_scheduled"`
}

func (orderLineRecord) TableName() string { return "order_lines" }
