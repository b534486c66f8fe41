// Package postgres persists the stub backend in PostgreSQL using GORM, so
// seeded catalogs and placed orders survive restarts.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	foodshop "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	"github.com/thirty33/foodshop-go/internal/stubserver"
)

var _ stubserver.Store = (*Store)(nil)

// Store is the PostgreSQL-backed stub store. Caller manages DB lifecycle.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed store and ensures its schema.
func NewStore(db *gorm.DB) *Store {
	store := &Store{db: db}
	if db != nil {
		_ = db.AutoMigrate(
			&userRecord{},
			&sessionRecord{},
			&menuRecord{},
			&categoryRecord{},
			&productRecord{},
			&orderRecord{},
			&orderLineRecord{},
		)
	}
	return store
}

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

type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:64"`
	Email     string    `gorm:"column:email;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

type menuRecord struct {
	ID              int64  `gorm:"primaryKey;column:id"`
	Title           string `gorm:"column:title"`
	Description     string `gorm:"column:description"`
	PublicationDate string `gorm:"column:publication_date;index"`
}

func (menuRecord) TableName() string { return "menus" }

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

type productRecord struct {
	ID          int64  `gorm:"primaryKey;column:id"`
	CategoryID  int64  `gorm:"column:category_id;index"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	PriceCLP    int    `gorm:"column:price_clp"`
	Image       string `gorm:"column:image"`
}

func (productRecord) TableName() string { return "products" }

type orderRecord struct {
	ID           int64     `gorm:"primaryKey;column:id;autoIncrement"`
	Username     string    `gorm:"column:username;uniqueIndex:idx_orders_user_date"`
	DispatchDate string    `gorm:"column:dispatch_date;uniqueIndex:idx_orders_user_date"`
	Status       string    `gorm:"column:status;type:varchar(32);index"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID                 int64 `gorm:"primaryKey;column:id;autoIncrement"`
	OrderID            int64 `gorm:"column:order_id;index"`
	ProductID          int64 `gorm:"column:product_id"`
	Quantity           int   `gorm:"column:quantity"`
	PartiallyScheduled bool  `gorm:"column:partially_scheduled"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

func (s *Store) Authenticate(ctx context.Context, email, password string) (foodshop.UserData, string, error) {
	if err := s.ensureDB(); err != nil {
		return foodshop.UserData{}, "", err
	}
	var user userRecord
	err := s.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return foodshop.UserData{}, "", stubserver.ErrInvalidCredentials
		}
		return foodshop.UserData{}, "", err
	}
	if user.Password != password {
		return foodshop.UserData{}, "", stubserver.ErrInvalidCredentials
	}
	token := uuid.NewString()
	session := sessionRecord{Token: token, Email: user.Email, ExpiresAt: time.Now().Add(stubserver.SessionTTL)}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return foodshop.UserData{}, "", err
	}
	return user.toData(), token, nil
}

func (s *Store) UserByToken(ctx context.Context, token string) (foodshop.UserData, error) {
	if err := s.ensureDB(); err != nil {
		return foodshop.UserData{}, err
	}
	var session sessionRecord
	err := s.db.WithContext(ctx).First(&session, "token = ? AND expires_at > ?", token, time.Now()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return foodshop.UserData{}, stubserver.ErrInvalidToken
		}
		return foodshop.UserData{}, err
	}
	var user userRecord
	if err := s.db.WithContext(ctx).First(&user, "email = ?", session.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return foodshop.UserData{}, stubserver.ErrInvalidToken
		}
		return foodshop.UserData{}, err
	}
	return user.toData(), nil
}

func (s *Store) RevokeToken(ctx context.Context, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "token = ?", token).Error
}

func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Delete(&sessionRecord{}, "expires_at <= ?", now)
	return result.RowsAffected, result.Error
}

func (s *Store) Menus(ctx context.Context, page int) (foodshop.Pagination[foodshop.MenuData], error) {
	if err := s.ensureDB(); err != nil {
		return foodshop.Pagination[foodshop.MenuData]{}, err
	}
	var records []menuRecord
	if err := s.db.WithContext(ctx).Order("publication_date").Find(&records).Error; err != nil {
		return foodshop.Pagination[foodshop.MenuData]{}, err
	}
	menus := make([]foodshop.MenuData, 0, len(records))
	for _, r := range records {
		menus = append(menus, foodshop.MenuData{
			ID:              r.ID,
			Title:           r.Title,
			Description:     r.Description,
			PublicationDate: r.PublicationDate,
		})
	}
	return stubserver.Paginate(menus, page), nil
}

func (s *Store) Categories(ctx context.Context, menuID int64, page int, group string) (foodshop.Pagination[foodshop.CategoryItem], error) {
	if err := s.ensureDB(); err != nil {
		return foodshop.Pagination[foodshop.CategoryItem]{}, err
	}
	query := s.db.WithContext(ctx).Where("menu_id = ?", menuID)
	if group != "" {
		query = query.Where("group_name = ?", group)
	}
	var records []categoryRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return foodshop.Pagination[foodshop.CategoryItem]{}, err
	}
	if len(records) == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&menuRecord{}).Where("id = ?", menuID).Count(&count).Error; err != nil {
			return foodshop.Pagination[foodshop.CategoryItem]{}, err
		}
		if count == 0 {
			return foodshop.Pagination[foodshop.CategoryItem]{}, stubserver.ErrNotFound
		}
	}
	items := make([]foodshop.CategoryItem, 0, len(records))
	for _, r := range records {
		category, err := s.loadCategory(ctx, r)
		if err != nil {
			return foodshop.Pagination[foodshop.CategoryItem]{}, err
		}
		items = append(items, foodshop.CategoryItem{
			ID:              r.ID,
			ShowAllProducts: r.ShowAllProducts,
			Category:        category,
		})
	}
	return stubserver.Paginate(items, page), nil
}

func (s *Store) loadCategory(ctx context.Context, r categoryRecord) (foodshop.Category, error) {
	var products []productRecord
	if err := s.db.WithContext(ctx).Where("category_id = ?", r.ID).Order("id").Find(&products).Error; err != nil {
		return foodshop.Category{}, err
	}
	category := foodshop.Category{ID: r.ID, Name: r.Name, Description: r.Description}
	for _, p := range products {
		category.Products = append(category.Products, p.toData())
	}
	for i, weekday := range r.Weekdays {
		category.CategoryLines = append(category.CategoryLines, foodshop.CategoryLine{
			ID:               r.ID*10 + int64(i),
			Weekday:          weekday,
			PreparationDays:  r.PreparationDays,
			MaximumOrderTime: r.MaximumOrderTime,
			Active:           true,
		})
	}
	for i, name := range r.Subcategories {
		category.Subcategories = append(category.Subcategories, foodshop.Subcategory{ID: r.ID*10 + int64(i), Name: name})
	}
	return category, nil
}

func (s *Store) Groups(ctx context.Context, menuID int64) ([]foodshop.CategoryGroup, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&menuRecord{}).Where("id = ?", menuID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, stubserver.ErrNotFound
	}
	var names []string
	err := s.db.WithContext(ctx).Model(&categoryRecord{}).
		Where("menu_id = ? AND group_name <> ''", menuID).
		Distinct("group_name").Order("group_name").Pluck("group_name", &names).Error
	if err != nil {
		return nil, err
	}
	groups := make([]foodshop.CategoryGroup, 0, len(names))
	for i, name := range names {
		groups = append(groups, foodshop.CategoryGroup{ID: int64(i + 1), Name: name})
	}
	return groups, nil
}

func (s *Store) OrderByDate(ctx context.Context, username, date string) (*foodshop.OrderData, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := s.db.WithContext(ctx).First(&record, "username = ? AND dispatch_date = ?", username, date).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stubserver.ErrNotFound
		}
		return nil, err
	}
	return s.assembleOrder(ctx, record)
}

func (s *Store) UpsertOrder(ctx context.Context, username, date string, lines []foodshop.OrderLineInput) (*foodshop.OrderData, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var result *foodshop.OrderData
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := orderRecord{Username: username, DispatchDate: date, Status: "PENDING"}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}, {Name: "dispatch_date"}},
			DoNothing: true,
		}).Create(&record).Error; err != nil {
			return err
		}
		if err := tx.First(&record, "username = ? AND dispatch_date = ?", username, date).Error; err != nil {
			return err
		}
		for _, input := range lines {
			var count int64
			if err := tx.Model(&productRecord{}).Where("id = ?", input.ProductID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return stubserver.ErrNotFound
			}
			updates := tx.Model(&orderLineRecord{}).
				Where("order_id = ? AND product_id = ?", record.ID, input.ProductID).
				Update("quantity", input.Quantity)
			if updates.Error != nil {
				return updates.Error
			}
			if updates.RowsAffected == 0 {
				line := orderLineRecord{OrderID: record.ID, ProductID: input.ProductID, Quantity: input.Quantity}
				if err := tx.Create(&line).Error; err != nil {
					return err
				}
			}
		}
		assembled, err := s.assembleOrderTx(tx, record)
		if err != nil {
			return err
		}
		result = assembled
		return nil
	})
	return result, err
}

func (s *Store) DeleteOrderItems(ctx context.Context, username, date string, productIDs []int64) (*foodshop.OrderData, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var result *foodshop.OrderData
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.First(&record, "username = ? AND dispatch_date = ?", username, date).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return stubserver.ErrNotFound
			}
			return err
		}
		if len(productIDs) > 0 {
			if err := tx.Delete(&orderLineRecord{}, "order_id = ? AND product_id IN ?", record.ID, productIDs).Error; err != nil {
				return err
			}
		}
		assembled, err := s.assembleOrderTx(tx, record)
		if err != nil {
			return err
		}
		result = assembled
		return nil
	})
	return result, err
}

func (s *Store) UpdateOrderLine(ctx context.Context, username, date string, lineID int64, quantity int, partiallyScheduled *bool) (*foodshop.OrderData, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var result *foodshop.OrderData
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.First(&record, "username = ? AND dispatch_date = ?", username, date).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return stubserver.ErrNotFound
			}
			return err
		}
		updates := map[string]any{}
		if quantity > 0 {
			updates["quantity"] = quantity
		}
		if partiallyScheduled != nil {
			updates["partially_scheduled"] = *partiallyScheduled
		}
		if len(updates) > 0 {
			changed := tx.Model(&orderLineRecord{}).Where("order_id = ? AND id = ?", record.ID, lineID).Updates(updates)
			if changed.Error != nil {
				return changed.Error
			}
			if changed.RowsAffected == 0 {
				return stubserver.ErrNotFound
			}
		}
		assembled, err := s.assembleOrderTx(tx, record)
		if err != nil {
			return err
		}
		result = assembled
		return nil
	})
	return result, err
}

func (s *Store) UpdateOrderStatus(ctx context.Context, username, date, status string) error {
	if !stubserver.ValidOrderStatus(status) {
		return stubserver.ErrInvalidStatus
	}
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&orderRecord{}).
		Where("username = ? AND dispatch_date = ?", username, date).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return stubserver.ErrNotFound
	}
	return nil
}

func (s *Store) OrderByID(ctx context.Context, username string, id int64) (*foodshop.OrderData, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := s.db.WithContext(ctx).First(&record, "id = ? AND username = ?", id, username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stubserver.ErrNotFound
		}
		return nil, err
	}
	return s.assembleOrder(ctx, record)
}

func (s *Store) Orders(ctx context.Context, username string, filter stubserver.OrdersFilter, page int) (foodshop.Pagination[foodshop.OrderSummaryData], error) {
	if err := s.ensureDB(); err != nil {
		return foodshop.Pagination[foodshop.OrderSummaryData]{}, err
	}
	query := s.db.WithContext(ctx).Where("username = ?", username)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("dispatch_date LIKE ?", "%"+filter.Search+"%")
	}
	var records []orderRecord
	if err := query.Order("dispatch_date DESC").Find(&records).Error; err != nil {
		return foodshop.Pagination[foodshop.OrderSummaryData]{}, err
	}
	summaries := make([]foodshop.OrderSummaryData, 0, len(records))
	for _, record := range records {
		order, err := s.assembleOrder(ctx, record)
		if err != nil {
			return foodshop.Pagination[foodshop.OrderSummaryData]{}, err
		}
		summaries = append(summaries, foodshop.OrderSummaryData{
			ID:           record.ID,
			DispatchDate: record.DispatchDate,
			Status:       record.Status,
			Total:        order.Total,
			CreatedAt:    record.CreatedAt.Format(time.RFC3339),
		})
	}
	return stubserver.Paginate(summaries, page), nil
}

func (s *Store) assembleOrder(ctx context.Context, record orderRecord) (*foodshop.OrderData, error) {
	return s.assembleOrderTx(s.db.WithContext(ctx), record)
}

func (s *Store) assembleOrderTx(tx *gorm.DB, record orderRecord) (*foodshop.OrderData, error) {
	var lines []orderLineRecord
	if err := tx.Where("order_id = ?", record.ID).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	order := &foodshop.OrderData{
		ID:           record.ID,
		DispatchDate: record.DispatchDate,
		Status:       record.Status,
	}
	total := 0
	for _, line := range lines {
		var product productRecord
		if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
			return nil, err
		}
		lineTotal := product.PriceCLP * line.Quantity
		total += lineTotal
		order.OrderLines = append(order.OrderLines, foodshop.OrderLineData{
			ID:                 line.ID,
			Quantity:           line.Quantity,
			TotalPrice:         stubserver.FormatPrice(lineTotal),
			PartiallyScheduled: line.PartiallyScheduled,
			Product:            product.toData(),
		})
	}
	order.Total = stubserver.FormatPrice(total)
	return order, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres stub store not configured")
	}
	return nil
}

func (u userRecord) toData() foodshop.UserData {
	return foodshop.UserData{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Permission: u.Permission,
		IsMaster:   u.IsMaster,
	}
}

func (p productRecord) toData() foodshop.Product {
	return foodshop.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       stubserver.FormatPrice(p.PriceCLP),
		Image:       p.Image,
		CategoryID:  p.CategoryID,
	}
}

// SeedDefaults inserts the demo users and catalog when the tables are
// empty, mirroring the memory store's seed.
func (s *Store) SeedDefaults(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	var userCount int64
	if err := s.db.WithContext(ctx).Model(&userRecord{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}
	users := []userRecord{
		{ID: 1, Name: "Administradora Central", Email: "admin@foodshop.cl", Password: "admin1234", Role: "Admin", Permission: "Consolidado", IsMaster: true},
		{ID: 2, Name: "Cafetería Norte", Email: "cafe@foodshop.cl", Password: "cafe1234", Role: "Café", Permission: "Consolidado"},
		{ID: 3, Name: "Convenio Consolidado", Email: "consolidado@foodshop.cl", Password: "conv1234", Role: "Convenio", Permission: "Consolidado"},
		{ID: 4, Name: "Convenio Individual", Email: "individual@foodshop.cl", Password: "indiv1234", Role: "Convenio", Permission: "Individual"},
	}
	if err := s.db.WithContext(ctx).Create(&users).Error; err != nil {
		return err
	}

	groupNames := []string{"Almuerzos", "Colaciones", "Bebestibles"}
	categoryNames := []string{"Menú del día", "Ensaladas", "Sándwiches", "Postres", "Jugos y bebidas", "Repostería"}
	weekdays := pq.StringArray{"monday", "tuesday", "wednesday", "thursday", "friday"}

	var categoryID, productID int64
	base := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 25; day++ {
		date := base.AddDate(0, 0, day)
		menu := menuRecord{
			ID:              int64(day + 1),
			Title:           "Menú " + date.Format("02-01-2006"),
			Description:     "Menú disponible para despacho el " + date.Format("02 de enero"),
			PublicationDate: date.Format("2006-01-02"),
		}
		if err := s.db.WithContext(ctx).Create(&menu).Error; err != nil {
			return err
		}
		for c, name := range categoryNames {
			categoryID++
			category := categoryRecord{
				ID:               categoryID,
				MenuID:           menu.ID,
				Name:             name,
				Description:      name + " preparados cada mañana",
				ShowAllProducts:  c%2 == 0,
				GroupName:        groupNames[c%len(groupNames)],
				Weekdays:         weekdays,
				PreparationDays:  1,
				MaximumOrderTime: "16:00",
				Subcategories:    pq.StringArray{"General"},
			}
			if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
				return err
			}
			for p := 0; p < 4; p++ {
				productID++
				product := productRecord{
					ID:          productID,
					CategoryID:  categoryID,
					Name:        categoryNames[c] + " especial",
					Description: "Preparación de la casa",
					PriceCLP:    2500 + 500*p,
				}
				if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
