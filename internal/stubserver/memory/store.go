// Package memory implements the stub backend store in process memory,
// seeding itself with a realistic catalog so the client has something to
// page through out of the box.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	foodshop "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	"github.com/thirty33/foodshop-go/internal/stubserver"
)

var _ stubserver.Store = (*Store)(nil)

type account struct {
	user     foodshop.UserData
	password string
}

type session struct {
	username  string
	expiresAt time.Time
}

type order struct {
	data     foodshop.OrderData
	username string
	created  time.Time
}

// Store keeps every stub resource behind one mutex.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]account // keyed by email
	sessions   map[string]session // keyed by token
	menus      []foodshop.MenuData
	categories map[int64][]foodshop.CategoryItem // keyed by menu ID
	groups     map[int64][]foodshop.CategoryGroup
	groupOf    map[int64]string // category ID -> group name
	products   map[int64]foodshop.Product
	prices     map[int64]int // product ID -> price in CLP
	orders     map[string]*order
	nextOrder  int64
	nextLine   int64
}

// NewStore builds a store pre-seeded with users, menus, and a catalog.
func NewStore() *Store {
	s := &Store{
		accounts:   map[string]account{},
		sessions:   map[string]session{},
		categories: map[int64][]foodshop.CategoryItem{},
		groups:     map[int64][]foodshop.CategoryGroup{},
		groupOf:    map[int64]string{},
		products:   map[int64]foodshop.Product{},
		prices:     map[int64]int{},
		orders:     map[string]*order{},
	}
	s.seed()
	return s
}

func (s *Store) Authenticate(_ context.Context, email, password string) (foodshop.UserData, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acct.password != password {
		return foodshop.UserData{}, "", stubserver.ErrInvalidCredentials
	}
	token := uuid.NewString()
	s.sessions[token] = session{username: acct.user.Email, expiresAt: time.Now().Add(stubserver.SessionTTL)}
	return acct.user, token, nil
}

func (s *Store) UserByToken(_ context.Context, token string) (foodshop.UserData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || time.Now().After(sess.expiresAt) {
		return foodshop.UserData{}, stubserver.ErrInvalidToken
	}
	acct, ok := s.accounts[sess.username]
	if !ok {
		return foodshop.UserData{}, stubserver.ErrInvalidToken
	}
	return acct.user, nil
}

func (s *Store) RevokeToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// SeedSession installs a session with a caller-chosen token. Contract
// tests replay recorded Authorization headers and need a stable token.
func (s *Store) SeedSession(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]; !ok {
		return stubserver.ErrNotFound
	}
	s.sessions[token] = session{username: strings.ToLower(strings.TrimSpace(email)), expiresAt: time.Now().Add(stubserver.SessionTTL)}
	return nil
}

func (s *Store) PurgeExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}

func (s *Store) Menus(_ context.Context, page int) (foodshop.Pagination[foodshop.MenuData], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stubserver.Paginate(s.menus, page), nil
}

func (s *Store) Categories(_ context.Context, menuID int64, page int, group string) (foodshop.Pagination[foodshop.CategoryItem], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.categories[menuID]
	if !ok {
		return foodshop.Pagination[foodshop.CategoryItem]{}, stubserver.ErrNotFound
	}
	if group != "" {
		filtered := make([]foodshop.CategoryItem, 0, len(items))
		for _, item := range items {
			if s.groupOf[item.Category.ID] == group {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	return stubserver.Paginate(items, page), nil
}

func (s *Store) Groups(_ context.Context, menuID int64) ([]foodshop.CategoryGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups, ok := s.groups[menuID]
	if !ok {
		return nil, stubserver.ErrNotFound
	}
	return append([]foodshop.CategoryGroup(nil), groups...), nil
}

func (s *Store) OrderByDate(_ context.Context, username, date string) (*foodshop.OrderData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ord, ok := s.orders[orderKey(username, date)]
	if !ok {
		return nil, stubserver.ErrNotFound
	}
	return cloneOrderData(&ord.data), nil
}

func (s *Store) UpsertOrder(_ context.Context, username, date string, lines []foodshop.OrderLineInput) (*foodshop.OrderData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		if _, ok := s.products[line.ProductID]; !ok {
			return nil, stubserver.ErrNotFound
		}
	}
	key := orderKey(username, date)
	ord, ok := s.orders[key]
	if !ok {
		s.nextOrder++
		ord = &order{
			data:     foodshop.OrderData{ID: s.nextOrder, DispatchDate: date, Status: "PENDING"},
			username: username,
			created:  time.Now(),
		}
		s.orders[key] = ord
	}
	for _, input := range lines {
		updated := false
		for i := range ord.data.OrderLines {
			if ord.data.OrderLines[i].Product.ID == input.ProductID {
				ord.data.OrderLines[i].Quantity = input.Quantity
				updated = true
				break
			}
		}
		if !updated {
			s.nextLine++
			ord.data.OrderLines = append(ord.data.OrderLines, foodshop.OrderLineData{
				ID:       s.nextLine,
				Quantity: input.Quantity,
				Product:  s.products[input.ProductID],
			})
		}
	}
	s.recalculate(ord)
	return cloneOrderData(&ord.data), nil
}

func (s *Store) DeleteOrderItems(_ context.Context, username, date string, productIDs []int64) (*foodshop.OrderData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ord, ok := s.orders[orderKey(username, date)]
	if !ok {
		return nil, stubserver.ErrNotFound
	}
	for _, id := range productIDs {
		kept := ord.data.OrderLines[:0]
		for _, line := range ord.data.OrderLines {
			if line.Product.ID != id {
				kept = append(kept, line)
			}
		}
		ord.data.OrderLines = kept
	}
	s.recalculate(ord)
	return cloneOrderData(&ord.data), nil
}

func (s *Store) UpdateOrderLine(_ context.Context, username, date string, lineID int64, quantity int, partiallyScheduled *bool) (*foodshop.OrderData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ord, ok := s.orders[orderKey(username, date)]
	if !ok {
		return nil, stubserver.ErrNotFound
	}
	for i := range ord.data.OrderLines {
		if ord.data.OrderLines[i].ID != lineID {
			continue
		}
		if quantity > 0 {
			ord.data.OrderLines[i].Quantity = quantity
		}
		if partiallyScheduled != nil {
			ord.data.OrderLines[i].PartiallyScheduled = *partiallyScheduled
		}
		s.recalculate(ord)
		return cloneOrderData(&ord.data), nil
	}
	return nil, stubserver.ErrNotFound
}

func (s *Store) UpdateOrderStatus(_ context.Context, username, date, status string) error {
	if !stubserver.ValidOrderStatus(status) {
		return stubserver.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ord, ok := s.orders[orderKey(username, date)]
	if !ok {
		return stubserver.ErrNotFound
	}
	ord.data.Status = status
	return nil
}

func (s *Store) OrderByID(_ context.Context, username string, id int64) (*foodshop.OrderData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ord := range s.orders {
		if ord.username == username && ord.data.ID == id {
			return cloneOrderData(&ord.data), nil
		}
	}
	return nil, stubserver.ErrNotFound
}

func (s *Store) Orders(_ context.Context, username string, filter stubserver.OrdersFilter, page int) (foodshop.Pagination[foodshop.OrderSummaryData], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]foodshop.OrderSummaryData, 0, len(s.orders))
	for _, ord := range s.orders {
		if ord.username != username {
			continue
		}
		if filter.Status != "" && ord.data.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(ord.data.DispatchDate, filter.Search) {
			continue
		}
		summaries = append(summaries, foodshop.OrderSummaryData{
			ID:           ord.data.ID,
			DispatchDate: ord.data.DispatchDate,
			Status:       ord.data.Status,
			Total:        ord.data.Total,
			CreatedAt:    ord.created.Format(time.RFC3339),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].DispatchDate > summaries[j].DispatchDate })
	return stubserver.Paginate(summaries, page), nil
}

func (s *Store) recalculate(ord *order) {
	total := 0
	for i := range ord.data.OrderLines {
		price := s.prices[ord.data.OrderLines[i].Product.ID]
		lineTotal := price * ord.data.OrderLines[i].Quantity
		ord.data.OrderLines[i].TotalPrice = stubserver.FormatPrice(lineTotal)
		total += lineTotal
	}
	ord.data.Total = stubserver.FormatPrice(total)
}

func orderKey(username, date string) string {
	return username + "|" + date
}

func cloneOrderData(data *foodshop.OrderData) *foodshop.OrderData {
	copied := *data
	copied.OrderLines = append([]foodshop.OrderLineData(nil), data.OrderLines...)
	return &copied
}

func (s *Store) seed() {
	users := []struct {
		user     foodshop.UserData
		password string
	}{
		{foodshop.UserData{ID: 1, Name: "Administradora Central", Email: "admin@foodshop.cl", Role: "Admin", Permission: "Consolidado", IsMaster: true}, "admin1234"},
		{foodshop.UserData{ID: 2, Name: "Cafetería Norte", Email: "cafe@foodshop.cl", Role: "Café", Permission: "Consolidado"}, "cafe1234"},
		{foodshop.UserData{ID: 3, Name: "Convenio Consolidado", Email: "consolidado@foodshop.cl", Role: "Convenio", Permission: "Consolidado"}, "conv1234"},
		{foodshop.UserData{ID: 4, Name: "Convenio Individual", Email: "individual@foodshop.cl", Role: "Convenio", Permission: "Individual"}, "indiv1234"},
	}
	for _, u := range users {
		s.accounts[u.user.Email] = account{user: u.user, password: u.password}
	}

	groupNames := []string{"Almuerzos", "Colaciones", "Bebestibles"}
	categoryNames := []string{"Menú del día", "Ensaladas", "Sándwiches", "Postres", "Jugos y bebidas", "Repostería"}
	productNames := []string{"Lasaña de verduras", "Pollo al horno con arroz", "Ensalada César", "Sándwich italiano", "Jugo de frambuesa", "Torta de mil hojas"}

	var categoryID, productID, lineID int64
	base := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 25; day++ {
		menuID := int64(day + 1)
		date := base.AddDate(0, 0, day)
		s.menus = append(s.menus, foodshop.MenuData{
			ID:              menuID,
			Title:           "Menú " + date.Format("02-01-2006"),
			Description:     "Menú disponible para despacho el " + date.Format("02 de enero"),
			PublicationDate: date.Format("2006-01-02"),
		})
		s.groups[menuID] = []foodshop.CategoryGroup{
			{ID: 1, Name: groupNames[0]},
			{ID: 2, Name: groupNames[1]},
			{ID: 3, Name: groupNames[2]},
		}
		for c, name := range categoryNames {
			categoryID++
			category := foodshop.Category{
				ID:          categoryID,
				Name:        name,
				Description: name + " preparados cada mañana",
			}
			for p := 0; p < 4; p++ {
				productID++
				price := 2500 + 500*p
				product := foodshop.Product{
					ID:          productID,
					Name:        fmt.Sprintf("%s N°%d", productNames[(c+p)%len(productNames)], p+1),
					Description: "Preparación de la casa",
					Price:       stubserver.FormatPrice(price),
					CategoryID:  categoryID,
				}
				category.Products = append(category.Products, product)
				s.products[productID] = product
				s.prices[productID] = price
			}
			for _, weekday := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
				lineID++
				category.CategoryLines = append(category.CategoryLines, foodshop.CategoryLine{
					ID:               lineID,
					Weekday:          weekday,
					PreparationDays:  1,
					MaximumOrderTime: "16:00",
					Active:           true,
				})
			}
			category.Subcategories = []foodshop.Subcategory{{ID: categoryID, Name: "General"}}
			s.groupOf[categoryID] = groupNames[c%len(groupNames)]
			s.categories[menuID] = append(s.categories[menuID], foodshop.CategoryItem{
				ID:              categoryID,
				ShowAllProducts: c%2 == 0,
				Category:        category,
			})
		}
	}
}
