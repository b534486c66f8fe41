package http

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	foodshop "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	apierrors "github.com/thirty33/foodshop-go/internal/shared/errors"
	"github.com/thirty33/foodshop-go/internal/stubserver"
)

const (
	contextUserKey  = "stubserver.user"
	contextTokenKey = "stubserver.token"
)

// LoginAttemptLimit caps failed logins per client before 429 responses.
const LoginAttemptLimit = 5

// LoginAttemptWindow is how long a client stays throttled.
const LoginAttemptWindow = time.Minute

// NewRouter assembles the stub API with auth and throttling middleware.
func NewRouter(store stubserver.Store, middleware ...gin.HandlerFunc) *gin.Engine {
	handlers := NewHandlers(store)
	router := gin.New()
	router.Use(gin.Recovery())
	for _, mw := range middleware {
		if mw != nil {
			router.Use(mw)
		}
	}

	router.POST("/auth/login", newLoginThrottle().middleware(), handlers.Login)

	authed := router.Group("/", requireBearer(store))
	authed.POST("auth/logout", handlers.Logout)
	authed.GET("menus", handlers.ListMenus)
	authed.GET("categories/:menuID", handlers.ListCategories)
	authed.GET("categories/:menuID/groups", handlers.ListGroups)
	authed.GET("orders/get-order/:date", handlers.GetOrderByDate)
	authed.POST("orders/create-or-update-order", handlers.CreateOrUpdateOrder)
	authed.POST("orders/delete-order-items", handlers.DeleteOrderItems)
	authed.POST("orders/update-order-line", handlers.UpdateOrderLine)
	authed.POST("orders/update-order-status", handlers.UpdateOrderStatus)
	authed.GET("orders/get-order-by-id/:id", handlers.GetOrderByID)
	authed.GET("orders/get-orders", handlers.ListOrders)

	return router
}

// requireBearer resolves the session token into the calling user or ends
// the request with the 401 envelope.
func requireBearer(store stubserver.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			apierrors.DefaultResponder.Unauthorized(c)
			c.Abort()
			return
		}
		user, err := store.UserByToken(c.Request.Context(), token)
		if err != nil {
			apierrors.DefaultResponder.Unauthorized(c)
			c.Abort()
			return
		}
		c.Set(contextUserKey, user)
		c.Set(contextTokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if token, ok := c.Get(contextTokenKey); ok {
		if s, ok := token.(string); ok {
			return s
		}
	}
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func currentUser(c *gin.Context) foodshop.UserData {
	if value, ok := c.Get(contextUserKey); ok {
		if user, ok := value.(foodshop.UserData); ok {
			return user
		}
	}
	return foodshop.UserData{}
}

// loginThrottle tracks failed login responses per client IP and answers
// 429 once the budget is spent, resetting after the window.
type loginThrottle struct {
	mu       sync.Mutex
	failures map[string]*throttleEntry
}

type throttleEntry struct {
	count   int
	resetAt time.Time
}

func newLoginThrottle() *loginThrottle {
	return &loginThrottle{failures: map[string]*throttleEntry{}}
}

func (t *loginThrottle) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if t.blocked(key) {
			apierrors.DefaultResponder.RateLimited(c)
			c.Abort()
			return
		}
		c.Next()
		if c.Writer.Status() == apierrors.ErrValidation.Status {
			t.recordFailure(key)
		} else if c.Writer.Status() < 400 {
			t.reset(key)
		}
	}
}

func (t *loginThrottle) blocked(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.failures[key]
	if !ok {
		return false
	}
	if time.Now().After(entry.resetAt) {
		delete(t.failures, key)
		return false
	}
	return entry.count >= LoginAttemptLimit
}

func (t *loginThrottle) recordFailure(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.failures[key]
	if !ok || time.Now().After(entry.resetAt) {
		entry = &throttleEntry{resetAt: time.Now().Add(LoginAttemptWindow)}
		t.failures[key] = entry
	}
	entry.count++
}

func (t *loginThrottle) reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key)
}
