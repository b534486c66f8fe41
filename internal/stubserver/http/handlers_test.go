package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	foodshop "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	"github.com/thirty33/foodshop-go/internal/stubserver/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelopeBody struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelopeBody) {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var env envelopeBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env))
	return recorder, env
}

func login(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	recorder, env := doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestLoginValidationErrors(t *testing.T) {
	router := NewRouter(memory.NewStore())

	recorder, env := doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{"password": "x"})

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	require.Equal(t, "error", env.Status)
	require.Equal(t, []string{"El correo electrónico es obligatorio."}, env.Errors["email"])
}

func TestLoginThrottleAfterRepeatedFailures(t *testing.T) {
	router := NewRouter(memory.NewStore())

	for i := 0; i < LoginAttemptLimit; i++ {
		recorder, _ := doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "admin@foodshop.cl",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	}

	recorder, env := doRequest(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@foodshop.cl",
		"password": "wrong",
	})
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "Demasiados intentos. Por favor, inténtalo de nuevo más tarde.", env.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := NewRouter(memory.NewStore())

	recorder, env := doRequest(t, router, http.MethodGet, "/menus", "", nil)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, "error", env.Status)
}

func TestMenusArePaginated(t *testing.T) {
	router := NewRouter(memory.NewStore())
	token := login(t, router, "admin@foodshop.cl", "admin1234")

	recorder, env := doRequest(t, router, http.MethodGet, "/menus?page=1", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var page foodshop.Pagination[foodshop.MenuData]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Data, 10)
	require.Equal(t, 1, page.CurrentPage)
	require.Equal(t, 3, page.LastPage)
	require.Equal(t, 25, page.Total)

	_, env = doRequest(t, router, http.MethodGet, "/menus?page=3", token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Data, 5)
	require.Equal(t, 3, page.CurrentPage)
}

func TestCategoriesFilterByGroup(t *testing.T) {
	router := NewRouter(memory.NewStore())
	token := login(t, router, "admin@foodshop.cl", "admin1234")

	_, env := doRequest(t, router, http.MethodGet, "/categories/1/groups", token, nil)
	var groups []foodshop.CategoryGroup
	require.NoError(t, json.Unmarshal(env.Data, &groups))
	require.NotEmpty(t, groups)

	_, env = doRequest(t, router, http.MethodGet, "/categories/1?priority_group=Almuerzos", token, nil)
	var page foodshop.Pagination[foodshop.CategoryItem]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.NotEmpty(t, page.Data)

	_, unfiltered := doRequest(t, router, http.MethodGet, "/categories/1", token, nil)
	var all foodshop.Pagination[foodshop.CategoryItem]
	require.NoError(t, json.Unmarshal(unfiltered.Data, &all))
	require.Greater(t, all.Total, page.Total)
}

func TestOrderLifecycle(t *testing.T) {
	router := NewRouter(memory.NewStore())
	token := login(t, router, "cafe@foodshop.cl", "cafe1234")

	recorder, _ := doRequest(t, router, http.MethodGet, "/orders/get-order/2026-09-07", token, nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	recorder, env := doRequest(t, router, http.MethodPost, "/orders/create-or-update-order", token, foodshop.CreateOrUpdateOrderRequest{
		Date:       "2026-09-07",
		OrderLines: []foodshop.OrderLineInput{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var order foodshop.OrderData
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Len(t, order.OrderLines, 2)
	require.Equal(t, "PENDING", order.Status)
	require.NotEmpty(t, order.Total)

	recorder, env = doRequest(t, router, http.MethodPost, "/orders/delete-order-items", token, foodshop.DeleteOrderItemsRequest{
		Date:       "2026-09-07",
		OrderLines: []foodshop.OrderLineInput{{ProductID: 1}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Len(t, order.OrderLines, 1)
	require.Equal(t, int64(2), order.OrderLines[0].Product.ID)

	recorder, _ = doRequest(t, router, http.MethodPost, "/orders/update-order-status", token, foodshop.UpdateOrderStatusRequest{
		Date:   "2026-09-07",
		Status: "PROCESSED",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	_, env = doRequest(t, router, http.MethodGet, "/orders/get-order/2026-09-07", token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Equal(t, "PROCESSED", order.Status)
}

func TestUpdateOrderStatusRejectsUnknownValue(t *testing.T) {
	router := NewRouter(memory.NewStore())
	token := login(t, router, "cafe@foodshop.cl", "cafe1234")

	_, _ = doRequest(t, router, http.MethodPost, "/orders/create-or-update-order", token, foodshop.CreateOrUpdateOrderRequest{
		Date:       "2026-09-07",
		OrderLines: []foodshop.OrderLineInput{{ProductID: 1, Quantity: 1}},
	})

	recorder, env := doRequest(t, router, http.MethodPost, "/orders/update-order-status", token, foodshop.UpdateOrderStatusRequest{
		Date:   "2026-09-07",
		Status: "SHIPPED",
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	require.NotEmpty(t, env.Errors["status"])
}

func TestCreateOrderRejectsZeroQuantity(t *testing.T) {
	router := NewRouter(memory.NewStore())
	token := login(t, router, "cafe@foodshop.cl", "cafe1234")

	recorder, env := doRequest(t, router, http.MethodPost, "/orders/create-or-update-order", token, foodshop.CreateOrUpdateOrderRequest{
		Date:       "2026-09-07",
		OrderLines: []foodshop.OrderLineInput{{ProductID: 1, Quantity: 0}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	require.NotEmpty(t, env.Errors["order_lines"])
}

func TestMasterUserOperatesOnDelegateOrders(t *testing.T) {
	router := NewRouter(memory.NewStore())
	adminToken := login(t, router, "admin@foodshop.cl", "admin1234")
	cafeToken := login(t, router, "cafe@foodshop.cl", "cafe1234")

	recorder, _ := doRequest(t, router, http.MethodPost, "/orders/create-or-update-order", adminToken, foodshop.CreateOrUpdateOrderRequest{
		Date:         "2026-09-07",
		DelegateUser: "cafe@foodshop.cl",
		OrderLines:   []foodshop.OrderLineInput{{ProductID: 3, Quantity: 1}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	// The order belongs to the delegate, not the admin.
	recorder, env := doRequest(t, router, http.MethodGet, "/orders/get-order/2026-09-07", cafeToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var order foodshop.OrderData
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Len(t, order.OrderLines, 1)

	recorder, _ = doRequest(t, router, http.MethodGet, "/orders/get-order/2026-09-07", adminToken, nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestOrderHistoryListsOwnOrders(t *testing.T) {
	router := NewRouter(memory.NewStore())
	token := login(t, router, "cafe@foodshop.cl", "cafe1234")

	for day := 1; day <= 3; day++ {
		date := fmt.Sprintf("2026-09-%02d", day)
		recorder, _ := doRequest(t, router, http.MethodPost, "/orders/create-or-update-order", token, foodshop.CreateOrUpdateOrderRequest{
			Date:       date,
			OrderLines: []foodshop.OrderLineInput{{ProductID: 1, Quantity: 1}},
		})
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	_, env := doRequest(t, router, http.MethodGet, "/orders/get-orders?page=1", token, nil)
	var page foodshop.Pagination[foodshop.OrderSummaryData]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Equal(t, 3, page.Total)
	// Newest dispatch date first.
	require.Equal(t, "2026-09-03", page.Data[0].DispatchDate)
}

func TestLogoutRevokesToken(t *testing.T) {
	router := NewRouter(memory.NewStore())
	token := login(t, router, "admin@foodshop.cl", "admin1234")

	recorder, _ := doRequest(t, router, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = doRequest(t, router, http.MethodGet, "/menus", token, nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
