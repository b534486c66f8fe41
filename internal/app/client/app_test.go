package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appclient "github.com/thirty33/foodshop-go/internal/app/client"
	sessiondomain "github.com/thirty33/foodshop-go/internal/domains/session/domain"
	stubhttp "github.com/thirty33/foodshop-go/internal/stubserver/http"
	stubmemory "github.com/thirty33/foodshop-go/internal/stubserver/memory"
)

// Boots the full client stack against the in-memory stub backend and
// walks the main user journey end to end.
func TestAppAgainstStubBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("TEMPORAL_DISABLED", "1")

	server := httptest.NewServer(stubhttp.NewRouter(stubmemory.NewStore()))
	defer server.Close()

	app, shutdown, err := appclient.New(context.Background(), appclient.Config{BaseURL: server.URL})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, shutdown(context.Background()))
	}()

	ctx := context.Background()
	user, err := app.Session.Login(ctx, "cafe@foodshop.cl", "cafe1234")
	require.NoError(t, err)
	assert.Equal(t, sessiondomain.RoleCafe, user.Role)
	require.NotEmpty(t, app.Session.Token())

	app.Catalog.LoadMenus(ctx)
	menus := app.Catalog.Menus()
	require.NotEmpty(t, menus)
	date := menus[0].PublicationDate

	app.Cart.SetDate(ctx, date)
	require.NoError(t, app.Cart.AddProduct(ctx, 1, 2))
	order := app.Cart.Order()
	require.NotNil(t, order)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 2, order.Lines[0].Quantity)

	app.History.Load(ctx)
	require.NotEmpty(t, app.History.Orders())

	require.NoError(t, app.Session.Logout(ctx))
	assert.Empty(t, app.Session.Token())
}
