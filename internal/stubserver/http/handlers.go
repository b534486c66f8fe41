// Package http exposes the stub backend over gin using the envelope
// response contract.
package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	foodshop "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	apierrors "github.com/thirty33/foodshop-go/internal/shared/errors"
	"github.com/thirty33/foodshop-go/internal/stubserver"
)

const (
	msgEmailRequired    = "El correo electrónico es obligatorio."
	msgPasswordRequired = "La contraseña es obligatoria."
	msgBadCredentials   = "Las credenciales proporcionadas son incorrectas."
	msgInvalidStatus    = "El estado del pedido no es válido."
)

// Handlers serves every stub endpoint against the configured store.
type Handlers struct {
	store     stubserver.Store
	responder *apierrors.ChainedResponder
}

// NewHandlers wires the store into the endpoint handlers.
func NewHandlers(store stubserver.Store) *Handlers {
	responder := apierrors.NewChainedResponder(func(err error) (apierrors.APIProblem, bool) {
		switch {
		case errors.Is(err, stubserver.ErrNotFound):
			return apierrors.ErrNotFound, true
		case errors.Is(err, stubserver.ErrInvalidToken):
			return apierrors.ErrUnauthorized, true
		case errors.Is(err, stubserver.ErrInvalidCredentials):
			return apierrors.NewValidationProblem(map[string][]string{"email": {msgBadCredentials}}), true
		case errors.Is(err, stubserver.ErrInvalidStatus):
			return apierrors.NewValidationProblem(map[string][]string{"status": {msgInvalidStatus}}), true
		default:
			return apierrors.APIProblem{}, false
		}
	})
	return &Handlers{store: store, responder: responder}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, apierrors.ErrValidation)
		return
	}
	fields := map[string][]string{}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = append(fields["email"], msgEmailRequired)
	}
	if req.Password == "" {
		fields["password"] = append(fields["password"], msgPasswordRequired)
	}
	if len(fields) > 0 {
		h.responder.ValidationFailed(c, fields)
		return
	}
	user, token, err := h.store.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Inicio de sesión exitoso.", gin.H{"token": token, "user": user})
}

func (h *Handlers) Logout(c *gin.Context) {
	if err := h.store.RevokeToken(c.Request.Context(), bearerToken(c)); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Sesión cerrada.", nil)
}

func (h *Handlers) ListMenus(c *gin.Context) {
	page, err := h.store.Menus(c.Request.Context(), queryPage(c))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Menús obtenidos.", page)
}

func (h *Handlers) ListCategories(c *gin.Context) {
	menuID, ok := pathID(c, "menuID")
	if !ok {
		h.responder.NotFound(c, "Menú")
		return
	}
	page, err := h.store.Categories(c.Request.Context(), menuID, queryPage(c), strings.TrimSpace(c.Query("priority_group")))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Categorías obtenidas.", page)
}

func (h *Handlers) ListGroups(c *gin.Context) {
	menuID, ok := pathID(c, "menuID")
	if !ok {
		h.responder.NotFound(c, "Menú")
		return
	}
	groups, err := h.store.Groups(c.Request.Context(), menuID)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Grupos obtenidos.", groups)
}

func (h *Handlers) GetOrderByDate(c *gin.Context) {
	order, err := h.store.OrderByDate(c.Request.Context(), h.effectiveUser(c), c.Param("date"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Pedido obtenido.", order)
}

func (h *Handlers) CreateOrUpdateOrder(c *gin.Context) {
	var req foodshop.CreateOrUpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, apierrors.ErrValidation)
		return
	}
	fields := map[string][]string{}
	if strings.TrimSpace(req.Date) == "" {
		fields["date"] = append(fields["date"], "La fecha de despacho es obligatoria.")
	}
	for _, line := range req.OrderLines {
		if line.Quantity <= 0 {
			fields["order_lines"] = append(fields["order_lines"], "La cantidad debe ser mayor que cero.")
			break
		}
	}
	if len(fields) > 0 {
		h.responder.ValidationFailed(c, fields)
		return
	}
	order, err := h.store.UpsertOrder(c.Request.Context(), h.effectiveUserFor(c, req.DelegateUser), req.Date, req.OrderLines)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Pedido actualizado.", order)
}

func (h *Handlers) DeleteOrderItems(c *gin.Context) {
	var req foodshop.DeleteOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, apierrors.ErrValidation)
		return
	}
	productIDs := make([]int64, 0, len(req.OrderLines))
	for _, line := range req.OrderLines {
		productIDs = append(productIDs, line.ProductID)
	}
	order, err := h.store.DeleteOrderItems(c.Request.Context(), h.effectiveUserFor(c, req.DelegateUser), req.Date, productIDs)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Productos eliminados del pedido.", order)
}

func (h *Handlers) UpdateOrderLine(c *gin.Context) {
	var req foodshop.UpdateOrderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, apierrors.ErrValidation)
		return
	}
	if req.PartiallyScheduled == nil && req.Quantity <= 0 {
		h.responder.ValidationFailed(c, map[string][]string{
			"quantity": {"La cantidad debe ser mayor que cero."},
		})
		return
	}
	order, err := h.store.UpdateOrderLine(c.Request.Context(), h.effectiveUserFor(c, req.DelegateUser), req.Date, req.OrderLineID, req.Quantity, req.PartiallyScheduled)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Línea actualizada.", order)
}

func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var req foodshop.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Respond(c, apierrors.ErrValidation)
		return
	}
	if err := h.store.UpdateOrderStatus(c.Request.Context(), h.effectiveUserFor(c, req.DelegateUser), req.Date, req.Status); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Estado del pedido actualizado.", nil)
}

func (h *Handlers) GetOrderByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		h.responder.NotFound(c, "Pedido")
		return
	}
	order, err := h.store.OrderByID(c.Request.Context(), h.effectiveUser(c), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Pedido obtenido.", order)
}

func (h *Handlers) ListOrders(c *gin.Context) {
	filter := stubserver.OrdersFilter{
		Status:     strings.TrimSpace(c.Query("status")),
		TimePeriod: strings.TrimSpace(c.Query("time_period")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	page, err := h.store.Orders(c.Request.Context(), h.effectiveUser(c), filter, queryPage(c))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	h.responder.Success(c, "Pedidos obtenidos.", page)
}

// effectiveUser resolves the order owner: the delegate when a master user
// impersonates a subordinate, the caller otherwise.
func (h *Handlers) effectiveUser(c *gin.Context) string {
	return h.effectiveUserFor(c, c.Query("delegate_user"))
}

func (h *Handlers) effectiveUserFor(c *gin.Context, delegate string) string {
	user := currentUser(c)
	if delegate = strings.TrimSpace(delegate); delegate != "" && user.IsMaster {
		return delegate
	}
	return user.Email
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
