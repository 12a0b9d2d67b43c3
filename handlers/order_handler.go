package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jwtpizza/pizza-service/internal/policy"
	"github.com/jwtpizza/pizza-service/middleware"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/services"
	"github.com/jwtpizza/pizza-service/utils"
	"go.uber.org/zap"
)

// OrderService defines the menu and order operations used by the HTTP layer
type OrderService interface {
	Menu(ctx context.Context) ([]models.MenuItem, error)
	AddMenuItem(ctx context.Context, principal *policy.Principal, item models.MenuItem) ([]models.MenuItem, error)
	Orders(ctx context.Context, principal *policy.Principal, page int) ([]*models.Order, bool, error)
	Create(ctx context.Context, diner *models.User, order *models.Order) (*models.Order, *models.FulfillmentReceipt, error)
}

// MenuItemRequest is the body of PUT /api/order/menu.
// Title and price are checked by the service after the admin check.
type MenuItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

// OrderItemRequest is one line of an order
type OrderItemRequest struct {
	MenuID      int64   `json:"menuId" validate:"gt=0"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// CreateOrderRequest is the body of POST /api/order
type CreateOrderRequest struct {
	FranchiseID int64              `json:"franchiseId" validate:"gt=0"`
	StoreID     int64              `json:"storeId" validate:"gt=0"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderListResponse is one page of the caller's orders
type OrderListResponse struct {
	DinerID int64           `json:"dinerId"`
	Orders  []*models.Order `json:"orders"`
	Page    int             `json:"page"`
	More    bool            `json:"more"`
}

// OrderCreatedResponse is returned once the factory accepted the order
type OrderCreatedResponse struct {
	Order      *models.Order `json:"order"`
	JWT        string        `json:"jwt"`
	ReportLink string        `json:"followLinkToEndChaos"`
}

// OrderFailedResponse is returned when the factory rejected the order
type OrderFailedResponse struct {
	Message    string `json:"message"`
	ReportLink string `json:"followLinkToEndChaos,omitempty"`
}

// OrderHandler handles menu and order endpoints
type OrderHandler struct {
	orders OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// HandleMenu handles GET /api/order/menu
func (h *OrderHandler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.orders.Menu(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, menu)
}

// HandleAddMenuItem handles PUT /api/order/menu
func (h *OrderHandler) HandleAddMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MenuItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	menu, err := h.orders.AddMenuItem(ctx, middleware.GetPrincipalFromContext(ctx), models.MenuItem{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, menu)
}

// HandleList handles GET /api/order?page=
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := middleware.GetPrincipalFromContext(ctx)
	if principal == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	page := intQuery(r, "page", 1)
	if page < 1 {
		page = 1
	}

	orders, more, err := h.orders.Orders(ctx, principal, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, OrderListResponse{DinerID: principal.UserID, Orders: orders, Page: page, More: more})
}

// HandleCreate handles POST /api/order
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.GetIdentityFromContext(ctx)
	if identity == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	var req CreateOrderRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	order := &models.Order{
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Items:       make([]models.OrderItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuID:      item.MenuID,
			Description: item.Description,
			Price:       item.Price,
		})
	}

	placed, receipt, err := h.orders.Create(ctx, identity.User, order)
	if err != nil {
		if errors.Is(err, services.ErrFulfillmentFailed) && placed != nil {
			h.logger.Error("order not fulfilled",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Int64("order_id", placed.ID),
				zap.Error(err))
			link, _ := services.GetErrorDetails(err)["reportUrl"].(string)
			_ = utils.WriteJSON(w, http.StatusInternalServerError, OrderFailedResponse{
				Message:    services.ErrFulfillmentFailed.Message,
				ReportLink: link,
			})
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, OrderCreatedResponse{Order: placed, JWT: receipt.JWT, ReportLink: receipt.ReportURL})
}
