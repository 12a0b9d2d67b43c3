package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwtpizza/pizza-service/internal/policy"
	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"github.com/jwtpizza/pizza-service/services"
	"github.com/jwtpizza/pizza-service/services/fulfillment"
	"go.uber.org/zap"
)

// PageSize is the number of orders returned per page
const PageSize = 10

// Fulfiller hands placed orders to the pizza factory
type Fulfiller interface {
	Fulfill(ctx context.Context, diner fulfillment.Diner, order *models.Order) (*models.FulfillmentReceipt, error)
}

// Service owns the menu and the order workflow
type Service struct {
	menu      repositories.MenuRepository
	orders    repositories.OrderRepository
	txMgr     repositories.TransactionManager
	engine    *policy.Engine
	fulfiller Fulfiller
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new order service
func NewService(menu repositories.MenuRepository, orders repositories.OrderRepository, txMgr repositories.TransactionManager, engine *policy.Engine, fulfiller Fulfiller, logger *zap.Logger) *Service {
	return &Service{
		menu:      menu,
		orders:    orders,
		txMgr:     txMgr,
		engine:    engine,
		fulfiller: fulfiller,
		logger:    logger,
		now:       time.Now,
	}
}

// Menu returns the whole catalog
func (s *Service) Menu(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.menu.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list menu", err)
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	return items, nil
}

// AddMenuItem appends an item and returns the updated catalog
func (s *Service) AddMenuItem(ctx context.Context, principal *policy.Principal, item models.MenuItem) ([]models.MenuItem, error) {
	if d := s.engine.Evaluate(principal, policy.ActionUpdateMenu, policy.Target{}); !d.Allowed {
		return nil, services.ErrAddMenuItemDenied
	}

	item.ID = 0
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "title")
	}
	if item.Price < 0 {
		return nil, services.ErrInvalidInput.WithDetail("field", "price")
	}

	if err := s.menu.Add(ctx, &item); err != nil {
		return nil, services.WrapInternal("failed to add menu item", err)
	}

	s.logger.Info("menu item added", zap.Int64("menu_id", item.ID))
	return s.Menu(ctx)
}

// Orders returns one page (1-based) of the diner's orders, newest first
func (s *Service) Orders(ctx context.Context, principal *policy.Principal, page int) ([]*models.Order, bool, error) {
	if d := s.engine.Evaluate(principal, policy.ActionViewOrders, policy.Target{}); !d.Allowed {
		return nil, false, services.ErrUnauthorized
	}
	if page < 1 {
		page = 1
	}

	orders, more, err := s.orders.ListByDiner(ctx, principal.UserID, page, PageSize)
	if err != nil {
		return nil, false, services.WrapInternal("failed to list orders", err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, more, nil
}

// Create persists the order, then submits it to the factory.
// A fulfillment failure leaves the stored order in place and returns
// ErrFulfillmentFailed together with the persisted order.
func (s *Service) Create(ctx context.Context, diner *models.User, order *models.Order) (*models.Order, *models.FulfillmentReceipt, error) {
	if diner == nil {
		return nil, nil, services.ErrUnauthorized
	}
	principal := &policy.Principal{UserID: diner.ID, Roles: diner.Roles}
	if d := s.engine.Evaluate(principal, policy.ActionPlaceOrder, policy.Target{FranchiseID: order.FranchiseID}); !d.Allowed {
		return nil, nil, services.ErrUnauthorized
	}

	order.ID = 0
	order.DinerID = diner.ID
	order.Date = s.now().UTC()

	err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context) error {
		for _, item := range order.Items {
			if _, err := s.menu.GetByID(ctx, item.MenuID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return services.ErrInvalidMenuItem.Wrap(err).WithDetail("menuId", item.MenuID)
				}
				return services.WrapInternal("failed to get menu item", err)
			}
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return services.WrapInternal("failed to create order", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("diner_id", diner.ID),
		zap.Int("items", len(order.Items)),
	)

	receipt, err := s.fulfiller.Fulfill(ctx, fulfillment.Diner{ID: diner.ID, Name: diner.Name, Email: diner.Email}, order)
	if err != nil {
		s.logger.Error("order fulfillment failed",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
		failure := services.ErrFulfillmentFailed.Wrap(err)
		var ferr *fulfillment.Error
		if errors.As(err, &ferr) && ferr.ReportURL != "" {
			failure = failure.WithDetail("reportUrl", ferr.ReportURL)
		}
		return order, nil, failure
	}

	return order, receipt, nil
}
