package postgres

import (
	"context"
	"fmt"

	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"go.uber.org/zap"
)

// OrderRepository implements the repositories.OrderRepository interface
type OrderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *DB, logger *zap.Logger) repositories.OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an order and its items
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	orderQuery := `
		INSERT INTO diner_orders (diner_id, franchise_id, store_id, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	itemQuery := `
		INSERT INTO order_items (order_id, menu_id, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, orderQuery,
		order.DinerID,
		order.FranchiseID,
		order.StoreID,
		order.Date,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", translateError(err))
	}

	for i := range order.Items {
		item := &order.Items[i]
		err := executor.QueryRowContext(ctx, itemQuery, order.ID, item.MenuID, item.Description, item.Price).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", translateError(err))
		}
	}

	r.logger.Debug("order created",
		zap.Int64("id", order.ID),
		zap.Int64("diner_id", order.DinerID),
		zap.Int("items", len(order.Items)),
	)
	return nil
}

// ListByDiner retrieves one page of a diner's orders
func (r *OrderRepository) ListByDiner(ctx context.Context, dinerID int64, page, pageSize int) ([]*models.Order, bool, error) {
	query := `
		SELECT id, franchise_id, store_id, date
		FROM diner_orders
		WHERE diner_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`

	if page < 1 {
		page = 1
	}
	offset, ok := models.PageOffset(page-1, pageSize)
	if !ok {
		return []*models.Order{}, false, nil
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, dinerID, pageSize+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := []*models.Order{}
	for rows.Next() {
		order := &models.Order{DinerID: dinerID}
		if err := rows.Scan(&order.ID, &order.FranchiseID, &order.StoreID, &order.Date); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating orders: %w", err)
	}

	more := len(orders) > pageSize
	if more {
		orders = orders[:pageSize]
	}

	for _, order := range orders {
		items, err := r.listItems(ctx, order.ID)
		if err != nil {
			return nil, false, err
		}
		order.Items = items
	}

	return orders, more, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, menu_id, description, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.MenuID, &item.Description, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
