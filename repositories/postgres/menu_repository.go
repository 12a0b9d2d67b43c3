package postgres

import (
	"context"
	"fmt"

	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"go.uber.org/zap"
)

// MenuRepository implements the repositories.MenuRepository interface
type MenuRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db *DB, logger *zap.Logger) repositories.MenuRepository {
	return &MenuRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves the whole menu
func (r *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	query := `SELECT id, title, description, image, price FROM menu ORDER BY id`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Image, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menu: %w", err)
	}

	return items, nil
}

// GetByID retrieves a menu item by ID
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	query := `SELECT id, title, description, image, price FROM menu WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	item := &models.MenuItem{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Title, &item.Description, &item.Image, &item.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item %d: %w", id, translateError(err))
	}

	return item, nil
}

// Add appends a menu item
func (r *MenuRepository) Add(ctx context.Context, item *models.MenuItem) error {
	query := `
		INSERT INTO menu (title, description, image, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query, item.Title, item.Description, item.Image, item.Price).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to add menu item: %w", translateError(err))
	}

	r.logger.Debug("menu item added", zap.Int64("id", item.ID), zap.String("title", item.Title))
	return nil
}
