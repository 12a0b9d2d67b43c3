package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"go.uber.org/zap"
)

// FranchiseRepository implements the repositories.FranchiseRepository interface
type FranchiseRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFranchiseRepository creates a new franchise repository
func NewFranchiseRepository(db *DB, logger *zap.Logger) repositories.FranchiseRepository {
	return &FranchiseRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new franchise
func (r *FranchiseRepository) Create(ctx context.Context, franchise *models.Franchise) error {
	query := `
		INSERT INTO franchises (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`

	if franchise.CreatedAt.IsZero() {
		franchise.CreatedAt = time.Now()
	}

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query, franchise.Name, franchise.CreatedAt).Scan(&franchise.ID)
	if err != nil {
		return fmt.Errorf("failed to create franchise: %w", translateError(err))
	}

	r.logger.Debug("franchise created", zap.Int64("id", franchise.ID), zap.String("name", franchise.Name))
	return nil
}

// GetByID retrieves a franchise with its admins and stores
func (r *FranchiseRepository) GetByID(ctx context.Context, id int64) (*models.Franchise, error) {
	query := `SELECT id, name, created_at FROM franchises WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	franchise := &models.Franchise{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&franchise.ID, &franchise.Name, &franchise.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get franchise: %w", translateError(err))
	}

	if err := r.loadDetails(ctx, franchise); err != nil {
		return nil, err
	}

	return franchise, nil
}

// List retrieves one page of franchises whose name matches the filter
func (r *FranchiseRepository) List(ctx context.Context, filter models.FranchiseFilter) ([]*models.Franchise, bool, error) {
	query := `
		SELECT id, name, created_at
		FROM franchises
		WHERE name LIKE $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`

	offset, limit, ok := filter.Window()
	if !ok {
		return []*models.Franchise{}, false, nil
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, namePattern(filter.Name), limit+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list franchises: %w", err)
	}

	franchises, err := scanFranchises(rows)
	if err != nil {
		return nil, false, err
	}

	more := len(franchises) > limit
	if more {
		franchises = franchises[:limit]
	}

	for _, franchise := range franchises {
		stores, err := r.listStores(ctx, franchise.ID)
		if err != nil {
			return nil, false, err
		}
		franchise.Stores = stores
	}

	return franchises, more, nil
}

// ListByAdmin retrieves the franchises a user administers
func (r *FranchiseRepository) ListByAdmin(ctx context.Context, userID int64) ([]*models.Franchise, error) {
	query := `
		SELECT f.id, f.name, f.created_at
		FROM franchises f
		JOIN user_roles ur ON ur.object_id = f.id AND ur.role = $1
		WHERE ur.user_id = $2
		ORDER BY f.id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, models.RoleFranchisee, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list franchises by admin: %w", err)
	}

	franchises, err := scanFranchises(rows)
	if err != nil {
		return nil, err
	}

	for _, franchise := range franchises {
		if err := r.loadDetails(ctx, franchise); err != nil {
			return nil, err
		}
	}

	return franchises, nil
}

// ListAdmins retrieves the admins of a franchise
func (r *FranchiseRepository) ListAdmins(ctx context.Context, franchiseID int64) ([]models.FranchiseAdminRef, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.role = $1 AND ur.object_id = $2
		ORDER BY u.id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, models.RoleFranchisee, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list franchise admins: %w", err)
	}
	defer rows.Close()

	admins := []models.FranchiseAdminRef{}
	for rows.Next() {
		var admin models.FranchiseAdminRef
		if err := rows.Scan(&admin.ID, &admin.Name, &admin.Email); err != nil {
			return nil, fmt.Errorf("failed to scan franchise admin: %w", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating franchise admins: %w", err)
	}

	return admins, nil
}

// Delete removes a franchise, its stores and its admin role assignments
func (r *FranchiseRepository) Delete(ctx context.Context, id int64) error {
	executor := GetExecutor(ctx, r.db)

	statements := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM stores WHERE franchise_id = $1`, []interface{}{id}},
		{`DELETE FROM user_roles WHERE role = $1 AND object_id = $2`, []interface{}{models.RoleFranchisee, id}},
		{`DELETE FROM franchises WHERE id = $1`, []interface{}{id}},
	}

	for _, stmt := range statements {
		if _, err := executor.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return fmt.Errorf("failed to delete franchise: %w", err)
		}
	}

	r.logger.Debug("franchise deleted", zap.Int64("id", id))
	return nil
}

// CreateStore creates a store under its franchise
func (r *FranchiseRepository) CreateStore(ctx context.Context, store *models.Store) error {
	query := `
		INSERT INTO stores (franchise_id, name)
		VALUES ($1, $2)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, store.FranchiseID, store.Name).Scan(&store.ID); err != nil {
		return fmt.Errorf("failed to create store: %w", translateError(err))
	}

	r.logger.Debug("store created", zap.Int64("id", store.ID), zap.Int64("franchise_id", store.FranchiseID))
	return nil
}

// DeleteStore removes a store of the franchise
func (r *FranchiseRepository) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	query := `DELETE FROM stores WHERE franchise_id = $1 AND id = $2`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, franchiseID, storeID); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}

	r.logger.Debug("store deleted", zap.Int64("id", storeID), zap.Int64("franchise_id", franchiseID))
	return nil
}

func (r *FranchiseRepository) loadDetails(ctx context.Context, franchise *models.Franchise) error {
	admins, err := r.ListAdmins(ctx, franchise.ID)
	if err != nil {
		return err
	}
	franchise.Admins = admins

	stores, err := r.listStoresWithRevenue(ctx, franchise.ID)
	if err != nil {
		return err
	}
	franchise.Stores = stores
	return nil
}

func (r *FranchiseRepository) listStores(ctx context.Context, franchiseID int64) ([]models.Store, error) {
	query := `SELECT id, name FROM stores WHERE franchise_id = $1 ORDER BY id`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		store := models.Store{FranchiseID: franchiseID}
		if err := rows.Scan(&store.ID, &store.Name); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

func (r *FranchiseRepository) listStoresWithRevenue(ctx context.Context, franchiseID int64) ([]models.Store, error) {
	query := `
		SELECT s.id, s.name, COALESCE(SUM(oi.price), 0)
		FROM stores s
		LEFT JOIN diner_orders o ON o.store_id = s.id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE s.franchise_id = $1
		GROUP BY s.id, s.name
		ORDER BY s.id
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		store := models.Store{FranchiseID: franchiseID}
		if err := rows.Scan(&store.ID, &store.Name, &store.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

func scanFranchises(rows rowScanner) ([]*models.Franchise, error) {
	defer rows.Close()

	franchises := []*models.Franchise{}
	for rows.Next() {
		franchise := &models.Franchise{}
		if err := rows.Scan(&franchise.ID, &franchise.Name, &franchise.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan franchise: %w", err)
		}
		franchises = append(franchises, franchise)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating franchises: %w", err)
	}

	return franchises, nil
}

// namePattern turns a '*' wildcard filter into a LIKE pattern
func namePattern(filter string) string {
	if filter == "" {
		return "%"
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(filter)
	return strings.ReplaceAll(escaped, "*", "%")
}
