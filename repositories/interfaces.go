package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jwtpizza/pizza-service/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager runs units of work atomically.
// Repositories called with the ctx passed to fn join the transaction.
type TransactionManager interface {
	// InTransaction executes fn within a transaction.
	// Automatically commits if fn succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository handles user and role assignment data operations
type UserRepository interface {
	// Create inserts the user with its role assignments and sets user.ID.
	// Returns ErrDuplicate if the email is already registered.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user with its roles
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user with its roles
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update persists name, email and password hash
	Update(ctx context.Context, user *models.User) error

	// AddRole appends a role assignment to the user
	AddRole(ctx context.Context, userID int64, role models.RoleAssignment) error
}

// SessionRepository persists the hashes of currently valid tokens
type SessionRepository interface {
	// Insert records a session; inserting an existing hash refreshes its expiry
	Insert(ctx context.Context, session *models.Session) error

	// Exists reports whether an unexpired session with the hash is present
	Exists(ctx context.Context, tokenHash string, now time.Time) (bool, error)

	// Delete removes a session. Deleting an unknown hash is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteExpired removes sessions whose expiry is at or before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// FranchiseRepository handles franchise and store data operations
type FranchiseRepository interface {
	// Create inserts the franchise and sets franchise.ID.
	// Returns ErrDuplicate if the name is taken.
	Create(ctx context.Context, franchise *models.Franchise) error

	// GetByID retrieves a franchise with its admins and stores
	GetByID(ctx context.Context, id int64) (*models.Franchise, error)

	// List retrieves one page of franchises with their stores.
	// The boolean reports whether more pages follow.
	List(ctx context.Context, filter models.FranchiseFilter) ([]*models.Franchise, bool, error)

	// ListByAdmin retrieves the franchises the user administers,
	// with admins and per-store revenue
	ListByAdmin(ctx context.Context, userID int64) ([]*models.Franchise, error)

	// ListAdmins retrieves the admins of a franchise
	ListAdmins(ctx context.Context, franchiseID int64) ([]models.FranchiseAdminRef, error)

	// Delete removes a franchise with its stores and admin role assignments
	Delete(ctx context.Context, id int64) error

	// CreateStore inserts a store and sets store.ID
	CreateStore(ctx context.Context, store *models.Store) error

	// DeleteStore removes a store of the franchise
	DeleteStore(ctx context.Context, franchiseID, storeID int64) error
}

// MenuRepository handles the pizza catalog
type MenuRepository interface {
	// List retrieves the whole menu ordered by id
	List(ctx context.Context) ([]models.MenuItem, error)

	// GetByID retrieves one menu item
	GetByID(ctx context.Context, id int64) (*models.MenuItem, error)

	// Add appends an item and sets item.ID
	Add(ctx context.Context, item *models.MenuItem) error
}

// OrderRepository handles diner orders
type OrderRepository interface {
	// Create inserts the order with its items and sets the generated ids
	Create(ctx context.Context, order *models.Order) error

	// ListByDiner retrieves one page of a diner's orders, newest first.
	// The boolean reports whether more pages follow.
	ListByDiner(ctx context.Context, dinerID int64, page, pageSize int) ([]*models.Order, bool, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users      UserRepository
	Sessions   SessionRepository
	Franchises FranchiseRepository
	Menu       MenuRepository
	Orders     OrderRepository
}

// Store is a storage backend: repositories plus transaction support
type Store interface {
	NewRepositories() *Repositories
	GetTransactionManager() TransactionManager
	HealthCheck(ctx context.Context) error
	Close() error
}
