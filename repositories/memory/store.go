// Package memory is an in-process storage backend used by tests and by
// STORAGE_DRIVER=memory. Data does not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
	"go.uber.org/zap"
)

type data struct {
	nextID     int64
	users      map[int64]*models.User
	emails     map[string]int64
	sessions   map[string]models.Session
	franchises map[int64]*models.Franchise
	names      map[string]int64
	stores     map[int64]models.Store
	menu       []models.MenuItem
	orders     []*models.Order
}

func newData() *data {
	return &data{
		users:      make(map[int64]*models.User),
		emails:     make(map[string]int64),
		sessions:   make(map[string]models.Session),
		franchises: make(map[int64]*models.Franchise),
		names:      make(map[string]int64),
		stores:     make(map[int64]models.Store),
	}
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *data) clone() *data {
	c := newData()
	c.nextID = d.nextID
	for id, u := range d.users {
		c.users[id] = cloneUser(u)
	}
	for k, v := range d.emails {
		c.emails[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for id, f := range d.franchises {
		cp := *f
		c.franchises[id] = &cp
	}
	for k, v := range d.names {
		c.names[k] = v
	}
	for k, v := range d.stores {
		c.stores[k] = v
	}
	c.menu = append([]models.MenuItem(nil), d.menu...)
	for _, o := range d.orders {
		c.orders = append(c.orders, cloneOrder(o))
	}
	return c
}

// Store keeps every repository's rows in maps guarded by one lock
type Store struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	data   *data
	logger *zap.Logger
}

// NewStore creates an empty store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		data:   newData(),
		logger: logger,
	}
}

// NewRepositories creates all repository instances backed by the store
func (s *Store) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:      &UserRepository{store: s},
		Sessions:   &SessionRepository{store: s},
		Franchises: &FranchiseRepository{store: s},
		Menu:       &MenuRepository{store: s},
		Orders:     &OrderRepository{store: s},
	}
}

// GetTransactionManager returns a transaction manager
func (s *Store) GetTransactionManager() repositories.TransactionManager {
	return &TransactionManager{store: s}
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func (s *Store) read(fn func(d *data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// write applies fn under the store lock. Outside a transaction it also waits
// for any open transaction, so a rollback only ever discards that
// transaction's own writes.
func (s *Store) write(ctx context.Context, fn func(d *data) error) error {
	if ctx.Value(txKey{}) == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

type txKey struct{}

// TransactionManager serializes transactions and restores a snapshot on failure
type TransactionManager struct {
	store *Store
}

// InTransaction executes fn; when fn fails every write it made is undone
func (tm *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	var snapshot *data
	tm.store.read(func(d *data) { snapshot = d.clone() })

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tm.store.mu.Lock()
		tm.store.data = snapshot
		tm.store.mu.Unlock()
		tm.store.logger.Debug("memory transaction rolled back", zap.Error(err))
		return err
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Roles = append([]models.RoleAssignment(nil), u.Roles...)
	return &cp
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}
