package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jwtpizza/pizza-service/models"
	"github.com/jwtpizza/pizza-service/repositories"
)

// UserRepository implements repositories.UserRepository in memory
type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.write(ctx, func(d *data) error {
		if _, ok := d.emails[user.Email]; ok {
			return fmt.Errorf("email %s: %w", user.Email, repositories.ErrDuplicate)
		}
		user.ID = d.id()
		d.users[user.ID] = cloneUser(user)
		d.emails[user.Email] = user.ID
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	r.store.read(func(d *data) {
		if u, ok := d.users[id]; ok {
			user = cloneUser(u)
		}
	})
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, repositories.ErrNotFound)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	r.store.read(func(d *data) {
		if id, ok := d.emails[email]; ok {
			user = cloneUser(d.users[id])
		}
	})
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", email, repositories.ErrNotFound)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.store.write(ctx, func(d *data) error {
		existing, ok := d.users[user.ID]
		if !ok {
			return fmt.Errorf("user %d: %w", user.ID, repositories.ErrNotFound)
		}
		if owner, taken := d.emails[user.Email]; taken && owner != user.ID {
			return fmt.Errorf("email %s: %w", user.Email, repositories.ErrDuplicate)
		}
		delete(d.emails, existing.Email)
		existing.Name = user.Name
		existing.Email = user.Email
		existing.PasswordHash = user.PasswordHash
		existing.UpdatedAt = user.UpdatedAt
		d.emails[user.Email] = user.ID
		return nil
	})
}

func (r *UserRepository) AddRole(ctx context.Context, userID int64, role models.RoleAssignment) error {
	return r.store.write(ctx, func(d *data) error {
		u, ok := d.users[userID]
		if !ok {
			return fmt.Errorf("user %d: %w", userID, repositories.ErrNotFound)
		}
		u.Roles = append(u.Roles, role)
		return nil
	})
}

// SessionRepository implements repositories.SessionRepository in memory
type SessionRepository struct {
	store *Store
}

func (r *SessionRepository) Insert(ctx context.Context, session *models.Session) error {
	return r.store.write(ctx, func(d *data) error {
		d.sessions[session.TokenHash] = *session
		return nil
	})
}

func (r *SessionRepository) Exists(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	var ok bool
	r.store.read(func(d *data) {
		s, found := d.sessions[tokenHash]
		ok = found && !s.IsExpired(now)
	})
	return ok, nil
}

func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	return r.store.write(ctx, func(d *data) error {
		delete(d.sessions, tokenHash)
		return nil
	})
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(d *data) error {
		for hash, s := range d.sessions {
			if s.IsExpired(now) {
				delete(d.sessions, hash)
				n++
			}
		}
		return nil
	})
	return n, err
}

// FranchiseRepository implements repositories.FranchiseRepository in memory
type FranchiseRepository struct {
	store *Store
}

func (r *FranchiseRepository) Create(ctx context.Context, franchise *models.Franchise) error {
	return r.store.write(ctx, func(d *data) error {
		if _, ok := d.names[franchise.Name]; ok {
			return fmt.Errorf("franchise %s: %w", franchise.Name, repositories.ErrDuplicate)
		}
		franchise.ID = d.id()
		if franchise.CreatedAt.IsZero() {
			franchise.CreatedAt = time.Now()
		}
		d.franchises[franchise.ID] = &models.Franchise{ID: franchise.ID, Name: franchise.Name, CreatedAt: franchise.CreatedAt}
		d.names[franchise.Name] = franchise.ID
		return nil
	})
}

func (r *FranchiseRepository) GetByID(ctx context.Context, id int64) (*models.Franchise, error) {
	var franchise *models.Franchise
	r.store.read(func(d *data) {
		if f, ok := d.franchises[id]; ok {
			franchise = d.detailed(f)
		}
	})
	if franchise == nil {
		return nil, fmt.Errorf("franchise %d: %w", id, repositories.ErrNotFound)
	}
	return franchise, nil
}

func (r *FranchiseRepository) List(ctx context.Context, filter models.FranchiseFilter) ([]*models.Franchise, bool, error) {
	offset, limit, ok := filter.Window()
	if !ok {
		return []*models.Franchise{}, false, nil
	}

	var result []*models.Franchise
	var more bool
	r.store.read(func(d *data) {
		matched := []*models.Franchise{}
		for _, f := range d.sortedFranchises() {
			if matchName(filter.Name, f.Name) {
				matched = append(matched, f)
			}
		}

		start := offset
		if start > len(matched) {
			start = len(matched)
		}
		end := len(matched)
		if limit < end-start {
			end = start + limit
		}
		more = len(matched) > end

		result = make([]*models.Franchise, 0, end-start)
		for _, f := range matched[start:end] {
			result = append(result, &models.Franchise{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt, Stores: d.storesOf(f.ID, false)})
		}
	})
	return result, more, nil
}

func (r *FranchiseRepository) ListByAdmin(ctx context.Context, userID int64) ([]*models.Franchise, error) {
	result := []*models.Franchise{}
	r.store.read(func(d *data) {
		u, ok := d.users[userID]
		if !ok {
			return
		}
		for _, f := range d.sortedFranchises() {
			if u.HasFranchiseRole(f.ID) {
				result = append(result, d.detailed(f))
			}
		}
	})
	return result, nil
}

func (r *FranchiseRepository) ListAdmins(ctx context.Context, franchiseID int64) ([]models.FranchiseAdminRef, error) {
	var admins []models.FranchiseAdminRef
	r.store.read(func(d *data) { admins = d.adminsOf(franchiseID) })
	return admins, nil
}

func (r *FranchiseRepository) Delete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(d *data) error {
		for sid, s := range d.stores {
			if s.FranchiseID == id {
				delete(d.stores, sid)
			}
		}
		for _, u := range d.users {
			kept := u.Roles[:0]
			for _, role := range u.Roles {
				if role.Kind == models.RoleFranchisee && role.ObjectID == id {
					continue
				}
				kept = append(kept, role)
			}
			u.Roles = kept
		}
		if f, ok := d.franchises[id]; ok {
			delete(d.names, f.Name)
			delete(d.franchises, id)
		}
		return nil
	})
}

func (r *FranchiseRepository) CreateStore(ctx context.Context, store *models.Store) error {
	return r.store.write(ctx, func(d *data) error {
		if _, ok := d.franchises[store.FranchiseID]; !ok {
			return fmt.Errorf("franchise %d: %w", store.FranchiseID, repositories.ErrNotFound)
		}
		store.ID = d.id()
		d.stores[store.ID] = models.Store{ID: store.ID, FranchiseID: store.FranchiseID, Name: store.Name}
		return nil
	})
}

func (r *FranchiseRepository) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	return r.store.write(ctx, func(d *data) error {
		if s, ok := d.stores[storeID]; ok && s.FranchiseID == franchiseID {
			delete(d.stores, storeID)
		}
		return nil
	})
}

func (d *data) sortedFranchises() []*models.Franchise {
	list := make([]*models.Franchise, 0, len(d.franchises))
	for _, f := range d.franchises {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (d *data) detailed(f *models.Franchise) *models.Franchise {
	return &models.Franchise{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		Admins:    d.adminsOf(f.ID),
		Stores:    d.storesOf(f.ID, true),
	}
}

func (d *data) adminsOf(franchiseID int64) []models.FranchiseAdminRef {
	admins := []models.FranchiseAdminRef{}
	for _, u := range d.users {
		if u.HasFranchiseRole(franchiseID) {
			admins = append(admins, models.FranchiseAdminRef{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	return admins
}

func (d *data) storesOf(franchiseID int64, withRevenue bool) []models.Store {
	stores := []models.Store{}
	for _, s := range d.stores {
		if s.FranchiseID != franchiseID {
			continue
		}
		if withRevenue {
			for _, o := range d.orders {
				if o.StoreID == s.ID {
					s.TotalRevenue += o.Total()
				}
			}
		}
		stores = append(stores, s)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID < stores[j].ID })
	return stores
}

// matchName applies a '*' wildcard filter
func matchName(filter, name string) bool {
	if filter == "" || filter == "*" {
		return true
	}
	parts := strings.Split(filter, "*")
	if !strings.HasPrefix(name, parts[0]) {
		return false
	}
	rest := name[len(parts[0]):]
	for i, part := range parts[1:] {
		if i == len(parts)-2 {
			return strings.HasSuffix(rest, part)
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return rest == ""
}

// MenuRepository implements repositories.MenuRepository in memory
type MenuRepository struct {
	store *Store
}

func (r *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	r.store.read(func(d *data) { items = append([]models.MenuItem{}, d.menu...) })
	return items, nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item *models.MenuItem
	r.store.read(func(d *data) {
		for _, m := range d.menu {
			if m.ID == id {
				cp := m
				item = &cp
				return
			}
		}
	})
	if item == nil {
		return nil, fmt.Errorf("menu item %d: %w", id, repositories.ErrNotFound)
	}
	return item, nil
}

func (r *MenuRepository) Add(ctx context.Context, item *models.MenuItem) error {
	return r.store.write(ctx, func(d *data) error {
		item.ID = d.id()
		d.menu = append(d.menu, *item)
		return nil
	})
}

// OrderRepository implements repositories.OrderRepository in memory
type OrderRepository struct {
	store *Store
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.store.write(ctx, func(d *data) error {
		order.ID = d.id()
		for i := range order.Items {
			order.Items[i].ID = d.id()
		}
		d.orders = append(d.orders, cloneOrder(order))
		return nil
	})
}

func (r *OrderRepository) ListByDiner(ctx context.Context, dinerID int64, page, pageSize int) ([]*models.Order, bool, error) {
	if page < 1 {
		page = 1
	}
	offset, ok := models.PageOffset(page-1, pageSize)
	if !ok {
		return []*models.Order{}, false, nil
	}

	var result []*models.Order
	var more bool
	r.store.read(func(d *data) {
		mine := []*models.Order{}
		for i := len(d.orders) - 1; i >= 0; i-- {
			if d.orders[i].DinerID == dinerID {
				mine = append(mine, d.orders[i])
			}
		}

		start := offset
		if start > len(mine) {
			start = len(mine)
		}
		end := len(mine)
		if pageSize < end-start {
			end = start + pageSize
		}
		more = len(mine) > end

		result = make([]*models.Order, 0, end-start)
		for _, o := range mine[start:end] {
			result = append(result, cloneOrder(o))
		}
	})
	return result, more, nil
}
